package constants

import "time"

// Эндпоинты площадок. Базовые URL переопределяются в конструкторах
// адаптеров (нужно для тестов), здесь — боевые значения по умолчанию.
const (
	AvitoTokenURL   = "https://api.avito.ru/token/"
	AvitoLookupURL  = "https://api.avito.ru/autoload/v2/items/avito_ids"
	AvitoItemURL    = "https://api.avito.ru/core/v1/accounts" // + /{company}/items/{item}/
	AvitoStatsURL   = "https://api.avito.ru/stats/v1/accounts" // + /{company}/items
	CianFeedURL     = "https://public-api.cian.ru/v1/get-order"
	YandexFeedURL   = "https://api.realty.yandex.net/2.0/crm/offers"
	DomclickBaseURL = "https://my.domclick.ru/api/v1/company" // + /{company}/report/
)

// YandexPageSize — фиксированный размер страницы выдачи Яндекса
const YandexPageSize = 100

// AvitoStatsWindow — скользящее окно статистики Авито
const AvitoStatsWindow = 30 * 24 * time.Hour

// RequestTimeout — предельное время одного исходящего запроса к площадке.
// Таймаут трактуется так же, как не-200 ответ.
const RequestTimeout = 10 * time.Second
