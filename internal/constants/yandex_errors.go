package constants

// YandexUnknownErrorPhrase — фраза для кодов, которых нет в словаре
const YandexUnknownErrorPhrase = "Неизвестная ошибка"

// yandexErrorPhrases — статический словарь: код ошибки фида Яндекса ->
// человеческая фраза. Только для чтения на все время жизни процесса.
var yandexErrorPhrases = map[string]string{
	"UNKNOWN":                       "Неизвестная ошибка фида",
	"WRONG_PRICE":                   "Некорректная цена в объявлении",
	"PHOTO_NOT_LOADED":              "Не загрузились фотографии объявления",
	"INVALID_PHOTO":                 "Фотографии не прошли модерацию",
	"EMPTY_DESCRIPTION":             "Отсутствует описание объекта",
	"WRONG_LOCATION":                "Не удалось распознать адрес объекта",
	"DUPLICATE_OFFER":               "Объявление распознано как дубликат",
	"BANNED_OFFER":                  "Объявление заблокировано модерацией",
	"INVALID_FLOOR":                 "Некорректно указан этаж",
	"WRONG_AREA":                    "Некорректно указана площадь",
	"MISSING_CONTACT":               "Не указан контактный телефон",
	"STALE_OFFER":                   "Объявление устарело и снято с публикации",
	"QUOTA_EXCEEDED":                "Превышена квота размещений",
	"PAID_PLACEMENT_REQUIRED":       "Требуется платное размещение",
	"INVALID_BUILDING_INFO":         "Некорректные данные о доме",
	"CADASTRAL_NUMBER_NOT_VERIFIED": "Кадастровый номер не прошел проверку",
}

// LookupYandexError — тотальная функция поиска: всегда возвращает фразу,
// для неизвестного кода — общий fallback. Отсутствующий ключ не может
// привести к ошибке.
func LookupYandexError(code string) string {
	if phrase, ok := yandexErrorPhrases[code]; ok {
		return phrase
	}
	return YandexUnknownErrorPhrase
}
