package avitofetcher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// AvitoFetcherAdapter отвечает за все взаимодействия с API Авито:
// поиск объявления по листингу, статистика за 30 дней, статус публикации.
// Все вызовы авторизуются через TokenProviderPort.
type AvitoFetcherAdapter struct {
	// родительский коллектор, клонируется на каждый запрос
	collector *colly.Collector
	tokens    port.TokenProviderPort

	lookupURL string
	itemURL   string
	statsURL  string
	companyID string
}

// NewAvitoFetcherAdapter - конструктор. Базовые URL переопределяются в тестах.
func NewAvitoFetcherAdapter(tokens port.TokenProviderPort, lookupURL, itemBaseURL, statsBaseURL, companyID string) (*AvitoFetcherAdapter, error) {
	if tokens == nil {
		return nil, fmt.Errorf("avito adapter: token provider is required")
	}
	if companyID == "" {
		return nil, fmt.Errorf("avito adapter: company id is required")
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(constants.RequestTimeout)

	return &AvitoFetcherAdapter{
		collector: c,
		tokens:    tokens,
		lookupURL: lookupURL,
		itemURL:   itemBaseURL,
		statsURL:  statsBaseURL,
		companyID: companyID,
	}, nil
}

func (a *AvitoFetcherAdapter) Platform() domain.Platform { return domain.PlatformAvito }

// rawRequest выполняет один авторизованный запрос через клон коллектора.
// Возвращает статус и тело; transport-ошибки (таймаут и т.п.) — как error.
func (a *AvitoFetcherAdapter) rawRequest(ctx context.Context, method, targetURL, token string, jsonBody []byte) (int, []byte, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoFetcherAdapter"})

	collector := a.collector.Clone()

	var status int
	var body []byte
	var transportErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Authorization", "Bearer "+token)
		if method == http.MethodPost {
			r.Headers.Set("Content-Type", "application/json")
		}
		logger.Debug("Making request to avito", port.Fields{"url": r.URL.String(), "method": method})
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			body = r.Body
		}
		if status == 0 {
			transportErr = err
		}
	})

	var visitErr error
	if method == http.MethodPost {
		visitErr = collector.PostRaw(targetURL, jsonBody)
	} else {
		visitErr = collector.Visit(targetURL)
	}
	collector.Wait()

	// colly отдает не-2xx как ошибку Visit; статус при этом уже снят в OnError,
	// так что ошибкой транспорта считаем только вызов без статуса
	if visitErr != nil && status == 0 {
		return 0, nil, fmt.Errorf("avito adapter: failed to visit %s: %w", targetURL, visitErr)
	}
	if transportErr != nil {
		return 0, nil, fmt.Errorf("avito adapter: request to %s failed: %w", targetURL, transportErr)
	}
	return status, body, nil
}

// authedRequest оборачивает rawRequest политикой обновления токена:
// на 403 кеш инвалидируется и выполняется ровно один повтор.
// Второй подряд 403 означает битые учетные данные и фатален для вызова:
// такой отказ не должен маскироваться под "объявление не найдено".
func (a *AvitoFetcherAdapter) authedRequest(ctx context.Context, method, targetURL string, jsonBody []byte) (int, []byte, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoFetcherAdapter"})

	for attempt := 0; ; attempt++ {
		token, err := a.tokens.EnsureToken(ctx)
		if err != nil {
			return 0, nil, err
		}

		status, body, err := a.rawRequest(ctx, method, targetURL, token, jsonBody)
		if err != nil {
			return status, nil, err
		}

		if status == http.StatusForbidden {
			if attempt == 0 {
				logger.Warn("Avito returned 403, refreshing token and retrying once", port.Fields{"url": targetURL})
				a.tokens.Invalidate()
				continue
			}
			return 0, nil, fmt.Errorf("avito adapter: authorization rejected twice for %s", targetURL)
		}

		return status, body, nil
	}
}
