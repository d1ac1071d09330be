package cianfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// CianFetcherAdapter отвечает за взаимодействие с API CIAN:
// один GET с фильтром externalId, без состояния.
type CianFetcherAdapter struct {
	collector *colly.Collector
	feedURL   string
	token     string
}

// NewCianFetcherAdapter - конструктор. feedURL переопределяется в тестах.
func NewCianFetcherAdapter(feedURL, token string) (*CianFetcherAdapter, error) {
	if token == "" {
		return nil, fmt.Errorf("cian adapter: token is required")
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(constants.RequestTimeout)

	return &CianFetcherAdapter{
		collector: c,
		feedURL:   feedURL,
		token:     token,
	}, nil
}

func (a *CianFetcherAdapter) Platform() domain.Platform { return domain.PlatformCian }

// Структуры ответа CIAN. Указатели, чтобы отличать отсутствующие
// узлы result/offers от пустой выдачи.
type feedResponse struct {
	Result *feedResult `json:"result"`
}

type feedResult struct {
	Offers *[]feedOffer `json:"offers"`
}

type feedOffer struct {
	ExternalID string          `json:"externalId"`
	Status     string          `json:"status"`
	URL        string          `json:"url"`
	Errors     json.RawMessage `json:"errors"`
}

// Check запрашивает выдачу по externalId и сканирует все офферы:
// фильтр на стороне площадки рекомендательный, точное совпадение проверяем сами.
func (a *CianFetcherAdapter) Check(ctx context.Context, id domain.ListingID) ([]domain.Verdict, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "CianFetcherAdapter(Check)"})

	collector := a.collector.Clone()

	var status int
	var body []byte
	var transportErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Authorization", "Bearer "+a.token)
		logger.Debug("Making request to cian", port.Fields{"url": r.URL.String()})
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		if status == 0 {
			transportErr = err
		}
	})

	targetURL := a.feedURL + "?externalId=" + url.QueryEscape(id.String())
	visitErr := collector.Visit(targetURL)
	collector.Wait()

	// Не-2xx приходит как ошибка Visit, статус уже снят в OnError
	if visitErr != nil && status == 0 {
		return nil, fmt.Errorf("cian adapter: failed to visit %s: %w", targetURL, visitErr)
	}
	if transportErr != nil {
		return nil, fmt.Errorf("cian adapter: request failed: %w", transportErr)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("cian adapter: feed endpoint returned %d", status)
	}

	var data feedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("cian adapter: failed to unmarshal feed response: %w", err)
	}
	if data.Result == nil || data.Result.Offers == nil {
		return nil, fmt.Errorf("cian adapter: response lacks result.offers collection")
	}

	var verdicts []domain.Verdict
	for _, offer := range *data.Result.Offers {
		if offer.ExternalID != id.String() {
			continue
		}

		if offer.Status == "Published" {
			verdicts = append(verdicts, domain.Verdict{
				Platform: domain.PlatformCian,
				Kind:     domain.VerdictFound,
				URL:      offer.URL,
			})
			continue
		}

		verdicts = append(verdicts, domain.Verdict{
			Platform: domain.PlatformCian,
			Kind:     domain.VerdictNotPublished,
			Reasons:  []string{renderOfferErrors(offer.Errors)},
		})
	}

	if len(verdicts) == 0 {
		logger.Info("Listing not found on cian", port.Fields{"listing_id": id.String()})
		return []domain.Verdict{{Platform: domain.PlatformCian, Kind: domain.VerdictNotFound}}, nil
	}
	return verdicts, nil
}

// renderOfferErrors отдает поле errors как есть: строка - без кавычек,
// любой другой JSON - сырым текстом, отсутствие поля - общей фразой
func renderOfferErrors(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return "Неизвестная ошибка."
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}
	return string(raw)
}
