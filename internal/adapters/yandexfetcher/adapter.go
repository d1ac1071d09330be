package yandexfetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// YandexFetcherAdapter отвечает за взаимодействие с фидом Яндекс Недвижимости:
// постраничный обход выдачи с двойной авторизацией (OAuth + Vertis).
type YandexFetcherAdapter struct {
	collector *colly.Collector
	feedURL   string
	token     string
	xToken    string
	feedID    string
}

// NewYandexFetcherAdapter - конструктор. feedURL переопределяется в тестах.
func NewYandexFetcherAdapter(feedURL, token, xToken, feedID string) (*YandexFetcherAdapter, error) {
	if token == "" || xToken == "" {
		return nil, fmt.Errorf("yandex adapter: both auth tokens are required")
	}
	if feedID == "" {
		return nil, fmt.Errorf("yandex adapter: feed id is required")
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(constants.RequestTimeout)

	return &YandexFetcherAdapter{
		collector: c,
		feedURL:   feedURL,
		token:     token,
		xToken:    xToken,
		feedID:    feedID,
	}, nil
}

func (a *YandexFetcherAdapter) Platform() domain.Platform { return domain.PlatformYandex }

// Структуры ответа фида
type feedResponse struct {
	Listing feedListing `json:"listing"`
}

type feedListing struct {
	Snippets []feedSnippet `json:"snippets"`
	Slicing  feedSlicing   `json:"slicing"`
}

type feedSlicing struct {
	Total int `json:"total"`
}

type feedSnippet struct {
	Offer feedOffer `json:"offer"`
}

type feedOffer struct {
	InternalID string     `json:"internalId"`
	URL        string     `json:"url"`
	State      *feedState `json:"state"`
}

type feedState struct {
	Errors []feedError `json:"errors"`
}

type feedError struct {
	Type string `json:"type"`
}

// Check обходит выдачу страницами по 100: совпадение может оказаться на
// любой странице, все совпадения отдаются как есть (дубли не схлопываем).
// Общее число результатов читается только с первой страницы; отвалившаяся
// промежуточная страница считается пустой, обход продолжается.
func (a *YandexFetcherAdapter) Check(ctx context.Context, id domain.ListingID) ([]domain.Verdict, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "YandexFetcherAdapter(Check)"})

	var verdicts []domain.Verdict

	// Первая страница запрашивается без явного offset
	page, err := a.fetchPage(ctx, -1)
	if err != nil {
		return nil, err
	}
	total := page.Listing.Slicing.Total
	verdicts = append(verdicts, a.scanSnippets(page.Listing.Snippets, id)...)

	for offset := constants.YandexPageSize; offset < total; offset += constants.YandexPageSize {
		page, err := a.fetchPage(ctx, offset)
		if err != nil {
			// Страница считается пустой, обход идет дальше по известному total
			logger.Warn("Yandex feed page failed, treating as empty", port.Fields{"offset": offset, "error": err.Error()})
			continue
		}
		verdicts = append(verdicts, a.scanSnippets(page.Listing.Snippets, id)...)
	}

	if len(verdicts) == 0 {
		logger.Info("Listing not found on yandex", port.Fields{"listing_id": id.String(), "total": total})
		return []domain.Verdict{{Platform: domain.PlatformYandex, Kind: domain.VerdictNotFound}}, nil
	}
	return verdicts, nil
}

// fetchPage запрашивает одну страницу выдачи. offset < 0 означает первую
// страницу без параметра offset.
func (a *YandexFetcherAdapter) fetchPage(ctx context.Context, offset int) (*feedResponse, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "YandexFetcherAdapter(fetchPage)"})

	collector := a.collector.Clone()

	var status int
	var body []byte
	var transportErr error

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Authorization", "OAuth "+a.token)
		r.Headers.Set("X-Authorization", "Vertis "+a.xToken)
		logger.Debug("Making request to yandex feed", port.Fields{"url": r.URL.String()})
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

	params := url.Values{}
	params.Set("feedId", a.feedID)
	if offset >= 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	targetURL := a.feedURL + "?" + params.Encode()

	visitErr := collector.Visit(targetURL)
	collector.Wait()

	// Не-2xx приходит как ошибка Visit, статус уже снят в OnError
	if visitErr != nil && status == 0 {
		return nil, fmt.Errorf("yandex adapter: failed to visit %s: %w", targetURL, visitErr)
	}
	if transportErr != nil {
		return nil, fmt.Errorf("yandex adapter: request failed: %w", transportErr)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("yandex adapter: feed endpoint returned %d", status)
	}

	var data feedResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("yandex adapter: failed to unmarshal feed page: %w", err)
	}
	return &data, nil
}

// scanSnippets ищет совпадения на одной странице выдачи
func (a *YandexFetcherAdapter) scanSnippets(snippets []feedSnippet, id domain.ListingID) []domain.Verdict {
	var verdicts []domain.Verdict

	for _, snippet := range snippets {
		offer := snippet.Offer
		if offer.InternalID != id.String() {
			continue
		}

		if offer.State == nil || len(offer.State.Errors) == 0 {
			verdicts = append(verdicts, domain.Verdict{
				Platform: domain.PlatformYandex,
				Kind:     domain.VerdictFound,
				URL:      offer.URL,
			})
			continue
		}

		reasons := make([]string, 0, len(offer.State.Errors))
		for _, stateErr := range offer.State.Errors {
			// Тотальный словарь: неизвестный код дает общую фразу
			reasons = append(reasons, constants.LookupYandexError(stateErr.Type))
		}
		verdicts = append(verdicts, domain.Verdict{
			Platform: domain.PlatformYandex,
			Kind:     domain.VerdictNotPublished,
			Reasons:  reasons,
		})
	}

	return verdicts
}
