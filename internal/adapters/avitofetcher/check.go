package avitofetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"
)

// Структуры ответов API Авито
type lookupResponse struct {
	Items []lookupItem `json:"items"`
}

type lookupItem struct {
	AvitoID int64 `json:"avito_id"`
}

type itemStatusResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

type statsRequest struct {
	DateFrom       string   `json:"dateFrom"`
	DateTo         string   `json:"dateTo"`
	Fields         []string `json:"fields"`
	ItemIDs        []int64  `json:"itemIds"`
	PeriodGrouping string   `json:"periodGrouping"`
}

type statsResponse struct {
	Result struct {
		Items []struct {
			Stats []statsEntry `json:"stats"`
		} `json:"items"`
	} `json:"result"`
}

type statsEntry struct {
	UniqViews     *int `json:"uniqViews"`
	UniqContacts  *int `json:"uniqContacts"`
	UniqFavorites *int `json:"uniqFavorites"`
}

// Check выполняет цепочку: токен -> поиск avito_id -> статистика -> статус.
// Каждый шаг обрывает цепочку при отказе; нерешенный поиск дает NotFound,
// а не ошибку раунда.
func (a *AvitoFetcherAdapter) Check(ctx context.Context, id domain.ListingID) ([]domain.Verdict, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoFetcherAdapter(Check)"})

	itemID, found, err := a.resolveItemID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		logger.Info("Listing not resolved on avito", port.Fields{"listing_id": id.String()})
		return []domain.Verdict{{Platform: domain.PlatformAvito, Kind: domain.VerdictNotFound}}, nil
	}

	// Статистика опциональна: пустой или отвалившийся ответ не ломает проверку
	stats := a.fetchStats(ctx, itemID)

	status, body, err := a.authedRequest(ctx, http.MethodGet, fmt.Sprintf("%s/%s/items/%d/", a.itemURL, a.companyID, itemID), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("avito adapter: item status endpoint returned %d", status)
	}

	var item itemStatusResponse
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("avito adapter: failed to unmarshal item status: %w", err)
	}

	if item.Status != "active" {
		logger.Info("Avito listing is not active", port.Fields{"listing_id": id.String(), "status": item.Status})
		return []domain.Verdict{{Platform: domain.PlatformAvito, Kind: domain.VerdictNotFound}}, nil
	}

	return []domain.Verdict{{
		Platform: domain.PlatformAvito,
		Kind:     domain.VerdictFound,
		URL:      item.URL,
		Stats:    stats,
	}}, nil
}

// resolveItemID ищет внутренний avito_id по номеру листинга.
// Пустая выдача и не-200 — не фатальны: логируем и отдаем "не найдено".
// Отказы авторизации сюда не доходят, их отсекает authedRequest.
func (a *AvitoFetcherAdapter) resolveItemID(ctx context.Context, id domain.ListingID) (int64, bool, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoFetcherAdapter(resolveItemID)"})

	lookupURL := a.lookupURL + "?query=" + url.QueryEscape(id.String())
	status, body, err := a.authedRequest(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return 0, false, err
	}
	if status != http.StatusOK {
		logger.Warn("Avito lookup returned non-200", port.Fields{"status": status, "listing_id": id.String()})
		return 0, false, nil
	}

	var data lookupResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Warn("Failed to unmarshal avito lookup response", port.Fields{"error": err.Error()})
		return 0, false, nil
	}
	if len(data.Items) == 0 {
		return 0, false, nil
	}

	return data.Items[0].AvitoID, true, nil
}

// fetchStats запрашивает статистику за скользящие 30 дней.
// Любой отказ здесь деградирует до nil-метрик.
func (a *AvitoFetcherAdapter) fetchStats(ctx context.Context, itemID int64) *domain.ListingStats {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoFetcherAdapter(fetchStats)"})

	now := time.Now()
	reqBody := statsRequest{
		DateFrom:       now.Add(-constants.AvitoStatsWindow).Format("2006-01-02"),
		DateTo:         now.Format("2006-01-02"),
		Fields:         []string{"uniqViews", "uniqContacts", "uniqFavorites"},
		ItemIDs:        []int64{itemID},
		PeriodGrouping: "month",
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		logger.Warn("Failed to marshal stats request", port.Fields{"error": err.Error()})
		return nil
	}

	status, body, err := a.authedRequest(ctx, http.MethodPost, fmt.Sprintf("%s/%s/items", a.statsURL, a.companyID), jsonBody)
	if err != nil {
		logger.Warn("Avito stats request failed", port.Fields{"error": err.Error()})
		return nil
	}
	if status != http.StatusOK {
		logger.Warn("Avito stats endpoint returned non-200", port.Fields{"status": status})
		return nil
	}

	var data statsResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Warn("Failed to unmarshal avito stats", port.Fields{"error": err.Error()})
		return nil
	}
	if len(data.Result.Items) == 0 || len(data.Result.Items[0].Stats) == 0 {
		return nil
	}

	// Помесячная группировка может дать несколько записей в окне - суммируем
	stats := &domain.ListingStats{}
	for _, entry := range data.Result.Items[0].Stats {
		addMetric(&stats.UniqViews, entry.UniqViews)
		addMetric(&stats.UniqContacts, entry.UniqContacts)
		addMetric(&stats.UniqFavorites, entry.UniqFavorites)
	}
	return stats
}

func addMetric(dst **int, src *int) {
	if src == nil {
		return
	}
	if *dst == nil {
		v := *src
		*dst = &v
		return
	}
	**dst += *src
}
