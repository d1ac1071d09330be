package yandexfetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlBOsipov/arka-bot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) *YandexFetcherAdapter {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := NewYandexFetcherAdapter(server.URL+"/2.0/crm/offers", "oauth-token", "vertis-token", "feed-1")
	require.NoError(t, err)
	return adapter
}

func emptyPage(total int) string {
	return fmt.Sprintf(`{"listing":{"snippets":[],"slicing":{"total":%d}}}`, total)
}

// total=250 при размере страницы 100: ровно три запроса (offset "", 100, 200)
func TestCheck_PaginationWalksExactlyThreePages(t *testing.T) {
	var offsets []string

	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "OAuth oauth-token", r.Header.Get("Authorization"))
		assert.Equal(t, "Vertis vertis-token", r.Header.Get("X-Authorization"))
		assert.Equal(t, "feed-1", r.URL.Query().Get("feedId"))

		offsets = append(offsets, r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(emptyPage(250)))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)

	assert.Equal(t, []string{"", "100", "200"}, offsets)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotFound, verdicts[0].Kind)
}

func TestCheck_MatchOnSecondPageIsReported(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") == "100" {
			_, _ = w.Write([]byte(`{"listing":{"snippets":[
				{"offer":{"internalId":"12345","url":"https://realty.yandex.ru/offer/1"}}
			],"slicing":{"total":250}}}`))
			return
		}
		_, _ = w.Write([]byte(emptyPage(250)))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictFound, verdicts[0].Kind)
	assert.Equal(t, "https://realty.yandex.ru/offer/1", verdicts[0].URL)
}

func TestCheck_StateErrorsMapThroughVocabulary(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"listing":{"snippets":[
			{"offer":{"internalId":"12345","url":"https://realty.yandex.ru/offer/1",
				"state":{"errors":[{"type":"WRONG_PRICE"},{"type":"TOTALLY_NEW_CODE"}]}}}
		],"slicing":{"total":1}}}`))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotPublished, verdicts[0].Kind)
	// Известный код отображается фразой словаря, неизвестный - общим fallback
	assert.Equal(t, []string{"Некорректная цена в объявлении", "Неизвестная ошибка"}, verdicts[0].Reasons)
}

func TestCheck_OfferWithEmptyStateIsFound(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"listing":{"snippets":[
			{"offer":{"internalId":"12345","url":"https://realty.yandex.ru/offer/1","state":{"errors":[]}}}
		],"slicing":{"total":1}}}`))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictFound, verdicts[0].Kind)
}

// NotFound отдается один раз после полного обхода, а не на каждой странице
func TestCheck_NoMatchAcrossAllPagesYieldsSingleNotFound(t *testing.T) {
	var requests int

	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(emptyPage(150)))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotFound, verdicts[0].Kind)
}

// Отвалившаяся промежуточная страница считается пустой, обход продолжается
func TestCheck_FailedMiddlePageDoesNotStopTheWalk(t *testing.T) {
	var offsets []string

	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		offsets = append(offsets, offset)
		if offset == "100" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		if offset == "200" {
			_, _ = w.Write([]byte(`{"listing":{"snippets":[
				{"offer":{"internalId":"12345","url":"https://realty.yandex.ru/offer/2"}}
			],"slicing":{"total":0}}}`))
			return
		}
		_, _ = w.Write([]byte(emptyPage(250)))
	})

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	assert.Equal(t, []string{"", "100", "200"}, offsets)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictFound, verdicts[0].Kind)
}

func TestCheck_FirstPageFailureIsAnError(t *testing.T) {
	adapter := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	assert.Error(t, err)
}
