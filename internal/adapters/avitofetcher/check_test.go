package avitofetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AlBOsipov/arka-bot/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// avitoStub поднимает один httptest-сервер со всеми эндпоинтами Авито
type avitoStub struct {
	exchanges    int
	itemRequests int

	// переопределяемые обработчики отдельных эндпоинтов
	lookupHandler func(w http.ResponseWriter, r *http.Request)
	statsHandler  func(w http.ResponseWriter, r *http.Request)
	itemHandler   func(w http.ResponseWriter, r *http.Request)
}

func (s *avitoStub) start(t *testing.T) *AvitoFetcherAdapter {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token/", func(w http.ResponseWriter, r *http.Request) {
		s.exchanges++
		if s.exchanges == 1 {
			_, _ = w.Write([]byte(`{"access_token":"tok-1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"tok-2"}`))
	})
	mux.HandleFunc("/autoload/v2/items/avito_ids", func(w http.ResponseWriter, r *http.Request) {
		if s.lookupHandler != nil {
			s.lookupHandler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"items":[{"avito_id":777}]}`))
	})
	mux.HandleFunc("/stats/v1/accounts/238/items", func(w http.ResponseWriter, r *http.Request) {
		if s.statsHandler != nil {
			s.statsHandler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"items":[{"stats":[
			{"uniqViews":100,"uniqContacts":5,"uniqFavorites":10},
			{"uniqViews":20,"uniqContacts":2,"uniqFavorites":5}
		]}]}}`))
	})
	mux.HandleFunc("/core/v1/accounts/238/items/777/", func(w http.ResponseWriter, r *http.Request) {
		s.itemRequests++
		if s.itemHandler != nil {
			s.itemHandler(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"status":"active","url":"https://avito.ru/items/777"}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	provider, err := NewAvitoTokenProvider(server.URL+"/token/", "client-1", "secret-1")
	require.NoError(t, err)

	adapter, err := NewAvitoFetcherAdapter(
		provider,
		server.URL+"/autoload/v2/items/avito_ids",
		server.URL+"/core/v1/accounts",
		server.URL+"/stats/v1/accounts",
		"238",
	)
	require.NoError(t, err)
	return adapter
}

func TestCheck_ActiveListingYieldsFoundWithSummedStats(t *testing.T) {
	stub := &avitoStub{}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)

	verdict := verdicts[0]
	assert.Equal(t, domain.VerdictFound, verdict.Kind)
	assert.Equal(t, "https://avito.ru/items/777", verdict.URL)

	// Помесячные записи окна суммируются
	require.NotNil(t, verdict.Stats)
	require.NotNil(t, verdict.Stats.UniqViews)
	assert.Equal(t, 120, *verdict.Stats.UniqViews)
	assert.Equal(t, 7, *verdict.Stats.UniqContacts)
	assert.Equal(t, 15, *verdict.Stats.UniqFavorites)
}

func TestCheck_UnresolvedListingYieldsNotFound(t *testing.T) {
	stub := &avitoStub{
		lookupHandler: func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "12345", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"items":[]}`))
		},
	}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotFound, verdicts[0].Kind)
	assert.Zero(t, stub.itemRequests, "item status must not be fetched without a resolved id")
}

// Не-200 на поиске не фатален для раунда: логируется и дает NotFound
func TestCheck_LookupNon200YieldsNotFound(t *testing.T) {
	stub := &avitoStub{
		lookupHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotFound, verdicts[0].Kind)
}

// Отвалившаяся статистика деградирует до nil-метрик, не ломая проверку
func TestCheck_StatsFailureIsTolerated(t *testing.T) {
	stub := &avitoStub{
		statsHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		},
	}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictFound, verdicts[0].Kind)
	assert.Nil(t, verdicts[0].Stats)
}

func TestCheck_InactiveListingYieldsNotFound(t *testing.T) {
	stub := &avitoStub{
		itemHandler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"status":"blocked","url":"https://avito.ru/items/777"}`))
		},
	}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictNotFound, verdicts[0].Kind)
}

// 403 вызывает ровно одно обновление токена и один повтор исходного вызова
func TestCheck_ForbiddenTriggersSingleTokenRefresh(t *testing.T) {
	stub := &avitoStub{}
	stub.itemHandler = func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.Header.Get("Authorization"), "tok-1") {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"status":"active","url":"https://avito.ru/items/777"}`))
	}
	adapter := stub.start(t)

	verdicts, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	require.NoError(t, err)
	require.Len(t, verdicts, 1)
	assert.Equal(t, domain.VerdictFound, verdicts[0].Kind)
	assert.Equal(t, 2, stub.exchanges, "exactly one token refresh expected")
	assert.Equal(t, 2, stub.itemRequests, "exactly one retry of the original call expected")
}

// Битые учетные данные на поиске - ошибка адаптера, а не "не найдено"
func TestCheck_PersistentForbiddenOnLookupIsAnError(t *testing.T) {
	stub := &avitoStub{
		lookupHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
	}
	adapter := stub.start(t)

	_, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	assert.Error(t, err)
	assert.Equal(t, 2, stub.exchanges, "exactly one token refresh expected")
	assert.Zero(t, stub.itemRequests, "item status must not be fetched after auth rejection")
}

// Второй подряд 403 фатален для вызова: без бесконечных циклов
func TestCheck_SecondForbiddenIsFatal(t *testing.T) {
	stub := &avitoStub{
		itemHandler: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		},
	}
	adapter := stub.start(t)

	_, err := adapter.Check(context.Background(), domain.ListingID("12345"))
	assert.Error(t, err)
	assert.Equal(t, 2, stub.itemRequests, "forbidden call must be retried exactly once")
}
