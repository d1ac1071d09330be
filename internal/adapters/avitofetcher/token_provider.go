package avitofetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/gocolly/colly/v2"
)

// AvitoTokenProvider владеет единственным bearer-токеном Авито.
// Токен живет только в памяти процесса: отсутствует на старте, получается
// при первом обращении, замещается на месте при Invalidate + EnsureToken.
type AvitoTokenProvider struct {
	collector    *colly.Collector
	tokenURL     string
	clientID     string
	clientSecret string

	// Обработка сообщений однопоточная, но read-refresh-write
	// токена все равно под мьютексом
	mu    sync.Mutex
	token string
}

// NewAvitoTokenProvider - конструктор. tokenURL переопределяется в тестах.
func NewAvitoTokenProvider(tokenURL, clientID, clientSecret string) (*AvitoTokenProvider, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("avito token provider: client id and secret are required")
	}

	c := colly.NewCollector(colly.AllowURLRevisit())
	c.SetRequestTimeout(constants.RequestTimeout)

	return &AvitoTokenProvider{
		collector:    c,
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// EnsureToken возвращает закешированный токен или выполняет
// client_credentials обмен против эндпоинта площадки
func (p *AvitoTokenProvider) EnsureToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" {
		return p.token, nil
	}

	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "AvitoTokenProvider"})

	collector := p.collector.Clone()

	var status int
	var body []byte
	var transportErr error

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

	payload := map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     p.clientID,
		"client_secret": p.clientSecret,
	}
	postErr := collector.Post(p.tokenURL, payload)
	collector.Wait()

	// Не-2xx приходит как ошибка Post, статус уже снят в OnError
	if postErr != nil && status == 0 {
		logger.Error("Failed to post token request", postErr, port.Fields{"url": p.tokenURL})
		return "", fmt.Errorf("avito auth unavailable: %w", postErr)
	}
	if transportErr != nil {
		logger.Error("Token exchange transport failure", transportErr, nil)
		return "", fmt.Errorf("avito auth unavailable: %w", transportErr)
	}
	if status != http.StatusOK {
		logger.Error("Token exchange returned non-200", nil, port.Fields{"status": status})
		return "", fmt.Errorf("avito auth unavailable: token endpoint returned %d", status)
	}

	var data tokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		logger.Error("Failed to unmarshal token response", err, nil)
		return "", fmt.Errorf("avito auth unavailable: %w", err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("avito auth unavailable: response has no access_token")
	}

	p.token = data.AccessToken
	logger.Debug("Obtained new avito access token", nil)
	return p.token, nil
}

// Invalidate сбрасывает кеш токена (вызывается при 403 от площадки)
func (p *AvitoTokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
}
