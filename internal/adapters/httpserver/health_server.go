package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// HealthServer — небольшой HTTP-сервер для проверок живости в контейнере
type HealthServer struct {
	server *http.Server
	logger port.LoggerPort
}

func NewHealthServer(addr, appName string, logger port.LoggerPort) (*HealthServer, error) {
	if addr == "" {
		return nil, fmt.Errorf("health server: addr is required")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"service": appName,
		})
	})

	return &HealthServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger.WithFields(port.Fields{"component": "HealthServer"}),
	}, nil
}

// Start блокируется до остановки сервера или отмены контекста
func (s *HealthServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Health server listening", port.Fields{"addr": s.server.Addr})
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *HealthServer) Close() error {
	return s.server.Close()
}
