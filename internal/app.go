package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/AlBOsipov/arka-bot/internal/adapters/avitofetcher"
	"github.com/AlBOsipov/arka-bot/internal/adapters/cianfetcher"
	"github.com/AlBOsipov/arka-bot/internal/adapters/domclickfetcher"
	"github.com/AlBOsipov/arka-bot/internal/adapters/httpserver"
	logger_adapter "github.com/AlBOsipov/arka-bot/internal/adapters/logger"
	"github.com/AlBOsipov/arka-bot/internal/adapters/telegram"
	"github.com/AlBOsipov/arka-bot/internal/adapters/yandexfetcher"
	"github.com/AlBOsipov/arka-bot/internal/configs"
	"github.com/AlBOsipov/arka-bot/internal/constants"
	"github.com/AlBOsipov/arka-bot/internal/core/port"
	"github.com/AlBOsipov/arka-bot/internal/core/usecase"
	fluentlogger "github.com/AlBOsipov/arka-bot/pkg/fluent_logger"

	"github.com/fluent/fluent-logger-golang/fluent"
)

// App – структура приложения
type App struct {
	config       *configs.AppConfig
	fluentClient *fluent.Fluent
	logger       port.LoggerPort

	// Входящие порты (слушатели событий)
	botListener  port.EventListenerPort
	healthServer port.EventListenerPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. ИСХОДЯЩИЕ АДАПТЕРЫ: ПЛОЩАДКИ ---
	tokenProvider, err := avitofetcher.NewAvitoTokenProvider(
		constants.AvitoTokenURL,
		appConfig.Avito.ClientID,
		appConfig.Avito.ClientSecret,
	)
	if err != nil {
		appLogger.Error("Failed to create Avito Token Provider", err, nil)
		return nil, fmt.Errorf("failed to initialize avito token provider: %w", err)
	}

	avitoAdapter, err := avitofetcher.NewAvitoFetcherAdapter(
		tokenProvider,
		constants.AvitoLookupURL,
		constants.AvitoItemURL,
		constants.AvitoStatsURL,
		appConfig.Avito.CompanyID,
	)
	if err != nil {
		appLogger.Error("Failed to create Avito Fetcher Adapter", err, nil)
		return nil, fmt.Errorf("failed to initialize avito fetcher: %w", err)
	}

	cianAdapter, err := cianfetcher.NewCianFetcherAdapter(constants.CianFeedURL, appConfig.Cian.Token)
	if err != nil {
		appLogger.Error("Failed to create Cian Fetcher Adapter", err, nil)
		return nil, fmt.Errorf("failed to initialize cian fetcher: %w", err)
	}

	yandexAdapter, err := yandexfetcher.NewYandexFetcherAdapter(
		constants.YandexFeedURL,
		appConfig.Yandex.Token,
		appConfig.Yandex.XToken,
		appConfig.Yandex.FeedID,
	)
	if err != nil {
		appLogger.Error("Failed to create Yandex Fetcher Adapter", err, nil)
		return nil, fmt.Errorf("failed to initialize yandex fetcher: %w", err)
	}

	domclickAdapter, err := domclickfetcher.NewDomclickFetcherAdapter(
		constants.DomclickBaseURL,
		appConfig.Domclick.Token,
		appConfig.Domclick.CompanyID,
	)
	if err != nil {
		appLogger.Error("Failed to create Domclick Fetcher Adapter", err, nil)
		return nil, fmt.Errorf("failed to initialize domclick fetcher: %w", err)
	}
	appLogger.Info("All source adapters initialized.", nil)

	// --- 4. ЧАТ-ТРАНСПОРТ И ЯДРО ---
	botAdapter, err := telegram.NewBotAdapter(appConfig.Telegram.Token, baseLogger)
	if err != nil {
		appLogger.Error("Failed to create Telegram Bot Adapter", err, nil)
		return nil, fmt.Errorf("failed to initialize telegram adapter: %w", err)
	}

	// Порядок опроса фиксирован: CIAN, Яндекс, Авито, ДомКлик
	checkListingUseCase := usecase.NewCheckListingUseCase(
		botAdapter,
		cianAdapter,
		yandexAdapter,
		avitoAdapter,
		domclickAdapter,
	)
	botAdapter.SetCheckUseCase(checkListingUseCase)
	appLogger.Info("Check listing use case initialized.", nil)

	// --- 5. HEALTH-СЕРВЕР (опционально) ---
	var healthServer port.EventListenerPort
	if appConfig.Health.Addr != "" {
		healthServer, err = httpserver.NewHealthServer(appConfig.Health.Addr, appConfig.AppName, baseLogger)
		if err != nil {
			appLogger.Error("Failed to create health server", err, nil)
			return nil, err
		}
	}

	return &App{
		config:       appConfig,
		fluentClient: fluentClient,
		logger:       appLogger,
		botListener:  botAdapter,
		healthServer: healthServer,
	}, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.botListener != nil {
			if err := a.botListener.Close(); err != nil {
				a.logger.Error("Error closing telegram listener", err, nil)
			}
		}
		if a.healthServer != nil {
			if err := a.healthServer.Close(); err != nil {
				a.logger.Error("Error closing health server", err, nil)
			}
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			a.logger.Info("Closing Fluent Bit connection...", nil)
			if err := a.fluentClient.Close(); err != nil {
				log.Printf("App: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	consumerErrors := make(chan error, 2)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			consumerErrors <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	wg.Add(1)
	go startListener("Telegram Listener", a.botListener)

	if a.healthServer != nil {
		wg.Add(1)
		go startListener("Health Server", a.healthServer)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or listener error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-consumerErrors:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down", nil)
	}

	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
