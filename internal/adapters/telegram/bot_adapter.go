package telegram

import (
	"context"
	"fmt"

	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/port"
	usecases_port "github.com/AlBOsipov/arka-bot/internal/core/port/usecases"
	"github.com/AlBOsipov/arka-bot/internal/core/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// BotAdapter — входящий и исходящий чат-транспорт в одном лице:
// long-polling слушатель апдейтов (EventListenerPort) и отправка
// сообщений пользователю (MessengerPort).
type BotAdapter struct {
	bot     *tgbotapi.BotAPI
	checkUC usecases_port.CheckListingPort
	logger  port.LoggerPort
}

// NewBotAdapter - конструктор. Use case привязывается отдельно через
// SetCheckUseCase: ядру нужен мессенджер, а мессенджер и есть этот адаптер.
func NewBotAdapter(token string, logger port.LoggerPort) (*BotAdapter, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram adapter: failed to create bot api client: %w", err)
	}

	return &BotAdapter{
		bot:    bot,
		logger: logger.WithFields(port.Fields{"component": "TelegramBotAdapter"}),
	}, nil
}

// SetCheckUseCase привязывает ядро к слушателю. Должен быть вызван до Start.
func (a *BotAdapter) SetCheckUseCase(uc usecases_port.CheckListingPort) {
	a.checkUC = uc
}

// Start запускает long-polling цикл. Сообщения обрабатываются строго
// по одному: следующий апдейт берется только после завершения раунда.
func (a *BotAdapter) Start(ctx context.Context) error {
	if a.checkUC == nil {
		return fmt.Errorf("telegram adapter: check use case is not bound")
	}

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30

	updates := a.bot.GetUpdatesChan(updateCfg)
	a.logger.Info("Telegram long-polling started", port.Fields{"bot_username": a.bot.Self.UserName})

	for {
		select {
		case <-ctx.Done():
			a.bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			a.handleUpdate(ctx, update)
		}
	}
}

func (a *BotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	roundID := uuid.New()

	msgLogger := a.logger.WithFields(port.Fields{
		"trace_id": roundID.String(),
		"chat_id":  chatID,
	})
	msgCtx := contextkeys.ContextWithLogger(ctx, msgLogger)
	msgCtx = contextkeys.ContextWithTraceID(msgCtx, roundID.String())

	if update.Message.IsCommand() {
		// Две логические команды: приветствие и все остальное
		if update.Message.Command() == "start" {
			if err := a.SendMessage(msgCtx, chatID, usecase.GreetingMessage); err != nil {
				msgLogger.Error("Failed to send greeting", err, nil)
			}
		}
		return
	}

	msgLogger.Info("Received listing check request", nil)

	if err := a.checkUC.Execute(msgCtx, chatID, update.Message.Text, roundID); err != nil {
		msgLogger.Error("Check listing use case failed", err, nil)
	}
}

// SendMessage реализует MessengerPort
func (a *BotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if _, err := a.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("telegram adapter: failed to send message: %w", err)
	}
	// Компонентный логгер не знает про раунд, идентификатор берем из контекста
	a.logger.Debug("Message delivered", port.Fields{
		"chat_id":  chatID,
		"trace_id": contextkeys.TraceIDFromContext(ctx),
	})
	return nil
}

func (a *BotAdapter) Close() error {
	a.bot.StopReceivingUpdates()
	return nil
}
