package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlBOsipov/arka-bot/internal/contextkeys"
	"github.com/AlBOsipov/arka-bot/internal/core/domain"
	"github.com/AlBOsipov/arka-bot/internal/core/port"

	"github.com/google/uuid"
)

// CheckListingUseCase — ядро агрегатора: валидация идентификатора,
// опрос всех площадок в фиксированном порядке и отправка вердиктов в чат.
// Отказ одной площадки никогда не мешает остальным отчитаться.
type CheckListingUseCase struct {
	// Порядок детерминирован для воспроизводимых стенограмм: CIAN, Яндекс, Авито, ДомКлик
	checkers  []port.SourceCheckerPort
	messenger port.MessengerPort
}

// NewCheckListingUseCase создает новый экземпляр use case
func NewCheckListingUseCase(messenger port.MessengerPort, checkers ...port.SourceCheckerPort) *CheckListingUseCase {
	return &CheckListingUseCase{
		checkers:  checkers,
		messenger: messenger,
	}
}

// Execute выполняет один раунд агрегации для одного сообщения пользователя
func (uc *CheckListingUseCase) Execute(ctx context.Context, chatID int64, rawInput string, roundID uuid.UUID) error {
	baseLogger := contextkeys.LoggerFromContext(ctx)
	ucLogger := baseLogger.WithFields(port.Fields{
		"use_case": "CheckListing",
		"round_id": roundID.String(),
	})

	id, err := domain.ParseListingID(strings.TrimSpace(rawInput))
	if err != nil {
		// Испорченный ввод исправляет пользователь: одно сообщение, ноль сетевых вызовов
		ucLogger.Info("Rejected malformed listing id", port.Fields{"input": rawInput})
		uc.send(ctx, chatID, InvalidInputMessage, ucLogger)
		return nil
	}

	ucLogger.Info("Starting aggregation round", port.Fields{"listing_id": id.String()})

	for _, checker := range uc.checkers {
		verdicts := uc.safeCheck(ctx, checker, id, ucLogger)
		for _, verdict := range verdicts {
			uc.send(ctx, chatID, FormatVerdict(verdict), ucLogger)
		}
	}

	ucLogger.Info("Aggregation round finished", port.Fields{"listing_id": id.String()})
	return nil
}

// safeCheck — граница отказа вокруг одного адаптера: паника или ошибка
// логируется с тегом площадки и превращается в вердикт SourceError,
// чтобы каждая площадка давала хотя бы один вердикт за раунд.
func (uc *CheckListingUseCase) safeCheck(ctx context.Context, checker port.SourceCheckerPort, id domain.ListingID, logger port.LoggerPort) (verdicts []domain.Verdict) {
	platform := checker.Platform()
	checkLogger := logger.WithFields(port.Fields{"platform": string(platform)})

	defer func() {
		if r := recover(); r != nil {
			checkLogger.Error("Source checker panicked", fmt.Errorf("%v", r), nil)
			verdicts = []domain.Verdict{{Platform: platform, Kind: domain.VerdictSourceError, Diagnostic: fmt.Sprintf("%v", r)}}
		}
	}()

	vs, err := checker.Check(ctx, id)
	if err != nil {
		checkLogger.Error("Source checker failed", err, nil)
		return []domain.Verdict{{Platform: platform, Kind: domain.VerdictSourceError, Diagnostic: err.Error()}}
	}
	if len(vs) == 0 {
		// Адаптеры так делать не должны, но пустой ответ не оставляем без вердикта
		checkLogger.Warn("Source checker returned no verdicts", nil)
		return []domain.Verdict{{Platform: platform, Kind: domain.VerdictNotFound}}
	}
	return vs
}

// send отправляет текст пользователю; отказ доставки — забота транспорта,
// здесь только лог
func (uc *CheckListingUseCase) send(ctx context.Context, chatID int64, text string, logger port.LoggerPort) {
	if err := uc.messenger.SendMessage(ctx, chatID, text); err != nil {
		logger.Error("Failed to send message", err, port.Fields{"chat_id": chatID})
	}
}
