package usecase

import (
	"fmt"
	"strings"

	"github.com/AlBOsipov/arka-bot/internal/core/domain"
)

const (
	GreenCheckmark = "✅"
	RedCross       = "❌"
	WarningSign    = "⚠️"
)

// GreetingMessage отправляется в ответ на команду /start
const GreetingMessage = "Введите номер листинга."

// InvalidInputMessage отправляется при испорченном идентификаторе
const InvalidInputMessage = "Введите ровно 5 цифр листинга."

// platformTitles — отображаемые имена площадок в сообщениях пользователю
var platformTitles = map[domain.Platform]string{
	domain.PlatformAvito:    "Avito",
	domain.PlatformCian:     "CIAN",
	domain.PlatformYandex:   "Яндекс",
	domain.PlatformDomclick: "ДомКлик",
}

// FormatVerdict превращает нормализованный вердикт в текст для пользователя.
// Формулировки для каждой площадки сохранены в привычном операторам виде.
func FormatVerdict(v domain.Verdict) string {
	title := platformTitles[v.Platform]

	switch v.Kind {
	case domain.VerdictFound:
		msg := fmt.Sprintf("%s Ваше объявление на %s успешно публикуется: %s", GreenCheckmark, title, v.URL)
		if v.Stats != nil {
			msg += "\nСтатистика за 30 дней: " + formatStats(v.Stats)
		}
		return msg

	case domain.VerdictNotPublished:
		if v.Platform == domain.PlatformCian {
			return fmt.Sprintf("%s Есть ошибка на CIAN: %s", RedCross, strings.Join(v.Reasons, "; "))
		}
		return fmt.Sprintf("%s Объект не публикуется на %s! Причина: %s", RedCross, title, strings.Join(v.Reasons, "; "))

	case domain.VerdictNotFound:
		return fmt.Sprintf("%s Объявление на %s не найдено.", RedCross, title)

	case domain.VerdictDiscountRejected:
		return fmt.Sprintf("ВНИМАНИЕ! Объект публикуется на ДомКлик, но нет скидки! \nПричина: %s", strings.Join(v.Reasons, "; "))

	case domain.VerdictSourceError:
		if v.Platform == domain.PlatformDomclick {
			return fmt.Sprintf("Системная ошибка на стороне ДомКлик. Держите код: %s Он врядли вам что-то скажет, но пусть будет.", v.Diagnostic)
		}
		return fmt.Sprintf("%s Не удалось проверить %s: ошибка на стороне площадки.", WarningSign, title)
	}

	return fmt.Sprintf("%s Не удалось проверить %s.", WarningSign, title)
}

// formatStats печатает тройку метрик, пропуская отсутствующие
func formatStats(stats *domain.ListingStats) string {
	parts := make([]string, 0, 3)
	if stats.UniqViews != nil {
		parts = append(parts, fmt.Sprintf("просмотры %d", *stats.UniqViews))
	}
	if stats.UniqContacts != nil {
		parts = append(parts, fmt.Sprintf("контакты %d", *stats.UniqContacts))
	}
	if stats.UniqFavorites != nil {
		parts = append(parts, fmt.Sprintf("в избранном %d", *stats.UniqFavorites))
	}
	if len(parts) == 0 {
		return "нет данных"
	}
	return strings.Join(parts, ", ")
}
