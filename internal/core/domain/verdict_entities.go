package domain

import (
	"fmt"
	"regexp"
)

// Platform — одна из четырех внешних площадок, на которых размещаются объявления
type Platform string

const (
	PlatformAvito    Platform = "avito"
	PlatformCian     Platform = "cian"
	PlatformYandex   Platform = "yandex"
	PlatformDomclick Platform = "domclick"
)

// VerdictKind — нормализованный исход проверки площадки
type VerdictKind string

const (
	// Объявление найдено и публикуется
	VerdictFound VerdictKind = "found"
	// Объявление найдено, но не публикуется (есть причины/ошибки)
	VerdictNotPublished VerdictKind = "not_published"
	// Объявление на площадке не найдено
	VerdictNotFound VerdictKind = "not_found"
	// Публикуется, но скидка отклонена (только ДомКлик)
	VerdictDiscountRejected VerdictKind = "discount_rejected"
	// Площадка не смогла дать ответ (сетевая ошибка, не-200, битый ответ)
	VerdictSourceError VerdictKind = "source_error"
)

// ListingStats — статистика объявления за скользящее окно в 30 дней.
// Заполняется только адаптером Авито. Указатели, потому что площадка
// может не вернуть статистику вовсе.
type ListingStats struct {
	UniqViews     *int
	UniqContacts  *int
	UniqFavorites *int
}

// Verdict представляет результат проверки одной площадки для одного листинга.
// Живет только в рамках одного раунда агрегации, никуда не сохраняется.
type Verdict struct {
	Platform Platform
	Kind     VerdictKind

	// URL публикации (для Found)
	URL string
	// Причины непубликации (для NotPublished), уже переведенные в человеческие фразы
	Reasons []string
	// Статистика (только Авито, может быть nil)
	Stats *ListingStats
	// Диагностика для SourceError (код статуса и т.п.)
	Diagnostic string
}

// ListingID — номер листинга, введенный пользователем: ровно 5 ASCII-цифр.
type ListingID string

var listingIDPattern = regexp.MustCompile(`^[0-9]{5}$`)

// ParseListingID проверяет форму идентификатора до любых сетевых вызовов
func ParseListingID(raw string) (ListingID, error) {
	if !listingIDPattern.MatchString(raw) {
		return "", fmt.Errorf("listing id must be exactly 5 digits, got %q", raw)
	}
	return ListingID(raw), nil
}

func (id ListingID) String() string { return string(id) }
