package usecase

import (
	"testing"

	"github.com/AlBOsipov/arka-bot/internal/core/domain"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestFormatVerdict_FoundWithStats(t *testing.T) {
	msg := FormatVerdict(domain.Verdict{
		Platform: domain.PlatformAvito,
		Kind:     domain.VerdictFound,
		URL:      "https://avito.ru/items/1",
		Stats: &domain.ListingStats{
			UniqViews:     intPtr(120),
			UniqContacts:  intPtr(7),
			UniqFavorites: intPtr(15),
		},
	})

	assert.Contains(t, msg, "✅")
	assert.Contains(t, msg, "https://avito.ru/items/1")
	assert.Contains(t, msg, "просмотры 120")
	assert.Contains(t, msg, "контакты 7")
	assert.Contains(t, msg, "в избранном 15")
}

func TestFormatVerdict_FoundWithoutStats(t *testing.T) {
	msg := FormatVerdict(domain.Verdict{
		Platform: domain.PlatformCian,
		Kind:     domain.VerdictFound,
		URL:      "https://cian.ru/1",
	})

	assert.Contains(t, msg, "CIAN")
	assert.NotContains(t, msg, "Статистика")
}

func TestFormatVerdict_NotPublishedJoinsReasons(t *testing.T) {
	msg := FormatVerdict(domain.Verdict{
		Platform: domain.PlatformYandex,
		Kind:     domain.VerdictNotPublished,
		Reasons:  []string{"Некорректная цена в объявлении", "Неизвестная ошибка"},
	})

	assert.Contains(t, msg, "❌")
	assert.Contains(t, msg, "Некорректная цена в объявлении; Неизвестная ошибка")
}

func TestFormatVerdict_DiscountRejected(t *testing.T) {
	msg := FormatVerdict(domain.Verdict{
		Platform: domain.PlatformDomclick,
		Kind:     domain.VerdictDiscountRejected,
		URL:      "https://domclick.ru/1",
		Reasons:  []string{"Скидка не согласована банком"},
	})

	assert.Contains(t, msg, "ВНИМАНИЕ")
	assert.Contains(t, msg, "Скидка не согласована банком")
	assert.NotContains(t, msg, "успешно публикуется")
}

func TestFormatVerdict_DomclickSourceErrorCarriesRawStatusCode(t *testing.T) {
	msg := FormatVerdict(domain.Verdict{
		Platform:   domain.PlatformDomclick,
		Kind:       domain.VerdictSourceError,
		Diagnostic: "503",
	})

	assert.Contains(t, msg, "503")
	assert.Contains(t, msg, "Системная ошибка")
}
