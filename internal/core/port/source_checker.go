package port

import (
	"context"

	"github.com/AlBOsipov/arka-bot/internal/core/domain"
)

// SourceCheckerPort — единый контракт для всех четырех площадок.
// Каждый адаптер переводит протокол своей площадки в нормализованные вердикты.
//
// Адаптер может вернуть несколько вердиктов (Яндекс и ДомКлик допускают
// несколько совпадений по одному идентификатору — дубли не схлопываем).
// Ошибка означает, что площадка не смогла дать разборчивый ответ;
// изоляцией таких отказов занимается агрегатор.
type SourceCheckerPort interface {
	Platform() domain.Platform
	Check(ctx context.Context, id domain.ListingID) ([]domain.Verdict, error)
}
