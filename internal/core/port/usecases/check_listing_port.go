package usecases_port

import (
	"context"

	"github.com/google/uuid"
)

// CheckListingPort — входящий порт ядра: один раунд проверки листинга
// по всем площадкам с отправкой вердиктов в чат
type CheckListingPort interface {
	Execute(ctx context.Context, chatID int64, rawInput string, roundID uuid.UUID) error
}
