package port

import "context"

// MessengerPort — исходящий порт доставки сообщений пользователю.
// С точки зрения ядра это fire-and-forget: ошибки доставки — забота адаптера.
type MessengerPort interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}
