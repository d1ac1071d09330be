package port

import "context"

// EventListenerPort — входящий адаптер, который слушает внешние события
// (сообщения пользователя) и вызывает ядро
type EventListenerPort interface {
	Start(ctx context.Context) error
	Close() error
}
