package port

import "context"

// TokenProviderPort управляет единственным bearer-токеном Авито.
// Токен кешируется в памяти процесса и никогда не сохраняется на диск.
type TokenProviderPort interface {
	// EnsureToken возвращает закешированный токен или получает новый
	// через client_credentials обмен
	EnsureToken(ctx context.Context) (string, error)

	// Invalidate сбрасывает кеш. Вызывается при 403 от площадки,
	// после чего разрешен ровно один повторный EnsureToken
	Invalidate()
}
