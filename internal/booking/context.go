package booking

import "context"

type contextKey string

const (
	idempotencyKey contextKey = "idempotencyKey"
	userKey        contextKey = "user"
)

func NewContextWithIdempotencyKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, idempotencyKey, key)
}

func IdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	key, ok := ctx.Value(idempotencyKey).(string)

	return key, ok
}

// NewContextWithUser stores the staff member recorded in price change logs.
func NewContextWithUser(ctx context.Context, user string) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (string, bool) {
	user, ok := ctx.Value(userKey).(string)

	return user, ok
}
