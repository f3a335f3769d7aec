package ports

import (
	"context"

	"account-service/internal/domain"
)

type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

type TokenCodec interface {
	Encode(claims domain.TokenClaims) (string, error)
	Decode(token string) (domain.TokenClaims, error)
}

// EventPublisher delivers user events to the message broker.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event domain.UserEvent) error
}
