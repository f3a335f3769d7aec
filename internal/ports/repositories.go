package ports

import (
	"context"

	"account-service/internal/domain"
	"account-service/internal/query"
)

// Store is the persistence contract shared by every entity. FindOne returns
// domain.ErrNotFound when nothing matches; unique violations surface as
// domain.ErrConflict.
type Store[T any] interface {
	Insert(ctx context.Context, entity T) (T, error)
	FindOne(ctx context.Context, cond query.Condition) (T, error)
	FindMany(ctx context.Context, cond query.Condition, page query.Pagination) ([]T, error)
	Count(ctx context.Context, cond query.Condition) (int64, error)
	Update(ctx context.Context, entity T) (T, error)
}

// SoftDeleteStore marks matching rows deleted instead of removing them.
type SoftDeleteStore[T any] interface {
	Store[T]
	SoftDelete(ctx context.Context, cond query.Condition) (int64, error)
}

type UserRepository interface {
	SoftDeleteStore[domain.User]
}

type ApplicationRepository interface {
	SoftDeleteStore[domain.Application]
	// Delete removes rows outright. Only used to undo a half-finished create.
	Delete(ctx context.Context, cond query.Condition) (int64, error)
}

type StaffGrantRepository interface {
	Store[domain.StaffGrant]
	Delete(ctx context.Context, cond query.Condition) (int64, error)
}

type APIKeyRepository interface {
	SoftDeleteStore[domain.APIKey]
}
