package http

import (
	"context"

	"account-service/internal/application"
	"account-service/internal/domain"
	"account-service/internal/query"
)

// The handlers depend on these narrow views of the application services.

type AuthAPI interface {
	Register(ctx context.Context, in application.RegisterInput) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.TokenPair, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID string) (int, error)
	Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	Introspect(ctx context.Context, token, hint string) domain.Introspection
}

type UserAPI interface {
	List(ctx context.Context, filter query.UserFilter, staff bool) (domain.Page[domain.User], error)
	Get(ctx context.Context, id string) (domain.User, error)
	UpdateProfile(ctx context.Context, id string, in application.ProfileUpdate) (domain.User, error)
	UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error
	CreateStaff(ctx context.Context, in application.StaffInput) (domain.User, error)
	UpdateStaff(ctx context.Context, id string, in application.StaffUpdate) (domain.User, error)
	Delete(ctx context.Context, id string) error
	DeleteStaff(ctx context.Context, id string) error
}

type ApplicationAPI interface {
	Create(ctx context.Context, creatorID string, in application.ApplicationInput) (domain.Application, error)
	List(ctx context.Context, userID string, filter query.ApplicationFilter) (domain.Page[domain.Application], error)
	Get(ctx context.Context, id string) (domain.Application, error)
	Update(ctx context.Context, id string, in application.ApplicationUpdate) (domain.Application, error)
	Delete(ctx context.Context, id string) error
	ListStaff(ctx context.Context, appID string, page query.Pagination) (domain.Page[domain.StaffGrant], error)
	Grant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error)
	UpdateGrant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error)
	Revoke(ctx context.Context, appID, userID string) error
}

type KeyAPI interface {
	Create(ctx context.Context, appID, issuerID string, in application.KeyInput) (domain.APIKey, error)
	List(ctx context.Context, appID string, filter query.KeyFilter) (domain.Page[domain.APIKey], error)
	Get(ctx context.Context, appID, keyID string) (domain.APIKey, error)
	Update(ctx context.Context, appID, keyID string, in application.KeyUpdate) (domain.APIKey, error)
	Delete(ctx context.Context, appID, keyID string) error
	Verify(ctx context.Context, value string) (application.KeyVerification, error)
}

var (
	_ AuthAPI        = (*application.AuthService)(nil)
	_ UserAPI        = (*application.UserService)(nil)
	_ ApplicationAPI = (*application.ApplicationService)(nil)
	_ KeyAPI         = (*application.KeyService)(nil)
)
