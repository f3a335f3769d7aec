package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"account-service/internal/application"
	"account-service/internal/domain"
	"account-service/internal/query"
)

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Register(ctx context.Context, in application.RegisterInput) (domain.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockAuth) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(domain.TokenPair), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuth) LogoutAll(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockAuth) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(domain.TokenPair), args.Error(1)
}

func (m *mockAuth) Introspect(ctx context.Context, token, hint string) domain.Introspection {
	return m.Called(ctx, token, hint).Get(0).(domain.Introspection)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) List(ctx context.Context, filter query.UserFilter, staff bool) (domain.Page[domain.User], error) {
	args := m.Called(ctx, filter, staff)
	return args.Get(0).(domain.Page[domain.User]), args.Error(1)
}

func (m *mockUsers) Get(ctx context.Context, id string) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, id string, in application.ProfileUpdate) (domain.User, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	return m.Called(ctx, id, oldPassword, newPassword).Error(0)
}

func (m *mockUsers) CreateStaff(ctx context.Context, in application.StaffInput) (domain.User, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUsers) UpdateStaff(ctx context.Context, id string, in application.StaffUpdate) (domain.User, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockUsers) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockUsers) DeleteStaff(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockApps struct{ mock.Mock }

func (m *mockApps) Create(ctx context.Context, creatorID string, in application.ApplicationInput) (domain.Application, error) {
	args := m.Called(ctx, creatorID, in)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockApps) List(ctx context.Context, userID string, filter query.ApplicationFilter) (domain.Page[domain.Application], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(domain.Page[domain.Application]), args.Error(1)
}

func (m *mockApps) Get(ctx context.Context, id string) (domain.Application, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockApps) Update(ctx context.Context, id string, in application.ApplicationUpdate) (domain.Application, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(domain.Application), args.Error(1)
}

func (m *mockApps) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockApps) ListStaff(ctx context.Context, appID string, page query.Pagination) (domain.Page[domain.StaffGrant], error) {
	args := m.Called(ctx, appID, page)
	return args.Get(0).(domain.Page[domain.StaffGrant]), args.Error(1)
}

func (m *mockApps) Grant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error) {
	args := m.Called(ctx, appID, userID, perms)
	return args.Get(0).(domain.StaffGrant), args.Error(1)
}

func (m *mockApps) UpdateGrant(ctx context.Context, appID, userID string, perms []domain.AppPermission) (domain.StaffGrant, error) {
	args := m.Called(ctx, appID, userID, perms)
	return args.Get(0).(domain.StaffGrant), args.Error(1)
}

func (m *mockApps) Revoke(ctx context.Context, appID, userID string) error {
	return m.Called(ctx, appID, userID).Error(0)
}

// Permissions lets the same mock back the guard's grant lookup.
func (m *mockApps) Permissions(ctx context.Context, appID, userID string) ([]domain.AppPermission, error) {
	args := m.Called(ctx, appID, userID)
	perms, _ := args.Get(0).([]domain.AppPermission)
	return perms, args.Error(1)
}

type mockKeys struct{ mock.Mock }

func (m *mockKeys) Create(ctx context.Context, appID, issuerID string, in application.KeyInput) (domain.APIKey, error) {
	args := m.Called(ctx, appID, issuerID, in)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeys) List(ctx context.Context, appID string, filter query.KeyFilter) (domain.Page[domain.APIKey], error) {
	args := m.Called(ctx, appID, filter)
	return args.Get(0).(domain.Page[domain.APIKey]), args.Error(1)
}

func (m *mockKeys) Get(ctx context.Context, appID, keyID string) (domain.APIKey, error) {
	args := m.Called(ctx, appID, keyID)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeys) Update(ctx context.Context, appID, keyID string, in application.KeyUpdate) (domain.APIKey, error) {
	args := m.Called(ctx, appID, keyID, in)
	return args.Get(0).(domain.APIKey), args.Error(1)
}

func (m *mockKeys) Delete(ctx context.Context, appID, keyID string) error {
	return m.Called(ctx, appID, keyID).Error(0)
}

func (m *mockKeys) Verify(ctx context.Context, value string) (application.KeyVerification, error) {
	args := m.Called(ctx, value)
	return args.Get(0).(application.KeyVerification), args.Error(1)
}

type nopLogger struct{ errors int }

func (l *nopLogger) Info(context.Context, string, ...any)  {}
func (l *nopLogger) Warn(context.Context, string, ...any)  {}
func (l *nopLogger) Debug(context.Context, string, ...any) {}
func (l *nopLogger) Error(context.Context, string, ...any) { l.errors++ }
