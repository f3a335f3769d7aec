package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
	"account-service/internal/query"
)

type appFixture struct {
	apps    *mockAppRepo
	grants  *mockGrantRepo
	users   *mockUserRepo
	logger  *nopLogger
	service *ApplicationService
}

func newAppFixture() *appFixture {
	f := &appFixture{apps: &mockAppRepo{}, grants: &mockGrantRepo{}, users: &mockUserRepo{}, logger: &nopLogger{}}
	f.service = NewApplicationService(f.apps, f.grants, f.users, f.logger)
	return f
}

var billing = domain.Application{ID: "0c4b1d8e-7f2a-4c11-9d3e-5a6b7c8d9e0f", Name: "billing"}

func TestApplicationService_CreateGrantsCreatorEverything(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("Insert", ctx, mock.MatchedBy(func(a domain.Application) bool { return a.Name == "billing" })).
		Return(billing, nil)
	f.grants.On("Insert", ctx, mock.MatchedBy(func(g domain.StaffGrant) bool {
		return g.ApplicationID == billing.ID && g.UserID == staffUser.ID &&
			domain.HasAll(domain.AllAppPermissions(), g.Permissions)
	})).Return(domain.StaffGrant{}, nil)

	app, err := f.service.Create(ctx, staffUser.ID, ApplicationInput{Name: "  billing "})
	require.NoError(t, err)
	assert.Equal(t, billing.ID, app.ID)
	f.apps.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.grants.AssertExpectations(t)
}

func TestApplicationService_CreateRollsBackWhenGrantFails(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	grantErr := errors.New("connection reset")
	f.apps.On("Insert", ctx, mock.Anything).Return(billing, nil)
	f.grants.On("Insert", ctx, mock.Anything).Return(domain.StaffGrant{}, grantErr)
	f.apps.On("Delete", ctx, query.Where("id", query.Eq, billing.ID)).Return(int64(1), nil)

	_, err := f.service.Create(ctx, staffUser.ID, ApplicationInput{Name: "billing"})
	assert.ErrorIs(t, err, grantErr)
	f.apps.AssertExpectations(t)
	assert.Zero(t, f.logger.errors)
}

func TestApplicationService_CreateValidatesAndMapsConflict(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, staffUser.ID, ApplicationInput{Name: " "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	f.apps.On("Insert", ctx, mock.Anything).Return(domain.Application{}, domain.ErrConflict)
	_, err = f.service.Create(ctx, staffUser.ID, ApplicationInput{Name: "billing"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	f.grants.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestApplicationService_ListIsScopedByReadGrant(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	want := query.All().And("is_deleted", query.Eq, false).
		WithGrant("id", staffUser.ID, string(domain.ReadApplication))
	page := query.Paginate(nil, nil)
	f.apps.On("FindMany", ctx, want, page).Return([]domain.Application{billing}, nil)
	f.apps.On("Count", ctx, want).Return(int64(1), nil)

	got, err := f.service.List(ctx, staffUser.ID, query.ApplicationFilter{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Application{billing}, got.Items)
	assert.Equal(t, int64(1), got.Total)
}

func TestApplicationService_GrantOnlyToStaff(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("FindOne", ctx, activeApplication(billing.ID)).Return(billing, nil)
	f.users.On("FindOne", ctx, activeUserByID(alice.ID)).Return(alice, nil)

	_, err := f.service.Grant(ctx, billing.ID, alice.ID, []domain.AppPermission{domain.ReadApplication})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.grants.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestApplicationService_SecondGrantIsConflict(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("FindOne", ctx, activeApplication(billing.ID)).Return(billing, nil)
	f.users.On("FindOne", ctx, activeUserByID(staffUser.ID)).Return(staffUser, nil)
	f.grants.On("Insert", ctx, mock.Anything).Return(domain.StaffGrant{}, domain.ErrConflict)

	_, err := f.service.Grant(ctx, billing.ID, staffUser.ID, []domain.AppPermission{domain.ReadApplication})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApplicationService_PermissionsWithoutGrantIsEmpty(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("FindOne", ctx, activeApplication(billing.ID)).Return(billing, nil)
	f.grants.On("FindOne", ctx, grantOf(billing.ID, staffUser.ID)).Return(domain.StaffGrant{}, domain.ErrNotFound)

	perms, err := f.service.Permissions(ctx, billing.ID, staffUser.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestApplicationService_PermissionsOnDeletedApplication(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("FindOne", ctx, activeApplication(billing.ID)).Return(domain.Application{}, domain.ErrNotFound)

	_, err := f.service.Permissions(ctx, billing.ID, staffUser.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.grants.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestApplicationService_RevokeMissingGrant(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.grants.On("Delete", ctx, grantOf(billing.ID, staffUser.ID)).Return(int64(0), nil)

	assert.ErrorIs(t, f.service.Revoke(ctx, billing.ID, staffUser.ID), domain.ErrNotFound)
}

func TestApplicationService_DeleteMissing(t *testing.T) {
	f := newAppFixture()
	ctx := context.Background()
	f.apps.On("SoftDelete", ctx, activeApplication(billing.ID)).Return(int64(0), nil)

	assert.ErrorIs(t, f.service.Delete(ctx, billing.ID), domain.ErrNotFound)
}
