package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"account-service/internal/domain"
	"account-service/internal/query"
)

type authFixture struct {
	*tokenFixture
	users     *mockUserRepo
	publisher *recordingPublisher
	service   *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tf := newTokenFixture(t)
	f := &authFixture{tokenFixture: tf, users: &mockUserRepo{}, publisher: &recordingPublisher{}}
	hook := NewUserEventHook(f.publisher, tf.logger)
	f.service = NewAuthService(f.users, plainHasher{}, tf.manager, hook, tf.logger)
	return f
}

var alice = domain.User{
	ID:           "2a4e6c80-0000-4000-8000-00000000000a",
	Name:         "Alice",
	Email:        "alice@x.com",
	PasswordHash: "hashed:s3cret",
}

func TestAuthService_RegisterThenDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	byEmail := query.Where("email", query.Eq, "alice@x.com")

	f.users.On("FindOne", ctx, byEmail).Return(domain.User{}, domain.ErrNotFound).Once()
	f.users.On("Insert", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.Email == "alice@x.com" && u.PasswordHash == "hashed:s3cret" && !u.IsStaff && !u.CreatedAt.IsZero()
	})).Return(alice, nil).Once()

	created, err := f.service.Register(ctx, RegisterInput{Name: " Alice ", Email: " Alice@X.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, created.ID)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, domain.UserCreated, f.publisher.events[0].Type)
	assert.Equal(t, "Alice", f.publisher.events[0].Name)

	f.users.On("FindOne", ctx, byEmail).Return(alice, nil).Once()
	_, err = f.service.Register(ctx, RegisterInput{Name: "Alice", Email: "alice@x.com", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Len(t, f.publisher.events, 1)
	f.users.AssertExpectations(t)
}

func TestAuthService_RegisterRequiresFields(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register(context.Background(), RegisterInput{Name: "  ", Email: "a@x.com", Password: "p"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	f.users.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestAuthService_LoginHasNoLockout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindOne", ctx, activeUserByEmail("alice@x.com")).Return(alice, nil)

	for i := 0; i < 3; i++ {
		_, err := f.service.Login(ctx, "alice@x.com", "wrong")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	assert.Zero(t, f.cache.len())

	pair, err := f.service.Login(ctx, "Alice@x.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.Equal(t, 2, f.cache.len())
}

func TestAuthService_LoginUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindOne", ctx, activeUserByEmail("ghost@x.com")).Return(domain.User{}, domain.ErrNotFound)

	_, err := f.service.Login(ctx, "ghost@x.com", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_RefreshRotatesPair(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindOne", ctx, activeUserByEmail("alice@x.com")).Return(alice, nil)
	promoted := alice
	promoted.IsStaff = true
	f.users.On("FindOne", ctx, activeUserByID(alice.ID)).Return(promoted, nil)

	first, err := f.service.Login(ctx, "alice@x.com", "s3cret")
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, first.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenKind)

	second, err := f.service.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)

	_, err = f.manager.Validate(ctx, first.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = f.service.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)

	claims, err := f.manager.Validate(ctx, second.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsStaff)
}

func TestAuthService_RefreshForDeletedUser(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindOne", ctx, activeUserByEmail("alice@x.com")).Return(alice, nil)
	f.users.On("FindOne", ctx, activeUserByID(alice.ID)).Return(domain.User{}, domain.ErrNotFound)

	pair, err := f.service.Login(ctx, "alice@x.com", "s3cret")
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthService_LogoutAndLogoutAll(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.users.On("FindOne", ctx, activeUserByEmail("alice@x.com")).Return(alice, nil)

	a, err := f.service.Login(ctx, "alice@x.com", "s3cret")
	require.NoError(t, err)
	b, err := f.service.Login(ctx, "alice@x.com", "s3cret")
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, a.RefreshToken))
	_, err = f.manager.Validate(ctx, a.AccessToken)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
	_, err = f.manager.Validate(ctx, b.AccessToken)
	assert.NoError(t, err)

	n, err := f.service.LogoutAll(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.False(t, f.service.Introspect(ctx, b.AccessToken, "").Active)
}
