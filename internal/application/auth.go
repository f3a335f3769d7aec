package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"account-service/internal/domain"
	"account-service/internal/ports"
	"account-service/internal/query"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Birthday domain.Date
}

type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens *TokenManager
	events *UserEventHook
	logger ports.Logger
}

func NewAuthService(users ports.UserRepository, hasher ports.PasswordHasher, tokens *TokenManager, events *UserEventHook, logger ports.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, events: events, logger: logger}
}

func activeUserByEmail(email string) query.Condition {
	return query.Where("email", query.Eq, normalizeEmail(email)).And("is_deleted", query.Eq, false)
}

func activeUserByID(id string) query.Condition {
	return query.Where("id", query.Eq, id).And("is_deleted", query.Eq, false)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	if strings.TrimSpace(in.Name) == "" || in.Email == "" || in.Password == "" {
		return domain.User{}, domain.ErrInvalidInput
	}
	return createUser(ctx, s.users, s.hasher, s.events, domain.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Birthday: in.Birthday,
	}, in.Password)
}

// createUser is shared by self registration and staff creation.
func createUser(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, events *UserEventHook, user domain.User, password string) (domain.User, error) {
	user.Email = normalizeEmail(user.Email)
	_, err := users.FindOne(ctx, query.Where("email", query.Eq, user.Email))
	switch {
	case err == nil:
		return domain.User{}, fmt.Errorf("%w: email already exists", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.User{}, err
	}
	hash, err := hasher.Hash(password)
	if err != nil {
		return domain.User{}, err
	}
	now := time.Now().UTC()
	user.PasswordHash = hash
	user.CreatedAt = now
	user.UpdatedAt = now
	created, err := users.Insert(ctx, user)
	if errors.Is(err, domain.ErrConflict) {
		return domain.User{}, fmt.Errorf("%w: email already exists", domain.ErrConflict)
	}
	if err != nil {
		return domain.User{}, err
	}
	events.AfterPersist(ctx, nil, created)
	return created, nil
}

// Login checks the credentials and issues a token pair. There is no lockout:
// every attempt is evaluated on its own.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.TokenPair, error) {
	user, err := s.users.FindOne(ctx, activeUserByEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TokenPair{}, fmt.Errorf("%w: email doesn't exist", domain.ErrInvalidInput)
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if !ok {
		return domain.TokenPair{}, fmt.Errorf("%w: incorrect password", domain.ErrInvalidInput)
	}
	return s.tokens.Issue(ctx, user)
}

// Logout revokes the presented token together with its sibling.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int, error) {
	return s.tokens.RevokeAll(ctx, userID)
}

// Refresh trades a live refresh token for a new pair. The old pair is revoked
// and the new claims pick up the user's current staff permissions.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.tokens.Validate(ctx, refreshToken)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if claims.Kind != domain.RefreshToken {
		return domain.TokenPair{}, domain.ErrTokenKind
	}
	user, err := s.users.FindOne(ctx, activeUserByID(claims.SubjectID))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TokenPair{}, domain.ErrUnauthenticated
	}
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.tokens.RevokeClaims(ctx, claims); err != nil {
		return domain.TokenPair{}, err
	}
	return s.tokens.Issue(ctx, user)
}

func (s *AuthService) Introspect(ctx context.Context, token, hint string) domain.Introspection {
	return s.tokens.Introspect(ctx, token, hint)
}
