package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"account-service/internal/domain"
	"account-service/internal/ports"
)

const (
	DefaultAccessTTL  = 900 * time.Second
	DefaultRefreshTTL = 1_296_000 * time.Second
)

// TokenCacheKey is the registry key of one issued token.
func TokenCacheKey(userID, tokenID string) string {
	return "USER:" + userID + "_JWT:" + tokenID
}

func userTokenPattern(userID string) string {
	return "USER:" + userID + "_JWT:*"
}

type TokenManager struct {
	codec      ports.TokenCodec
	cache      ports.TokenCache
	logger     ports.Logger
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenManager(codec ports.TokenCodec, cache ports.TokenCache, logger ports.Logger, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenManager{
		codec:      codec,
		cache:      cache,
		logger:     logger,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// NewClaims builds a linked access/refresh pair for user.
func (m *TokenManager) NewClaims(user domain.User) (access, refresh domain.TokenClaims) {
	now := m.now().Truncate(time.Second)
	accessID, refreshID := uuid.NewString(), uuid.NewString()
	base := domain.TokenClaims{
		SubjectID:        user.ID,
		IssuedAt:         now,
		NotBefore:        now,
		IsStaff:          user.IsStaff,
		StaffPermissions: user.StaffPermissions,
	}
	access, refresh = base, base
	access.ID, access.PairedID, access.Kind = accessID, refreshID, domain.AccessToken
	access.ExpiresAt = now.Add(m.accessTTL)
	refresh.ID, refresh.PairedID, refresh.Kind = refreshID, accessID, domain.RefreshToken
	refresh.ExpiresAt = now.Add(m.refreshTTL)
	return access, refresh
}

// Issue signs a fresh pair and records both tokens in the registry. The two
// writes are independent; if the refresh write fails the access token stays
// usable until it expires.
func (m *TokenManager) Issue(ctx context.Context, user domain.User) (domain.TokenPair, error) {
	access, refresh := m.NewClaims(user)
	accessToken, err := m.codec.Encode(access)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encode access token: %w", err)
	}
	refreshToken, err := m.codec.Encode(refresh)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("encode refresh token: %w", err)
	}
	if err := m.register(ctx, access); err != nil {
		return domain.TokenPair{}, err
	}
	if err := m.register(ctx, refresh); err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(m.accessTTL / time.Second),
	}, nil
}

func (m *TokenManager) register(ctx context.Context, claims domain.TokenClaims) error {
	payload, err := json.Marshal(cacheEntryFrom(claims))
	if err != nil {
		return err
	}
	ttl := claims.ExpiresAt.Sub(m.now())
	if ttl < time.Second {
		ttl = time.Second
	}
	if err := m.cache.Set(ctx, TokenCacheKey(claims.SubjectID, claims.ID), payload, ttl); err != nil {
		return fmt.Errorf("register %s: %w", claims.Kind, err)
	}
	return nil
}

// Validate decodes token, then checks its validity window, then checks that
// the registry still holds it. Registry failures are reported as
// unauthenticated.
func (m *TokenManager) Validate(ctx context.Context, token string) (domain.TokenClaims, error) {
	claims, err := m.codec.Decode(token)
	if err != nil {
		return domain.TokenClaims{}, err
	}
	now := m.now()
	if now.Before(claims.NotBefore) {
		return domain.TokenClaims{}, domain.ErrTokenNotYetActive
	}
	if now.After(claims.ExpiresAt) {
		return domain.TokenClaims{}, domain.ErrTokenExpired
	}
	found, err := m.cache.Exists(ctx, TokenCacheKey(claims.SubjectID, claims.ID))
	if err != nil {
		m.logger.Error(ctx, "token registry lookup failed", "error", err, "jti", claims.ID)
		return domain.TokenClaims{}, fmt.Errorf("%w: token registry unavailable", domain.ErrUnauthenticated)
	}
	if !found {
		return domain.TokenClaims{}, domain.ErrTokenRevoked
	}
	return claims, nil
}

// Revoke removes the presented token and its sibling from the registry.
func (m *TokenManager) Revoke(ctx context.Context, token string) error {
	claims, err := m.Validate(ctx, token)
	if err != nil {
		return err
	}
	return m.RevokeClaims(ctx, claims)
}

func (m *TokenManager) RevokeClaims(ctx context.Context, claims domain.TokenClaims) error {
	return m.cache.Delete(ctx,
		TokenCacheKey(claims.SubjectID, claims.ID),
		TokenCacheKey(claims.SubjectID, claims.PairedID),
	)
}

// RevokeAll drops every registered token of a user and reports how many were removed.
func (m *TokenManager) RevokeAll(ctx context.Context, userID string) (int, error) {
	keys, err := m.cache.Scan(ctx, userTokenPattern(userID))
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := m.cache.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}

// Introspect never fails: anything short of a live token of the hinted kind
// is reported as inactive.
func (m *TokenManager) Introspect(ctx context.Context, token, hint string) domain.Introspection {
	claims, err := m.Validate(ctx, token)
	if err != nil {
		m.logger.Debug(ctx, "introspection inactive", "reason", domain.TokenFailureReason(err))
		return domain.Introspection{Active: false}
	}
	if hint != "" && domain.TokenKind(hint) != claims.Kind {
		m.logger.Debug(ctx, "introspection inactive", "reason", "hint_mismatch")
		return domain.Introspection{Active: false}
	}
	return domain.Introspection{
		Active:    true,
		TokenType: claims.Kind,
		Subject:   claims.SubjectID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Unix(),
		IssuedAt:  claims.IssuedAt.Unix(),
		NotBefore: claims.NotBefore.Unix(),
	}
}

type cacheEntry struct {
	SubjectID        string   `json:"id"`
	IssuedAt         int64    `json:"iat"`
	NotBefore        int64    `json:"nbf"`
	ExpiresAt        int64    `json:"exp"`
	ID               string   `json:"jti"`
	PairedID         string   `json:"sub_jti"`
	Kind             string   `json:"oauth_token_type"`
	IsStaff          bool     `json:"is_staff"`
	StaffPermissions []string `json:"staff_permissions"`
}

func cacheEntryFrom(c domain.TokenClaims) cacheEntry {
	return cacheEntry{
		SubjectID:        c.SubjectID,
		IssuedAt:         c.IssuedAt.Unix(),
		NotBefore:        c.NotBefore.Unix(),
		ExpiresAt:        c.ExpiresAt.Unix(),
		ID:               c.ID,
		PairedID:         c.PairedID,
		Kind:             string(c.Kind),
		IsStaff:          c.IsStaff,
		StaffPermissions: domain.PermissionStrings(c.StaffPermissions),
	}
}
