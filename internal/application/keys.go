package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"account-service/internal/domain"
	"account-service/internal/ports"
	"account-service/internal/query"
)

const keyPrefix = "ak_"

type KeyInput struct {
	UserID   string
	Lifetime int64
}

type KeyUpdate struct {
	Lifetime *int64
	IsBanned *bool
}

type KeyVerification struct {
	Valid         bool       `json:"valid"`
	ApplicationID string     `json:"application_id,omitempty"`
	UserID        string     `json:"user_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

type KeyService struct {
	keys   ports.APIKeyRepository
	apps   ports.ApplicationRepository
	users  ports.UserRepository
	logger ports.Logger
	now    func() time.Time
}

func NewKeyService(keys ports.APIKeyRepository, apps ports.ApplicationRepository, users ports.UserRepository, logger ports.Logger) *KeyService {
	return &KeyService{keys: keys, apps: apps, users: users, logger: logger, now: time.Now}
}

func newKeyValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func keyOf(appID, keyID string) query.Condition {
	return query.Where("id", query.Eq, keyID).
		And("application_id", query.Eq, appID).
		And("is_deleted", query.Eq, false)
}

func (s *KeyService) Create(ctx context.Context, appID, issuerID string, in KeyInput) (domain.APIKey, error) {
	if in.Lifetime <= 0 {
		return domain.APIKey{}, fmt.Errorf("%w: lifetime must be positive", domain.ErrInvalidInput)
	}
	if _, err := s.apps.FindOne(ctx, activeApplication(appID)); err != nil {
		return domain.APIKey{}, err
	}
	if _, err := s.users.FindOne(ctx, activeUserByID(in.UserID)); err != nil {
		return domain.APIKey{}, err
	}
	value, err := newKeyValue()
	if err != nil {
		return domain.APIKey{}, err
	}
	now := s.now().UTC()
	return s.keys.Insert(ctx, domain.APIKey{
		Value:           value,
		Lifetime:        in.Lifetime,
		ApplicationID:   appID,
		UserID:          in.UserID,
		CreatedByUserID: issuerID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
}

// List returns the keys of one application with their secret values removed.
func (s *KeyService) List(ctx context.Context, appID string, filter query.KeyFilter) (domain.Page[domain.APIKey], error) {
	cond, err := query.Compile(query.KeyRules, filter)
	if err != nil {
		return domain.Page[domain.APIKey]{}, err
	}
	cond = cond.And("application_id", query.Eq, appID).And("is_deleted", query.Eq, false)
	page, err := listPage[domain.APIKey](ctx, s.keys, cond, filter.Pagination())
	if err != nil {
		return page, err
	}
	for i := range page.Items {
		page.Items[i].Value = ""
	}
	return page, nil
}

func (s *KeyService) Get(ctx context.Context, appID, keyID string) (domain.APIKey, error) {
	return s.keys.FindOne(ctx, keyOf(appID, keyID))
}

func (s *KeyService) Update(ctx context.Context, appID, keyID string, in KeyUpdate) (domain.APIKey, error) {
	key, err := s.Get(ctx, appID, keyID)
	if err != nil {
		return domain.APIKey{}, err
	}
	if in.Lifetime != nil {
		if *in.Lifetime <= 0 {
			return domain.APIKey{}, fmt.Errorf("%w: lifetime must be positive", domain.ErrInvalidInput)
		}
		key.Lifetime = *in.Lifetime
	}
	if in.IsBanned != nil {
		key.IsBanned = *in.IsBanned
	}
	key.UpdatedAt = s.now().UTC()
	return s.keys.Update(ctx, key)
}

func (s *KeyService) Delete(ctx context.Context, appID, keyID string) error {
	n, err := s.keys.SoftDelete(ctx, keyOf(appID, keyID))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Verify checks a presented key value. Keys of a deleted application are
// invalid. The first successful verification activates the key and starts
// its lifetime.
func (s *KeyService) Verify(ctx context.Context, value string) (KeyVerification, error) {
	if value == "" {
		return KeyVerification{}, nil
	}
	key, err := s.keys.FindOne(ctx, query.Where("value", query.Eq, value).And("is_deleted", query.Eq, false))
	if errors.Is(err, domain.ErrNotFound) {
		return KeyVerification{}, nil
	}
	if err != nil {
		return KeyVerification{}, err
	}
	now := s.now().UTC()
	if key.IsBanned || key.IsExpired(now) {
		return KeyVerification{}, nil
	}
	_, err = s.apps.FindOne(ctx, activeApplication(key.ApplicationID))
	if errors.Is(err, domain.ErrNotFound) {
		return KeyVerification{}, nil
	}
	if err != nil {
		return KeyVerification{}, err
	}
	if key.ActivatedAt == nil {
		key.ActivatedAt = &now
		key.UpdatedAt = now
		if key, err = s.keys.Update(ctx, key); err != nil {
			return KeyVerification{}, err
		}
	}
	return KeyVerification{
		Valid:         true,
		ApplicationID: key.ApplicationID,
		UserID:        key.UserID,
		ExpiresAt:     key.ExpiresAt(),
	}, nil
}
