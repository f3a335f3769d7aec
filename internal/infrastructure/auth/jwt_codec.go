package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"account-service/internal/domain"
)

type wireClaims struct {
	jwt.RegisteredClaims
	PairedID         string   `json:"sub_jti"`
	Kind             string   `json:"oauth_token_type"`
	IsStaff          bool     `json:"is_staff"`
	StaffPermissions []string `json:"staff_permissions"`
}

// JWTCodec signs and parses HS256 bearer tokens. It checks shape and
// signature only; expiry and revocation belong to the token manager.
type JWTCodec struct {
	secret []byte
}

func NewJWTCodec(secret string) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTCodec{secret: []byte(secret)}, nil
}

func (c *JWTCodec) Encode(claims domain.TokenClaims) (string, error) {
	wc := wireClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			ID:        claims.ID,
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			NotBefore: jwt.NewNumericDate(claims.NotBefore),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
		},
		PairedID:         claims.PairedID,
		Kind:             string(claims.Kind),
		IsStaff:          claims.IsStaff,
		StaffPermissions: domain.PermissionStrings(claims.StaffPermissions),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, wc).SignedString(c.secret)
}

func (c *JWTCodec) Decode(token string) (domain.TokenClaims, error) {
	var wc wireClaims
	_, err := jwt.ParseWithClaims(token, &wc, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenSignature, err)
	default:
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	}
	return wc.toDomain()
}

func (wc wireClaims) toDomain() (domain.TokenClaims, error) {
	if wc.Subject == "" || wc.ID == "" || wc.PairedID == "" {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing identifiers", domain.ErrTokenSchema)
	}
	if wc.IssuedAt == nil || wc.NotBefore == nil || wc.ExpiresAt == nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: missing timestamps", domain.ErrTokenSchema)
	}
	kind := domain.TokenKind(wc.Kind)
	if !kind.Valid() {
		return domain.TokenClaims{}, fmt.Errorf("%w: token kind %q", domain.ErrTokenSchema, wc.Kind)
	}
	perms, err := domain.ParseStaffPermissions(wc.StaffPermissions)
	if err != nil {
		return domain.TokenClaims{}, fmt.Errorf("%w: %v", domain.ErrTokenSchema, err)
	}
	return domain.TokenClaims{
		SubjectID:        wc.Subject,
		IssuedAt:         wc.IssuedAt.Time,
		NotBefore:        wc.NotBefore.Time,
		ExpiresAt:        wc.ExpiresAt.Time,
		ID:               wc.ID,
		PairedID:         wc.PairedID,
		Kind:             kind,
		IsStaff:          wc.IsStaff,
		StaffPermissions: perms,
	}, nil
}
