package domain

import "time"

type TokenKind string

const (
	AccessToken  TokenKind = "access_token"
	RefreshToken TokenKind = "refresh_token"
)

func (k TokenKind) Valid() bool {
	return k == AccessToken || k == RefreshToken
}

// TokenClaims is the signed payload of a bearer token. PairedID names the
// sibling token issued in the same login so both can be revoked together.
type TokenClaims struct {
	SubjectID        string
	IssuedAt         time.Time
	NotBefore        time.Time
	ExpiresAt        time.Time
	ID               string
	PairedID         string
	Kind             TokenKind
	IsStaff          bool
	StaffPermissions []StaffPermission
}

// TokenPair is what a successful login or refresh hands back to the client.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Introspection is the RFC 7662 style answer for a presented token.
// Only Active is set when the token is not usable.
type Introspection struct {
	Active    bool      `json:"active"`
	TokenType TokenKind `json:"token_type,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	TokenID   string    `json:"jti,omitempty"`
	ExpiresAt int64     `json:"exp,omitempty"`
	IssuedAt  int64     `json:"iat,omitempty"`
	NotBefore int64     `json:"nbf,omitempty"`
}
