package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPermissionDeny  = errors.New("permission denied")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrHashFormat is returned when a stored password hash cannot be parsed.
	// It is an internal failure, never a credential mismatch.
	ErrHashFormat = errors.New("malformed password hash")
)

// Token rejection reasons. All of them wrap ErrUnauthenticated so callers can
// treat them uniformly while logs and metrics keep the precise cause.
var (
	ErrTokenMissing      = fmt.Errorf("%w: missing token", ErrUnauthenticated)
	ErrTokenMalformed    = fmt.Errorf("%w: malformed token", ErrUnauthenticated)
	ErrTokenSignature    = fmt.Errorf("%w: invalid signature", ErrUnauthenticated)
	ErrTokenSchema       = fmt.Errorf("%w: unexpected claims", ErrUnauthenticated)
	ErrTokenExpired      = fmt.Errorf("%w: token expired", ErrUnauthenticated)
	ErrTokenNotYetActive = fmt.Errorf("%w: token not yet active", ErrUnauthenticated)
	ErrTokenRevoked      = fmt.Errorf("%w: token revoked", ErrUnauthenticated)
	ErrTokenKind         = fmt.Errorf("%w: wrong token kind", ErrUnauthenticated)
)

// TokenFailureReason returns a short label for a token rejection, suitable for
// logs and metric labels.
func TokenFailureReason(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenMissing):
		return "missing_token"
	case errors.Is(err, ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, ErrTokenSignature):
		return "bad_signature"
	case errors.Is(err, ErrTokenSchema):
		return "schema"
	case errors.Is(err, ErrTokenExpired):
		return "expired"
	case errors.Is(err, ErrTokenNotYetActive):
		return "not_yet_active"
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrTokenKind):
		return "wrong_kind"
	default:
		return "cache_error"
	}
}
