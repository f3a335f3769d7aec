package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"account-service/internal/domain"
	"account-service/internal/ports"
)

const (
	capabilityKey = "capability"

	// MsgUnauthenticated is the only reason a caller ever sees for a 401.
	MsgUnauthenticated = "invalid or missing credentials"
	MsgForbidden       = "permission denied"
)

type TokenValidator interface {
	Validate(ctx context.Context, token string) (domain.TokenClaims, error)
}

// GrantResolver reports the caller's permissions on one application. It
// returns domain.ErrNotFound when the application is missing or deleted.
type GrantResolver interface {
	Permissions(ctx context.Context, appID, userID string) ([]domain.AppPermission, error)
}

// Guard runs the per-request access chain: bearer extraction, token
// validation, permission resolution and requirement evaluation. Handlers only
// see the resulting domain.Capability.
type Guard struct {
	tokens  TokenValidator
	grants  GrantResolver
	logger  ports.Logger
	metrics *Metrics
}

func NewGuard(tokens TokenValidator, grants GrantResolver, logger ports.Logger, metrics *Metrics) *Guard {
	return &Guard{tokens: tokens, grants: grants, logger: logger, metrics: metrics}
}

// BearerToken returns the token from the Authorization header.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", domain.ErrTokenMissing
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", domain.ErrTokenMalformed
	}
	return token, nil
}

func (g *Guard) reject(c echo.Context, err error) error {
	reason := domain.TokenFailureReason(err)
	g.logger.Debug(c.Request().Context(), "request rejected", "reason", reason, "path", c.Path())
	g.metrics.rejected(reason)
	return echo.NewHTTPError(http.StatusUnauthorized, MsgUnauthenticated)
}

func (g *Guard) forbid(c echo.Context, reason string) error {
	g.logger.Debug(c.Request().Context(), "request forbidden", "reason", reason, "path", c.Path())
	g.metrics.rejected(reason)
	return echo.NewHTTPError(http.StatusForbidden, MsgForbidden)
}

// Authenticate validates the bearer token. Only access tokens are accepted
// unless kinds lists others.
func (g *Guard) Authenticate(kinds ...domain.TokenKind) echo.MiddlewareFunc {
	if len(kinds) == 0 {
		kinds = []domain.TokenKind{domain.AccessToken}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := BearerToken(c)
			if err != nil {
				return g.reject(c, err)
			}
			claims, err := g.tokens.Validate(c.Request().Context(), token)
			if err != nil {
				return g.reject(c, err)
			}
			if !domain.HasAny([]domain.TokenKind{claims.Kind}, kinds) {
				return g.reject(c, domain.ErrTokenKind)
			}
			c.Set(capabilityKey, domain.NewCapability(claims))
			return next(c)
		}
	}
}

// RequireStaff admits staff users whose platform permissions satisfy req.
func (g *Guard) RequireStaff(req domain.Requirement[domain.StaffPermission]) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			capability, ok := CapabilityFrom(c)
			if !ok {
				return g.reject(c, domain.ErrTokenMissing)
			}
			if !capability.IsStaff() {
				return g.forbid(c, "not_staff")
			}
			if !req.SatisfiedBy(capability.StaffPermissions()) {
				return g.forbid(c, "missing_staff_permission")
			}
			return next(c)
		}
	}
}

// RequireAppPermissions resolves the caller's grant on the application named
// by the path parameter and checks it against req.
func (g *Guard) RequireAppPermissions(param string, req domain.Requirement[domain.AppPermission]) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			capability, ok := CapabilityFrom(c)
			if !ok {
				return g.reject(c, domain.ErrTokenMissing)
			}
			if !capability.IsStaff() {
				return g.forbid(c, "not_staff")
			}
			appID := c.Param(param)
			perms, err := g.grants.Permissions(c.Request().Context(), appID, capability.UserID())
			if err != nil {
				return err
			}
			if !req.SatisfiedBy(perms) {
				return g.forbid(c, "missing_app_permission")
			}
			c.Set(capabilityKey, capability.ForApplication(appID, perms))
			return next(c)
		}
	}
}

func CapabilityFrom(c echo.Context) (domain.Capability, bool) {
	capability, ok := c.Get(capabilityKey).(domain.Capability)
	return capability, ok
}

