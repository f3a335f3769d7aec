package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/domain"
	"account-service/internal/ports"
)

type Handlers struct {
	Auth         *AuthHandler
	Users        *UsersHandler
	Applications *ApplicationsHandler
	Keys         *KeysHandler
}

type Middleware struct {
	XRay          echo.MiddlewareFunc
	RequestLogger echo.MiddlewareFunc
	Metrics       *middleware.Metrics
	// AuthRateLimit is the per-client request rate allowed on /auth. Zero disables it.
	AuthRateLimit float64
}

func staff(perms ...domain.StaffPermission) domain.Requirement[domain.StaffPermission] {
	return domain.Requirement[domain.StaffPermission]{AllOf: perms}
}

func app(perms ...domain.AppPermission) domain.Requirement[domain.AppPermission] {
	return domain.Requirement[domain.AppPermission]{AllOf: perms}
}

func newEcho(m Middleware, logger ports.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = ErrorHandler(logger)
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if m.XRay != nil {
		e.Use(m.XRay)
	}
	if m.RequestLogger != nil {
		e.Use(m.RequestLogger)
	}
	if m.Metrics != nil {
		e.Use(m.Metrics.Instrument())
		e.GET("/metrics", m.Metrics.Handler())
	}
	return e
}

// NewRouter wires every route with its guard requirement.
func NewRouter(h Handlers, guard *middleware.Guard, m Middleware, logger ports.Logger) *echo.Echo {
	e := newEcho(m, logger)
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(stdhttp.StatusOK, map[string]string{"status": "ok"})
	})

	authenticated := guard.Authenticate()

	auth := e.Group("/auth")
	if m.AuthRateLimit > 0 {
		auth.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rate.Limit(m.AuthRateLimit))))
	}
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/introspect", h.Auth.Introspect)
	auth.POST("/logout", h.Auth.Logout, guard.Authenticate(domain.AccessToken, domain.RefreshToken))
	auth.POST("/logout-all", h.Auth.LogoutAll, authenticated)

	self := e.Group("/self", authenticated)
	self.GET("", h.Users.Self)
	self.PUT("", h.Users.UpdateSelf)
	self.POST("/password", h.Users.UpdatePassword)

	users := e.Group("/user", authenticated)
	users.GET("", h.Users.List, guard.RequireStaff(staff()))
	users.DELETE("/:id", h.Users.Delete, guard.RequireStaff(staff(domain.DeleteUser)))

	staffUsers := e.Group("/user-staff", authenticated)
	staffUsers.GET("", h.Users.ListStaff, guard.RequireStaff(staff()))
	staffUsers.POST("", h.Users.CreateStaff, guard.RequireStaff(staff(domain.CreateStaffUser)))
	staffUsers.PUT("/:id", h.Users.UpdateStaff, guard.RequireStaff(staff(domain.UpdateStaffUser)))
	staffUsers.DELETE("/:id", h.Users.DeleteStaff, guard.RequireStaff(staff(domain.DeleteStaffUser)))

	apps := e.Group("/application", authenticated)
	apps.POST("", h.Applications.Create, guard.RequireStaff(staff(domain.CreateApplication)))
	apps.GET("", h.Applications.List, guard.RequireStaff(staff()))
	apps.GET("/:id", h.Applications.Get, guard.RequireAppPermissions("id", app(domain.ReadApplication)))
	apps.PUT("/:id", h.Applications.Update, guard.RequireAppPermissions("id", app(domain.UpdateApplication)))
	apps.DELETE("/:id", h.Applications.Delete, guard.RequireAppPermissions("id", app(domain.DeleteApplication)))

	apps.GET("/:id/staff", h.Applications.ListStaff, guard.RequireAppPermissions("id", app(domain.ReadApplication)))
	apps.POST("/:id/staff", h.Applications.Grant, guard.RequireAppPermissions("id", app(domain.UpdateApplication)))
	apps.PUT("/:id/staff/:user_id", h.Applications.UpdateGrant, guard.RequireAppPermissions("id", app(domain.UpdateApplication)))
	apps.DELETE("/:id/staff/:user_id", h.Applications.Revoke, guard.RequireAppPermissions("id", app(domain.UpdateApplication)))

	apps.POST("/:id/key", h.Keys.Create, guard.RequireAppPermissions("id", app(domain.CreateKey)))
	apps.GET("/:id/key", h.Keys.List, guard.RequireAppPermissions("id", app(domain.ReadKey)))
	apps.GET("/:id/key/:key_id", h.Keys.Get, guard.RequireAppPermissions("id", app(domain.ReadKeyDetail)))
	apps.PUT("/:id/key/:key_id", h.Keys.Update, guard.RequireAppPermissions("id", app(domain.UpdateKey)))
	apps.DELETE("/:id/key/:key_id", h.Keys.Delete, guard.RequireAppPermissions("id", app(domain.DeleteKey)))

	e.POST("/key/verify", h.Keys.Verify)
	return e
}
