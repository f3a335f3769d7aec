package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/application"
	"account-service/internal/domain"
)

type AuthHandler struct {
	service AuthAPI
}

func NewAuthHandler(service AuthAPI) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Name     string      `json:"name" validate:"required,max=255"`
		Email    string      `json:"email" validate:"required,email,max=255"`
		Password string      `json:"password" validate:"required,min=6,max=72"`
		Birthday domain.Date `json:"birthday"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.Register(c.Request().Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Birthday: req.Birthday,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	pair, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, pair)
}

// Logout revokes the presented token and its sibling. The guard has already
// validated the token; the raw value is read again to locate the pair.
func (h *AuthHandler) Logout(c echo.Context) error {
	token, err := middleware.BearerToken(c)
	if err != nil {
		return err
	}
	if err := h.service.Logout(c.Request().Context(), token); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	capability, _ := middleware.CapabilityFrom(c)
	n, err := h.service.LogoutAll(c.Request().Context(), capability.UserID())
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, map[string]int{"revoked": n})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token" validate:"required"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	pair, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, pair)
}

func (h *AuthHandler) Introspect(c echo.Context) error {
	var req struct {
		Token         string `json:"token"`
		TokenTypeHint string `json:"token_type_hint"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, h.service.Introspect(c.Request().Context(), req.Token, req.TokenTypeHint))
}
