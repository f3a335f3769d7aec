package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/application"
)

type KeysHandler struct {
	service KeyAPI
}

func NewKeysHandler(service KeyAPI) *KeysHandler {
	return &KeysHandler{service: service}
}

func (h *KeysHandler) Create(c echo.Context) error {
	var req struct {
		UserID   string `json:"user_id" validate:"required"`
		Lifetime int64  `json:"lifetime" validate:"required,gt=0"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	capability, _ := middleware.CapabilityFrom(c)
	key, err := h.service.Create(c.Request().Context(), c.Param("id"), capability.UserID(), application.KeyInput{
		UserID:   req.UserID,
		Lifetime: req.Lifetime,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusCreated, key)
}

func (h *KeysHandler) List(c echo.Context) error {
	filter, err := keyFilter(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.Request().Context(), c.Param("id"), filter)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, page)
}

func (h *KeysHandler) Get(c echo.Context) error {
	key, err := h.service.Get(c.Request().Context(), c.Param("id"), c.Param("key_id"))
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, key)
}

func (h *KeysHandler) Update(c echo.Context) error {
	var req struct {
		Lifetime *int64 `json:"lifetime" validate:"omitempty,gt=0"`
		IsBanned *bool  `json:"is_banned"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	key, err := h.service.Update(c.Request().Context(), c.Param("id"), c.Param("key_id"), application.KeyUpdate{
		Lifetime: req.Lifetime,
		IsBanned: req.IsBanned,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, key)
}

func (h *KeysHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id"), c.Param("key_id")); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

// Verify is public: anyone holding a key value may check it.
func (h *KeysHandler) Verify(c echo.Context) error {
	var req struct {
		Value string `json:"value" validate:"required"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.Verify(c.Request().Context(), req.Value)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, result)
}
