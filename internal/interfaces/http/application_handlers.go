package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/application"
	"account-service/internal/domain"
)

type ApplicationsHandler struct {
	service ApplicationAPI
}

func NewApplicationsHandler(service ApplicationAPI) *ApplicationsHandler {
	return &ApplicationsHandler{service: service}
}

func (h *ApplicationsHandler) Create(c echo.Context) error {
	var req struct {
		Name        string `json:"name" validate:"required,max=255"`
		Description string `json:"description" validate:"max=2048"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	capability, _ := middleware.CapabilityFrom(c)
	app, err := h.service.Create(c.Request().Context(), capability.UserID(), application.ApplicationInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusCreated, app)
}

// List only returns applications the caller can read.
func (h *ApplicationsHandler) List(c echo.Context) error {
	filter, err := applicationFilter(c)
	if err != nil {
		return err
	}
	capability, _ := middleware.CapabilityFrom(c)
	page, err := h.service.List(c.Request().Context(), capability.UserID(), filter)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, page)
}

func (h *ApplicationsHandler) Get(c echo.Context) error {
	app, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, app)
}

func (h *ApplicationsHandler) Update(c echo.Context) error {
	var req struct {
		Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
		Description *string `json:"description" validate:"omitempty,max=2048"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	app, err := h.service.Update(c.Request().Context(), c.Param("id"), application.ApplicationUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, app)
}

func (h *ApplicationsHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *ApplicationsHandler) ListStaff(c echo.Context) error {
	page, err := pagination(c)
	if err != nil {
		return err
	}
	grants, err := h.service.ListStaff(c.Request().Context(), c.Param("id"), page)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, grants)
}

func (h *ApplicationsHandler) Grant(c echo.Context) error {
	var req struct {
		UserID      string                 `json:"user_id" validate:"required"`
		Permissions []domain.AppPermission `json:"permissions"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	grant, err := h.service.Grant(c.Request().Context(), c.Param("id"), req.UserID, req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusCreated, grant)
}

func (h *ApplicationsHandler) UpdateGrant(c echo.Context) error {
	var req struct {
		Permissions []domain.AppPermission `json:"permissions"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	grant, err := h.service.UpdateGrant(c.Request().Context(), c.Param("id"), c.Param("user_id"), req.Permissions)
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, grant)
}

func (h *ApplicationsHandler) Revoke(c echo.Context) error {
	if err := h.service.Revoke(c.Request().Context(), c.Param("id"), c.Param("user_id")); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}
