package http

import (
	stdhttp "net/http"

	"github.com/labstack/echo/v4"

	"account-service/internal/adapters/http/middleware"
	"account-service/internal/application"
	"account-service/internal/domain"
)

type UsersHandler struct {
	service UserAPI
}

func NewUsersHandler(service UserAPI) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) Self(c echo.Context) error {
	capability, _ := middleware.CapabilityFrom(c)
	user, err := h.service.Get(c.Request().Context(), capability.UserID())
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) UpdateSelf(c echo.Context) error {
	var req struct {
		Name     *string      `json:"name" validate:"omitempty,min=1,max=255"`
		Birthday *domain.Date `json:"birthday"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	capability, _ := middleware.CapabilityFrom(c)
	user, err := h.service.UpdateProfile(c.Request().Context(), capability.UserID(), application.ProfileUpdate{
		Name:     req.Name,
		Birthday: req.Birthday,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) UpdatePassword(c echo.Context) error {
	var req struct {
		OldPassword string `json:"old_password" validate:"required"`
		NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	capability, _ := middleware.CapabilityFrom(c)
	if err := h.service.UpdatePassword(c.Request().Context(), capability.UserID(), req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *UsersHandler) listOf(staff bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter, err := userFilter(c)
		if err != nil {
			return err
		}
		page, err := h.service.List(c.Request().Context(), filter, staff)
		if err != nil {
			return err
		}
		return c.JSON(stdhttp.StatusOK, page)
	}
}

func (h *UsersHandler) List(c echo.Context) error      { return h.listOf(false)(c) }
func (h *UsersHandler) ListStaff(c echo.Context) error { return h.listOf(true)(c) }

func (h *UsersHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}

func (h *UsersHandler) CreateStaff(c echo.Context) error {
	var req struct {
		Name        string                   `json:"name" validate:"required,max=255"`
		Email       string                   `json:"email" validate:"required,email,max=255"`
		Password    string                   `json:"password" validate:"required,min=6,max=72"`
		Birthday    domain.Date              `json:"birthday"`
		Permissions []domain.StaffPermission `json:"staff_permissions"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.CreateStaff(c.Request().Context(), application.StaffInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		Birthday:    req.Birthday,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusCreated, user)
}

func (h *UsersHandler) UpdateStaff(c echo.Context) error {
	var req struct {
		Name        *string                   `json:"name" validate:"omitempty,min=1,max=255"`
		Permissions *[]domain.StaffPermission `json:"staff_permissions"`
	}
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateStaff(c.Request().Context(), c.Param("id"), application.StaffUpdate{
		Name:        req.Name,
		Permissions: req.Permissions,
	})
	if err != nil {
		return err
	}
	return c.JSON(stdhttp.StatusOK, user)
}

func (h *UsersHandler) DeleteStaff(c echo.Context) error {
	if err := h.service.DeleteStaff(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(stdhttp.StatusNoContent)
}
