package handler // handler package contains admin user-management handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gracechapel/livestream/internal/model"
	"github.com/gracechapel/livestream/internal/repository"
)

// AdminHandler bundles dependencies for the admin dashboard endpoints.
type AdminHandler struct {
	Users  *repository.UserRepo
	Events *repository.EventRepo
	Videos *repository.VideoRepo
}

func NewAdminHandler(u *repository.UserRepo, e *repository.EventRepo, v *repository.VideoRepo) *AdminHandler {
	return &AdminHandler{Users: u, Events: e, Videos: v}
}

// ListUsers handles GET /v1/admin/users and returns every account so pending
// registrations can be reviewed.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, echo.Map{"users": out})
}

// SetApproval handles PATCH /v1/admin/users/:id/approval.  Setting the flag
// to its current value is a no-op and still succeeds, so the endpoint is
// safe to retry.
func (h *AdminHandler) SetApproval(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		IsApproved *bool `json:"is_approved"`
	}
	if err := c.Bind(&body); err != nil || body.IsApproved == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_approved required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetApproval(ctx, id, *body.IsApproved); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// SetRole handles PATCH /v1/admin/users/:id/role.  Idempotent like
// SetApproval; the role value is validated against the known enum.
func (h *AdminHandler) SetRole(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	var body struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	role := strings.ToLower(strings.TrimSpace(body.Role))
	if !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be user or admin"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.SetRole(ctx, id, role); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

// pathID parses the :id path parameter shared by the admin routes.
func pathID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
