package roles

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/healthpass/healthpass/internal/platform/auth"
	"github.com/healthpass/healthpass/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := auth.RequireRole("admin")

	api.GET("/users", h.ListUsers, admin)
	api.GET("/users/:id/roles", h.ListUserRoles, admin)
	api.POST("/users/:id/roles", h.AddRole, admin)
	api.DELETE("/users/:id/roles/:role", h.RemoveRole, admin)
}

func (h *Handler) ListUsers(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListUsersWithRoles(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListUserRoles(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	items, err := h.svc.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

type addRoleRequest struct {
	Role string `json:"role"`
}

func (h *Handler) AddRole(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var req addRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ur, err := h.svc.AddRole(c.Request().Context(), userID, req.Role)
	if err != nil {
		if errors.Is(err, ErrDuplicateRole) {
			return echo.NewHTTPError(http.StatusConflict, ErrDuplicateRole.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, ur)
}

func (h *Handler) RemoveRole(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.RemoveRole(c.Request().Context(), userID, c.Param("role")); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
