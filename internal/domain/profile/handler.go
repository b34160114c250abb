package profile

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
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
	clinician := auth.RequireRole("doctor", "admin")
	selfOrClinician := auth.RequireSelfOrRole("doctor", "admin")

	api.GET("/profiles", h.ListProfiles, clinician)
	api.GET("/profiles/:id", h.GetProfile, selfOrClinician)
	api.POST("/profiles", h.CreateProfile, auth.RequireRole("patient", "doctor", "admin"))
	api.PUT("/profiles/:id", h.UpdateProfile, selfOrClinician)
	api.DELETE("/profiles/:id", h.DeleteProfile, auth.RequireRole("admin"))
	api.POST("/profiles/:id/wallet", h.AttachWallet, auth.RequireSelfOrRole("admin"))
}

func (h *Handler) CreateProfile(c echo.Context) error {
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if p.ID == uuid.Nil {
		// Profile rows are keyed by the auth subject when it is a UUID.
		if sub, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			p.ID = sub
		}
	}
	if err := h.svc.CreateProfile(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListProfiles(c echo.Context) error {
	pg := pagination.FromContext(c)
	params := map[string]string{}
	if name := c.QueryParam("name"); name != "" {
		params["name"] = name
	}
	if gender := c.QueryParam("gender"); gender != "" {
		params["gender"] = gender
	}
	items, total, err := h.svc.SearchProfiles(c.Request().Context(), params, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var p Profile
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	p.ID = id
	if err := h.svc.UpdateProfile(c.Request().Context(), &p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProfile(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteProfile(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type attachWalletRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

func (h *Handler) AttachWallet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req attachWalletRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AttachWallet(c.Request().Context(), id, req.Address, req.Signature); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "profile not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"wallet_address":  req.Address,
		"wallet_verified": true,
	})
}
