package share

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"

	"github.com/healthpass/healthpass/internal/platform/auth"
	"github.com/healthpass/healthpass/internal/platform/qr"
	"github.com/healthpass/healthpass/pkg/pagination"
)

type Handler struct {
	svc    *Service
	qrSize int
}

func NewHandler(svc *Service, qrSize int) *Handler {
	if qrSize <= 0 {
		qrSize = qr.DefaultSize
	}
	return &Handler{svc: svc, qrSize: qrSize}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	owner := auth.RequireRole("patient", "doctor", "admin")
	selfOrClinician := auth.RequireSelfOrRole("doctor", "admin")

	api.POST("/share-tokens", h.CreateToken, owner)
	api.GET("/share-tokens/:id", h.GetToken, owner)
	api.POST("/share-tokens/:id/deactivate", h.DeactivateToken, owner)
	api.GET("/share-tokens/:id/qr.png", h.TokenQR, owner)
	api.GET("/patients/:id/share-tokens", h.ListByPatient, selfOrClinician)
	api.GET("/patients/:id/share-tokens/latest", h.LatestActive, selfOrClinician)

	// The payload itself is the credential here; the route carries no auth
	// so a scanning device without an account can resolve a code.
	api.POST("/shares/resolve", h.Resolve)
}

type createTokenRequest struct {
	PatientID   uuid.UUID   `json:"patient_id"`
	AccessLevel AccessLevel `json:"access_level"`
	TTL         string      `json:"ttl,omitempty"`
	MaxUsage    *int        `json:"max_usage,omitempty"`
}

// canAccess limits token operations to the owning patient or a clinical role.
// The token routes key on token id, not patient id, so the self-check has to
// happen after the owner is known rather than in route middleware.
func canAccess(c echo.Context, patientID uuid.UUID) bool {
	ctx := c.Request().Context()
	if auth.UserIDFromContext(ctx) == patientID.String() {
		return true
	}
	return auth.HasRole(ctx, "doctor")
}

func (h *Handler) CreateToken(c echo.Context) error {
	var req createTokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.PatientID == uuid.Nil {
		if sub, err := uuid.Parse(auth.UserIDFromContext(c.Request().Context())); err == nil {
			req.PatientID = sub
		}
	}
	if !canAccess(c, req.PatientID) {
		return echo.NewHTTPError(http.StatusForbidden, "cannot issue a share token for another patient")
	}
	var ttl time.Duration
	if req.TTL != "" {
		var err error
		ttl, err = time.ParseDuration(req.TTL)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid ttl")
		}
	}
	t, err := h.svc.CreateToken(c.Request().Context(), req.PatientID, req.AccessLevel, ttl, req.MaxUsage)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	payload, err := Encode(t)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":   t,
		"payload": payload,
	})
}

func (h *Handler) GetToken(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetToken(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "share token not found")
	}
	if !canAccess(c, t.PatientID) {
		return echo.NewHTTPError(http.StatusForbidden, "not your share token")
	}
	return c.JSON(http.StatusOK, t)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) LatestActive(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	t, err := h.svc.LatestActive(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "no active share token")
	}
	payload, err := Encode(t)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":   t,
		"payload": payload,
	})
}

func (h *Handler) DeactivateToken(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetToken(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "share token not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canAccess(c, t.PatientID) {
		return echo.NewHTTPError(http.StatusForbidden, "not your share token")
	}
	if err := h.svc.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "share token not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) TokenQR(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	t, err := h.svc.GetToken(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "share token not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !canAccess(c, t.PatientID) {
		return echo.NewHTTPError(http.StatusForbidden, "not your share token")
	}
	png, err := h.svc.QRCode(c.Request().Context(), id, h.qrSize)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return echo.NewHTTPError(http.StatusNotFound, "share token not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Response().Header().Set("Content-Disposition", `attachment; filename="health-share.png"`)
	return c.Blob(http.StatusOK, "image/png", png)
}

type resolveRequest struct {
	Payload string `json:"payload"`
}

func (h *Handler) Resolve(c echo.Context) error {
	var req resolveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	summary, err := h.svc.ResolveText(c.Request().Context(), req.Payload)
	if err != nil {
		switch {
		case errors.Is(err, ErrMalformedPayload):
			return echo.NewHTTPError(http.StatusBadRequest, "malformed share payload")
		case errors.Is(err, ErrTokenExpired):
			return echo.NewHTTPError(http.StatusGone, "share token is no longer valid")
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "patient not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, summary)
}
