package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func contextWithRoles(e *echo.Echo, userID string, roles []string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	ctx := WithUser(req.Context(), userID, roles)
	c.SetRequest(req.WithContext(ctx))
	return c, rec
}

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func TestHasRole(t *testing.T) {
	ctx := WithUser(context.Background(), "u1", []string{"patient"})
	if !HasRole(ctx, "patient") {
		t.Error("expected the held role to match")
	}
	if HasRole(ctx, "doctor") {
		t.Error("expected a missing role to fail")
	}
	admin := WithUser(context.Background(), "u2", []string{"admin"})
	if !HasRole(admin, "doctor") {
		t.Error("expected admin to count for every role")
	}
	if HasRole(context.Background(), "patient") {
		t.Error("expected an unauthenticated context to fail")
	}
}

func TestRequireRole_Allows(t *testing.T) {
	e := echo.New()
	c, rec := contextWithRoles(e, "u1", []string{"doctor"})
	err := RequireRole("doctor")(okHandler)(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRoles(e, "u1", []string{"admin"})
	if err := RequireRole("doctor")(okHandler)(c); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
}

func TestRequireRole_Forbidden(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRoles(e, "u1", []string{"patient"})
	err := RequireRole("doctor")(okHandler)(c)
	if err == nil {
		t.Fatal("expected error for missing role")
	}
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestRequireSelfOrRole_SelfAllowed(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRoles(e, "u1", []string{"patient"})
	c.SetParamNames("id")
	c.SetParamValues("u1")
	if err := RequireSelfOrRole("doctor")(okHandler)(c); err != nil {
		t.Fatalf("expected self access to pass, got %v", err)
	}
}

func TestRequireSelfOrRole_OtherForbidden(t *testing.T) {
	e := echo.New()
	c, _ := contextWithRoles(e, "u1", []string{"patient"})
	c.SetParamNames("id")
	c.SetParamValues("u2")
	if err := RequireSelfOrRole("doctor")(okHandler)(c); err == nil {
		t.Error("expected error for other user's row")
	}
}
