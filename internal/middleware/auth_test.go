package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"smartfactory/internal/model"
	"smartfactory/pkg/config"
	"smartfactory/pkg/jwtutil"
)

func protectedEcho(t *testing.T) (echo.HandlerFunc, *echo.Echo) {
	t.Helper()
	jwtutil.Initialize(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	e := echo.New()
	handler := AuthMiddleware(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": UserIDFromContext(c),
			"role":    RoleFromContext(c),
		})
	})
	return handler, e
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	handler, e := protectedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lots", nil)
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareMalformedHeader(t *testing.T) {
	handler, e := protectedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lots", nil)
	req.Header.Set("Authorization", "Token abc123")
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	handler, e := protectedEcho(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lots", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	if err := handler(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	handler, e := protectedEcho(t)

	token, err := jwtutil.GenerateToken("operator@atlas.com", 42, string(model.RoleOperator))
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/lots", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := handler(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := UserIDFromContext(c); got != 42 {
		t.Errorf("user_id = %d, want 42", got)
	}
	if got := RoleFromContext(c); got != model.RoleOperator {
		t.Errorf("role = %s, want operator", got)
	}
}
