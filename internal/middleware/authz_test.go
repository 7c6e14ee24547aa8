package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"smartfactory/internal/model"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		role    model.Role
		cap     Capability
		allowed bool
	}{
		{model.RoleQualityManager, CapReceptionCreate, true},
		{model.RoleOperator, CapReceptionCreate, false},
		{model.RoleProductionManager, CapLotCreate, true},
		{model.RoleOperator, CapLotCreate, false},
		{model.RoleOperator, CapCuttingWrite, true},
		{model.RoleOperator, CapProductionModerate, false},
		{model.RoleSales, CapOrderCreate, true},
		{model.RoleSales, CapOrderPrepare, false},
		{model.RoleTechnician, CapMaintenanceReport, true},
		{model.RoleTechnician, CapQualityWrite, false},
		{model.RoleDirector, CapDashboardDirector, true},
		{model.RoleQualityManager, CapDashboardDirector, false},
		{model.RoleAdmin, CapShippingDeliver, true},
		{model.RoleClient, CapShippingCreate, false},
		{model.RoleAuditor, CapCuttingWrite, false},
		{"", CapCuttingWrite, false},
		{model.RoleAdmin, Capability("unknown:cap"), false},
	}

	for _, tc := range cases {
		if got := Allowed(tc.role, tc.cap); got != tc.allowed {
			t.Errorf("Allowed(%s, %s) = %v, want %v", tc.role, tc.cap, got, tc.allowed)
		}
	}
}

func TestAdminHoldsEveryCapability(t *testing.T) {
	for cap := range capabilityRoles {
		if !Allowed(model.RoleAdmin, cap) {
			t.Errorf("admin should hold %s", cap)
		}
	}
}

func TestRequireCapability(t *testing.T) {
	e := echo.New()
	handler := RequireCapability(CapQualityWrite)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	run := func(role model.Role) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/quality-controls", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set("role", role)
		if err := handler(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		return rec
	}

	if rec := run(model.RoleQualityManager); rec.Code != http.StatusOK {
		t.Errorf("quality_manager: status = %d, want 200", rec.Code)
	}
	if rec := run(model.RoleOperator); rec.Code != http.StatusForbidden {
		t.Errorf("operator: status = %d, want 403", rec.Code)
	}
}
