package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartfactory/internal/model"
	"smartfactory/pkg/logger"
)

// Capability names one protected operation of the API. The role-to-capability
// table below is the single authorization source; handlers never check roles
// themselves.
type Capability string

const (
	CapReceptionCreate    Capability = "reception:create"
	CapLotCreate          Capability = "lot:create"
	CapCuttingWrite       Capability = "cutting:write"
	CapProductionWrite    Capability = "production:write"
	CapProductionModerate Capability = "production:moderate"
	CapPackagingWrite     Capability = "packaging:write"
	CapQualityWrite       Capability = "quality:write"
	CapOrderCreate        Capability = "order:create"
	CapOrderPrepare       Capability = "order:prepare"
	CapShippingCreate     Capability = "shipping:create"
	CapShippingDeliver    Capability = "shipping:deliver"
	CapMaintenanceReport  Capability = "maintenance:report"
	CapMachineModerate    Capability = "machine:moderate"
	CapDashboardDirector  Capability = "dashboard:director"
	CapDashboardProd      Capability = "dashboard:production"
	CapDashboardQuality   Capability = "dashboard:quality"
	CapDashboardMachines  Capability = "dashboard:machines"
)

// capabilityRoles is the closed role-to-operation mapping, mirroring who may
// act at each stage on the floor.
var capabilityRoles = map[Capability][]model.Role{
	CapReceptionCreate:    {model.RoleQualityManager, model.RoleAdmin, model.RoleDirector, model.RoleProductionManager},
	CapLotCreate:          {model.RoleQualityManager, model.RoleAdmin, model.RoleDirector, model.RoleProductionManager},
	CapCuttingWrite:       {model.RoleOperator, model.RoleProductionManager, model.RoleAdmin, model.RoleDirector},
	CapProductionWrite:    {model.RoleOperator, model.RoleProductionManager, model.RoleDirector, model.RoleAdmin},
	CapProductionModerate: {model.RoleProductionManager, model.RoleDirector, model.RoleAdmin},
	CapPackagingWrite:     {model.RoleOperator, model.RoleProductionManager, model.RoleAdmin, model.RoleDirector},
	CapQualityWrite:       {model.RoleQualityManager, model.RoleAdmin, model.RoleDirector},
	CapOrderCreate:        {model.RoleSales, model.RoleAdmin, model.RoleProductionManager, model.RoleDirector},
	CapOrderPrepare:       {model.RoleProductionManager, model.RoleAdmin, model.RoleDirector},
	CapShippingCreate:     {model.RoleProductionManager, model.RoleAdmin, model.RoleSales, model.RoleDirector},
	CapShippingDeliver:    {model.RoleAdmin, model.RoleProductionManager, model.RoleDirector},
	CapMaintenanceReport:  {model.RoleTechnician, model.RoleAdmin, model.RoleDirector, model.RoleProductionManager},
	CapMachineModerate:    {model.RoleTechnician, model.RoleAdmin, model.RoleDirector},
	CapDashboardDirector:  {model.RoleDirector, model.RoleAdmin},
	CapDashboardProd:      {model.RoleDirector, model.RoleProductionManager, model.RoleAdmin},
	CapDashboardQuality:   {model.RoleDirector, model.RoleQualityManager, model.RoleAdmin},
	CapDashboardMachines:  {model.RoleDirector, model.RoleTechnician, model.RoleAdmin},
}

// Allowed reports whether the role holds the capability.
func Allowed(role model.Role, cap Capability) bool {
	for _, allowed := range capabilityRoles[cap] {
		if allowed == role {
			return true
		}
	}
	return false
}

// RequireCapability rejects requests whose authenticated role does not hold
// the capability. It must run after AuthMiddleware.
func RequireCapability(cap Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c)
			if !Allowed(role, cap) {
				logger.FromEcho(c).Warn("Access denied",
					zap.String("role", string(role)),
					zap.String("capability", string(cap)))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied - insufficient permissions"})
			}
			return next(c)
		}
	}
}
