package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"smartfactory/pkg/database"
)

// HealthCheck reports service and database health
func HealthCheck(c echo.Context) error {
	dbStatus := "ok"
	if err := database.Ping(c.Request().Context()); err != nil {
		dbStatus = "unavailable"
	}

	status := http.StatusOK
	if dbStatus != "ok" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
