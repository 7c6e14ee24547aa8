package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartfactory/internal/model"
	"smartfactory/pkg/jwtutil"
	"smartfactory/pkg/logger"
)

// AuthMiddleware validates the JWT token and stores the authenticated
// principal (user id, email, role) in the request context.
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)

		// Get the Authorization header
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		// Check if it's a Bearer token
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		// Validate the token
		claims, err := jwtutil.ValidateToken(parts[1])
		if err != nil {
			log.Warn("Invalid JWT token", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", model.Role(claims.Role))

		return next(c)
	}
}

// UserIDFromContext retrieves the authenticated user's id from the context.
func UserIDFromContext(c echo.Context) uint {
	userID, _ := c.Get("user_id").(uint)
	return userID
}

// RoleFromContext retrieves the authenticated user's role from the context.
func RoleFromContext(c echo.Context) model.Role {
	role, _ := c.Get("role").(model.Role)
	return role
}
