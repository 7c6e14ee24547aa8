package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"smartfactory/internal/middleware"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/jwtutil"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

// RegisterRequest defines the structure for user registration requests
type RegisterRequest struct {
	Email      string     `json:"email"`
	Password   string     `json:"password"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       model.Role `json:"role"`
	Department string     `json:"department"`
}

// userResponse is the public view of a user returned by auth endpoints.
type userResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Role      model.Role `json:"role"`
}

// Register handles creating a new user account
func Register(c echo.Context) error {
	log := logger.FromEcho(c)

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password, first_name and last_name are required"})
	}

	role := req.Role
	if role == "" {
		role = model.RoleOperator
	}
	if !model.ValidRole(role) {
		log.Warn("Unknown role in registration", zap.String("role", string(role)))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	var count int64
	database.GetDB().Model(&model.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		log.Warn("Email already registered", zap.String("email", req.Email))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email already exists"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("Failed to hash password", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	user := model.User{
		Email:      req.Email,
		Password:   string(hash),
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Role:       role,
		Department: req.Department,
		Active:     true,
	}
	if err := database.GetDB().Create(&user).Error; err != nil {
		log.Error("Failed to create user", zap.String("email", req.Email), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	token, err := jwtutil.GenerateToken(user.Email, user.ID, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User registered",
		zap.Uint("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusCreated, echo.Map{
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		"token": token,
	})
}

// Login handles authenticating a user and issuing a JWT
func Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.AuthAttemptsCounter.Inc()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse login request", zap.Error(err))
		prometheus.RecordAuthError("invalid_request")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	var user model.User
	result := database.GetDB().Where("email = ?", req.Email).First(&user)
	if result.Error != nil || !user.Active {
		log.Warn("Login failed", zap.String("email", req.Email))
		prometheus.RecordAuthError("user_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		log.Warn("Invalid password", zap.String("email", req.Email))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	now := time.Now()
	database.GetDB().Model(&user).Update("last_login", now)

	token, err := jwtutil.GenerateToken(user.Email, user.ID, string(user.Role))
	if err != nil {
		log.Error("Failed to generate token", zap.Error(err))
		prometheus.RecordAuthError("token_generation_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token error"})
	}

	log.Info("User logged in",
		zap.Uint("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusOK, echo.Map{
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Role:      user.Role,
		},
		"token": token,
	})
}

// Profile returns the authenticated user's record
func Profile(c echo.Context) error {
	log := logger.FromEcho(c)
	userID := middleware.UserIDFromContext(c)

	var user model.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		log.Error("User not found", zap.Uint("user_id", userID), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, user)
}
