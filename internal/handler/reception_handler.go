package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartfactory/internal/lifecycle"
	"smartfactory/internal/middleware"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

// CreateReceptionRequest carries a raw-material delivery and its entry controls.
type CreateReceptionRequest struct {
	Supplier             string           `json:"supplier"`
	ProductType          string           `json:"product_type"`
	Quantity             decimal.Decimal  `json:"quantity"`
	Unit                 string           `json:"unit"`
	SlaughterDate        *time.Time       `json:"slaughter_date"`
	TransportTemperature *decimal.Decimal `json:"transport_temperature"`
	SanitaryCertificate  string           `json:"sanitary_certificate"`
	VisualControl        bool             `json:"visual_control"`
	SmellControl         bool             `json:"smell_control"`
	TemperatureControl   *decimal.Decimal `json:"temperature_control"`
	ColdChainVerified    bool             `json:"cold_chain_verified"`
	Notes                string           `json:"notes"`
}

// CreateReception records a delivery. Accepted deliveries create a lot with
// its QR code; rejected ones only keep the audit trail.
func CreateReception(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_reception")(time.Now())

	var req CreateReceptionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid reception payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Supplier == "" || req.ProductType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "supplier and product_type are required"})
	}
	if !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	result, err := lifecycle.AcceptReception(database.GetDB(), lifecycle.ReceptionInput{
		Supplier:             req.Supplier,
		ProductType:          req.ProductType,
		Quantity:             req.Quantity,
		Unit:                 req.Unit,
		SlaughterDate:        req.SlaughterDate,
		TransportTemperature: req.TransportTemperature,
		SanitaryCertificate:  req.SanitaryCertificate,
		VisualControl:        req.VisualControl,
		SmellControl:         req.SmellControl,
		TemperatureControl:   req.TemperatureControl,
		ColdChainVerified:    req.ColdChainVerified,
		Notes:                req.Notes,
	}, middleware.UserIDFromContext(c))
	if err != nil {
		log.Error("Failed to record reception", zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	if !result.Accepted {
		prometheus.RecordReception("rejected")
		log.Warn("Reception rejected",
			zap.Uint("reception_id", result.Reception.ID),
			zap.String("supplier", req.Supplier))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     "reception rejected: entry controls failed",
			"reception": result.Reception,
		})
	}

	prometheus.RecordReception("accepted")
	log.Info("Reception accepted",
		zap.Uint("reception_id", result.Reception.ID),
		zap.String("lot_number", result.Lot.LotNumber))
	return c.JSON(http.StatusCreated, echo.Map{
		"reception": result.Reception,
		"lot":       result.Lot,
	})
}

// ListReceptions returns all receptions, newest first.
func ListReceptions(c echo.Context) error {
	var receptions []model.Reception
	if err := database.GetDB().Order("reception_date DESC").Find(&receptions).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list receptions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch receptions"})
	}
	return c.JSON(http.StatusOK, receptions)
}

// GetReception returns one reception by id.
func GetReception(c echo.Context) error {
	var reception model.Reception
	if err := database.GetDB().First(&reception, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reception not found"})
	}
	return c.JSON(http.StatusOK, reception)
}
