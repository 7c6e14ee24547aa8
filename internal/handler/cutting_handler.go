package handler

import (
	"errors"
	"net/http"
	"strconv"
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

// CreateCuttingRequest starts a cutting run on a received lot. All four
// hygiene booleans must be true.
type CreateCuttingRequest struct {
	LotID             uint            `json:"lot_id"`
	InputQuantity     decimal.Decimal `json:"input_quantity"`
	HandWashing       bool            `json:"hand_washing"`
	KnifeDisinfection bool            `json:"knife_disinfection"`
	EquipmentWorn     bool            `json:"equipment_worn"`
	SurfaceCleaned    bool            `json:"surface_cleaned"`
	Notes             string          `json:"notes"`
}

// CreateCutting starts a cutting run, applying the hygiene gate first.
func CreateCutting(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_cutting")(time.Now())

	var req CreateCuttingRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid cutting payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.LotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id is required"})
	}
	if !req.InputQuantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "input_quantity must be positive"})
	}

	cutting, err := lifecycle.CreateCutting(database.GetDB(), lifecycle.CuttingInput{
		LotID:             req.LotID,
		InputQuantity:     req.InputQuantity,
		HandWashing:       req.HandWashing,
		KnifeDisinfection: req.KnifeDisinfection,
		EquipmentWorn:     req.EquipmentWorn,
		SurfaceCleaned:    req.SurfaceCleaned,
		Notes:             req.Notes,
	}, middleware.UserIDFromContext(c))
	if err != nil {
		var precondition *lifecycle.PreconditionError
		if errors.As(err, &precondition) {
			prometheus.HygieneGateFailuresCounter.Inc()
			log.Warn("Hygiene gate failed",
				zap.Uint("lot_id", req.LotID),
				zap.Strings("failed_checks", precondition.Failed))
		} else {
			log.Error("Failed to create cutting", zap.Uint("lot_id", req.LotID), zap.Error(err))
		}
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(model.LotStatusReceived), string(model.LotStatusCutting))
	log.Info("Cutting started",
		zap.Uint("cutting_id", cutting.ID),
		zap.Uint("lot_id", cutting.LotID))
	return c.JSON(http.StatusCreated, cutting)
}

// CompleteCuttingRequest finalizes a cutting run with its output quantity.
type CompleteCuttingRequest struct {
	OutputQuantity decimal.Decimal `json:"output_quantity"`
}

// CompleteCutting records the output, derives wastage and advances the lot
// to grinding.
func CompleteCutting(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid cutting id"})
	}

	var req CompleteCuttingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.OutputQuantity.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "output_quantity must not be negative"})
	}

	cutting, err := lifecycle.CompleteCutting(database.GetDB(), uint(id), req.OutputQuantity)
	if err != nil {
		log.Error("Failed to complete cutting", zap.Uint64("cutting_id", id), zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(model.LotStatusCutting), string(model.LotStatusGrinding))
	log.Info("Cutting completed",
		zap.Uint("cutting_id", cutting.ID),
		zap.String("wastage", cutting.Wastage.String()))
	return c.JSON(http.StatusOK, cutting)
}

// ListCuttings returns cutting runs with their lots, newest first, optionally
// filtered by lot.
func ListCuttings(c echo.Context) error {
	db := database.GetDB().Preload("Lot")
	if lotID := c.QueryParam("lot_id"); lotID != "" {
		db = db.Where("lot_id = ?", lotID)
	}

	var cuttings []model.Cutting
	if err := db.Order("created_at DESC").Find(&cuttings).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list cuttings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch cuttings"})
	}
	return c.JSON(http.StatusOK, cuttings)
}
