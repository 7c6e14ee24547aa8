package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartfactory/internal/lifecycle"
	"smartfactory/internal/middleware"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

// CreateProductionRequest records a transformation operation on a lot.
type CreateProductionRequest struct {
	LotID                 uint             `json:"lot_id"`
	Operation             string           `json:"operation"`
	InputQuantity         decimal.Decimal  `json:"input_quantity"`
	OutputQuantity        decimal.Decimal  `json:"output_quantity"`
	OperatorNotes         string           `json:"operator_notes"`
	TemperatureMaintained *decimal.Decimal `json:"temperature_maintained"`
	Duration              int              `json:"duration"`
}

func validOperation(op string) bool {
	switch op {
	case model.OperationGrinding, model.OperationSeasoning, model.OperationMixing, model.OperationOther:
		return true
	}
	return false
}

// CreateProduction records a grinding, seasoning or mixing operation and
// moves the lot to the status the operation leaves it in. Repeat operations
// against the same lot are allowed within the transformation states.
func CreateProduction(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_production")(time.Now())

	var req CreateProductionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid production payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.LotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id is required"})
	}
	if !validOperation(req.Operation) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown operation"})
	}
	if !req.InputQuantity.IsPositive() || req.OutputQuantity.IsNegative() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quantities"})
	}

	db := database.GetDB()
	before, err := lifecycle.FindLot(db, req.LotID)
	if err != nil {
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	target := lifecycle.TargetForOperation(req.Operation)
	var production *model.Production
	_, err = lifecycle.Transition(db, req.LotID, target, func(tx *gorm.DB, lot *model.Lot) error {
		production = &model.Production{
			LotID:                 lot.ID,
			Operation:             req.Operation,
			InputQuantity:         req.InputQuantity,
			OutputQuantity:        req.OutputQuantity,
			OperatorNotes:         req.OperatorNotes,
			TemperatureMaintained: req.TemperatureMaintained,
			Duration:              req.Duration,
			OperatorID:            middleware.UserIDFromContext(c),
			Status:                model.ProductionStatusCompleted,
		}
		return tx.Create(production).Error
	})
	if err != nil {
		prometheus.RecordRejectedTransition(string(target))
		log.Warn("Production operation rejected",
			zap.Uint("lot_id", req.LotID),
			zap.String("operation", req.Operation),
			zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(before.Status), string(target))
	log.Info("Production operation recorded",
		zap.Uint("production_id", production.ID),
		zap.String("operation", req.Operation))
	return c.JSON(http.StatusCreated, production)
}

// ListProductions returns production operations, optionally filtered by lot.
func ListProductions(c echo.Context) error {
	db := database.GetDB().Preload("Lot")
	if lotID := c.QueryParam("lot_id"); lotID != "" {
		db = db.Where("lot_id = ?", lotID)
	}

	var productions []model.Production
	if err := db.Order("created_at DESC").Find(&productions).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list productions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch productions"})
	}
	return c.JSON(http.StatusOK, productions)
}

// GetProduction returns one production operation.
func GetProduction(c echo.Context) error {
	var production model.Production
	if err := database.GetDB().Preload("Lot").First(&production, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "production not found"})
	}
	return c.JSON(http.StatusOK, production)
}

// UpdateProductionStatus pauses, resumes or completes a recorded operation.
func UpdateProductionStatus(c echo.Context) error {
	log := logger.FromEcho(c)

	var production model.Production
	if err := database.GetDB().First(&production, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "production not found"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	switch req.Status {
	case model.ProductionStatusInProgress, model.ProductionStatusCompleted, model.ProductionStatusPaused:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown production status"})
	}

	if err := database.GetDB().Model(&production).Update("status", req.Status).Error; err != nil {
		log.Error("Failed to update production status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update production"})
	}

	production.Status = req.Status
	log.Info("Production status updated",
		zap.Uint("production_id", production.ID),
		zap.String("status", production.Status))
	return c.JSON(http.StatusOK, production)
}

// ProductionStatistics aggregates operation counts, throughput and yield per
// operation type.
func ProductionStatistics(c echo.Context) error {
	log := logger.FromEcho(c)

	var rows []struct {
		Operation   string          `json:"operation"`
		Count       int64           `json:"count"`
		TotalInput  decimal.Decimal `json:"total_input"`
		TotalOutput decimal.Decimal `json:"total_output"`
		AvgDuration float64         `json:"avg_duration"`
	}
	err := database.GetDB().Model(&model.Production{}).
		Select("operation, COUNT(*) AS count, COALESCE(SUM(input_quantity), 0) AS total_input, COALESCE(SUM(output_quantity), 0) AS total_output, COALESCE(AVG(duration), 0) AS avg_duration").
		Group("operation").
		Scan(&rows).Error
	if err != nil {
		log.Error("Failed to aggregate production statistics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute statistics"})
	}

	type stat struct {
		Operation   string          `json:"operation"`
		Count       int64           `json:"count"`
		TotalInput  decimal.Decimal `json:"total_input"`
		TotalOutput decimal.Decimal `json:"total_output"`
		AvgDuration float64         `json:"avg_duration_minutes"`
		YieldPct    decimal.Decimal `json:"yield_pct"`
	}
	stats := make([]stat, 0, len(rows))
	for _, row := range rows {
		yield := decimal.Zero
		if row.TotalInput.IsPositive() {
			yield = row.TotalOutput.Div(row.TotalInput).Mul(decimal.NewFromInt(100)).Round(2)
		}
		stats = append(stats, stat{
			Operation:   row.Operation,
			Count:       row.Count,
			TotalInput:  row.TotalInput,
			TotalOutput: row.TotalOutput,
			AvgDuration: row.AvgDuration,
			YieldPct:    yield,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"statistics": stats})
}
