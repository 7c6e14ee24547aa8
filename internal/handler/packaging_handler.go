package handler

import (
	"net/http"
	"strconv"
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
	"smartfactory/pkg/qr"
	"smartfactory/prometheus"
)

// Shelf life applied when the request carries no best-before date.
const defaultShelfLifeDays = 21

// CreatePackagingRequest packages a lot and issues its final consumer QR code.
type CreatePackagingRequest struct {
	LotID          uint             `json:"lot_id"`
	PackagingType  string           `json:"packaging_type"`
	Quantity       decimal.Decimal  `json:"quantity"`
	Unit           string           `json:"unit"`
	BestBeforeDate *time.Time       `json:"best_before_date"`
	Label          string           `json:"label"`
	Temperature    *decimal.Decimal `json:"temperature"`
}

func validPackagingType(t string) bool {
	switch t {
	case model.PackagingTypeVacuum, model.PackagingTypeModifiedAtmosphere, model.PackagingTypeFrozen:
		return true
	}
	return false
}

// CreatePackaging moves a transformed lot into packaging and issues the final
// QR code carrying lot number, quantities and best-before date.
func CreatePackaging(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CreatePackagingRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid packaging payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.LotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id is required"})
	}
	if !validPackagingType(req.PackagingType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown packaging type"})
	}
	if !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	db := database.GetDB()
	before, err := lifecycle.FindLot(db, req.LotID)
	if err != nil {
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	now := time.Now()
	bestBefore := now.AddDate(0, 0, defaultShelfLifeDays)
	if req.BestBeforeDate != nil {
		bestBefore = *req.BestBeforeDate
	}

	code, err := qr.EncodeDataURL(qr.FinalPayload{
		LotNumber:      before.LotNumber,
		PackagingDate:  now,
		ProductType:    before.ProductType,
		Quantity:       req.Quantity,
		BestBeforeDate: bestBefore,
		PackagingType:  req.PackagingType,
	})
	if err != nil {
		log.Error("Failed to generate final QR code", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate QR code"})
	}

	var packaging *model.Packaging
	_, err = lifecycle.Transition(db, req.LotID, model.LotStatusPackaging, func(tx *gorm.DB, lot *model.Lot) error {
		packaging = &model.Packaging{
			LotID:          lot.ID,
			PackagingDate:  now,
			QRCodeFinal:    code,
			PackagingType:  req.PackagingType,
			Quantity:       req.Quantity,
			Unit:           req.Unit,
			ProductionDate: lot.CreatedAt,
			BestBeforeDate: bestBefore,
			Label:          req.Label,
			Temperature:    req.Temperature,
			Status:         model.PackagingStatusPackaged,
			OperatorID:     middleware.UserIDFromContext(c),
		}
		return tx.Create(packaging).Error
	})
	if err != nil {
		prometheus.RecordRejectedTransition(string(model.LotStatusPackaging))
		log.Warn("Packaging rejected",
			zap.Uint("lot_id", req.LotID),
			zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(before.Status), string(model.LotStatusPackaging))
	log.Info("Lot packaged",
		zap.Uint("packaging_id", packaging.ID),
		zap.String("lot_number", before.LotNumber),
		zap.String("packaging_type", req.PackagingType))
	return c.JSON(http.StatusCreated, packaging)
}

// LabelPackaging marks a packaged record as labeled.
func LabelPackaging(c echo.Context) error {
	log := logger.FromEcho(c)

	var packaging model.Packaging
	if err := database.GetDB().First(&packaging, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "packaging not found"})
	}
	if packaging.Status != model.PackagingStatusPackaged {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "packaging is not in packaged state"})
	}

	var req struct {
		Label string `json:"label"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	updates := map[string]interface{}{"status": model.PackagingStatusLabeled}
	if req.Label != "" {
		updates["label"] = req.Label
	}
	if err := database.GetDB().Model(&packaging).Updates(updates).Error; err != nil {
		log.Error("Failed to label packaging", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update packaging"})
	}
	return c.JSON(http.StatusOK, packaging)
}

// ReadyPackaging marks a labeled package ready and moves its lot to storage.
func ReadyPackaging(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid packaging id"})
	}

	var packaging model.Packaging
	if err := database.GetDB().First(&packaging, uint(id)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "packaging not found"})
	}
	if packaging.Status != model.PackagingStatusLabeled && packaging.Status != model.PackagingStatusPackaged {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "packaging is not ready to store"})
	}

	_, err = lifecycle.Transition(database.GetDB(), packaging.LotID, model.LotStatusStorage, func(tx *gorm.DB, lot *model.Lot) error {
		return tx.Model(&model.Packaging{}).Where("id = ?", packaging.ID).
			Update("status", model.PackagingStatusReadyForStorage).Error
	})
	if err != nil {
		prometheus.RecordRejectedTransition(string(model.LotStatusStorage))
		log.Warn("Storage move rejected",
			zap.Uint("packaging_id", packaging.ID),
			zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(model.LotStatusPackaging), string(model.LotStatusStorage))
	packaging.Status = model.PackagingStatusReadyForStorage
	log.Info("Packaging ready for storage", zap.Uint("packaging_id", packaging.ID))
	return c.JSON(http.StatusOK, packaging)
}

// ListPackagings returns packaging records with their lots, newest first,
// optionally filtered by lot.
func ListPackagings(c echo.Context) error {
	db := database.GetDB().Preload("Lot")
	if lotID := c.QueryParam("lot_id"); lotID != "" {
		db = db.Where("lot_id = ?", lotID)
	}

	var packagings []model.Packaging
	if err := db.Order("created_at DESC").Find(&packagings).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list packagings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch packagings"})
	}
	return c.JSON(http.StatusOK, packagings)
}
