package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartfactory/internal/lifecycle"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/pkg/qr"
	"smartfactory/prometheus"
)

// CreateLotRequest registers a lot by hand, outside the reception flow.
type CreateLotRequest struct {
	ProductType string          `json:"product_type"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Origin      string          `json:"origin"`
	Location    string          `json:"location"`
	Notes       string          `json:"notes"`
}

// CreateLot creates a lot directly, issuing its number and QR code. Used for
// stock taken over from before the system or re-registered after a recall.
func CreateLot(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_lot")(time.Now())

	var req CreateLotRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid lot payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.ProductType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "product_type is required"})
	}
	if !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	lotNumber := qr.NewLotNumber()
	code, err := qr.EncodeDataURL(qr.TracePayload{
		LotNumber:   lotNumber,
		Origin:      req.Origin,
		Date:        time.Now(),
		ProductType: req.ProductType,
		Quantity:    req.Quantity,
	})
	if err != nil {
		log.Error("Failed to generate lot QR code", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to generate QR code"})
	}

	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}
	lot := &model.Lot{
		LotNumber:   lotNumber,
		QRCode:      code,
		ProductType: req.ProductType,
		Quantity:    req.Quantity,
		Unit:        unit,
		Status:      model.LotStatusReceived,
		Location:    req.Location,
		Notes:       req.Notes,
	}
	if err := database.GetDB().Create(lot).Error; err != nil {
		log.Error("Failed to create lot", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create lot"})
	}

	log.Info("Lot created manually",
		zap.String("lot_number", lot.LotNumber),
		zap.String("product_type", lot.ProductType))
	return c.JSON(http.StatusCreated, lot)
}

// ListLots returns lots, optionally filtered by status.
func ListLots(c echo.Context) error {
	db := database.GetDB()
	if status := c.QueryParam("status"); status != "" {
		if !lifecycle.ValidStatus(model.LotStatus(status)) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown lot status"})
		}
		db = db.Where("status = ?", status)
	}

	var lots []model.Lot
	if err := db.Order("created_at DESC").Find(&lots).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list lots", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch lots"})
	}
	return c.JSON(http.StatusOK, lots)
}

// GetLot returns one lot with its quality controls.
func GetLot(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	var lot model.Lot
	result := database.GetDB().Preload("QualityControls").First(&lot, uint(id))
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	}
	return c.JSON(http.StatusOK, lot)
}

// GetLotByNumber resolves a lot from its printed lot number, the entry point
// for QR code scans.
func GetLotByNumber(c echo.Context) error {
	var lot model.Lot
	result := database.GetDB().Preload("QualityControls").
		Where("lot_number = ?", c.Param("lotNumber")).First(&lot)
	if result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	}
	return c.JSON(http.StatusOK, lot)
}

// GetLotTrace assembles the full chain of custody of a lot: reception
// controls, cutting, production operations, packaging, quality history and
// shipment.
func GetLotTrace(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	db := database.GetDB()
	lot, err := lifecycle.FindLot(db, uint(id))
	if err != nil {
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	var cuttings []model.Cutting
	db.Where("lot_id = ?", lot.ID).Order("created_at").Find(&cuttings)
	var productions []model.Production
	db.Where("lot_id = ?", lot.ID).Order("created_at").Find(&productions)
	var packagings []model.Packaging
	db.Where("lot_id = ?", lot.ID).Order("created_at").Find(&packagings)
	var controls []model.QualityControl
	db.Where("lot_id = ?", lot.ID).Order("checked_at").Find(&controls)
	var shipments []model.Shipping
	db.Where("lot_id = ?", lot.ID).Order("created_at").Find(&shipments)

	log.Info("Lot trace assembled",
		zap.String("lot_number", lot.LotNumber),
		zap.Int("quality_controls", len(controls)))
	return c.JSON(http.StatusOK, echo.Map{
		"lot":              lot,
		"cuttings":         cuttings,
		"productions":      productions,
		"packagings":       packagings,
		"quality_controls": controls,
		"shipments":        shipments,
		"next_states":      lifecycle.NextStates(lot.Status),
	})
}

// UpdateLotStatusRequest asks for a direct status transition, used for
// quality blocks and storage moves that have no stage record of their own.
type UpdateLotStatusRequest struct {
	Status model.LotStatus `json:"status"`
	Notes  string          `json:"notes"`
}

// UpdateLotStatus transitions a lot through the status table without a stage
// record. Invalid moves are rejected with the allowed next states.
func UpdateLotStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}

	var req UpdateLotStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if !lifecycle.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown lot status"})
	}

	db := database.GetDB()
	before, err := lifecycle.FindLot(db, uint(id))
	if err != nil {
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}
	from := before.Status

	lot, err := lifecycle.Transition(db, uint(id), req.Status, nil)
	if err != nil {
		prometheus.RecordRejectedTransition(string(req.Status))
		log.Warn("Lot transition rejected",
			zap.Uint64("lot_id", id),
			zap.String("requested", string(req.Status)),
			zap.Error(err))
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	prometheus.RecordLotTransition(string(from), string(lot.Status))
	log.Info("Lot status updated",
		zap.String("lot_number", lot.LotNumber),
		zap.String("status", string(lot.Status)))
	return c.JSON(http.StatusOK, lot)
}
