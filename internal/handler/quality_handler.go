package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
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

// CreateQualityControlRequest records a scored HACCP inspection on a lot.
type CreateQualityControlRequest struct {
	LotID               uint             `json:"lot_id"`
	CheckType           string           `json:"check_type"`
	VisualInspection    int              `json:"visual_inspection"`
	OdorTest            int              `json:"odor_test"`
	TemperatureCheck    int              `json:"temperature_check"`
	PHMeasurement       int              `json:"ph_measurement"`
	MicrobiologicalTest int              `json:"microbiological_test"`
	ForeignObjectsCheck bool             `json:"foreign_objects_check"`
	PackagingIntegrity  bool             `json:"packaging_integrity"`
	LabelingCorrect     bool             `json:"labeling_correct"`
	Status              string           `json:"status"`
	Temperature         *decimal.Decimal `json:"temperature"`
	Notes               string           `json:"notes"`
}

func validScore(score int) bool { return score >= 0 && score <= 10 }

// CreateQualityControl records an inspection. A failed inspection also moves
// the lot to quality_blocked so it cannot advance.
func CreateQualityControl(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_quality_control")(time.Now())

	var req CreateQualityControlRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid quality control payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.LotID == 0 || req.CheckType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id and check_type are required"})
	}
	for _, score := range []int{req.VisualInspection, req.OdorTest, req.TemperatureCheck, req.PHMeasurement, req.MicrobiologicalTest} {
		if !validScore(score) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "scores must be between 0 and 10"})
		}
	}

	status := req.Status
	if status == "" {
		status = model.QCStatusCompleted
	}

	db := database.GetDB()
	lot, err := lifecycle.FindLot(db, req.LotID)
	if err != nil {
		return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	control := &model.QualityControl{
		LotID:               lot.ID,
		CheckType:           req.CheckType,
		VisualInspection:    req.VisualInspection,
		OdorTest:            req.OdorTest,
		TemperatureCheck:    req.TemperatureCheck,
		PHMeasurement:       req.PHMeasurement,
		MicrobiologicalTest: req.MicrobiologicalTest,
		ForeignObjectsCheck: req.ForeignObjectsCheck,
		PackagingIntegrity:  req.PackagingIntegrity,
		LabelingCorrect:     req.LabelingCorrect,
		Status:              status,
		Temperature:         req.Temperature,
		Notes:               req.Notes,
		CheckedBy:           middleware.UserIDFromContext(c),
		CheckedAt:           time.Now(),
	}
	if err := db.Create(control).Error; err != nil {
		log.Error("Failed to create quality control", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create quality control"})
	}

	if status == model.QCStatusFailed {
		if _, err := lifecycle.Transition(db, lot.ID, model.LotStatusQualityBlocked, nil); err != nil {
			log.Error("Failed to block lot after failed inspection",
				zap.Uint("lot_id", lot.ID), zap.Error(err))
		} else {
			log.Warn("Lot blocked by failed quality control",
				zap.String("lot_number", lot.LotNumber),
				zap.Uint("control_id", control.ID))
		}
	}

	log.Info("Quality control recorded",
		zap.Uint("control_id", control.ID),
		zap.String("check_type", control.CheckType),
		zap.String("status", control.Status))
	return c.JSON(http.StatusCreated, control)
}

// ListQualityControls returns inspections, optionally filtered by lot.
func ListQualityControls(c echo.Context) error {
	db := database.GetDB()
	if lotID := c.QueryParam("lot_id"); lotID != "" {
		db = db.Where("lot_id = ?", lotID)
	}

	var controls []model.QualityControl
	if err := db.Order("checked_at DESC").Find(&controls).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list quality controls", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch quality controls"})
	}
	return c.JSON(http.StatusOK, controls)
}

// GetQualityControl returns one inspection.
func GetQualityControl(c echo.Context) error {
	var control model.QualityControl
	if err := database.GetDB().First(&control, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quality control not found"})
	}
	return c.JSON(http.StatusOK, control)
}

// UploadQualityPhoto attaches an evidence photo to an inspection. The file is
// stored in the object store and its public URL written on the record.
func UploadQualityPhoto(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid quality control id"})
	}

	var control model.QualityControl
	if err := database.GetDB().First(&control, uint(id)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "quality control not found"})
	}

	if Photos == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "photo storage is not configured"})
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "photo file is required"})
	}
	src, err := file.Open()
	if err != nil {
		log.Error("Failed to open uploaded photo", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to read photo"})
	}
	defer src.Close()

	objectKey := fmt.Sprintf("quality/%d/%d%s", control.ID, time.Now().UnixMilli(), filepath.Ext(file.Filename))
	url, err := Photos.Upload(c.Request().Context(), objectKey, src)
	if err != nil {
		log.Error("Failed to upload photo",
			zap.Uint("control_id", control.ID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store photo"})
	}

	if err := database.GetDB().Model(&control).Update("photo_url", url).Error; err != nil {
		log.Error("Failed to save photo URL", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update quality control"})
	}

	control.PhotoURL = url
	log.Info("Quality photo uploaded",
		zap.Uint("control_id", control.ID),
		zap.String("photo_url", url))
	return c.JSON(http.StatusOK, control)
}
