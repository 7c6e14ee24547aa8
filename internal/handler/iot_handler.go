package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartfactory/internal/alert"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

// CreateSensorRequest registers a floor sensor.
type CreateSensorRequest struct {
	SensorID     string           `json:"sensor_id"`
	SensorName   string           `json:"sensor_name"`
	Location     string           `json:"location"`
	Type         string           `json:"type"`
	Unit         string           `json:"unit"`
	MinThreshold *decimal.Decimal `json:"min_threshold"`
	MaxThreshold *decimal.Decimal `json:"max_threshold"`
}

func validSensorType(t string) bool {
	switch t {
	case model.SensorTypeTemperature, model.SensorTypeHumidity, model.SensorTypePressure,
		model.SensorTypeVibration, model.SensorTypeSound:
		return true
	}
	return false
}

// CreateSensor registers a sensor with its alert thresholds.
func CreateSensor(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CreateSensorRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid sensor payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.SensorID == "" || req.SensorName == "" || req.Location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sensor_id, sensor_name and location are required"})
	}
	if !validSensorType(req.Type) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown sensor type"})
	}

	sensor := &model.IoTSensor{
		SensorID:     req.SensorID,
		SensorName:   req.SensorName,
		Location:     req.Location,
		Type:         req.Type,
		Unit:         req.Unit,
		MinThreshold: req.MinThreshold,
		MaxThreshold: req.MaxThreshold,
		Status:       model.SensorStatusActive,
		Active:       true,
	}
	if err := database.GetDB().Create(sensor).Error; err != nil {
		log.Error("Failed to create sensor", zap.String("sensor_id", req.SensorID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create sensor"})
	}

	log.Info("Sensor registered",
		zap.String("sensor_id", sensor.SensorID),
		zap.String("type", sensor.Type))
	return c.JSON(http.StatusCreated, sensor)
}

// ListSensors returns sensors, optionally filtered by location or type.
func ListSensors(c echo.Context) error {
	db := database.GetDB()
	if location := c.QueryParam("location"); location != "" {
		db = db.Where("location = ?", location)
	}
	if sensorType := c.QueryParam("type"); sensorType != "" {
		db = db.Where("type = ?", sensorType)
	}

	var sensors []model.IoTSensor
	if err := db.Order("sensor_id").Find(&sensors).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list sensors", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch sensors"})
	}
	return c.JSON(http.StatusOK, sensors)
}

// GetSensor returns one sensor by its external sensor id.
func GetSensor(c echo.Context) error {
	var sensor model.IoTSensor
	if err := database.GetDB().Where("sensor_id = ?", c.Param("sensorId")).First(&sensor).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sensor not found"})
	}
	return c.JSON(http.StatusOK, sensor)
}

// SensorReadingRequest pushes one reading from the floor.
type SensorReadingRequest struct {
	Value decimal.Decimal `json:"value"`
}

// sensorEvent is the live message broadcast to websocket dashboards.
type sensorEvent struct {
	Event    string           `json:"event"`
	SensorID string           `json:"sensor_id"`
	Type     string           `json:"type"`
	Location string           `json:"location"`
	Value    decimal.Decimal  `json:"value"`
	Unit     string           `json:"unit"`
	Alert    string           `json:"alert,omitempty"`
	At       time.Time        `json:"at"`
}

// RecordSensorReading stores a reading, re-checks the thresholds, broadcasts
// the value to live dashboards and raises an alert when a threshold is
// crossed.
func RecordSensorReading(c echo.Context) error {
	log := logger.FromEcho(c)

	var sensor model.IoTSensor
	if err := database.GetDB().Where("sensor_id = ?", c.Param("sensorId")).First(&sensor).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "sensor not found"})
	}

	var req SensorReadingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	now := time.Now()
	kind := ""
	if sensor.MaxThreshold != nil && req.Value.GreaterThan(*sensor.MaxThreshold) {
		kind = "above_max"
	} else if sensor.MinThreshold != nil && req.Value.LessThan(*sensor.MinThreshold) {
		kind = "below_min"
	}

	updates := map[string]interface{}{
		"current_value": req.Value,
		"last_read_at":  now,
		"status":        model.SensorStatusActive,
		"active":        true,
	}
	if err := database.GetDB().Model(&sensor).Updates(updates).Error; err != nil {
		log.Error("Failed to store sensor reading", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store reading"})
	}
	sensor.CurrentValue = &req.Value
	sensor.LastReadAt = &now

	value, _ := req.Value.Float64()
	prometheus.UpdateSensorValue(sensor.SensorID, sensor.Type, value)

	if SensorHub != nil {
		SensorHub.Broadcast(sensorEvent{
			Event:    "sensor_reading",
			SensorID: sensor.SensorID,
			Type:     sensor.Type,
			Location: sensor.Location,
			Value:    req.Value,
			Unit:     sensor.Unit,
			Alert:    kind,
			At:       now,
		})
	}

	if kind != "" {
		prometheus.RecordSensorAlert(sensor.SensorID, kind)
		log.Warn("Sensor threshold crossed",
			zap.String("sensor_id", sensor.SensorID),
			zap.String("kind", kind),
			zap.String("value", req.Value.String()))
		if Alerts != nil {
			Alerts.NotifyAsync(alert.Notification{
				Type:      "sensor_threshold",
				Message:   fmt.Sprintf("sensor %s (%s) reported %s %s, threshold %s", sensor.SensorID, sensor.Location, req.Value.String(), sensor.Unit, kind),
				Severity:  "high",
				Timestamp: now,
			})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"sensor": sensor,
		"alert":  kind,
	})
}
