package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sensor types
const (
	SensorTypeTemperature = "temperature"
	SensorTypeHumidity    = "humidity"
	SensorTypePressure    = "pressure"
	SensorTypeVibration   = "vibration"
	SensorTypeSound       = "sound"
)

// Sensor statuses
const (
	SensorStatusActive   = "active"
	SensorStatusInactive = "inactive"
	SensorStatusError    = "error"
)

// IoTSensor is a floor sensor whose readings are pushed over PATCH and
// broadcast live to connected dashboards.
type IoTSensor struct {
	ID           uint             `json:"id" gorm:"primarykey"`
	SensorID     string           `json:"sensor_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	SensorName   string           `json:"sensor_name" gorm:"type:varchar(100);not null"`
	Location     string           `json:"location" gorm:"type:varchar(100);not null"`
	Type         string           `json:"type" gorm:"type:varchar(32);not null"`
	CurrentValue *decimal.Decimal `json:"current_value,omitempty" gorm:"type:decimal(10,2)"`
	Unit         string           `json:"unit" gorm:"type:varchar(16)"`
	MinThreshold *decimal.Decimal `json:"min_threshold,omitempty" gorm:"type:decimal(10,2)"`
	MaxThreshold *decimal.Decimal `json:"max_threshold,omitempty" gorm:"type:decimal(10,2)"`
	Status       string           `json:"status" gorm:"type:varchar(32);not null;default:'active'"`
	LastReadAt   *time.Time       `json:"last_read_at,omitempty"`
	Active       bool             `json:"active" gorm:"default:true"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
