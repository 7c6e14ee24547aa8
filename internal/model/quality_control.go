package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quality control check types
const (
	CheckTypeInitial             = "initial"
	CheckTypeIntermediate        = "intermediate"
	CheckTypeFinal               = "final"
	CheckTypeHandWashing         = "hand_washing"
	CheckTypeKnifeDisinfection   = "knife_disinfection"
	CheckTypeProtectiveEquipment = "protective_equipment"
	CheckTypeSurfaceCleaning     = "surface_cleaning"
	CheckTypeMaterialReception   = "material_reception"
	CheckTypeTemperatureCheck    = "temperature_check"
	CheckTypeVisualInspection    = "visual_inspection"
)

// Quality control statuses
const (
	QCStatusPassed    = "passed"
	QCStatusFailed    = "failed"
	QCStatusPending   = "pending"
	QCStatusCompleted = "completed"
)

// QualityControl is a scored HACCP inspection entry attached to a lot. Hygiene
// gate audits also land here, one row per checked item.
type QualityControl struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	LotID     uint   `json:"lot_id" gorm:"not null;index"`
	CheckType string `json:"check_type" gorm:"type:varchar(32);not null"`

	// HACCP test scores (0-10)
	VisualInspection    int `json:"visual_inspection" gorm:"default:0"`
	OdorTest            int `json:"odor_test" gorm:"default:0"`
	TemperatureCheck    int `json:"temperature_check" gorm:"default:0"`
	PHMeasurement       int `json:"ph_measurement" gorm:"default:0"`
	MicrobiologicalTest int `json:"microbiological_test" gorm:"default:0"`

	// Physical checks
	ForeignObjectsCheck bool `json:"foreign_objects_check" gorm:"default:false"`
	PackagingIntegrity  bool `json:"packaging_integrity" gorm:"default:false"`
	LabelingCorrect     bool `json:"labeling_correct" gorm:"default:false"`

	Status      string           `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	Temperature *decimal.Decimal `json:"temperature,omitempty" gorm:"type:decimal(5,2)"`
	Notes       string           `json:"notes" gorm:"type:text"`
	PhotoURL    string           `json:"photo_url" gorm:"type:varchar(512)"`
	CheckedBy   uint             `json:"checked_by" gorm:"not null"`
	CheckedAt   time.Time        `json:"checked_at" gorm:"not null"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
