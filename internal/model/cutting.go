package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cutting statuses
const (
	CuttingStatusPending    = "pending"
	CuttingStatusInProgress = "in_progress"
	CuttingStatusCompleted  = "completed"
	CuttingStatusBlocked    = "blocked"
)

// Cutting records a cutting run against a lot. The hygiene booleans must all
// be true before a record is created; output quantity and wastage are only
// written at completion.
type Cutting struct {
	ID          uint      `json:"id" gorm:"primarykey"`
	LotID       uint      `json:"lot_id" gorm:"not null;index"`
	Lot         *Lot      `json:"lot,omitempty" gorm:"foreignKey:LotID"`
	CuttingDate time.Time `json:"cutting_date" gorm:"not null"`

	// Hygiene checklist
	HandWashing       bool `json:"hand_washing" gorm:"default:false"`
	KnifeDisinfection bool `json:"knife_disinfection" gorm:"default:false"`
	EquipmentWorn     bool `json:"equipment_worn" gorm:"default:false"`
	SurfaceCleaned    bool `json:"surface_cleaned" gorm:"default:false"`

	InputQuantity  decimal.Decimal  `json:"input_quantity" gorm:"type:decimal(10,2);not null"`
	OutputQuantity *decimal.Decimal `json:"output_quantity,omitempty" gorm:"type:decimal(10,2)"`
	Wastage        decimal.Decimal  `json:"wastage" gorm:"type:decimal(10,2);default:0"`

	Status     string    `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	OperatorID uint      `json:"operator_id"`
	Notes      string    `json:"notes" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
