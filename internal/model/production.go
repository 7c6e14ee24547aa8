package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Production operations
const (
	OperationGrinding  = "grinding"
	OperationSeasoning = "seasoning"
	OperationMixing    = "mixing"
	OperationOther     = "other"
)

// Production statuses
const (
	ProductionStatusInProgress = "in_progress"
	ProductionStatusCompleted  = "completed"
	ProductionStatusPaused     = "paused"
)

// Production records a transformation operation (grinding, seasoning, mixing)
// applied to a lot.
type Production struct {
	ID                    uint             `json:"id" gorm:"primarykey"`
	LotID                 uint             `json:"lot_id" gorm:"not null;index"`
	Lot                   *Lot             `json:"lot,omitempty" gorm:"foreignKey:LotID"`
	Operation             string           `json:"operation" gorm:"type:varchar(32);not null"`
	InputQuantity         decimal.Decimal  `json:"input_quantity" gorm:"type:decimal(10,2);not null"`
	OutputQuantity        decimal.Decimal  `json:"output_quantity" gorm:"type:decimal(10,2);not null"`
	OperatorNotes         string           `json:"operator_notes" gorm:"type:text"`
	TemperatureMaintained *decimal.Decimal `json:"temperature_maintained,omitempty" gorm:"type:decimal(5,2)"`
	Duration              int              `json:"duration"` // minutes
	OperatorID            uint             `json:"operator_id"`
	Status                string           `json:"status" gorm:"type:varchar(32);not null;default:'completed'"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}
