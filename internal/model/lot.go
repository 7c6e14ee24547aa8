package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// LotStatus is the chain-of-custody state of a lot. A lot is never deleted,
// only transitioned; the allowed transitions live in internal/lifecycle.
type LotStatus string

const (
	LotStatusReceived       LotStatus = "received"
	LotStatusCutting        LotStatus = "cutting"
	LotStatusGrinding       LotStatus = "grinding"
	LotStatusSeasoning      LotStatus = "seasoning"
	LotStatusPackaging      LotStatus = "packaging"
	LotStatusStorage        LotStatus = "storage"
	LotStatusShipped        LotStatus = "shipped"
	LotStatusQualityBlocked LotStatus = "quality_blocked"
)

// Lot is the traceable batch of product moving through the plant. Lot number
// and QR code are assigned once and never change.
type Lot struct {
	ID          uint             `json:"id" gorm:"primarykey"`
	LotNumber   string           `json:"lot_number" gorm:"type:varchar(64);uniqueIndex;not null"`
	QRCode      string           `json:"qr_code" gorm:"type:text;uniqueIndex;not null"`
	ProductType string           `json:"product_type" gorm:"type:varchar(100);not null"`
	Quantity    decimal.Decimal  `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit        string           `json:"unit" gorm:"type:varchar(16);default:'kg'"`
	Status      LotStatus        `json:"status" gorm:"type:varchar(32);not null;default:'received';index"`
	Temperature *decimal.Decimal `json:"temperature,omitempty" gorm:"type:decimal(5,2)"`
	Humidity    *decimal.Decimal `json:"humidity,omitempty" gorm:"type:decimal(5,2)"`
	Location    string           `json:"location" gorm:"type:varchar(100)"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Notes       string           `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	QualityControls []QualityControl `json:"quality_controls,omitempty" gorm:"foreignKey:LotID"`
}
