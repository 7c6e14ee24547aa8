package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Packaging types
const (
	PackagingTypeVacuum             = "vacuum"
	PackagingTypeModifiedAtmosphere = "modified_atmosphere"
	PackagingTypeFrozen             = "frozen"
)

// Packaging statuses
const (
	PackagingStatusPending         = "pending"
	PackagingStatusPackaged        = "packaged"
	PackagingStatusLabeled         = "labeled"
	PackagingStatusReadyForStorage = "ready_for_storage"
)

// Packaging records the packaging of a lot, including the final consumer QR
// code and the best-before date.
type Packaging struct {
	ID             uint             `json:"id" gorm:"primarykey"`
	LotID          uint             `json:"lot_id" gorm:"not null;index"`
	Lot            *Lot             `json:"lot,omitempty" gorm:"foreignKey:LotID"`
	PackagingDate  time.Time        `json:"packaging_date" gorm:"not null"`
	QRCodeFinal    string           `json:"qr_code_final" gorm:"type:text;uniqueIndex"`
	PackagingType  string           `json:"packaging_type" gorm:"type:varchar(32);not null"`
	Quantity       decimal.Decimal  `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit           string           `json:"unit" gorm:"type:varchar(16);default:'kg'"`
	ProductionDate time.Time        `json:"production_date" gorm:"not null"`
	BestBeforeDate time.Time        `json:"best_before_date" gorm:"not null"`
	Label          string           `json:"label" gorm:"type:varchar(255)"`
	Temperature    *decimal.Decimal `json:"temperature,omitempty" gorm:"type:decimal(5,2)"`
	Status         string           `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	OperatorID     uint             `json:"operator_id"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
