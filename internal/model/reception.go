package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reception statuses
const (
	ReceptionStatusReceived = "received"
	ReceptionStatusAccepted = "accepted"
	ReceptionStatusRejected = "rejected"
	ReceptionStatusBlocked  = "blocked"
)

// Reception is the immutable audit record of a raw-material delivery and its
// entry controls. An accepted reception is what creates a lot.
type Reception struct {
	ID                   uint             `json:"id" gorm:"primarykey"`
	ReceptionDate        time.Time        `json:"reception_date" gorm:"not null"`
	Supplier             string           `json:"supplier" gorm:"type:varchar(100);not null"`
	ProductType          string           `json:"product_type" gorm:"type:varchar(100);not null"`
	Quantity             decimal.Decimal  `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit                 string           `json:"unit" gorm:"type:varchar(16);default:'kg'"`
	SlaughterDate        *time.Time       `json:"slaughter_date,omitempty"`
	TransportTemperature *decimal.Decimal `json:"transport_temperature,omitempty" gorm:"type:decimal(5,2)"`
	SanitaryCertificate  string           `json:"sanitary_certificate" gorm:"type:varchar(100)"`

	// Entry controls
	VisualControl      bool             `json:"visual_control" gorm:"default:false"`
	SmellControl       bool             `json:"smell_control" gorm:"default:false"`
	TemperatureControl *decimal.Decimal `json:"temperature_control,omitempty" gorm:"type:decimal(5,2)"`
	ColdChainVerified  bool             `json:"cold_chain_verified" gorm:"default:false"`

	Status    string    `json:"status" gorm:"type:varchar(32);not null;default:'received'"`
	Notes     string    `json:"notes" gorm:"type:text"`
	CheckedBy uint      `json:"checked_by"`
	CheckedAt time.Time `json:"checked_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
