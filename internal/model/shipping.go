package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipping statuses
const (
	ShippingStatusPrepared  = "prepared"
	ShippingStatusInTransit = "in_transit"
	ShippingStatusDelivered = "delivered"
	ShippingStatusReturned  = "returned"
	ShippingStatusCancelled = "cancelled"
)

// Shipping records an outbound shipment of a lot against an order.
type Shipping struct {
	ID                    uint             `json:"id" gorm:"primarykey"`
	ShippingNumber        string           `json:"shipping_number" gorm:"type:varchar(64);uniqueIndex;not null"`
	OrderID               uint             `json:"order_id" gorm:"not null;index"`
	Order                 *Order           `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	LotID                 *uint            `json:"lot_id,omitempty" gorm:"index"`
	Lot                   *Lot             `json:"lot,omitempty" gorm:"foreignKey:LotID"`
	ShippingDate          time.Time        `json:"shipping_date" gorm:"not null"`
	ExpectedDeliveryDate  *time.Time       `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate    *time.Time       `json:"actual_delivery_date,omitempty"`
	Quantity              decimal.Decimal  `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit                  string           `json:"unit" gorm:"type:varchar(16);default:'kg'"`
	TemperatureAtShipping *decimal.Decimal `json:"temperature_at_shipping,omitempty" gorm:"type:decimal(5,2)"`
	Status                string           `json:"status" gorm:"type:varchar(32);not null;default:'prepared'"`
	Carrier               string           `json:"carrier" gorm:"type:varchar(100)"`
	TrackingNumber        string           `json:"tracking_number" gorm:"type:varchar(100)"`
	Notes                 string           `json:"notes" gorm:"type:text"`
	CreatedAt             time.Time        `json:"created_at"`
	UpdatedAt             time.Time        `json:"updated_at"`
}
