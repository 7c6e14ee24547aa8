package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client types
const (
	ClientTypeHotel       = "hotel"
	ClientTypeRestaurant  = "restaurant"
	ClientTypeGMS         = "gms"
	ClientTypeButcher     = "butcher"
	ClientTypeDistributor = "distributor"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is a client order prepared from stored lots and fulfilled by a
// shipment. Its status moves in lockstep with the shipping records.
type Order struct {
	ID           uint            `json:"id" gorm:"primarykey"`
	OrderNumber  string          `json:"order_number" gorm:"type:varchar(64);uniqueIndex;not null"`
	ClientName   string          `json:"client_name" gorm:"type:varchar(100);not null"`
	ClientType   string          `json:"client_type" gorm:"type:varchar(32);not null"`
	OrderDate    time.Time       `json:"order_date" gorm:"not null"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
	ProductType  string          `json:"product_type" gorm:"type:varchar(100);not null"`
	Quantity     decimal.Decimal `json:"quantity" gorm:"type:decimal(10,2);not null"`
	Unit         string          `json:"unit" gorm:"type:varchar(16);default:'kg'"`
	Status       string          `json:"status" gorm:"type:varchar(32);not null;default:'pending'"`
	Address      string          `json:"address" gorm:"type:text"`
	Phone        string          `json:"phone" gorm:"type:varchar(32)"`
	Notes        string          `json:"notes" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
