package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartfactory/internal/lifecycle"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/pkg/qr"
	"smartfactory/prometheus"
)

// CreateShippingRequest ships a stored lot against an order.
type CreateShippingRequest struct {
	OrderID               uint             `json:"order_id"`
	LotID                 *uint            `json:"lot_id"`
	Quantity              decimal.Decimal  `json:"quantity"`
	Unit                  string           `json:"unit"`
	ExpectedDeliveryDate  *time.Time       `json:"expected_delivery_date"`
	TemperatureAtShipping *decimal.Decimal `json:"temperature_at_shipping"`
	Carrier               string           `json:"carrier"`
	TrackingNumber        string           `json:"tracking_number"`
	Notes                 string           `json:"notes"`
}

// CreateShipping creates a shipment. The order moves to shipped; when a lot
// is attached it leaves storage for its terminal shipped state in the same
// transaction.
func CreateShipping(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_shipping")(time.Now())

	var req CreateShippingRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid shipping payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.OrderID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id is required"})
	}
	if !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	db := database.GetDB()
	var order model.Order
	if err := db.First(&order, req.OrderID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	if order.Status == model.OrderStatusCancelled || order.Status == model.OrderStatusDelivered {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order cannot be shipped in its current status"})
	}

	shipping := &model.Shipping{
		ShippingNumber:        qr.NewShippingNumber(),
		OrderID:               order.ID,
		LotID:                 req.LotID,
		ShippingDate:          time.Now(),
		ExpectedDeliveryDate:  req.ExpectedDeliveryDate,
		Quantity:              req.Quantity,
		Unit:                  req.Unit,
		TemperatureAtShipping: req.TemperatureAtShipping,
		Status:                model.ShippingStatusInTransit,
		Carrier:               req.Carrier,
		TrackingNumber:        req.TrackingNumber,
		Notes:                 req.Notes,
	}

	createShipment := func(tx *gorm.DB) error {
		if err := tx.Create(shipping).Error; err != nil {
			return err
		}
		return tx.Model(&model.Order{}).Where("id = ?", order.ID).
			Update("status", model.OrderStatusShipped).Error
	}

	if req.LotID != nil {
		_, err := lifecycle.Transition(db, *req.LotID, model.LotStatusShipped, func(tx *gorm.DB, lot *model.Lot) error {
			return createShipment(tx)
		})
		if err != nil {
			prometheus.RecordRejectedTransition(string(model.LotStatusShipped))
			log.Warn("Shipment rejected",
				zap.Uint("lot_id", *req.LotID),
				zap.Error(err))
			return c.JSON(lifecycle.HTTPStatus(err), echo.Map{"error": err.Error()})
		}
		prometheus.RecordLotTransition(string(model.LotStatusStorage), string(model.LotStatusShipped))
	} else {
		if err := db.Transaction(createShipment); err != nil {
			log.Error("Failed to create shipment", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create shipment"})
		}
	}

	log.Info("Shipment created",
		zap.String("shipping_number", shipping.ShippingNumber),
		zap.String("order_number", order.OrderNumber))
	return c.JSON(http.StatusCreated, shipping)
}

// DeliverShipping marks a shipment delivered and completes its order.
func DeliverShipping(c echo.Context) error {
	log := logger.FromEcho(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid shipping id"})
	}

	db := database.GetDB()
	var shipping model.Shipping
	if err := db.First(&shipping, uint(id)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping not found"})
	}
	if shipping.Status != model.ShippingStatusInTransit && shipping.Status != model.ShippingStatusPrepared {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "shipment is not in transit"})
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":               model.ShippingStatusDelivered,
			"actual_delivery_date": now,
		}
		if err := tx.Model(&model.Shipping{}).Where("id = ?", shipping.ID).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Model(&model.Order{}).Where("id = ?", shipping.OrderID).
			Update("status", model.OrderStatusDelivered).Error
	})
	if err != nil {
		log.Error("Failed to mark shipment delivered", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update shipment"})
	}

	shipping.Status = model.ShippingStatusDelivered
	shipping.ActualDeliveryDate = &now
	log.Info("Shipment delivered", zap.String("shipping_number", shipping.ShippingNumber))
	return c.JSON(http.StatusOK, shipping)
}

// ListShippings returns shipments with their orders and lots, newest first.
func ListShippings(c echo.Context) error {
	var shipments []model.Shipping
	if err := database.GetDB().Preload("Order").Preload("Lot").
		Order("shipping_date DESC").Find(&shipments).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list shipments", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch shipments"})
	}
	return c.JSON(http.StatusOK, shipments)
}

// GetShipping returns one shipment.
func GetShipping(c echo.Context) error {
	var shipping model.Shipping
	if err := database.GetDB().Preload("Order").Preload("Lot").
		First(&shipping, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "shipping not found"})
	}
	return c.JSON(http.StatusOK, shipping)
}
