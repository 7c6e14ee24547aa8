package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/pkg/qr"
	"smartfactory/prometheus"
)

// CreateOrderRequest places a client order for a product type and quantity.
type CreateOrderRequest struct {
	ClientName   string          `json:"client_name"`
	ClientType   string          `json:"client_type"`
	ProductType  string          `json:"product_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	DeliveryDate *time.Time      `json:"delivery_date"`
	Address      string          `json:"address"`
	Phone        string          `json:"phone"`
	Notes        string          `json:"notes"`
}

func validClientType(t string) bool {
	switch t {
	case model.ClientTypeHotel, model.ClientTypeRestaurant, model.ClientTypeGMS,
		model.ClientTypeButcher, model.ClientTypeDistributor:
		return true
	}
	return false
}

// CreateOrder registers a client order with an issued order number.
func CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_order")(time.Now())

	var req CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.ClientName == "" || req.ProductType == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "client_name and product_type are required"})
	}
	if !validClientType(req.ClientType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown client type"})
	}
	if !req.Quantity.IsPositive() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity must be positive"})
	}

	order := &model.Order{
		OrderNumber:  qr.NewOrderNumber(),
		ClientName:   req.ClientName,
		ClientType:   req.ClientType,
		OrderDate:    time.Now(),
		DeliveryDate: req.DeliveryDate,
		ProductType:  req.ProductType,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Status:       model.OrderStatusConfirmed,
		Address:      req.Address,
		Phone:        req.Phone,
		Notes:        req.Notes,
	}
	if err := database.GetDB().Create(order).Error; err != nil {
		log.Error("Failed to create order", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create order"})
	}

	log.Info("Order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("client", order.ClientName))
	return c.JSON(http.StatusCreated, order)
}

// ListOrders returns orders, optionally filtered by status.
func ListOrders(c echo.Context) error {
	db := database.GetDB()
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var orders []model.Order
	if err := db.Order("order_date DESC").Find(&orders).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(http.StatusOK, orders)
}

// GetOrder returns one order.
func GetOrder(c echo.Context) error {
	var order model.Order
	if err := database.GetDB().First(&order, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	return c.JSON(http.StatusOK, order)
}

// deliverySlip is the picking document returned when an order is prepared.
type deliverySlip struct {
	OrderNumber  string          `json:"order_number"`
	ClientName   string          `json:"client_name"`
	ProductType  string          `json:"product_type"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Address      string          `json:"address"`
	PreparedAt   time.Time       `json:"prepared_at"`
	Lots         []model.Lot     `json:"lots"`
	DeliveryDate *time.Time      `json:"delivery_date,omitempty"`
}

// PrepareOrderRequest names the stored lots picked to cover the order. Lot
// selection is the caller's: the floor scans the lots it pulled.
type PrepareOrderRequest struct {
	LotIDs []uint `json:"lot_ids"`
}

// PrepareOrder checks the selected lots against the ordered quantity and,
// when sufficient, marks the order ready and returns the delivery slip. When
// no lots are named, stored lots of the ordered product are picked oldest
// first.
func PrepareOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("prepare_order")(time.Now())
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}

	var req PrepareOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	db := database.GetDB()
	var order model.Order
	if err := db.First(&order, uint(id)).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}
	if order.Status != model.OrderStatusPending && order.Status != model.OrderStatusConfirmed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order cannot be prepared in its current status"})
	}

	var candidates []model.Lot
	query := db.Where("status = ? AND product_type = ?", model.LotStatusStorage, order.ProductType)
	if len(req.LotIDs) > 0 {
		query = query.Where("id IN ?", req.LotIDs)
	}
	if err := query.Order("created_at").Find(&candidates).Error; err != nil {
		log.Error("Failed to query stored lots", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to check stock"})
	}
	if len(req.LotIDs) > 0 && len(candidates) < len(req.LotIDs) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "selected lots must exist, be in storage and match the ordered product"})
	}

	available := decimal.Zero
	picked := make([]model.Lot, 0, len(candidates))
	for _, lot := range candidates {
		if len(req.LotIDs) == 0 && available.GreaterThanOrEqual(order.Quantity) {
			break
		}
		available = available.Add(lot.Quantity)
		picked = append(picked, lot)
	}

	if available.LessThan(order.Quantity) {
		log.Warn("Insufficient stock for order",
			zap.String("order_number", order.OrderNumber),
			zap.String("requested", order.Quantity.String()),
			zap.String("available", available.String()))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":     "insufficient stock to prepare order",
			"requested": order.Quantity,
			"available": available,
		})
	}

	now := time.Now()
	if err := db.Model(&order).Update("status", model.OrderStatusReady).Error; err != nil {
		log.Error("Failed to update order status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update order"})
	}
	order.Status = model.OrderStatusReady

	log.Info("Order prepared",
		zap.String("order_number", order.OrderNumber),
		zap.Int("lots", len(picked)))
	return c.JSON(http.StatusOK, echo.Map{
		"order": order,
		"delivery_slip": deliverySlip{
			OrderNumber:  order.OrderNumber,
			ClientName:   order.ClientName,
			ProductType:  order.ProductType,
			Quantity:     order.Quantity,
			Unit:         order.Unit,
			Address:      order.Address,
			PreparedAt:   now,
			Lots:         picked,
			DeliveryDate: order.DeliveryDate,
		},
	})
}
