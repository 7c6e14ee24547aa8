package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
)

type statusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

func countByStatus(table interface{}) []statusCount {
	var rows []statusCount
	database.GetDB().Model(table).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows)
	return rows
}

// DirectorDashboard aggregates the plant-wide KPIs: lots by status, order and
// shipment counts, quality pass rate and the overall equipment effectiveness
// proxy derived from machine availability.
func DirectorDashboard(c echo.Context) error {
	log := logger.FromEcho(c)
	db := database.GetDB()

	var totalLots, activeLots, blockedLots int64
	db.Model(&model.Lot{}).Count(&totalLots)
	db.Model(&model.Lot{}).
		Where("status NOT IN ?", []model.LotStatus{model.LotStatusShipped, model.LotStatusQualityBlocked}).
		Count(&activeLots)
	db.Model(&model.Lot{}).Where("status = ?", model.LotStatusQualityBlocked).Count(&blockedLots)

	var totalControls, passedControls int64
	db.Model(&model.QualityControl{}).Count(&totalControls)
	db.Model(&model.QualityControl{}).Where("status = ?", model.QCStatusPassed).Count(&passedControls)
	passRate := decimal.Zero
	if totalControls > 0 {
		passRate = decimal.NewFromInt(passedControls).
			Div(decimal.NewFromInt(totalControls)).
			Mul(decimal.NewFromInt(100)).Round(2)
	}

	var totalMachines, operationalMachines int64
	db.Model(&model.Machine{}).Count(&totalMachines)
	db.Model(&model.Machine{}).Where("status = ?", model.MachineStatusOperational).Count(&operationalMachines)
	availability := decimal.Zero
	if totalMachines > 0 {
		availability = decimal.NewFromInt(operationalMachines).
			Div(decimal.NewFromInt(totalMachines)).
			Mul(decimal.NewFromInt(100)).Round(2)
	}

	// Equipment effectiveness proxy: availability weighted by quality rate.
	trg := availability.Mul(passRate).Div(decimal.NewFromInt(100)).Round(2)

	var pendingOrders, shippedOrders int64
	db.Model(&model.Order{}).Where("status IN ?", []string{model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing}).Count(&pendingOrders)
	db.Model(&model.Order{}).Where("status IN ?", []string{model.OrderStatusShipped, model.OrderStatusDelivered}).Count(&shippedOrders)

	log.Info("Director dashboard computed", zap.Int64("total_lots", totalLots))
	return c.JSON(http.StatusOK, echo.Map{
		"lots": echo.Map{
			"total":     totalLots,
			"active":    activeLots,
			"blocked":   blockedLots,
			"by_status": countByStatus(&model.Lot{}),
		},
		"quality": echo.Map{
			"total_controls": totalControls,
			"pass_rate_pct":  passRate,
		},
		"machines": echo.Map{
			"total":            totalMachines,
			"operational":      operationalMachines,
			"availability_pct": availability,
			"trg_pct":          trg,
		},
		"orders": echo.Map{
			"pending": pendingOrders,
			"shipped": shippedOrders,
		},
	})
}

// ProductionDashboard reports daily throughput over the trailing week and
// current work in progress per stage.
func ProductionDashboard(c echo.Context) error {
	db := database.GetDB()
	weekAgo := time.Now().AddDate(0, 0, -7)

	var rows []struct {
		Operation   string          `json:"operation"`
		Count       int64           `json:"count"`
		TotalOutput decimal.Decimal `json:"total_output"`
	}
	db.Model(&model.Production{}).
		Where("created_at >= ?", weekAgo).
		Select("operation, COUNT(*) AS count, COALESCE(SUM(output_quantity), 0) AS total_output").
		Group("operation").
		Scan(&rows)

	var wastage decimal.Decimal
	var wastageRow struct {
		Total decimal.Decimal
	}
	db.Model(&model.Cutting{}).
		Where("status = ? AND created_at >= ?", model.CuttingStatusCompleted, weekAgo).
		Select("COALESCE(SUM(wastage), 0) AS total").
		Scan(&wastageRow)
	wastage = wastageRow.Total

	return c.JSON(http.StatusOK, echo.Map{
		"week_operations": rows,
		"week_wastage":    wastage,
		"lots_by_status":  countByStatus(&model.Lot{}),
	})
}

// QualityDashboard reports inspection outcomes by check type and the lots
// currently blocked.
func QualityDashboard(c echo.Context) error {
	db := database.GetDB()

	var rows []struct {
		CheckType string `json:"check_type"`
		Status    string `json:"status"`
		Count     int64  `json:"count"`
	}
	db.Model(&model.QualityControl{}).
		Select("check_type, status, COUNT(*) AS count").
		Group("check_type, status").
		Scan(&rows)

	var blocked []model.Lot
	db.Where("status = ?", model.LotStatusQualityBlocked).Order("updated_at DESC").Find(&blocked)

	return c.JSON(http.StatusOK, echo.Map{
		"controls_by_type": rows,
		"blocked_lots":     blocked,
	})
}

// MachinesDashboard reports machine availability, open interventions and
// overdue maintenance.
func MachinesDashboard(c echo.Context) error {
	db := database.GetDB()

	var open []model.Intervention
	db.Preload("Machine").
		Where("status IN ?", []string{"reported", "in_progress"}).
		Order("created_at DESC").Find(&open)

	var overdue []model.Machine
	db.Where("status = ? AND next_maintenance_date IS NOT NULL AND next_maintenance_date < ?",
		model.MachineStatusOperational, time.Now()).Find(&overdue)

	return c.JSON(http.StatusOK, echo.Map{
		"machines_by_status":  countByStatus(&model.Machine{}),
		"open_interventions":  open,
		"maintenance_overdue": overdue,
	})
}

// TemperatureDashboard reports the latest reading of every temperature and
// humidity sensor, flagging those outside their thresholds.
func TemperatureDashboard(c echo.Context) error {
	db := database.GetDB()

	var sensors []model.IoTSensor
	db.Where("type IN ?", []string{model.SensorTypeTemperature, model.SensorTypeHumidity}).
		Order("location").Find(&sensors)

	type sensorStatus struct {
		model.IoTSensor
		OutOfRange bool `json:"out_of_range"`
	}
	out := make([]sensorStatus, 0, len(sensors))
	for _, sensor := range sensors {
		outOfRange := false
		if sensor.CurrentValue != nil {
			if sensor.MaxThreshold != nil && sensor.CurrentValue.GreaterThan(*sensor.MaxThreshold) {
				outOfRange = true
			}
			if sensor.MinThreshold != nil && sensor.CurrentValue.LessThan(*sensor.MinThreshold) {
				outOfRange = true
			}
		}
		out = append(out, sensorStatus{IoTSensor: sensor, OutOfRange: outOfRange})
	}

	return c.JSON(http.StatusOK, echo.Map{"sensors": out})
}
