package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartfactory/internal/alert"
	"smartfactory/internal/middleware"
	"smartfactory/internal/model"
	"smartfactory/pkg/database"
	"smartfactory/pkg/logger"
	"smartfactory/prometheus"
)

// CreateMachineRequest registers a piece of floor equipment.
type CreateMachineRequest struct {
	MachineID           string     `json:"machine_id"`
	MachineName         string     `json:"machine_name"`
	Type                string     `json:"type"`
	Location            string     `json:"location"`
	InstallationDate    *time.Time `json:"installation_date"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
}

// CreateMachine registers a machine.
func CreateMachine(c echo.Context) error {
	log := logger.FromEcho(c)

	var req CreateMachineRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid machine payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.MachineID == "" || req.MachineName == "" || req.Type == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "machine_id, machine_name and type are required"})
	}

	machine := &model.Machine{
		MachineID:           req.MachineID,
		MachineName:         req.MachineName,
		Type:                req.Type,
		Location:            req.Location,
		InstallationDate:    req.InstallationDate,
		NextMaintenanceDate: req.NextMaintenanceDate,
		Status:              model.MachineStatusOperational,
	}
	if err := database.GetDB().Create(machine).Error; err != nil {
		log.Error("Failed to create machine", zap.String("machine_id", req.MachineID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create machine"})
	}

	log.Info("Machine registered", zap.String("machine_id", machine.MachineID))
	return c.JSON(http.StatusCreated, machine)
}

// ListMachines returns machines, optionally filtered by status.
func ListMachines(c echo.Context) error {
	db := database.GetDB()
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var machines []model.Machine
	if err := db.Order("machine_id").Find(&machines).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list machines", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch machines"})
	}
	return c.JSON(http.StatusOK, machines)
}

// UpdateMachineStatusRequest changes a machine's status, optionally closing a
// maintenance window.
type UpdateMachineStatusRequest struct {
	Status              string     `json:"status"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
}

func validMachineStatus(s string) bool {
	switch s {
	case model.MachineStatusOperational, model.MachineStatusMaintenance,
		model.MachineStatusBroken, model.MachineStatusIdle:
		return true
	}
	return false
}

// UpdateMachineStatus changes a machine's status. Returning to operational
// stamps the last maintenance date.
func UpdateMachineStatus(c echo.Context) error {
	log := logger.FromEcho(c)

	var machine model.Machine
	if err := database.GetDB().First(&machine, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "machine not found"})
	}

	var req UpdateMachineStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if !validMachineStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown machine status"})
	}

	updates := map[string]interface{}{"status": req.Status}
	if req.Status == model.MachineStatusOperational && machine.Status == model.MachineStatusMaintenance {
		updates["last_maintenance_date"] = time.Now()
	}
	if req.NextMaintenanceDate != nil {
		updates["next_maintenance_date"] = *req.NextMaintenanceDate
	}
	if err := database.GetDB().Model(&machine).Updates(updates).Error; err != nil {
		log.Error("Failed to update machine status", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update machine"})
	}

	machine.Status = req.Status
	log.Info("Machine status updated",
		zap.String("machine_id", machine.MachineID),
		zap.String("status", machine.Status))
	return c.JSON(http.StatusOK, machine)
}

// CreateInterventionRequest reports a problem on a machine.
type CreateInterventionRequest struct {
	MachineID          uint   `json:"machine_id"`
	ProblemDescription string `json:"problem_description"`
	ProblemType        string `json:"problem_type"`
	Severity           string `json:"severity"`
}

func validSeverity(s string) bool {
	switch s {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
		return true
	}
	return false
}

// CreateIntervention reports a machine problem. Critical problems mark the
// machine broken and raise an alert.
func CreateIntervention(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("create_intervention")(time.Now())

	var req CreateInterventionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid intervention payload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.MachineID == 0 || req.ProblemDescription == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "machine_id and problem_description are required"})
	}
	severity := req.Severity
	if severity == "" {
		severity = model.SeverityLow
	}
	if !validSeverity(severity) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown severity"})
	}

	db := database.GetDB()
	var machine model.Machine
	if err := db.First(&machine, req.MachineID).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "machine not found"})
	}

	intervention := &model.Intervention{
		MachineID:          machine.ID,
		ProblemDescription: req.ProblemDescription,
		ProblemType:        req.ProblemType,
		Severity:           severity,
		Status:             "reported",
		ReportedBy:         middleware.UserIDFromContext(c),
	}
	if err := db.Create(intervention).Error; err != nil {
		log.Error("Failed to create intervention", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create intervention"})
	}

	if severity == model.SeverityCritical {
		if err := db.Model(&machine).Update("status", model.MachineStatusMaintenance).Error; err != nil {
			log.Error("Failed to take machine out of service", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update machine status"})
		}
		log.Warn("Machine taken out of service by critical intervention",
			zap.String("machine_id", machine.MachineID))
		if Alerts != nil {
			Alerts.NotifyAsync(alert.Notification{
				Type:      "machine_breakdown",
				Message:   fmt.Sprintf("machine %s (%s) taken out of service: %s", machine.MachineID, machine.Location, req.ProblemDescription),
				Severity:  model.SeverityCritical,
				Timestamp: time.Now(),
			})
		}
	}

	log.Info("Intervention reported",
		zap.Uint("intervention_id", intervention.ID),
		zap.String("machine_id", machine.MachineID),
		zap.String("severity", severity))
	return c.JSON(http.StatusCreated, intervention)
}

// ListInterventions returns interventions with their machines, newest first.
func ListInterventions(c echo.Context) error {
	db := database.GetDB().Preload("Machine")
	if status := c.QueryParam("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var interventions []model.Intervention
	if err := db.Order("created_at DESC").Find(&interventions).Error; err != nil {
		logger.FromEcho(c).Error("Failed to list interventions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch interventions"})
	}
	return c.JSON(http.StatusOK, interventions)
}

// UpdateInterventionStatus moves an intervention through its repair workflow.
func UpdateInterventionStatus(c echo.Context) error {
	log := logger.FromEcho(c)

	var intervention model.Intervention
	if err := database.GetDB().First(&intervention, c.Param("id")).Error; err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "intervention not found"})
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	switch req.Status {
	case "reported", "in_progress", "resolved", "cancelled":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown intervention status"})
	}

	if err := database.GetDB().Model(&intervention).Update("status", req.Status).Error; err != nil {
		log.Error("Failed to update intervention", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update intervention"})
	}

	intervention.Status = req.Status
	return c.JSON(http.StatusOK, intervention)
}
