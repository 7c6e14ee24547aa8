// Package scheduler runs the periodic floor sweeps: marking silent sensors
// inactive and raising maintenance-due alerts for machines.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"smartfactory/internal/alert"
	"smartfactory/internal/model"
	"smartfactory/pkg/config"
)

// Scheduler manages the cron-driven background jobs.
type Scheduler struct {
	cron     *cron.Cron
	db       *gorm.DB
	notifier *alert.Notifier
	cfg      config.SchedulerConfig
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(db *gorm.DB, notifier *alert.Notifier, cfg config.SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(),
		db:       db,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the jobs and starts the cron loop.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	// Hourly: flag sensors that stopped reporting.
	if _, err := s.cron.AddFunc("@hourly", s.sweepStaleSensors); err != nil {
		s.logger.Error("failed to schedule sensor sweep", zap.Error(err))
	}

	// Daily at 06:00: raise maintenance-due alerts before the first shift.
	if _, err := s.cron.AddFunc("0 6 * * *", s.sweepMaintenanceDue); err != nil {
		s.logger.Error("failed to schedule maintenance sweep", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

// sweepStaleSensors marks active sensors inactive when their last reading is
// older than the configured window.
func (s *Scheduler) sweepStaleSensors() {
	cutoff := time.Now().Add(-s.cfg.SensorStaleAfter)

	result := s.db.Model(&model.IoTSensor{}).
		Where("status = ? AND last_read_at IS NOT NULL AND last_read_at < ?", model.SensorStatusActive, cutoff).
		Update("status", model.SensorStatusInactive)
	if result.Error != nil {
		s.logger.Error("sensor staleness sweep failed", zap.Error(result.Error))
		return
	}
	if result.RowsAffected > 0 {
		s.logger.Warn("marked silent sensors inactive",
			zap.Int64("count", result.RowsAffected),
			zap.Time("cutoff", cutoff))
	}
}

// sweepMaintenanceDue notifies about operational machines whose next
// maintenance date has passed. The machine status is left alone; flipping it
// is the technician's call.
func (s *Scheduler) sweepMaintenanceDue() {
	var machines []model.Machine
	err := s.db.
		Where("status = ? AND next_maintenance_date IS NOT NULL AND next_maintenance_date < ?", model.MachineStatusOperational, time.Now()).
		Find(&machines).Error
	if err != nil {
		s.logger.Error("maintenance sweep failed", zap.Error(err))
		return
	}

	for _, machine := range machines {
		s.logger.Warn("machine maintenance overdue",
			zap.String("machine_id", machine.MachineID),
			zap.String("machine_name", machine.MachineName))
		s.notifier.NotifyAsync(alert.Notification{
			Type:      "maintenance_due",
			Message:   fmt.Sprintf("Machine %s is overdue for maintenance", machine.MachineName),
			Severity:  "medium",
			Timestamp: time.Now(),
		})
	}
}
