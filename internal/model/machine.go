package model

import "time"

// Machine statuses
const (
	MachineStatusOperational = "operational"
	MachineStatusMaintenance = "maintenance"
	MachineStatusBroken      = "broken"
	MachineStatusIdle        = "idle"
)

// Machine is a piece of floor equipment tracked for maintenance.
type Machine struct {
	ID                  uint       `json:"id" gorm:"primarykey"`
	MachineID           string     `json:"machine_id" gorm:"type:varchar(64);uniqueIndex;not null"`
	MachineName         string     `json:"machine_name" gorm:"type:varchar(100);not null"`
	Type                string     `json:"type" gorm:"type:varchar(64);not null"`
	Location            string     `json:"location" gorm:"type:varchar(100)"`
	InstallationDate    *time.Time `json:"installation_date,omitempty"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date,omitempty"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date,omitempty"`
	OperationalHours    int        `json:"operational_hours" gorm:"default:0"`
	Status              string     `json:"status" gorm:"type:varchar(32);not null;default:'operational'"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Intervention severities
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Intervention is a reported maintenance problem on a machine.
type Intervention struct {
	ID                 uint      `json:"id" gorm:"primarykey"`
	MachineID          uint      `json:"machine_id" gorm:"not null;index"`
	Machine            *Machine  `json:"machine,omitempty" gorm:"foreignKey:MachineID"`
	ProblemDescription string    `json:"problem_description" gorm:"type:text;not null"`
	ProblemType        string    `json:"problem_type" gorm:"type:varchar(64)"`
	Severity           string    `json:"severity" gorm:"type:varchar(16);not null;default:'low'"`
	Status             string    `json:"status" gorm:"type:varchar(32);not null;default:'reported'"`
	ReportedBy         uint      `json:"reported_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
