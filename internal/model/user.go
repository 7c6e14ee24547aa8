package model

import (
	"time"

	"gorm.io/gorm"
)

// Role is the closed set of plant roles used for authorization.
type Role string

const (
	RoleAdmin             Role = "admin"
	RoleDirector          Role = "director"
	RoleQualityManager    Role = "quality_manager"
	RoleProductionManager Role = "production_manager"
	RoleOperator          Role = "operator"
	RoleTechnician        Role = "technician"
	RoleSales             Role = "sales"
	RoleClient            Role = "client"
	RoleAuditor           Role = "auditor"
)

// ValidRole reports whether the given role is one of the known variants.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleDirector, RoleQualityManager, RoleProductionManager,
		RoleOperator, RoleTechnician, RoleSales, RoleClient, RoleAuditor:
		return true
	}
	return false
}

// User represents an authentication principal with a fixed plant role
type User struct {
	ID         uint           `json:"id" gorm:"primarykey"`
	Email      string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"type:varchar(255);not null"`
	FirstName  string         `json:"first_name" gorm:"type:varchar(100);not null"`
	LastName   string         `json:"last_name" gorm:"type:varchar(100);not null"`
	Role       Role           `json:"role" gorm:"type:varchar(32);not null"`
	Department string         `json:"department" gorm:"type:varchar(100)"`
	Active     bool           `json:"active" gorm:"default:true"`
	LastLogin  *time.Time     `json:"last_login,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}
