package main

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"smartfactory/internal/model"
)

// seedUsers creates the demo accounts used on fresh installations. Existing
// emails are left untouched.
func seedUsers(db *gorm.DB, log *zap.Logger) {
	demo := []struct {
		Email     string
		Password  string
		FirstName string
		LastName  string
		Role      model.Role
	}{
		{"admin@atlas.com", "admin123", "Ana", "Silva", model.RoleAdmin},
		{"director@atlas.com", "director123", "Miguel", "Santos", model.RoleDirector},
		{"quality@atlas.com", "quality123", "Rita", "Costa", model.RoleQualityManager},
		{"production@atlas.com", "production123", "Joao", "Ferreira", model.RoleProductionManager},
		{"operator@atlas.com", "operator123", "Pedro", "Alves", model.RoleOperator},
		{"tech@atlas.com", "tech123", "Carla", "Rocha", model.RoleTechnician},
	}

	for _, entry := range demo {
		var count int64
		db.Model(&model.User{}).Where("email = ?", entry.Email).Count(&count)
		if count > 0 {
			continue
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Error("Failed to hash seed password", zap.String("email", entry.Email), zap.Error(err))
			continue
		}
		user := model.User{
			Email:     entry.Email,
			Password:  string(hash),
			FirstName: entry.FirstName,
			LastName:  entry.LastName,
			Role:      entry.Role,
			Active:    true,
		}
		if err := db.Create(&user).Error; err != nil {
			log.Error("Failed to seed user", zap.String("email", entry.Email), zap.Error(err))
			continue
		}
		log.Info("Seeded demo user",
			zap.String("email", entry.Email),
			zap.String("role", string(entry.Role)))
	}
}
