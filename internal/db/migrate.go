package db

import (
	"errors"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Item{},
	}
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs migrations against an explicit handle.
func MigrateDB(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// EnsureAdmin creates an admin account for email unless one already exists.
// An existing non-admin account with that email is promoted.
func EnsureAdmin(db *gorm.DB, name, email, password string) (*model.User, error) {
	var user model.User
	err := db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		if user.Role == model.RoleAdmin {
			logger.Info("Admin account already present", map[string]interface{}{
				"user_id": user.ID,
			})
			return &user, nil
		}
		if err := db.Model(&user).Update("role", model.RoleAdmin).Error; err != nil {
			return nil, err
		}
		user.Role = model.RoleAdmin
		logger.Info("Promoted account to admin", map[string]interface{}{
			"user_id": user.ID,
		})
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	user = model.User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     model.RoleAdmin,
		Cart:     model.Cart{},
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, err
	}
	logger.Info("Admin account created", map[string]interface{}{
		"user_id": user.ID,
		"email":   email,
	})
	return &user, nil
}
