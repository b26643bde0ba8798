package bootstrap

import (
	"anoa.com/yamdb/internal/entity"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	adminUsername = "admin"
	adminEmail    = "admin@yamdb.local"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Category{},
		&entity.Genre{},
		&entity.Title{},
		&entity.Review{},
		&entity.Comment{},
	)
}

// SeedAdminUser creates the development superuser. It has no password; sign
// up with the same username and email to receive a confirmation code.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("username = ?", adminUsername).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logrus.Debug("admin user already exists, skipping seed")
		return nil
	}

	admin := entity.User{
		Username:    adminUsername,
		Email:       adminEmail,
		Role:        entity.RoleAdmin,
		IsStaff:     true,
		IsSuperuser: true,
		IsActive:    true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"username": adminUsername,
		"email":    adminEmail,
	}).Info("admin user seeded")
	return nil
}
