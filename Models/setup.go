package Models

import (
	"Caribou/Config"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	connection, err := gorm.Open(sqlite.Open(Config.Cfg.DBPath), &gorm.Config{})
	if err != nil {
		zap.L().Fatal("failed to open database", zap.Error(err))
	}
	DB = connection

	// 1. Reference data with no dependencies
	if err := DB.AutoMigrate(
		&User{},
		&Area{},
		&EquipmentCategory{},
		&ChecklistCategory{},
	); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	// 2. Simple foreign key relationships
	if err := DB.AutoMigrate(
		&Profile{},
		&Store{},
		&ChecklistQuestion{},
	); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	// 3. Visit-owned rows last
	if err := DB.AutoMigrate(
		&AreaManagerVisit{},
		&ChecklistItem{},
		&ActionPlanItem{},
		&MaintenanceTicket{},
		&VisitAttachment{},
	); err != nil {
		zap.L().Fatal("migration failed", zap.Error(err))
	}

	seedAdmin()
}

// seedAdmin creates the bootstrap admin account on an empty user table.
func seedAdmin() {
	var count int64
	DB.Model(&User{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash bootstrap password", zap.Error(err))
		return
	}
	admin := User{
		Username: "admin",
		FullName: "System Admin",
		Password: hash,
		IsActive: true,
		Profile:  &Profile{Role: RoleAdmin},
	}
	if err := DB.Create(&admin).Error; err != nil {
		zap.L().Error("failed to seed admin user", zap.Error(err))
		return
	}
	zap.L().Info("seeded bootstrap admin user", zap.String("username", admin.Username))
}
