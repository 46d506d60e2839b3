package Models

import (
	"gorm.io/gorm"
)

type Area struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`

	Stores []Store `json:"stores,omitempty" gorm:"foreignKey:AreaID"`
	Users  []User  `json:"users,omitempty" gorm:"many2many:area_users;"`
}

type Store struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;not null"`
	Address     string `json:"address" gorm:"type:text"`
	ManagerName string `json:"manager_name" gorm:"size:100"`
	Phone       string `json:"phone" gorm:"size:20"`
	Email       string `json:"email" gorm:"size:255"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
	AreaID      *uint  `json:"area_id" gorm:"index"`

	Area                *Area               `json:"area,omitempty" gorm:"foreignKey:AreaID"`
	EquipmentCategories []EquipmentCategory `json:"equipment_categories,omitempty" gorm:"many2many:store_equipment_categories;"`
}

type EquipmentCategory struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description string `json:"description" gorm:"type:text"`
}

type StoreRequest struct {
	Name                 string `json:"name" validate:"required,max=100"`
	Address              string `json:"address"`
	ManagerName          string `json:"manager_name" validate:"max=100"`
	Phone                string `json:"phone" validate:"omitempty,e164"`
	Email                string `json:"email" validate:"omitempty,email"`
	AreaID               *uint  `json:"area_id"`
	EquipmentCategoryIDs []uint `json:"equipment_category_ids"`
}

type AreaRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}
