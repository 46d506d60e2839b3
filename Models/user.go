package Models

import (
	"gorm.io/gorm"
)

// Role values stored on Profile.
const (
	RoleAdmin          = "admin"
	RoleAreaManager    = "area_manager"
	RoleStoreManager   = "store_manager"
	RoleAreaManagement = "area_management"
	RoleStoreSelector  = "store_selector"
	RoleVisitCreator   = "visit_creator"
)

type User struct {
	gorm.Model
	Username string `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FullName string `json:"full_name" gorm:"size:255"`
	Email    string `json:"email" gorm:"size:255"`
	Password []byte `json:"-" gorm:"not null"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	Profile *Profile `json:"profile,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// DisplayName falls back to the username when no full name was set.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Username
}

// Profile extends a user with a role and the explicit store/area sets the
// access policy reads. A user without a profile is denied everything.
type Profile struct {
	gorm.Model
	UserID uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	Role   string `json:"role" gorm:"size:20;not null"`

	Stores []Store `json:"stores,omitempty" gorm:"many2many:profile_stores;"`
	Areas  []Area  `json:"areas,omitempty" gorm:"many2many:profile_areas;"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	FullName string `json:"full_name" validate:"max=255"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin area_manager store_manager area_management store_selector visit_creator"`
	StoreIDs []uint `json:"store_ids"`
	AreaIDs  []uint `json:"area_ids"`
}

type UpdateProfileRequest struct {
	Role     string `json:"role" validate:"required,oneof=admin area_manager store_manager area_management store_selector visit_creator"`
	StoreIDs []uint `json:"store_ids"`
	AreaIDs  []uint `json:"area_ids"`
}
