// Package Access centralizes the role -> visibility rules. Every handler
// goes through VisibleStores/HasStoreAccess instead of doing its own role
// checks.
package Access

import (
	"gorm.io/gorm"

	"Caribou/Models"
)

// VisibleStores returns the active stores the user may see. A user without a
// profile gets an empty slice, never an error: missing profiles fail closed.
func VisibleStores(db *gorm.DB, user *Models.User) ([]Models.Store, error) {
	var stores []Models.Store
	if user == nil || user.Profile == nil {
		return stores, nil
	}

	switch user.Profile.Role {
	case Models.RoleAdmin, Models.RoleAreaManagement, Models.RoleStoreSelector:
		err := db.Where("is_active = ?", true).Order("name").Find(&stores).Error
		return stores, err
	case Models.RoleAreaManager:
		err := db.
			Joins("JOIN profile_areas ON profile_areas.area_id = stores.area_id").
			Where("profile_areas.profile_id = ? AND stores.is_active = ?", user.Profile.ID, true).
			Order("stores.name").
			Find(&stores).Error
		return stores, err
	default:
		err := db.
			Joins("JOIN profile_stores ON profile_stores.store_id = stores.id").
			Where("profile_stores.profile_id = ? AND stores.is_active = ?", user.Profile.ID, true).
			Order("stores.name").
			Find(&stores).Error
		return stores, err
	}
}

// VisibleAreas returns the areas the user may manage. Admin-type roles see
// all areas, area managers only their assigned ones, store roles none.
func VisibleAreas(db *gorm.DB, user *Models.User) ([]Models.Area, error) {
	var areas []Models.Area
	if user == nil || user.Profile == nil {
		return areas, nil
	}

	switch user.Profile.Role {
	case Models.RoleAdmin, Models.RoleAreaManagement, Models.RoleStoreSelector:
		err := db.Order("name").Find(&areas).Error
		return areas, err
	case Models.RoleAreaManager:
		err := db.
			Joins("JOIN profile_areas ON profile_areas.area_id = areas.id").
			Where("profile_areas.profile_id = ?", user.Profile.ID).
			Order("areas.name").
			Find(&areas).Error
		return areas, err
	default:
		return areas, nil
	}
}

// HasStoreAccess reports whether the user may read or act on the store:
// admin and area_manager roles pass outright, otherwise the store must be in
// the user's assigned stores or its area in the user's assigned areas.
func HasStoreAccess(db *gorm.DB, user *Models.User, store *Models.Store) bool {
	if user == nil || user.Profile == nil || store == nil {
		return false
	}

	switch user.Profile.Role {
	case Models.RoleAdmin, Models.RoleAreaManager:
		return true
	}

	var count int64
	db.Table("profile_stores").
		Where("profile_id = ? AND store_id = ?", user.Profile.ID, store.ID).
		Count(&count)
	if count > 0 {
		return true
	}

	if store.AreaID != nil {
		db.Table("profile_areas").
			Where("profile_id = ? AND area_id = ?", user.Profile.ID, *store.AreaID).
			Count(&count)
		if count > 0 {
			return true
		}
	}
	return false
}

// IsAdmin is the gate for the management surfaces (stores, areas, questions,
// users, data export).
func IsAdmin(user *Models.User) bool {
	return user != nil && user.Profile != nil && user.Profile.Role == Models.RoleAdmin
}
