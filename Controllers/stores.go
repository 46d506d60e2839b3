package Controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Caribou/Access"
	"Caribou/Models"
	"Caribou/Reports"
	"Caribou/Validation"
	"Caribou/middleware"
)

// StoreController handles store CRUD and per-store performance.
type StoreController struct {
	DB *gorm.DB
}

func NewStoreController(db *gorm.DB) *StoreController {
	return &StoreController{DB: db}
}

// GetStores lists the stores visible to the requesting user with their own
// visit averages. A user without a profile sees an empty list.
func (s *StoreController) GetStores(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	stores, err := Access.VisibleStores(s.DB, user)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve stores"})
	}

	ranking, err := Reports.StoreRanking(s.DB, user.ID, stores)
	if err != nil {
		zap.L().Error("store ranking failed", zap.Error(err))
		ranking = nil
	}
	byStore := make(map[uint]Reports.StorePerformance, len(ranking))
	for _, sp := range ranking {
		byStore[sp.StoreID] = sp
	}

	type storeRow struct {
		Models.Store
		VisitCount int        `json:"visit_count"`
		AvgScore   float64    `json:"avg_score"`
		LastVisit  *time.Time `json:"last_visit"`
	}
	rows := make([]storeRow, 0, len(stores))
	for _, store := range stores {
		row := storeRow{Store: store}
		if sp, ok := byStore[store.ID]; ok {
			row.VisitCount = sp.VisitCount
			row.AvgScore = sp.AvgScore
			row.LastVisit = sp.LastVisit
		}
		rows = append(rows, row)
	}
	return ctx.JSON(rows)
}

// GetStore returns one store with the user's recent visits there. Forbidden
// and missing stores are indistinguishable in the response.
func (s *StoreController) GetStore(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid store ID"})
	}
	user := middleware.CurrentUser(ctx)

	var store Models.Store
	if err := s.DB.Preload("Area").Preload("EquipmentCategories").First(&store, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}
	if !Access.HasStoreAccess(s.DB, user, &store) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}

	var visits []Models.AreaManagerVisit
	s.DB.Preload("ChecklistItems").
		Where("store_id = ? AND manager_id = ? AND is_draft = ?", store.ID, user.ID, false).
		Order("date desc").Limit(20).Find(&visits)

	return ctx.JSON(fiber.Map{
		"store":  store,
		"visits": visits,
	})
}

func (s *StoreController) CreateStore(ctx *fiber.Ctx) error {
	var input Models.StoreRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	store := Models.Store{
		Name:        input.Name,
		Address:     input.Address,
		ManagerName: input.ManagerName,
		Phone:       input.Phone,
		Email:       input.Email,
		IsActive:    true,
		AreaID:      input.AreaID,
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&store).Error; err != nil {
			return err
		}
		return replaceEquipmentCategories(tx, &store, input.EquipmentCategoryIDs)
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "A store with this name already exists"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create store"})
	}

	zap.L().Info("store created", zap.String("name", store.Name))
	return ctx.Status(fiber.StatusCreated).JSON(store)
}

func (s *StoreController) UpdateStore(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid store ID"})
	}

	var store Models.Store
	if err := s.DB.First(&store, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}

	var input Models.StoreRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&store).Updates(map[string]interface{}{
			"name":         input.Name,
			"address":      input.Address,
			"manager_name": input.ManagerName,
			"phone":        input.Phone,
			"email":        input.Email,
			"area_id":      input.AreaID,
		}).Error; err != nil {
			return err
		}
		return replaceEquipmentCategories(tx, &store, input.EquipmentCategoryIDs)
	})
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update store"})
	}
	return ctx.JSON(store)
}

// ToggleStoreStatus soft-disables or re-enables a store. Stores are never
// hard-deleted in the normal flow.
func (s *StoreController) ToggleStoreStatus(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid store ID"})
	}

	var store Models.Store
	if err := s.DB.First(&store, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}

	if err := s.DB.Model(&store).Update("is_active", !store.IsActive).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update store status"})
	}

	zap.L().Info("store status toggled", zap.String("name", store.Name), zap.Bool("is_active", !store.IsActive))
	return ctx.JSON(fiber.Map{"message": "Store status updated", "is_active": !store.IsActive})
}

// GetStoreManagement returns all stores (active and inactive) with summary
// counts for the admin management screen.
func (s *StoreController) GetStoreManagement(ctx *fiber.Ctx) error {
	var stores []Models.Store
	if err := s.DB.Preload("Area").Order("is_active desc, name").Find(&stores).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve stores"})
	}

	var active int64
	s.DB.Model(&Models.Store{}).Where("is_active = ?", true).Count(&active)

	var withVisits int64
	s.DB.Model(&Models.Store{}).
		Where("id IN (?)", s.DB.Model(&Models.AreaManagerVisit{}).Select("store_id").Where("is_draft = ?", false)).
		Count(&withVisits)

	return ctx.JSON(fiber.Map{
		"stores": stores,
		"stats": fiber.Map{
			"total":          len(stores),
			"active":         active,
			"inactive":       int64(len(stores)) - active,
			"with_visits":    withVisits,
			"without_visits": int64(len(stores)) - withVisits,
		},
	})
}

func replaceEquipmentCategories(tx *gorm.DB, store *Models.Store, ids []uint) error {
	var cats []Models.EquipmentCategory
	if len(ids) > 0 {
		if err := tx.Find(&cats, ids).Error; err != nil {
			return err
		}
	}
	return tx.Model(store).Association("EquipmentCategories").Replace(cats)
}
