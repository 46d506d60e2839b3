package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Validation"
)

// AreaController handles area management: grouping stores and granting
// users area access.
type AreaController struct {
	DB *gorm.DB
}

func NewAreaController(db *gorm.DB) *AreaController {
	return &AreaController{DB: db}
}

func (a *AreaController) GetAreas(ctx *fiber.Ctx) error {
	var areas []Models.Area
	if err := a.DB.Preload("Stores").Preload("Users").Order("name").Find(&areas).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve areas"})
	}

	type areaRow struct {
		Models.Area
		StoreCount int `json:"store_count"`
		UserCount  int `json:"user_count"`
	}
	rows := make([]areaRow, 0, len(areas))
	for _, area := range areas {
		rows = append(rows, areaRow{Area: area, StoreCount: len(area.Stores), UserCount: len(area.Users)})
	}
	return ctx.JSON(rows)
}

func (a *AreaController) CreateArea(ctx *fiber.Ctx) error {
	var input Models.AreaRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	area := Models.Area{Name: input.Name, Description: input.Description}
	if err := a.DB.Create(&area).Error; err != nil {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "An area with this name already exists"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(area)
}

// AssignStore moves a store into this area.
func (a *AreaController) AssignStore(ctx *fiber.Ctx) error {
	areaID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid area ID"})
	}

	var input struct {
		StoreID uint `json:"store_id"`
	}
	if err := ctx.BodyParser(&input); err != nil || input.StoreID == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "store_id is required"})
	}

	var area Models.Area
	if err := a.DB.First(&area, areaID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Area not found"})
	}
	var store Models.Store
	if err := a.DB.First(&store, input.StoreID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}

	if err := a.DB.Model(&store).Update("area_id", area.ID).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to assign store"})
	}

	zap.L().Info("store assigned to area", zap.String("store", store.Name), zap.String("area", area.Name))
	return ctx.JSON(fiber.Map{"message": "Store assigned to area"})
}

// AssignUsers grants the listed users access to this area (added to their
// profile area sets, existing assignments kept).
func (a *AreaController) AssignUsers(ctx *fiber.Ctx) error {
	areaID, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid area ID"})
	}

	var input struct {
		UserIDs []uint `json:"user_ids"`
	}
	if err := ctx.BodyParser(&input); err != nil || len(input.UserIDs) == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "user_ids is required"})
	}

	var area Models.Area
	if err := a.DB.First(&area, areaID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Area not found"})
	}

	var profiles []Models.Profile
	if err := a.DB.Where("user_id IN ?", input.UserIDs).Find(&profiles).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load users"})
	}

	assigned := 0
	for i := range profiles {
		if err := a.DB.Model(&profiles[i]).Association("Areas").Append(&area); err != nil {
			zap.L().Error("failed to append area to profile", zap.Uint("profile_id", profiles[i].ID), zap.Error(err))
			continue
		}
		assigned++
	}
	return ctx.JSON(fiber.Map{"message": "Users assigned to area", "assigned": assigned})
}
