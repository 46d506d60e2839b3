package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Validation"
	"Caribou/middleware"
)

// ActionPlanController manages the follow-up action items generated from
// failed checklist answers.
type ActionPlanController struct {
	DB *gorm.DB
}

func NewActionPlanController(db *gorm.DB) *ActionPlanController {
	return &ActionPlanController{DB: db}
}

// GetActionItems lists the user's action items with optional status,
// priority, store, date-range and text filters, newest visit first.
func (a *ActionPlanController) GetActionItems(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 20

	base := a.DB.Model(&Models.ActionPlanItem{}).
		Joins("JOIN area_manager_visits ON area_manager_visits.id = action_plan_items.visit_id").
		Where("area_manager_visits.manager_id = ? AND area_manager_visits.is_draft = ?", user.ID, false)

	if status := ctx.Query("status"); status != "" {
		base = base.Where("action_plan_items.status = ?", status)
	}
	if priority := ctx.Query("priority"); priority != "" {
		base = base.Where("action_plan_items.priority = ?", priority)
	}
	if storeID := ctx.Query("store_id"); storeID != "" {
		base = base.Where("area_manager_visits.store_id = ?", storeID)
	}
	if from := ctx.Query("date_from"); from != "" {
		if d, err := time.Parse("2006-01-02", from); err == nil {
			base = base.Where("area_manager_visits.date >= ?", d)
		}
	}
	if to := ctx.Query("date_to"); to != "" {
		if d, err := time.Parse("2006-01-02", to); err == nil {
			base = base.Where("area_manager_visits.date <= ?", d)
		}
	}
	if search := ctx.Query("search"); search != "" {
		like := "%" + search + "%"
		base = base.Where("action_plan_items.what LIKE ? OR action_plan_items.who LIKE ? OR action_plan_items.remarks LIKE ?", like, like, like)
	}

	var total int64
	base.Session(&gorm.Session{}).Count(&total)

	var items []Models.ActionPlanItem
	if err := base.Session(&gorm.Session{}).
		Preload("Visit").Preload("Visit.Store").
		Order("area_manager_visits.date desc, action_plan_items.id").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&items).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve action items"})
	}

	stats := a.stats(user.ID)
	return ctx.JSON(fiber.Map{
		"action_items": items,
		"page":         page,
		"total":        total,
		"stats":        stats,
	})
}

// UpdateActionItem edits a single action item the user owns through its
// visit. Closing is a plain status change; nothing else is stamped.
func (a *ActionPlanController) UpdateActionItem(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid action item ID"})
	}
	user := middleware.CurrentUser(ctx)

	var req Models.ActionItemUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(req); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	item, ok := a.loadOwnedItem(uint(id), user.ID)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Action item not found"})
	}

	timeframe, _ := time.Parse("2006-01-02", req.Timeframe)
	updates := map[string]interface{}{
		"what":      req.What,
		"who":       req.Who,
		"timeframe": timeframe,
		"status":    req.Status,
		"priority":  req.Priority,
		"remarks":   req.Remarks,
	}
	if err := a.DB.Model(item).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update action item"})
	}
	return ctx.JSON(fiber.Map{"message": "Action item updated successfully", "action_item": item})
}

// BulkUpdateActions applies one status and/or priority change to a set of
// action items in a single UPDATE. Ownership is checked for the whole set
// first; if any ID is missing or foreign the entire request is rejected.
func (a *ActionPlanController) BulkUpdateActions(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req Models.BulkActionUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(req); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}
	if req.Status == "" && req.Priority == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Nothing to update"})
	}

	var owned int64
	a.DB.Model(&Models.ActionPlanItem{}).
		Joins("JOIN area_manager_visits ON area_manager_visits.id = action_plan_items.visit_id").
		Where("action_plan_items.id IN ? AND area_manager_visits.manager_id = ?", req.ActionIDs, user.ID).
		Count(&owned)
	if owned != int64(len(req.ActionIDs)) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Action item not found"})
	}

	updates := map[string]interface{}{}
	if req.Status != "" {
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		updates["priority"] = req.Priority
	}

	result := a.DB.Model(&Models.ActionPlanItem{}).
		Where("id IN ?", req.ActionIDs).
		Updates(updates)
	if result.Error != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update action items"})
	}
	return ctx.JSON(fiber.Map{
		"message": "Action items updated successfully",
		"updated": result.RowsAffected,
	})
}

// stats counts the user's non-draft action items by status plus overdue
// open items.
func (a *ActionPlanController) stats(userID uint) fiber.Map {
	base := a.DB.Model(&Models.ActionPlanItem{}).
		Joins("JOIN area_manager_visits ON area_manager_visits.id = action_plan_items.visit_id").
		Where("area_manager_visits.manager_id = ? AND area_manager_visits.is_draft = ?", userID, false)

	var total, open, inProgress, closed, overdue int64
	base.Session(&gorm.Session{}).Count(&total)
	base.Session(&gorm.Session{}).Where("action_plan_items.status = ?", Models.ActionStatusOpen).Count(&open)
	base.Session(&gorm.Session{}).Where("action_plan_items.status = ?", Models.ActionStatusInProgress).Count(&inProgress)
	base.Session(&gorm.Session{}).Where("action_plan_items.status = ?", Models.ActionStatusClosed).Count(&closed)
	base.Session(&gorm.Session{}).
		Where("action_plan_items.status != ? AND action_plan_items.timeframe < ?", Models.ActionStatusClosed, time.Now()).
		Count(&overdue)

	return fiber.Map{
		"total":       total,
		"open":        open,
		"in_progress": inProgress,
		"closed":      closed,
		"overdue":     overdue,
	}
}

func (a *ActionPlanController) loadOwnedItem(id, userID uint) (*Models.ActionPlanItem, bool) {
	var item Models.ActionPlanItem
	err := a.DB.
		Joins("JOIN area_manager_visits ON area_manager_visits.id = action_plan_items.visit_id").
		Where("action_plan_items.id = ? AND area_manager_visits.manager_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, false
	}
	return &item, true
}
