package Controllers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"Caribou/Access"
	"Caribou/Checklist"
	"Caribou/Config"
	"Caribou/Models"
	"Caribou/Scoring"
	"Caribou/middleware"
)

// VisitController handles checklist visit submission, drafts, history and
// detail views.
type VisitController struct {
	DB *gorm.DB
}

func NewVisitController(db *gorm.DB) *VisitController {
	return &VisitController{DB: db}
}

// CreateVisit processes a multipart checklist submission. The form carries
// store_id, visit_date, time_in, time_out, an action discriminator (submit
// or draft), free-text notes, and per question q_<id>, comment_<id> and
// file_<id> fields. Everything is written in one transaction: a failed file
// validation rolls back the visit and every row created under it.
func (v *VisitController) CreateVisit(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	storeID, err := strconv.Atoi(ctx.FormValue("store_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Store, visit date and time in are required"})
	}
	dateStr := ctx.FormValue("visit_date")
	timeIn := ctx.FormValue("time_in")
	if dateStr == "" || timeIn == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Store, visit date and time in are required"})
	}

	visitDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date or time format. Please check your inputs."})
	}
	if _, err := time.Parse("15:04", timeIn); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date or time format. Please check your inputs."})
	}
	timeOut := ctx.FormValue("time_out")
	if timeOut != "" {
		if _, err := time.Parse("15:04", timeOut); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date or time format. Please check your inputs."})
		}
	}

	var store Models.Store
	if err := v.DB.Where("id = ? AND is_active = ?", storeID, true).First(&store).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}
	if !Access.HasStoreAccess(v.DB, user, &store) {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Store not found"})
	}

	isDraft := ctx.FormValue("action") == "draft"

	var questions []Models.ChecklistQuestion
	if err := v.DB.Preload("Category").
		Joins("JOIN checklist_categories ON checklist_categories.id = checklist_questions.category_id").
		Where("checklist_questions.is_active = ? AND checklist_categories.active = ?", true, true).
		Order("checklist_categories.name, checklist_questions.number").
		Find(&questions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load checklist"})
	}

	answers := make(map[uint]Checklist.AnswerInput, len(questions))
	for _, q := range questions {
		key := strconv.Itoa(int(q.ID))
		in := Checklist.AnswerInput{
			Answer:  ctx.FormValue("q_"+key) == "true",
			Comment: ctx.FormValue("comment_" + key),
		}
		if file, err := ctx.FormFile("file_" + key); err == nil && file != nil {
			in.File = file
		}
		answers[q.ID] = in
	}

	visit := Models.AreaManagerVisit{
		StoreID:           store.ID,
		ManagerID:         user.ID,
		Date:              visitDate,
		TimeIn:            timeIn,
		TimeOut:           timeOut,
		IsDraft:           isDraft,
		GeneralNotes:      ctx.FormValue("general_notes"),
		RunOutItems:       ctx.FormValue("run_out_items"),
		MaintenanceNeeded: ctx.FormValue("maintenance_needed"),
	}
	if isDraft {
		if payload, err := json.Marshal(answers); err == nil {
			visit.DraftPayload = datatypes.JSON(payload)
		}
	}

	// Drafts keep only the answer snapshot. Items, attachments and action
	// items are created on final submission, so nothing from a draft can
	// leak into scores or action lists.
	if isDraft {
		if err := v.DB.Create(&visit).Error; err != nil {
			zap.L().Error("draft save failed", zap.Uint("store_id", store.ID), zap.Error(err))
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to save draft"})
		}
		return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":  "Checklist saved as draft.",
			"visit_id": visit.ID,
		})
	}

	var result Checklist.Result
	err = v.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&visit).Error; err != nil {
			return err
		}
		var perr error
		result, perr = Checklist.Process(tx, &visit, questions, answers, user.DisplayName(), Config.Cfg.AttachmentDir)
		return perr
	})
	if err != nil {
		if strings.Contains(err.Error(), "file size") || strings.Contains(err.Error(), "file type") {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
		}
		zap.L().Error("checklist submission failed", zap.Uint("store_id", store.ID), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "An error occurred while submitting the checklist. Please try again."})
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":         "Checklist submitted successfully! " + strconv.Itoa(result.CreatedActions) + " action items created.",
		"visit_id":        visit.ID,
		"score":           result.Score,
		"letter_grade":    result.LetterGrade,
		"created_actions": result.CreatedActions,
	})
}

// GetHistory lists the user's finalized visits, newest first, paginated.
func (v *VisitController) GetHistory(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 15

	sortBy := ctx.Query("sort", "date desc")
	switch sortBy {
	case "date", "date desc", "overall_score", "overall_score desc":
	default:
		sortBy = "date desc"
	}

	var total int64
	v.DB.Model(&Models.AreaManagerVisit{}).
		Where("manager_id = ? AND is_draft = ?", user.ID, false).Count(&total)

	var visits []Models.AreaManagerVisit
	if err := v.DB.Preload("Store").Preload("ChecklistItems").
		Where("manager_id = ? AND is_draft = ?", user.ID, false).
		Order(sortBy).Offset((page - 1) * perPage).Limit(perPage).
		Find(&visits).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve history"})
	}

	type historyRow struct {
		ID          uint      `json:"id"`
		StoreName   string    `json:"store_name"`
		Date        time.Time `json:"date"`
		Score       int       `json:"score"`
		LetterGrade string    `json:"letter_grade"`
	}
	rows := make([]historyRow, 0, len(visits))
	for _, visit := range visits {
		score := Scoring.VisitScore(visit.ChecklistItems)
		rows = append(rows, historyRow{
			ID:          visit.ID,
			StoreName:   visit.Store.Name,
			Date:        visit.Date,
			Score:       score,
			LetterGrade: Scoring.LetterGrade(score),
		})
	}
	return ctx.JSON(fiber.Map{
		"visits": rows,
		"page":   page,
		"total":  total,
	})
}

// GetVisit returns a visit's full detail: items grouped by category in
// persisted order, pass/fail counts, the recomputed score and per-category
// compliance.
func (v *VisitController) GetVisit(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid visit ID"})
	}
	user := middleware.CurrentUser(ctx)

	visit, ok := v.loadOwnedVisit(uint(id), user)
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Visit not found"})
	}

	var items []Models.ChecklistItem
	v.DB.Preload("Question").Preload("Question.Category").
		Joins("JOIN checklist_questions ON checklist_questions.id = checklist_items.question_id").
		Joins("JOIN checklist_categories ON checklist_categories.id = checklist_questions.category_id").
		Where("checklist_items.visit_id = ?", visit.ID).
		Order("checklist_categories.name, checklist_questions.number").
		Find(&items)

	passed, failed := 0, 0
	seen := make(map[uint]bool)
	var categories []Models.ChecklistCategory
	for _, item := range items {
		if item.Answer {
			passed++
		} else {
			failed++
		}
		if !seen[item.Question.CategoryID] {
			seen[item.Question.CategoryID] = true
			categories = append(categories, item.Question.Category)
		}
	}

	score := Scoring.VisitScore(items)
	categoryScores := make(map[string]float64, len(categories))
	for _, cat := range categories {
		categoryScores[cat.Name] = Scoring.CategoryCompliance(cat.ID, items)
	}

	var actions []Models.ActionPlanItem
	v.DB.Where("visit_id = ?", visit.ID).Order("priority desc, timeframe").Find(&actions)
	var attachments []Models.VisitAttachment
	v.DB.Where("visit_id = ?", visit.ID).Find(&attachments)

	return ctx.JSON(fiber.Map{
		"visit":           visit,
		"items":           items,
		"passed_items":    passed,
		"failed_items":    failed,
		"overall_score":   score,
		"letter_grade":    Scoring.LetterGrade(score),
		"category_scores": categoryScores,
		"action_items":    actions,
		"attachments":     attachments,
	})
}

// GetDrafts lists the user's draft visits with basic counts.
func (v *VisitController) GetDrafts(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var drafts []Models.AreaManagerVisit
	if err := v.DB.Preload("Store").
		Where("manager_id = ? AND is_draft = ?", user.ID, true).
		Order("created_at desc").Find(&drafts).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve drafts"})
	}

	now := time.Now()
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)
	thisWeek, thisMonth := 0, 0
	for _, d := range drafts {
		if d.CreatedAt.After(weekAgo) {
			thisWeek++
		}
		if d.CreatedAt.After(monthAgo) {
			thisMonth++
		}
	}

	return ctx.JSON(fiber.Map{
		"drafts": drafts,
		"stats": fiber.Map{
			"total":      len(drafts),
			"this_week":  thisWeek,
			"this_month": thisMonth,
		},
	})
}

// LoadDraft returns the stored answer snapshot so the form can be refilled.
func (v *VisitController) LoadDraft(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid draft ID"})
	}
	user := middleware.CurrentUser(ctx)

	var draft Models.AreaManagerVisit
	if err := v.DB.Preload("Store").
		Where("id = ? AND manager_id = ? AND is_draft = ?", id, user.ID, true).
		First(&draft).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Draft not found"})
	}

	var answers map[uint]Checklist.AnswerInput
	if len(draft.DraftPayload) > 0 {
		if err := json.Unmarshal(draft.DraftPayload, &answers); err != nil {
			zap.L().Warn("corrupt draft payload", zap.Uint("visit_id", draft.ID), zap.Error(err))
		}
	}

	return ctx.JSON(fiber.Map{
		"draft":   draft,
		"answers": answers,
	})
}

// DeleteDraft removes a draft and, through the cascade, its items.
func (v *VisitController) DeleteDraft(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid draft ID"})
	}
	user := middleware.CurrentUser(ctx)

	var draft Models.AreaManagerVisit
	if err := v.DB.Where("id = ? AND manager_id = ? AND is_draft = ?", id, user.ID, true).
		First(&draft).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Draft not found"})
	}

	if err := v.DB.Select("ChecklistItems", "ActionItems", "MaintenanceTickets", "Attachments").
		Delete(&draft).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete draft"})
	}
	return ctx.JSON(fiber.Map{"message": "Draft deleted successfully"})
}

// FinalizeDraft replays the stored answer snapshot through the submission
// pipeline and clears the draft flag, so the visit enters the aggregates
// with its items and action items in place. File uploads do not survive the
// snapshot; attachments have to come through a fresh submission.
func (v *VisitController) FinalizeDraft(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid draft ID"})
	}
	user := middleware.CurrentUser(ctx)

	var draft Models.AreaManagerVisit
	if err := v.DB.Where("id = ? AND manager_id = ? AND is_draft = ?", id, user.ID, true).
		First(&draft).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Draft not found"})
	}

	var answers map[uint]Checklist.AnswerInput
	if len(draft.DraftPayload) > 0 {
		if err := json.Unmarshal(draft.DraftPayload, &answers); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Draft payload is corrupt; delete it and start over"})
		}
	}

	var questions []Models.ChecklistQuestion
	if err := v.DB.Preload("Category").
		Joins("JOIN checklist_categories ON checklist_categories.id = checklist_questions.category_id").
		Where("checklist_questions.is_active = ? AND checklist_categories.active = ?", true, true).
		Order("checklist_categories.name, checklist_questions.number").
		Find(&questions).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load checklist"})
	}

	var result Checklist.Result
	err = v.DB.Transaction(func(tx *gorm.DB) error {
		var perr error
		result, perr = Checklist.Process(tx, &draft, questions, answers, user.DisplayName(), Config.Cfg.AttachmentDir)
		if perr != nil {
			return perr
		}
		return tx.Model(&draft).Updates(map[string]interface{}{
			"is_draft":      false,
			"draft_payload": nil,
		}).Error
	})
	if err != nil {
		zap.L().Error("draft finalize failed", zap.Uint("visit_id", draft.ID), zap.Error(err))
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to finalize draft"})
	}
	return ctx.JSON(fiber.Map{
		"message":         "Checklist submitted successfully! " + strconv.Itoa(result.CreatedActions) + " action items created.",
		"visit_id":        draft.ID,
		"score":           result.Score,
		"letter_grade":    result.LetterGrade,
		"created_actions": result.CreatedActions,
	})
}

// loadOwnedVisit fetches a visit the user owns. Missing and foreign visits
// look the same to the caller.
func (v *VisitController) loadOwnedVisit(id uint, user *Models.User) (*Models.AreaManagerVisit, bool) {
	var visit Models.AreaManagerVisit
	if err := v.DB.Preload("Store").Preload("Manager").
		Where("id = ? AND manager_id = ?", id, user.ID).
		First(&visit).Error; err != nil {
		return nil, false
	}
	return &visit, true
}
