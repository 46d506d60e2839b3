package Controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Validation"
)

// QuestionController manages checklist categories and questions. Inactive
// rows are excluded from new visits but kept for history.
type QuestionController struct {
	DB *gorm.DB
}

func NewQuestionController(db *gorm.DB) *QuestionController {
	return &QuestionController{DB: db}
}

// GetChecklistForm returns the active categories with their active
// questions, ordered the way the submission form renders them.
func (q *QuestionController) GetChecklistForm(ctx *fiber.Ctx) error {
	var categories []Models.ChecklistCategory
	err := q.DB.Where("active = ?", true).Order("name").
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("number")
		}).
		Find(&categories).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load checklist"})
	}

	// Categories with no active questions are dropped from the form.
	form := make([]Models.ChecklistCategory, 0, len(categories))
	for _, cat := range categories {
		if len(cat.Questions) > 0 {
			form = append(form, cat)
		}
	}
	return ctx.JSON(form)
}

func (q *QuestionController) GetQuestions(ctx *fiber.Ctx) error {
	var questions []Models.ChecklistQuestion
	err := q.DB.Preload("Category").
		Joins("JOIN checklist_categories ON checklist_categories.id = checklist_questions.category_id").
		Order("checklist_categories.name, checklist_questions.number").
		Find(&questions).Error
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve questions"})
	}
	return ctx.JSON(questions)
}

func (q *QuestionController) CreateQuestion(ctx *fiber.Ctx) error {
	var input Models.QuestionRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	var category Models.ChecklistCategory
	if err := q.DB.First(&category, input.CategoryID).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
	}

	question := Models.ChecklistQuestion{
		CategoryID: input.CategoryID,
		Text:       input.Text,
		Number:     input.Number,
		IsActive:   true,
	}
	if err := q.DB.Create(&question).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create question"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(question)
}

func (q *QuestionController) UpdateQuestion(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid question ID"})
	}

	var question Models.ChecklistQuestion
	if err := q.DB.First(&question, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Question not found"})
	}

	var input Models.QuestionRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	if err := q.DB.Model(&question).Updates(map[string]interface{}{
		"category_id": input.CategoryID,
		"text":        input.Text,
		"number":      input.Number,
	}).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update question"})
	}
	return ctx.JSON(question)
}

func (q *QuestionController) ToggleQuestion(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid question ID"})
	}

	var question Models.ChecklistQuestion
	if err := q.DB.First(&question, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Question not found"})
	}
	if err := q.DB.Model(&question).Update("is_active", !question.IsActive).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update question"})
	}
	return ctx.JSON(fiber.Map{"message": "Question updated", "is_active": !question.IsActive})
}

func (q *QuestionController) GetCategories(ctx *fiber.Ctx) error {
	var categories []Models.ChecklistCategory
	if err := q.DB.Order("name").Find(&categories).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve categories"})
	}
	return ctx.JSON(categories)
}

func (q *QuestionController) CreateCategory(ctx *fiber.Ctx) error {
	var input Models.CategoryRequest
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if errs := Validation.Struct(input); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Validation failed", "errors": errs})
	}

	category := Models.ChecklistCategory{Name: input.Name, Description: input.Description, Active: true}
	if err := q.DB.Create(&category).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create category"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(category)
}

func (q *QuestionController) ToggleCategory(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid category ID"})
	}

	var category Models.ChecklistCategory
	if err := q.DB.First(&category, id).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Category not found"})
	}
	if err := q.DB.Model(&category).Update("active", !category.Active).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update category"})
	}
	return ctx.JSON(fiber.Map{"message": "Category updated", "active": !category.Active})
}
