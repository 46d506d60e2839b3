package Controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Scoring"
	"Caribou/middleware"
)

// ExportController produces Excel and CSV downloads of visits.
type ExportController struct {
	DB *gorm.DB
}

func NewExportController(db *gorm.DB) *ExportController {
	return &ExportController{DB: db}
}

// ExportVisit writes one visit as a workbook: a Summary sheet and a
// "Checklist Details" sheet with the items in persisted category/number
// order.
func (e *ExportController) ExportVisit(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid visit ID"})
	}
	user := middleware.CurrentUser(ctx)

	var visit Models.AreaManagerVisit
	if err := e.DB.Preload("Store").Preload("Manager").
		Where("id = ? AND manager_id = ? AND is_draft = ?", id, user.ID, false).
		First(&visit).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Visit not found"})
	}

	var items []Models.ChecklistItem
	e.DB.Preload("Question").Preload("Question.Category").
		Joins("JOIN checklist_questions ON checklist_questions.id = checklist_items.question_id").
		Joins("JOIN checklist_categories ON checklist_categories.id = checklist_questions.category_id").
		Where("checklist_items.visit_id = ?", visit.ID).
		Order("checklist_categories.name, checklist_questions.number").
		Find(&items)

	score := Scoring.VisitScore(items)
	passed := 0
	for _, item := range items {
		if item.Answer {
			passed++
		}
	}

	file := excelize.NewFile()
	defer file.Close()
	file.SetSheetName("Sheet1", "Summary")

	summary := [][2]interface{}{
		{"Store", visit.Store.Name},
		{"Manager", visit.Manager.DisplayName()},
		{"Date", visit.Date.Format("2006-01-02")},
		{"Time In", visit.TimeIn},
		{"Time Out", visit.TimeOut},
		{"Score", score},
		{"Grade", Scoring.LetterGrade(score)},
		{"Total Items", len(items)},
		{"Passed Items", passed},
		{"General Notes", visit.GeneralNotes},
		{"Run Out Items", visit.RunOutItems},
		{"Maintenance Needed", visit.MaintenanceNeeded},
	}
	for i, row := range summary {
		file.SetCellValue("Summary", fmt.Sprintf("A%v", i+1), row[0])
		file.SetCellValue("Summary", fmt.Sprintf("B%v", i+1), row[1])
	}
	file.SetColWidth("Summary", "A", "A", 20)
	file.SetColWidth("Summary", "B", "B", 40)

	const details = "Checklist Details"
	file.NewSheet(details)
	headers := []string{"Category", "Question No.", "Question Text", "Answer", "Comment"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		file.SetCellValue(details, col+"1", h)
	}
	for i, item := range items {
		answer := "No"
		if item.Answer {
			answer = "Yes"
		}
		row := i + 2
		file.SetCellValue(details, fmt.Sprintf("A%v", row), item.Question.Category.Name)
		file.SetCellValue(details, fmt.Sprintf("B%v", row), item.Question.Number)
		file.SetCellValue(details, fmt.Sprintf("C%v", row), item.Question.Text)
		file.SetCellValue(details, fmt.Sprintf("D%v", row), answer)
		file.SetCellValue(details, fmt.Sprintf("E%v", row), item.Comment)
	}
	file.SetColWidth(details, "C", "C", 60)
	file.SetColWidth(details, "E", "E", 40)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate export"})
	}

	filename := fmt.Sprintf("visit_%s_%s.xlsx", visit.Store.Name, visit.Date.Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(buf.Bytes())
}

// ExportHistory writes the user's finalized visits as one sheet, one row
// per visit.
func (e *ExportController) ExportHistory(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var visits []Models.AreaManagerVisit
	if err := e.DB.Preload("Store").Preload("ChecklistItems").
		Where("manager_id = ? AND is_draft = ?", user.ID, false).
		Order("date desc").Find(&visits).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve history"})
	}

	file := excelize.NewFile()
	defer file.Close()
	const sheet = "Visit History"
	file.SetSheetName("Sheet1", sheet)

	headers := []string{"Store", "Date", "Time In", "Time Out", "Score", "Grade", "Total Items", "Passed Items"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		file.SetCellValue(sheet, col+"1", h)
	}
	for i, visit := range visits {
		score := Scoring.VisitScore(visit.ChecklistItems)
		passed := 0
		for _, item := range visit.ChecklistItems {
			if item.Answer {
				passed++
			}
		}
		row := i + 2
		file.SetCellValue(sheet, fmt.Sprintf("A%v", row), visit.Store.Name)
		file.SetCellValue(sheet, fmt.Sprintf("B%v", row), visit.Date.Format("2006-01-02"))
		file.SetCellValue(sheet, fmt.Sprintf("C%v", row), visit.TimeIn)
		file.SetCellValue(sheet, fmt.Sprintf("D%v", row), visit.TimeOut)
		file.SetCellValue(sheet, fmt.Sprintf("E%v", row), score)
		file.SetCellValue(sheet, fmt.Sprintf("F%v", row), Scoring.LetterGrade(score))
		file.SetCellValue(sheet, fmt.Sprintf("G%v", row), len(visit.ChecklistItems))
		file.SetCellValue(sheet, fmt.Sprintf("H%v", row), passed)
	}
	file.SetColWidth(sheet, "A", "A", 30)

	buf, err := file.WriteToBuffer()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate export"})
	}

	filename := fmt.Sprintf("visit_history_%s.xlsx", time.Now().Format("2006-01-02"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(buf.Bytes())
}

// ExportAllVisitsCSV is the admin-wide CSV of every finalized visit.
func (e *ExportController) ExportAllVisitsCSV(ctx *fiber.Ctx) error {
	var visits []Models.AreaManagerVisit
	if err := e.DB.Preload("Store").Preload("Manager").Preload("ChecklistItems").
		Where("is_draft = ?", false).
		Order("date desc").Find(&visits).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve visits"})
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"Store", "Manager", "Date", "Score", "Total Items", "Passed Items"})
	for _, visit := range visits {
		passed := 0
		for _, item := range visit.ChecklistItems {
			if item.Answer {
				passed++
			}
		}
		w.Write([]string{
			visit.Store.Name,
			visit.Manager.DisplayName(),
			visit.Date.Format("2006-01-02"),
			strconv.Itoa(Scoring.VisitScore(visit.ChecklistItems)),
			strconv.Itoa(len(visit.ChecklistItems)),
			strconv.Itoa(passed),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate export"})
	}

	filename := fmt.Sprintf("all_visits_%s.csv", time.Now().Format("2006-01-02"))
	ctx.Set("Content-Type", "text/csv")
	ctx.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return ctx.Send(buf.Bytes())
}
