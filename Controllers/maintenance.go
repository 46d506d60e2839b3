package Controllers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Reports"
	"Caribou/Validation"
	"Caribou/middleware"
)

// MaintenanceController manages equipment maintenance tickets raised during
// store visits.
type MaintenanceController struct {
	DB *gorm.DB
}

func NewMaintenanceController(db *gorm.DB) *MaintenanceController {
	return &MaintenanceController{DB: db}
}

// GetTickets lists the user's tickets with status, priority, equipment and
// store filters plus a stats block and a 30-day created-per-day series.
func (m *MaintenanceController) GetTickets(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	const perPage = 20

	base := m.DB.Model(&Models.MaintenanceTicket{}).
		Joins("JOIN area_manager_visits ON area_manager_visits.id = maintenance_tickets.visit_id").
		Where("area_manager_visits.manager_id = ? AND area_manager_visits.is_draft = ?", user.ID, false)

	if status := ctx.Query("status"); status != "" {
		base = base.Where("maintenance_tickets.status = ?", status)
	}
	if priority := ctx.Query("priority"); priority != "" {
		base = base.Where("maintenance_tickets.priority = ?", priority)
	}
	if storeID := ctx.Query("store_id"); storeID != "" {
		base = base.Where("area_manager_visits.store_id = ?", storeID)
	}
	if equipment := ctx.Query("equipment"); equipment != "" {
		base = base.Where("maintenance_tickets.equipment LIKE ?", "%"+equipment+"%")
	}
	if from := ctx.Query("date_from"); from != "" {
		if d, err := time.Parse("2006-01-02", from); err == nil {
			base = base.Where("maintenance_tickets.created_at >= ?", d)
		}
	}
	if to := ctx.Query("date_to"); to != "" {
		if d, err := time.Parse("2006-01-02", to); err == nil {
			base = base.Where("maintenance_tickets.created_at < ?", d.AddDate(0, 0, 1))
		}
	}

	var total int64
	base.Session(&gorm.Session{}).Count(&total)

	var tickets []Models.MaintenanceTicket
	if err := base.Session(&gorm.Session{}).
		Preload("Visit").Preload("Visit.Store").
		Order("maintenance_tickets.created_at desc").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&tickets).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve tickets"})
	}

	stats, err := Reports.MaintenanceRollup(m.DB, user.ID, time.Now())
	if err != nil {
		stats = Reports.MaintenanceStats{}
	}
	dates, counts := m.createdTrend(user.ID, time.Now())

	return ctx.JSON(fiber.Map{
		"tickets": tickets,
		"page":    page,
		"total":   total,
		"stats":   stats,
		"trend": fiber.Map{
			"dates":  dates,
			"counts": counts,
		},
	})
}

// CreateTicket raises a ticket against one of the user's visits.
func (m *MaintenanceController) CreateTicket(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	var req Models.MaintenanceTicketRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(req); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	var visit Models.AreaManagerVisit
	if err := m.DB.Where("id = ? AND manager_id = ?", req.VisitID, user.ID).
		First(&visit).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Visit not found"})
	}

	ticket := Models.MaintenanceTicket{
		VisitID:          visit.ID,
		Equipment:        req.Equipment,
		IssueDescription: req.IssueDescription,
		Priority:         req.Priority,
		Status:           Models.TicketStatusPending,
	}
	if req.DueDate != "" {
		if due, err := time.Parse("2006-01-02", req.DueDate); err == nil {
			ticket.DueDate = &due
		}
	}

	if err := m.DB.Create(&ticket).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to create ticket"})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Maintenance ticket created successfully", "ticket": ticket})
}

// UpdateTicket edits a ticket. Moving to completed stamps the closed date;
// reopening clears it.
func (m *MaintenanceController) UpdateTicket(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid ticket ID"})
	}
	user := middleware.CurrentUser(ctx)

	var req Models.MaintenanceTicketUpdateRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if errs := Validation.Struct(req); errs != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	var ticket Models.MaintenanceTicket
	if err := m.DB.
		Joins("JOIN area_manager_visits ON area_manager_visits.id = maintenance_tickets.visit_id").
		Where("maintenance_tickets.id = ? AND area_manager_visits.manager_id = ?", id, user.ID).
		First(&ticket).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ticket not found"})
	}

	updates := map[string]interface{}{
		"equipment":         req.Equipment,
		"issue_description": req.IssueDescription,
		"priority":          req.Priority,
		"status":            req.Status,
	}
	if req.DueDate != "" {
		if due, perr := time.Parse("2006-01-02", req.DueDate); perr == nil {
			updates["due_date"] = due
		}
	}
	if req.Status == Models.TicketStatusCompleted && ticket.Status != Models.TicketStatusCompleted {
		updates["closed_date"] = time.Now()
	} else if req.Status != Models.TicketStatusCompleted {
		updates["closed_date"] = nil
	}

	if err := m.DB.Model(&ticket).Updates(updates).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update ticket"})
	}
	return ctx.JSON(fiber.Map{"message": "Ticket updated successfully", "ticket": ticket})
}

// DeleteTicket removes a ticket the user owns through its visit.
func (m *MaintenanceController) DeleteTicket(ctx *fiber.Ctx) error {
	id, err := strconv.Atoi(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid ticket ID"})
	}
	user := middleware.CurrentUser(ctx)

	var ticket Models.MaintenanceTicket
	if err := m.DB.
		Joins("JOIN area_manager_visits ON area_manager_visits.id = maintenance_tickets.visit_id").
		Where("maintenance_tickets.id = ? AND area_manager_visits.manager_id = ?", id, user.ID).
		First(&ticket).Error; err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Ticket not found"})
	}

	if err := m.DB.Delete(&ticket).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete ticket"})
	}
	return ctx.JSON(fiber.Map{"message": "Ticket deleted successfully"})
}

// createdTrend counts tickets created per day over the last 30 days.
func (m *MaintenanceController) createdTrend(userID uint, today time.Time) ([]string, []int) {
	since := today.AddDate(0, 0, -30)

	type row struct {
		Day   string
		Count int
	}
	var rows []row
	m.DB.Raw(`
		SELECT DATE(maintenance_tickets.created_at) AS day, COUNT(*) AS count
		FROM maintenance_tickets
		JOIN area_manager_visits ON area_manager_visits.id = maintenance_tickets.visit_id
		WHERE area_manager_visits.manager_id = ?
		  AND area_manager_visits.is_draft = 0
		  AND maintenance_tickets.created_at >= ?
		  AND maintenance_tickets.deleted_at IS NULL
		  AND area_manager_visits.deleted_at IS NULL
		GROUP BY DATE(maintenance_tickets.created_at)`, userID, since).Scan(&rows)

	byDay := make(map[string]int, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}

	dates := make([]string, 0, 30)
	counts := make([]int, 0, 30)
	for d := 29; d >= 0; d-- {
		day := today.AddDate(0, 0, -d)
		dates = append(dates, day.Format("Jan 02"))
		counts = append(counts, byDay[day.Format("2006-01-02")])
	}
	return dates, counts
}
