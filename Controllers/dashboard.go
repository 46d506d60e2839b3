package Controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Caribou/Access"
	"Caribou/Models"
	"Caribou/Reports"
	"Caribou/middleware"
)

// DashboardController assembles the manager dashboard and the reports
// summary from the Reports package. Every block degrades to zero values on
// error so one broken aggregate never blanks the page.
type DashboardController struct {
	DB *gorm.DB
}

func NewDashboardController(db *gorm.DB) *DashboardController {
	return &DashboardController{DB: db}
}

// GetDashboard returns the full dashboard payload: basic counters,
// compliance rate, the 30-day score chart with its trend, category
// performance, top store ranking, month-to-date stats and the action and
// maintenance rollups.
func (d *DashboardController) GetDashboard(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)
	now := time.Now()

	var totalVisits, draftCount int64
	d.DB.Model(&Models.AreaManagerVisit{}).
		Where("manager_id = ? AND is_draft = ?", user.ID, false).Count(&totalVisits)
	d.DB.Model(&Models.AreaManagerVisit{}).
		Where("manager_id = ? AND is_draft = ?", user.ID, true).Count(&draftCount)

	stores, err := Access.VisibleStores(d.DB, user)
	if err != nil {
		zap.L().Warn("dashboard store lookup failed", zap.Uint("user_id", user.ID), zap.Error(err))
		stores = nil
	}

	compliance, err := Reports.ComplianceRate(d.DB, user.ID)
	if err != nil {
		compliance = 0
	}
	avgScore, err := Reports.AverageCompliance(d.DB, user.ID)
	if err != nil {
		avgScore = 0
	}

	dates, scores, trend, err := Reports.ChartSeries(d.DB, user.ID, now)
	if err != nil {
		dates, scores = []string{}, []int{}
	}

	categories, err := Reports.CategoryTable(d.DB, user.ID)
	if err != nil {
		categories = nil
	}

	ranking, err := Reports.StoreRanking(d.DB, user.ID, stores)
	if err != nil {
		ranking = nil
	}
	if len(ranking) > 10 {
		ranking = ranking[:10]
	}

	monthVisits, monthAvg, err := Reports.MonthlyStats(d.DB, user.ID, now)
	if err != nil {
		monthVisits, monthAvg = 0, 0
	}

	actions, err := Reports.ActionRollup(d.DB, user.ID, now)
	if err != nil {
		actions = Reports.ActionStats{}
	}
	maintenance, err := Reports.MaintenanceRollup(d.DB, user.ID, now)
	if err != nil {
		maintenance = Reports.MaintenanceStats{}
	}

	return ctx.JSON(fiber.Map{
		"stats": fiber.Map{
			"total_visits":    totalVisits,
			"draft_count":     draftCount,
			"store_count":     len(stores),
			"compliance_rate": compliance,
			"average_score":   avgScore,
			"month_visits":    monthVisits,
			"month_avg_score": monthAvg,
		},
		"chart": fiber.Map{
			"dates":  dates,
			"scores": scores,
			"trend":  trend,
		},
		"category_performance": categories,
		"store_ranking":        ranking,
		"action_items":         actions,
		"maintenance":          maintenance,
	})
}

// GetReportsSummary is the standalone reports view: the category table, the
// full store ranking and overall averages, without the dashboard counters.
func (d *DashboardController) GetReportsSummary(ctx *fiber.Ctx) error {
	user := middleware.CurrentUser(ctx)

	stores, err := Access.VisibleStores(d.DB, user)
	if err != nil {
		stores = nil
	}

	categories, err := Reports.CategoryTable(d.DB, user.ID)
	if err != nil {
		categories = nil
	}
	ranking, err := Reports.StoreRanking(d.DB, user.ID, stores)
	if err != nil {
		ranking = nil
	}
	compliance, err := Reports.ComplianceRate(d.DB, user.ID)
	if err != nil {
		compliance = 0
	}
	avgScore, err := Reports.AverageCompliance(d.DB, user.ID)
	if err != nil {
		avgScore = 0
	}

	return ctx.JSON(fiber.Map{
		"category_performance": categories,
		"store_ranking":        ranking,
		"compliance_rate":      compliance,
		"average_score":        avgScore,
	})
}
