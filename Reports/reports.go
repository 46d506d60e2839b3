// Package Reports rolls finalized visits up into the dashboard numbers:
// compliance rates, category tables, store rankings, trend series and
// maintenance counts. Draft visits never enter any aggregate.
package Reports

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Scoring"
)

type CategoryPerformance struct {
	Name       string  `json:"name"`
	Total      int64   `json:"total"`
	Compliant  int64   `json:"compliant"`
	Compliance float64 `json:"compliance"`
}

type StorePerformance struct {
	StoreID    uint       `json:"store_id"`
	StoreName  string     `json:"store_name"`
	VisitCount int        `json:"visit_count"`
	AvgScore   float64    `json:"avg_score"`
	LastVisit  *time.Time `json:"last_visit"`
}

type MaintenanceStats struct {
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Overdue    int64 `json:"overdue"`
}

type ActionStats struct {
	Open         int64 `json:"open"`
	OpenHigh     int64 `json:"open_high"`
	OpenMedium   int64 `json:"open_medium"`
	OpenLow      int64 `json:"open_low"`
	OverdueCount int64 `json:"overdue_count"`
}

// scoredVisit carries one finalized visit with its recomputed score.
type scoredVisit struct {
	ID      uint
	StoreID uint
	Date    time.Time
	Score   int
}

// scoredVisits fetches a manager's finalized visits (optionally since a
// date) plus all their items in one batched query each, and recomputes every
// visit score in memory. Two queries total regardless of visit count.
func scoredVisits(db *gorm.DB, managerID uint, since *time.Time) ([]scoredVisit, error) {
	var visits []Models.AreaManagerVisit
	q := db.Model(&Models.AreaManagerVisit{}).
		Where("manager_id = ? AND is_draft = ?", managerID, false).
		Order("date")
	if since != nil {
		q = q.Where("date >= ?", *since)
	}
	if err := q.Find(&visits).Error; err != nil {
		return nil, err
	}
	if len(visits) == 0 {
		return nil, nil
	}

	ids := make([]uint, len(visits))
	for i, v := range visits {
		ids[i] = v.ID
	}
	var items []Models.ChecklistItem
	if err := db.Where("visit_id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	byVisit := make(map[uint][]Models.ChecklistItem, len(visits))
	for _, item := range items {
		byVisit[item.VisitID] = append(byVisit[item.VisitID], item)
	}

	scored := make([]scoredVisit, len(visits))
	for i, v := range visits {
		scored[i] = scoredVisit{
			ID:      v.ID,
			StoreID: v.StoreID,
			Date:    v.Date,
			Score:   Scoring.VisitScore(byVisit[v.ID]),
		}
	}
	return scored, nil
}

// ComplianceRate is the one-decimal percentage of compliant answers across
// every finalized visit of the manager.
func ComplianceRate(db *gorm.DB, managerID uint) (float64, error) {
	var total, compliant int64
	base := db.Model(&Models.ChecklistItem{}).
		Joins("JOIN area_manager_visits v ON v.id = checklist_items.visit_id").
		Where("v.manager_id = ? AND v.is_draft = ? AND v.deleted_at IS NULL", managerID, false)
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if err := base.Session(&gorm.Session{}).Where("checklist_items.answer = ?", true).Count(&compliant).Error; err != nil {
		return 0, err
	}
	return Scoring.Percent1(compliant, total), nil
}

// CategoryTable builds the per-category compliance table over the manager's
// entire finalized visit set with one grouped query.
func CategoryTable(db *gorm.DB, managerID uint) ([]CategoryPerformance, error) {
	var rows []struct {
		Name      string
		Total     int64
		Compliant int64
	}
	err := db.Raw(`
		SELECT
			c.name,
			COUNT(ci.id) as total,
			SUM(CASE WHEN ci.answer THEN 1 ELSE 0 END) as compliant
		FROM checklist_items ci
		JOIN area_manager_visits v ON v.id = ci.visit_id
		JOIN checklist_questions q ON q.id = ci.question_id
		JOIN checklist_categories c ON c.id = q.category_id
		WHERE v.manager_id = ?
		AND v.is_draft = 0
		AND v.deleted_at IS NULL
		AND ci.deleted_at IS NULL
		GROUP BY c.name
		ORDER BY c.name
	`, managerID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	table := make([]CategoryPerformance, 0, len(rows))
	for _, row := range rows {
		table = append(table, CategoryPerformance{
			Name:       row.Name,
			Total:      row.Total,
			Compliant:  row.Compliant,
			Compliance: Scoring.Percent1(row.Compliant, row.Total),
		})
	}
	return table, nil
}

// StoreRanking averages each store's visit scores for the manager's own
// visits and sorts descending by average.
func StoreRanking(db *gorm.DB, managerID uint, stores []Models.Store) ([]StorePerformance, error) {
	scored, err := scoredVisits(db, managerID, nil)
	if err != nil {
		return nil, err
	}

	byStore := make(map[uint][]scoredVisit)
	for _, v := range scored {
		byStore[v.StoreID] = append(byStore[v.StoreID], v)
	}

	ranking := make([]StorePerformance, 0, len(stores))
	for _, store := range stores {
		visits := byStore[store.ID]
		if len(visits) == 0 {
			continue
		}
		scores := make([]int, len(visits))
		last := visits[0].Date
		for i, v := range visits {
			scores[i] = v.Score
			if v.Date.After(last) {
				last = v.Date
			}
		}
		lastCopy := last
		ranking = append(ranking, StorePerformance{
			StoreID:    store.ID,
			StoreName:  store.Name,
			VisitCount: len(visits),
			AvgScore:   Scoring.AverageScore(scores),
			LastVisit:  &lastCopy,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].AvgScore > ranking[j].AvgScore
	})
	return ranking, nil
}

// ChartSeries returns date labels and per-visit scores for the manager's
// finalized visits in the last 30 days, ordered by date, plus the trend
// classification of that series.
func ChartSeries(db *gorm.DB, managerID uint, today time.Time) ([]string, []int, string, error) {
	since := today.AddDate(0, 0, -30)
	scored, err := scoredVisits(db, managerID, &since)
	if err != nil {
		return nil, nil, Scoring.TrendStable, err
	}

	dates := make([]string, len(scored))
	scores := make([]int, len(scored))
	for i, v := range scored {
		dates[i] = v.Date.Format("Jan 02")
		scores[i] = v.Score
	}
	return dates, scores, Scoring.Trend(scores), nil
}

// MonthlyStats counts the manager's visits since the first of the month and
// averages their scores.
func MonthlyStats(db *gorm.DB, managerID uint, today time.Time) (int, float64, error) {
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	scored, err := scoredVisits(db, managerID, &firstOfMonth)
	if err != nil {
		return 0, 0, err
	}
	scores := make([]int, len(scored))
	for i, v := range scored {
		scores[i] = v.Score
	}
	return len(scored), Scoring.AverageScore(scores), nil
}

// ActionRollup counts the manager's open action items split by priority and
// the overdue ones (open with a due date before today).
func ActionRollup(db *gorm.DB, managerID uint, today time.Time) (ActionStats, error) {
	var stats ActionStats
	base := db.Model(&Models.ActionPlanItem{}).
		Joins("JOIN area_manager_visits v ON v.id = action_plan_items.visit_id").
		Where("v.manager_id = ? AND v.deleted_at IS NULL", managerID).
		Where("action_plan_items.status = ?", Models.ActionStatusOpen)

	if err := base.Session(&gorm.Session{}).Count(&stats.Open).Error; err != nil {
		return stats, err
	}
	base.Session(&gorm.Session{}).Where("action_plan_items.priority = ?", Models.PriorityHigh).Count(&stats.OpenHigh)
	base.Session(&gorm.Session{}).Where("action_plan_items.priority = ?", Models.PriorityMedium).Count(&stats.OpenMedium)
	base.Session(&gorm.Session{}).Where("action_plan_items.priority = ?", Models.PriorityLow).Count(&stats.OpenLow)
	base.Session(&gorm.Session{}).Where("action_plan_items.timeframe < ?", today).Count(&stats.OverdueCount)
	return stats, nil
}

// MaintenanceRollup counts the manager's tickets by status plus the overdue
// ones (due before today and not completed).
func MaintenanceRollup(db *gorm.DB, managerID uint, today time.Time) (MaintenanceStats, error) {
	var stats MaintenanceStats
	base := db.Model(&Models.MaintenanceTicket{}).
		Joins("JOIN area_manager_visits v ON v.id = maintenance_tickets.visit_id").
		Where("v.manager_id = ? AND v.deleted_at IS NULL", managerID)

	if err := base.Session(&gorm.Session{}).Where("maintenance_tickets.status = ?", Models.TicketStatusPending).Count(&stats.Pending).Error; err != nil {
		return stats, err
	}
	base.Session(&gorm.Session{}).Where("maintenance_tickets.status = ?", Models.TicketStatusInProgress).Count(&stats.InProgress)
	base.Session(&gorm.Session{}).Where("maintenance_tickets.status = ?", Models.TicketStatusCompleted).Count(&stats.Completed)
	base.Session(&gorm.Session{}).
		Where("maintenance_tickets.status != ?", Models.TicketStatusCompleted).
		Where("maintenance_tickets.due_date IS NOT NULL AND maintenance_tickets.due_date < ?", today).
		Count(&stats.Overdue)
	return stats, nil
}

// AverageCompliance is the mean of each visit's independently computed
// score, not a pooled recomputation over all items.
func AverageCompliance(db *gorm.DB, managerID uint) (float64, error) {
	scored, err := scoredVisits(db, managerID, nil)
	if err != nil {
		return 0, err
	}
	scores := make([]int, len(scored))
	for i, v := range scored {
		scores[i] = v.Score
	}
	return Scoring.AverageScore(scores), nil
}
