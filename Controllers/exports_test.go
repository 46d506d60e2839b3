package Controllers

import (
	"bytes"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"Caribou/Models"
)

func seedVisitWithItems(t *testing.T, db *gorm.DB) (Models.User, Models.AreaManagerVisit) {
	t.Helper()
	manager := Models.User{Username: "am", FullName: "Avery Moss", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&manager).Error)
	store := Models.Store{Name: "Downtown", IsActive: true}
	require.NoError(t, db.Create(&store).Error)
	category := Models.ChecklistCategory{Name: "Cleanliness", Active: true}
	require.NoError(t, db.Create(&category).Error)

	q1 := Models.ChecklistQuestion{CategoryID: category.ID, Text: "Floors clean", Number: 1, IsActive: true}
	q2 := Models.ChecklistQuestion{CategoryID: category.ID, Text: "Windows clean", Number: 2, IsActive: true}
	require.NoError(t, db.Create(&q1).Error)
	require.NoError(t, db.Create(&q2).Error)

	visit := Models.AreaManagerVisit{
		StoreID:   store.ID,
		ManagerID: manager.ID,
		Date:      time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC),
		TimeIn:    "09:00",
		TimeOut:   "10:30",
	}
	require.NoError(t, db.Create(&visit).Error)
	require.NoError(t, db.Create(&Models.ChecklistItem{VisitID: visit.ID, QuestionID: q1.ID, Answer: true}).Error)
	require.NoError(t, db.Create(&Models.ChecklistItem{VisitID: visit.ID, QuestionID: q2.ID, Answer: false, Comment: "streaky"}).Error)
	return manager, visit
}

func TestExportVisitWorkbook(t *testing.T) {
	db := testDB(t)
	manager, visit := seedVisitWithItems(t, db)

	app := appAs(manager)
	controller := NewExportController(db)
	app.Get("/visits/:id/export", controller.ExportVisit)

	req := httptest.NewRequest(http.MethodGet, "/visits/"+strconv.Itoa(int(visit.ID))+"/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	file, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer file.Close()

	assert.ElementsMatch(t, []string{"Summary", "Checklist Details"}, file.GetSheetList())

	storeLabel, err := file.GetCellValue("Summary", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Store", storeLabel)
	storeName, _ := file.GetCellValue("Summary", "B1")
	assert.Equal(t, "Downtown", storeName)
	score, _ := file.GetCellValue("Summary", "B6")
	assert.Equal(t, "50", score)

	rows, err := file.GetRows("Checklist Details")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Category", "Question No.", "Question Text", "Answer", "Comment"}, rows[0])
	assert.Equal(t, "Floors clean", rows[1][2])
	assert.Equal(t, "Yes", rows[1][3])
	assert.Equal(t, "No", rows[2][3])
	assert.Equal(t, "streaky", rows[2][4])
}

func TestExportVisitForeignIsNotFound(t *testing.T) {
	db := testDB(t)
	_, visit := seedVisitWithItems(t, db)

	stranger := Models.User{Username: "other", FullName: "Kit Doyle", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&stranger).Error)

	app := appAs(stranger)
	controller := NewExportController(db)
	app.Get("/visits/:id/export", controller.ExportVisit)

	req := httptest.NewRequest(http.MethodGet, "/visits/"+strconv.Itoa(int(visit.ID))+"/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportAllVisitsCSV(t *testing.T) {
	db := testDB(t)
	manager, _ := seedVisitWithItems(t, db)

	app := appAs(manager)
	controller := NewExportController(db)
	app.Get("/exports/visits.csv", controller.ExportAllVisitsCSV)

	req := httptest.NewRequest(http.MethodGet, "/exports/visits.csv", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get("Content-Type"))

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Store", "Manager", "Date", "Score", "Total Items", "Passed Items"}, records[0])
	assert.Equal(t, []string{"Downtown", "Avery Moss", "2026-08-20", "50", "2", "1"}, records[1])
}
