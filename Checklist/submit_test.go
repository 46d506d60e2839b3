package Checklist

import (
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Caribou/Models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&Models.Area{}, &Models.Store{}, &Models.User{}, &Models.Profile{},
		&Models.ChecklistCategory{}, &Models.ChecklistQuestion{},
		&Models.AreaManagerVisit{}, &Models.ChecklistItem{},
		&Models.ActionPlanItem{}, &Models.VisitAttachment{},
	))
	return db
}

func seedChecklist(t *testing.T, db *gorm.DB) (Models.AreaManagerVisit, []Models.ChecklistQuestion) {
	t.Helper()
	store := Models.Store{Name: "Downtown", IsActive: true}
	require.NoError(t, db.Create(&store).Error)
	user := Models.User{Username: "am", FullName: "Avery Moss", Password: []byte("x"), IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	category := Models.ChecklistCategory{Name: "Cleanliness", Active: true}
	require.NoError(t, db.Create(&category).Error)

	questions := make([]Models.ChecklistQuestion, 4)
	texts := []string{"Floors clean", "Windows clean", "Back room tidy", "Bins emptied"}
	for i := range questions {
		questions[i] = Models.ChecklistQuestion{
			CategoryID: category.ID,
			Text:       texts[i],
			Number:     i + 1,
			IsActive:   true,
		}
		require.NoError(t, db.Create(&questions[i]).Error)
		questions[i].Category = category
	}

	visit := Models.AreaManagerVisit{
		StoreID:   store.ID,
		ManagerID: user.ID,
		Date:      time.Now(),
		TimeIn:    "09:00",
	}
	require.NoError(t, db.Create(&visit).Error)
	return visit, questions
}

func TestProcessCreatesItemsAndActions(t *testing.T) {
	db := testDB(t)
	visit, questions := seedChecklist(t, db)

	answers := map[uint]AnswerInput{
		questions[0].ID: {Answer: true},
		questions[1].ID: {Answer: true},
		questions[2].ID: {Answer: false, Comment: "  shelving broken  "},
		questions[3].ID: {Answer: false}, // no comment, no action item
	}

	before := time.Now()
	var result Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var perr error
		result, perr = Process(tx, &visit, questions, answers, "Avery Moss", t.TempDir())
		return perr
	})
	require.NoError(t, err)

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, "F", result.LetterGrade)
	assert.Equal(t, 4, result.TotalQuestions)
	assert.Equal(t, 1, result.CreatedActions)

	var items []Models.ChecklistItem
	require.NoError(t, db.Where("visit_id = ?", visit.ID).Order("question_id").Find(&items).Error)
	require.Len(t, items, 4)
	assert.Equal(t, "shelving broken", items[2].Comment)
	assert.True(t, items[2].RequiresFollowUp)
	assert.False(t, items[3].RequiresFollowUp)

	var actions []Models.ActionPlanItem
	require.NoError(t, db.Where("visit_id = ?", visit.ID).Find(&actions).Error)
	require.Len(t, actions, 1)
	action := actions[0]
	assert.Equal(t, "Cleanliness - Q3: Back room tidy", action.What)
	assert.Equal(t, "Avery Moss", action.Who)
	assert.Equal(t, Models.ActionStatusOpen, action.Status)
	assert.Equal(t, Models.PriorityMedium, action.Priority)
	assert.Equal(t, "shelving broken", action.Remarks)
	assert.WithinDuration(t, before.AddDate(0, 0, 7), action.Timeframe, time.Minute)

	// cached score on the visit row
	var reloaded Models.AreaManagerVisit
	require.NoError(t, db.First(&reloaded, visit.ID).Error)
	assert.Equal(t, 50, reloaded.OverallScore)
}

func TestProcessUnansweredQuestionsCountAsNo(t *testing.T) {
	db := testDB(t)
	visit, questions := seedChecklist(t, db)

	// only one of four answered: 1/4 = 25
	answers := map[uint]AnswerInput{
		questions[0].ID: {Answer: true},
	}
	var result Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var perr error
		result, perr = Process(tx, &visit, questions, answers, "Avery Moss", t.TempDir())
		return perr
	})
	require.NoError(t, err)
	assert.Equal(t, 25, result.Score)
	assert.Equal(t, 0, result.CreatedActions)

	var count int64
	db.Model(&Models.ChecklistItem{}).Where("visit_id = ?", visit.ID).Count(&count)
	assert.EqualValues(t, 4, count)
}

func TestProcessRejectsBadFileBeforeWriting(t *testing.T) {
	db := testDB(t)
	visit, questions := seedChecklist(t, db)

	answers := map[uint]AnswerInput{
		questions[0].ID: {Answer: true, File: fileHeader("huge.pdf", "application/pdf", MaxAttachmentSize+1)},
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		_, perr := Process(tx, &visit, questions, answers, "Avery Moss", t.TempDir())
		return perr
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file size")

	var count int64
	db.Model(&Models.ChecklistItem{}).Where("visit_id = ?", visit.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestValidateAttachment(t *testing.T) {
	assert.NoError(t, ValidateAttachment(fileHeader("a.jpg", "image/jpeg", 1024)))
	assert.NoError(t, ValidateAttachment(fileHeader("a.pdf", "application/pdf", MaxAttachmentSize)))

	err := ValidateAttachment(fileHeader("a.pdf", "application/pdf", MaxAttachmentSize+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file size")

	err = ValidateAttachment(fileHeader("a.exe", "application/octet-stream", 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func fileHeader(name, contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}
