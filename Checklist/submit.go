// Package Checklist turns a submitted answer set into checklist items,
// follow-up action items and stored attachments, inside the caller's
// transaction.
package Checklist

import (
	"fmt"
	"mime/multipart"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"Caribou/Models"
	"Caribou/Scoring"
)

// AnswerInput is one question's submitted answer: the yes/no value, an
// optional comment and an optional file upload.
type AnswerInput struct {
	Answer  bool
	Comment string
	File    *multipart.FileHeader `json:"-"`
}

// Result summarizes a processed submission for the confirmation response.
type Result struct {
	Score          int
	LetterGrade    string
	TotalQuestions int
	CreatedActions int
}

// Process iterates the full active question set and creates one checklist
// item per question from the submitted answers. A negative answer with a
// non-empty comment spawns one action item (due in 7 days, open, medium) and
// flags the item for follow-up; a negative answer without a comment creates
// no action item. Attachments are validated up front so a bad file aborts
// before any row is written; files already on disk are removed again when a
// later step fails, and the row rollback is the caller's transaction.
func Process(tx *gorm.DB, visit *Models.AreaManagerVisit, questions []Models.ChecklistQuestion, answers map[uint]AnswerInput, submitter string, attachmentDir string) (Result, error) {
	var res Result

	for _, q := range questions {
		if in, ok := answers[q.ID]; ok && in.File != nil {
			if err := ValidateAttachment(in.File); err != nil {
				return res, err
			}
		}
	}

	now := time.Now()
	due := now.AddDate(0, 0, 7)
	var stored []string

	cleanup := func() {
		for _, path := range stored {
			os.Remove(path)
		}
	}

	items := make([]Models.ChecklistItem, 0, len(questions))
	for _, q := range questions {
		in := answers[q.ID] // zero value means unanswered: no, no comment
		comment := strings.TrimSpace(in.Comment)

		item := Models.ChecklistItem{
			VisitID:          visit.ID,
			QuestionID:       q.ID,
			Answer:           in.Answer,
			Comment:          comment,
			RequiresFollowUp: !in.Answer && comment != "",
		}
		if err := tx.Create(&item).Error; err != nil {
			cleanup()
			return res, err
		}
		items = append(items, item)

		if in.File != nil {
			path, thumb, err := storeAttachment(in.File, attachmentDir)
			if err != nil {
				cleanup()
				return res, err
			}
			stored = append(stored, path)
			if thumb != "" {
				stored = append(stored, thumb)
			}
			attachment := Models.VisitAttachment{
				VisitID:         visit.ID,
				ChecklistItemID: &item.ID,
				FileName:        in.File.Filename,
				StoredPath:      path,
				ThumbnailPath:   thumb,
				ContentType:     in.File.Header.Get("Content-Type"),
				Size:            in.File.Size,
			}
			if err := tx.Create(&attachment).Error; err != nil {
				cleanup()
				return res, err
			}
		}

		if item.RequiresFollowUp {
			action := Models.ActionPlanItem{
				VisitID:   visit.ID,
				What:      ActionDescription(&q),
				Who:       submitter,
				Timeframe: due,
				Status:    Models.ActionStatusOpen,
				Priority:  Models.PriorityMedium,
				Remarks:   comment,
			}
			if err := tx.Create(&action).Error; err != nil {
				cleanup()
				return res, err
			}
			res.CreatedActions++
		}
	}

	res.TotalQuestions = len(questions)
	res.Score = Scoring.VisitScore(items)
	res.LetterGrade = Scoring.LetterGrade(res.Score)

	// Cached copy only; the item rows stay the ground truth.
	if err := tx.Model(visit).Update("overall_score", res.Score).Error; err != nil {
		cleanup()
		return res, err
	}
	return res, nil
}

// ActionDescription builds the composite action item description for a
// failed question. Question.Category must be preloaded.
func ActionDescription(q *Models.ChecklistQuestion) string {
	return fmt.Sprintf("%s - Q%d: %s", q.Category.Name, q.Number, q.Text)
}
