package Models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ChecklistCategory struct {
	gorm.Model
	Name        string `json:"name" gorm:"size:100;not null"`
	Description string `json:"description" gorm:"type:text"`
	Active      bool   `json:"active" gorm:"default:true"`

	Questions []ChecklistQuestion `json:"questions,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

type ChecklistQuestion struct {
	gorm.Model
	CategoryID uint   `json:"category_id" gorm:"not null;index"`
	Text       string `json:"text" gorm:"type:text;not null"`
	Number     int    `json:"number" gorm:"not null"` // display order within the category
	IsActive   bool   `json:"is_active" gorm:"default:true"`

	Category ChecklistCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// AreaManagerVisit is one manager's checklist audit of one store. The score
// is always recomputed from the checklist items; OverallScore is a cached
// copy for list screens, never ground truth.
type AreaManagerVisit struct {
	gorm.Model
	StoreID   uint      `json:"store_id" gorm:"not null;index"`
	ManagerID uint      `json:"manager_id" gorm:"not null;index"`
	Date      time.Time `json:"date" gorm:"not null"`
	TimeIn    string    `json:"time_in" gorm:"size:5"`
	TimeOut   string    `json:"time_out" gorm:"size:5"`
	IsDraft   bool      `json:"is_draft" gorm:"default:false;index"`

	GeneralNotes      string `json:"general_notes" gorm:"type:text"`
	RunOutItems       string `json:"run_out_items" gorm:"type:text"`
	MaintenanceNeeded string `json:"maintenance_needed" gorm:"type:text"`

	OverallScore int            `json:"overall_score"`
	DraftPayload datatypes.JSON `json:"draft_payload,omitempty"` // raw answer snapshot for draft reload

	Store              Store               `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Manager            User                `json:"manager,omitempty" gorm:"foreignKey:ManagerID"`
	ChecklistItems     []ChecklistItem     `json:"checklist_items,omitempty" gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	ActionItems        []ActionPlanItem    `json:"action_items,omitempty" gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	MaintenanceTickets []MaintenanceTicket `json:"maintenance_tickets,omitempty" gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	Attachments        []VisitAttachment   `json:"attachments,omitempty" gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
}

type ChecklistItem struct {
	gorm.Model
	VisitID          uint   `json:"visit_id" gorm:"not null;index"`
	QuestionID       uint   `json:"question_id" gorm:"not null;index"`
	Answer           bool   `json:"answer"`
	Comment          string `json:"comment" gorm:"type:text"`
	RequiresFollowUp bool   `json:"requires_follow_up" gorm:"default:false"`

	Question ChecklistQuestion `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

type VisitAttachment struct {
	gorm.Model
	VisitID         uint   `json:"visit_id" gorm:"not null;index"`
	ChecklistItemID *uint  `json:"checklist_item_id" gorm:"index"`
	FileName        string `json:"file_name" gorm:"size:255;not null"`
	StoredPath      string `json:"stored_path" gorm:"size:500;not null"`
	ThumbnailPath   string `json:"thumbnail_path" gorm:"size:500"`
	ContentType     string `json:"content_type" gorm:"size:100"`
	Size            int64  `json:"size"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}

type QuestionRequest struct {
	CategoryID uint   `json:"category_id" validate:"required"`
	Text       string `json:"text" validate:"required"`
	Number     int    `json:"number" validate:"required,min=1"`
}
