package Models

import (
	"time"

	"gorm.io/gorm"
)

// ActionPlanItem statuses.
const (
	ActionStatusOpen       = "open"
	ActionStatusInProgress = "in_progress"
	ActionStatusClosed     = "closed"
)

// MaintenanceTicket statuses.
const (
	TicketStatusPending    = "pending"
	TicketStatusInProgress = "in_progress"
	TicketStatusCompleted  = "completed"
)

// Priorities shared by action items and tickets.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ActionPlanItem is a corrective task tied to a visit, generated from a
// failed checklist answer or added by hand.
type ActionPlanItem struct {
	gorm.Model
	VisitID   uint      `json:"visit_id" gorm:"not null;index"`
	What      string    `json:"what" gorm:"type:text;not null"`
	Who       string    `json:"who" gorm:"size:100;not null"`
	Timeframe time.Time `json:"timeframe" gorm:"not null"` // due date
	Status    string    `json:"status" gorm:"size:20;default:open"`
	Priority  string    `json:"priority" gorm:"size:10;default:medium"`
	Remarks   string    `json:"remarks" gorm:"type:text"`

	Visit AreaManagerVisit `json:"visit,omitempty" gorm:"foreignKey:VisitID"`
}

type MaintenanceTicket struct {
	gorm.Model
	VisitID          uint       `json:"visit_id" gorm:"not null;index"`
	Equipment        string     `json:"equipment" gorm:"size:100;not null"`
	IssueDescription string     `json:"issue_description" gorm:"type:text;not null"`
	Priority         string     `json:"priority" gorm:"size:10;default:medium"`
	Status           string     `json:"status" gorm:"size:20;default:pending"`
	DueDate          *time.Time `json:"due_date"`
	ClosedDate       *time.Time `json:"closed_date"`

	Visit AreaManagerVisit `json:"visit,omitempty" gorm:"foreignKey:VisitID"`
}

// IsOverdue reports whether the ticket's due date has passed without the
// ticket being completed.
func (t *MaintenanceTicket) IsOverdue(today time.Time) bool {
	if t.DueDate == nil || t.Status == TicketStatusCompleted {
		return false
	}
	return t.DueDate.Before(today)
}

type ActionItemUpdateRequest struct {
	What      string `json:"what" validate:"required"`
	Who       string `json:"who" validate:"required,max=100"`
	Timeframe string `json:"timeframe" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=open in_progress closed"`
	Priority  string `json:"priority" validate:"required,oneof=low medium high"`
	Remarks   string `json:"remarks"`
}

type BulkActionUpdateRequest struct {
	ActionIDs []uint `json:"action_ids" validate:"required,min=1"`
	Status    string `json:"status" validate:"omitempty,oneof=open in_progress closed"`
	Priority  string `json:"priority" validate:"omitempty,oneof=low medium high"`
}

type MaintenanceTicketRequest struct {
	VisitID          uint   `json:"visit_id" validate:"required"`
	Equipment        string `json:"equipment" validate:"required,max=100"`
	IssueDescription string `json:"issue_description" validate:"required"`
	Priority         string `json:"priority" validate:"required,oneof=low medium high"`
	DueDate          string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

type MaintenanceTicketUpdateRequest struct {
	Equipment        string `json:"equipment" validate:"required,max=100"`
	IssueDescription string `json:"issue_description" validate:"required"`
	Priority         string `json:"priority" validate:"required,oneof=low medium high"`
	Status           string `json:"status" validate:"required,oneof=pending in_progress completed"`
	DueDate          string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}
