package models

import "time"

const (
	CoverLetterDraft     = "draft"
	CoverLetterSubmitted = "submitted"
)

// CoverLetterForm is the applicant-facing intake form attached to a case.
// Submitting it advances the case workflow.
type CoverLetterForm struct {
	FormID        int        `gorm:"primaryKey;column:form_id" json:"form_id"`
	CaseID        int        `gorm:"column:case_id;index" json:"case_id"`
	Subject       string     `gorm:"column:subject" json:"subject"`
	Body          string     `gorm:"column:body" json:"body"`
	RequestedHelp *string    `gorm:"column:requested_help" json:"requested_help,omitempty"`
	Status        string     `gorm:"column:status;default:draft" json:"status"`
	SubmittedBy   *int       `gorm:"column:submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt   *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt      *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"update_at"`
}

func (CoverLetterForm) TableName() string {
	return "cover_letter_forms"
}
