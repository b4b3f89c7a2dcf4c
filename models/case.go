package models

import "time"

// Case statuses form an open vocabulary; these are the well-known values.
// Stage advancement synthesizes "submitted_to_<stage_key>" when a stage
// carries no associated statuses.
const (
	CaseStatusDraft              = "draft"
	CaseStatusAssigned           = "assigned"
	CaseStatusSubmittedToWelfare = "submitted_to_welfare"
	CaseStatusWelfareApproved    = "welfare_approved"
	CaseStatusFinance            = "finance_disbursement"
	CaseStatusCompleted          = "completed"
	CaseStatusClosed             = "closed"
)

type Case struct {
	CaseID                 int        `gorm:"primaryKey;column:case_id" json:"case_id"`
	CaseNumber             string     `gorm:"column:case_number" json:"case_number"`
	ApplicantID            int        `gorm:"column:applicant_id" json:"applicant_id"`
	CaseTypeID             int        `gorm:"column:case_type_id" json:"case_type_id"`
	Status                 string     `gorm:"column:status" json:"status"`
	CurrentWorkflowStageID *int       `gorm:"column:current_workflow_stage_id" json:"current_workflow_stage_id,omitempty"`
	JamiatID               *int       `gorm:"column:jamiat_id" json:"jamiat_id,omitempty"`
	JamaatID               *int       `gorm:"column:jamaat_id" json:"jamaat_id,omitempty"`
	AssignedCounselorID    *int       `gorm:"column:assigned_counselor_id" json:"assigned_counselor_id,omitempty"`
	CreatedBy              int        `gorm:"column:created_by" json:"created_by"`
	CreateAt               *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt               *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt               *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Applicant    Applicant      `gorm:"foreignKey:ApplicantID" json:"applicant,omitempty"`
	CaseType     CaseType       `gorm:"foreignKey:CaseTypeID" json:"case_type,omitempty"`
	CurrentStage *WorkflowStage `gorm:"foreignKey:CurrentWorkflowStageID" json:"current_stage,omitempty"`
}

type CaseType struct {
	CaseTypeID int        `gorm:"primaryKey;column:case_type_id" json:"case_type_id"`
	TypeName   string     `gorm:"column:type_name;unique" json:"type_name"`
	IsActive   bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// CaseWorkflowEvent is the append-only audit trail of stage entries. Rows are
// never rewritten; every status transition appends exactly one.
type CaseWorkflowEvent struct {
	EventID       int       `gorm:"primaryKey;column:event_id" json:"event_id"`
	CaseID        int       `gorm:"column:case_id;index" json:"case_id"`
	StageID       *int      `gorm:"column:stage_id" json:"stage_id"`
	StageName     string    `gorm:"column:stage_name" json:"stage_name"`
	Action        string    `gorm:"column:action" json:"action"`
	EnteredBy     int       `gorm:"column:entered_by" json:"entered_by"`
	EnteredByName string    `gorm:"column:entered_by_name" json:"entered_by_name"`
	EnteredAt     time.Time `gorm:"column:entered_at" json:"entered_at"`
}

// StatusHistory records each status change with the actor's comments.
type StatusHistory struct {
	HistoryID  int       `gorm:"primaryKey;column:history_id" json:"history_id"`
	CaseID     int       `gorm:"column:case_id;index" json:"case_id"`
	FromStatus *string   `gorm:"column:from_status" json:"from_status"`
	ToStatus   string    `gorm:"column:to_status" json:"to_status"`
	ChangedBy  int       `gorm:"column:changed_by" json:"changed_by"`
	Comments   *string   `gorm:"column:comments" json:"comments,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Case) TableName() string {
	return "cases"
}

func (CaseType) TableName() string {
	return "case_types"
}

func (CaseWorkflowEvent) TableName() string {
	return "case_workflow_events"
}

func (StatusHistory) TableName() string {
	return "status_history"
}
