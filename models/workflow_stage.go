package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a JSON array of strings in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// WorkflowStage is an ordered checkpoint. Active stages for a case type
// (plus global stages, case_type_id NULL) form a total order by sort_order.
// NextStageID, when set, overrides sort-order based advancement.
type WorkflowStage struct {
	StageID            int        `gorm:"primaryKey;column:stage_id" json:"stage_id"`
	StageKey           string     `gorm:"column:stage_key" json:"stage_key"`
	StageName          string     `gorm:"column:stage_name" json:"stage_name"`
	SortOrder          int        `gorm:"column:sort_order" json:"sort_order"`
	CaseTypeID         *int       `gorm:"column:case_type_id" json:"case_type_id,omitempty"`
	NextStageID        *int       `gorm:"column:next_stage_id" json:"next_stage_id,omitempty"`
	AssociatedStatuses StringList `gorm:"column:associated_statuses;type:text" json:"associated_statuses"`
	IsActive           bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt           *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt           *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt           *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// StageUserPermission grants a single user view/approve rights on a stage.
type StageUserPermission struct {
	ID         int  `gorm:"primaryKey;column:id" json:"id"`
	StageID    int  `gorm:"column:stage_id;index" json:"stage_id"`
	UserID     int  `gorm:"column:user_id" json:"user_id"`
	CanView    bool `gorm:"column:can_view" json:"can_view"`
	CanApprove bool `gorm:"column:can_approve" json:"can_approve"`
}

// StageRolePermission grants every holder of a role view/approve rights on a
// stage, subject to the role assignment being active and unexpired.
type StageRolePermission struct {
	ID         int  `gorm:"primaryKey;column:id" json:"id"`
	StageID    int  `gorm:"column:stage_id;index" json:"stage_id"`
	RoleID     int  `gorm:"column:role_id" json:"role_id"`
	CanView    bool `gorm:"column:can_view" json:"can_view"`
	CanApprove bool `gorm:"column:can_approve" json:"can_approve"`
}

func (WorkflowStage) TableName() string {
	return "workflow_stages"
}

func (StageUserPermission) TableName() string {
	return "stage_user_permissions"
}

func (StageRolePermission) TableName() string {
	return "stage_role_permissions"
}
