package models

import "time"

// WelfareChecklistItem is a catalog entry the welfare team must answer before
// a case can be approved out of welfare review.
type WelfareChecklistItem struct {
	ItemID          int        `gorm:"primaryKey;column:item_id" json:"item_id"`
	ItemText        string     `gorm:"column:item_text" json:"item_text"`
	RequiresComment bool       `gorm:"column:requires_comment" json:"requires_comment"`
	SortOrder       int        `gorm:"column:sort_order" json:"sort_order"`
	IsActive        bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreateAt        *time.Time `gorm:"column:create_at" json:"create_at"`
	DeleteAt        *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

type WelfareChecklistResponse struct {
	ResponseID int        `gorm:"primaryKey;column:response_id" json:"response_id"`
	CaseID     int        `gorm:"column:case_id;index" json:"case_id"`
	ItemID     int        `gorm:"column:item_id" json:"item_id"`
	Answer     string     `gorm:"column:answer" json:"answer"` // Y|N
	Comment    *string    `gorm:"column:comment" json:"comment,omitempty"`
	AnsweredBy int        `gorm:"column:answered_by" json:"answered_by"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`

	Item WelfareChecklistItem `gorm:"foreignKey:ItemID" json:"item,omitempty"`
}

func (WelfareChecklistItem) TableName() string {
	return "welfare_checklist_items"
}

func (WelfareChecklistResponse) TableName() string {
	return "welfare_checklist_responses"
}
