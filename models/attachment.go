package models

import "time"

// CaseAttachment records an uploaded file. Only the path relative to the
// upload root is stored; files live under cases/<case_id>/stage_<stage_id>/.
type CaseAttachment struct {
	AttachmentID int        `gorm:"primaryKey;column:attachment_id" json:"attachment_id"`
	CaseID       int        `gorm:"column:case_id;index" json:"case_id"`
	StageID      *int       `gorm:"column:stage_id" json:"stage_id,omitempty"`
	OriginalName string     `gorm:"column:original_name" json:"original_name"`
	StoredPath   string     `gorm:"column:stored_path" json:"stored_path"`
	MimeType     string     `gorm:"column:mime_type" json:"mime_type"`
	FileSize     int64      `gorm:"column:file_size" json:"file_size"`
	UploadedBy   int        `gorm:"column:uploaded_by" json:"uploaded_by"`
	UploadedAt   time.Time  `gorm:"column:uploaded_at" json:"uploaded_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (c *CaseAttachment) IsImage() bool {
	switch c.MimeType {
	case "image/jpeg", "image/jpg", "image/png", "image/gif":
		return true
	}
	return false
}

func (c *CaseAttachment) IsPDF() bool {
	return c.MimeType == "application/pdf"
}

func (CaseAttachment) TableName() string {
	return "case_attachments"
}
