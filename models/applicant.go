package models

import "time"

// Applicant fetch states for the external ITS directory.
const (
	ApplicantFetchPending  = "pending"
	ApplicantFetchFetched  = "fetched"
	ApplicantFetchNotFound = "not_found" // permanent: skip future fetches
)

// Applicant is keyed by the externally issued 8-digit ITS number.
type Applicant struct {
	ApplicantID    int        `gorm:"primaryKey;column:applicant_id" json:"applicant_id"`
	ITSNumber      string     `gorm:"column:its_number;unique" json:"its_number"`
	FullName       string     `gorm:"column:full_name" json:"full_name"`
	Phone          *string    `gorm:"column:phone" json:"phone,omitempty"`
	Gender         *string    `gorm:"column:gender" json:"gender,omitempty"` // male|female|other
	JamiatID       *int       `gorm:"column:jamiat_id" json:"jamiat_id,omitempty"`
	JamaatID       *int       `gorm:"column:jamaat_id" json:"jamaat_id,omitempty"`
	PhotoPath      *string    `gorm:"column:photo_path" json:"photo_path,omitempty"`
	APIFetchStatus string     `gorm:"column:api_fetch_status;default:pending" json:"api_fetch_status"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Applicant) TableName() string {
	return "applicants"
}
