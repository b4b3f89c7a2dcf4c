package models

import "time"

// Jamiat is the outer organizational grouping; Jamaat nests under it.
// External numeric codes come from the ITS directory; jamaat codes repeat
// across jamiats, so jamaat lookups must filter by the parent jamiat.
type Jamiat struct {
	JamiatID     int        `gorm:"primaryKey;column:jamiat_id" json:"jamiat_id"`
	ExternalCode int        `gorm:"column:external_code;unique" json:"external_code"`
	JamiatName   string     `gorm:"column:jamiat_name" json:"jamiat_name"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
}

type Jamaat struct {
	JamaatID     int        `gorm:"primaryKey;column:jamaat_id" json:"jamaat_id"`
	JamiatID     int        `gorm:"column:jamiat_id;index" json:"jamiat_id"`
	ExternalCode int        `gorm:"column:external_code" json:"external_code"`
	JamaatName   string     `gorm:"column:jamaat_name" json:"jamaat_name"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`

	Jamiat Jamiat `gorm:"foreignKey:JamiatID" json:"jamiat,omitempty"`
}

func (Jamiat) TableName() string {
	return "jamiats"
}

func (Jamaat) TableName() string {
	return "jamaats"
}
