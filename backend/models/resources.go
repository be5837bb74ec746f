package models

import "gorm.io/gorm"

type Resource struct {
	gorm.Model
	UploaderID  uint
	Title       string `gorm:"not null"`
	Description string
	FileURL     string
	Category    string `gorm:"default:general"` // general, hsc
	IsFree      bool   `gorm:"default:true"`
}
