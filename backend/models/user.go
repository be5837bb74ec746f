package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string
	Role         string `gorm:"default:student"` // student, teacher, personal, admin
	IsBlocked    bool   `gorm:"default:false"`
	// TokenVersion is embedded in every issued JWT; bumping it kills all
	// outstanding sessions for this user.
	TokenVersion     uint `gorm:"default:0"`
	CurrentStreak    int  `gorm:"default:0"`
	LastActivityDate *time.Time
	AvatarURL        string
	School           string
}

type NotificationPrefs struct {
	gorm.Model
	UserID          uint `gorm:"uniqueIndex"`
	EmailOnGrade    bool `gorm:"default:true"`
	EmailOnComment  bool `gorm:"default:true"`
	StreakReminders bool `gorm:"default:false"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
