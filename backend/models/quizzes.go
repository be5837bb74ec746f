package models

import (
	"time"

	"gorm.io/gorm"
)

type Quiz struct {
	gorm.Model
	TeacherID   uint `gorm:"index"`
	Title       string
	Topic       string
	Description string
	Published   bool `gorm:"default:false"`
	Questions   []QuizQuestion
}

type QuizQuestion struct {
	gorm.Model
	QuizID        uint `gorm:"index"`
	Prompt        string
	Options       string // JSON array of options
	CorrectIndex  int
	SequenceOrder int
}

type QuizAttempt struct {
	gorm.Model
	QuizID       uint `gorm:"index"`
	UserID       uint `gorm:"index"`
	Answers      string // JSON array of chosen option indexes
	CorrectCount int
	Score        float64
	CompletedAt  time.Time
}
