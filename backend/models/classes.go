package models

import (
	"time"

	"gorm.io/gorm"
)

type Class struct {
	gorm.Model
	TeacherID   uint   `gorm:"index"`
	Name        string `gorm:"not null"`
	Subject     string
	Description string
	JoinCode    string `gorm:"unique"`
	BannerURL   string
	Enrollments []Enrollment
	Assignments []Assignment
}

type Enrollment struct {
	gorm.Model
	ClassID   uint `gorm:"index:idx_class_student,unique"`
	StudentID uint `gorm:"index:idx_class_student,unique"`
}

type Assignment struct {
	gorm.Model
	ClassID       uint `gorm:"index"`
	TeacherID     uint
	Title         string `gorm:"not null"`
	Instructions  string
	DueDate       *time.Time
	AttachmentURL string
	Submissions   []Submission
}

type Submission struct {
	gorm.Model
	AssignmentID uint `gorm:"index:idx_assignment_student,unique"`
	StudentID    uint `gorm:"index:idx_assignment_student,unique"`
	Body         string
	FileURL      string
	Grade        *float64
	Feedback     string
	GradedAt     *time.Time
}
