package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Статусы оценки.
const (
	FeedbackPending   = "pending"
	FeedbackCompleted = "completed"
)

// ValidFeedbackStatus проверяет допустимость статуса оценки.
func ValidFeedbackStatus(status string) bool {
	return status == FeedbackPending || status == FeedbackCompleted
}

// FeedbackParameter — оценка по одному критерию (техника, ритм и т.д.).
type FeedbackParameter struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Feedback — оценка ученика за занятие с разбивкой по критериям.
type Feedback struct {
	gorm.Model
	StudentID         uint      `gorm:"index;not null"`
	Student           User      `gorm:"foreignKey:StudentID"`
	ClassID           uint      `gorm:"index;not null"`
	Class             Class     `gorm:"foreignKey:ClassID"`
	Date              time.Time `gorm:"index;not null"`
	Average           float64   `gorm:"not null"`
	Status            string    `gorm:"not null;default:pending"`
	EvaluatorFeedback *string
	Parameters        datatypes.JSONType[map[string]FeedbackParameter]
}
