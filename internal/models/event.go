package models

import (
	"time"

	"gorm.io/gorm"
)

// Event — разовое событие с абсолютными датами, не связанное с занятиями.
type Event struct {
	gorm.Model
	Title           string    `gorm:"not null"`
	StartTime       time.Time `gorm:"index;not null"`
	EndTime         time.Time `gorm:"index;not null"`
	BackgroundColor string    `gorm:"not null"`
	BorderColor     string    `gorm:"not null"`
	Description     *string
}
