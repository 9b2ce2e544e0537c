package models

import (
	"time"

	"gorm.io/gorm"
)

// News — новость школы.
type News struct {
	gorm.Model
	Title       string    `gorm:"not null"`
	Content     string    `gorm:"not null"`
	PublishedAt time.Time `gorm:"index;not null"`
	Author      *string
	ImageURL    *string
}
