package models

import (
	"time"

	"dance_school/internal/calendar"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Class — занятие с недельной повторяемостью.
// RecurringDays хранит дни недели 0 (воскресенье) — 6 (суббота);
// ScheduleTimes — окна по дням, ключи — те же дни строками "0".."6".
type Class struct {
	gorm.Model
	Name            string `gorm:"not null"`
	Description     string `gorm:"not null"`
	TeacherID       uint   `gorm:"index;not null"`
	Style           *string
	Active          bool                                                 `gorm:"default:true"`
	RecurringDays   datatypes.JSONSlice[int]                             `gorm:"not null"`
	ScheduleTimes   datatypes.JSONType[map[string]calendar.ScheduleTime] `gorm:"not null"`
	StartDate       time.Time                                            `gorm:"index;not null"`
	EndDate         *time.Time                                           `gorm:"index"` // nil — занятие без даты окончания
	BackgroundColor *string
	BorderColor     *string
}

// ClassStudent — запись ученика на занятие.
type ClassStudent struct {
	gorm.Model
	ClassID   uint `gorm:"uniqueIndex:idx_class_student;not null"`
	Class     Class `gorm:"foreignKey:ClassID"`
	StudentID uint `gorm:"uniqueIndex:idx_class_student;not null"`
	Student   User `gorm:"foreignKey:StudentID"`
}

// ClassException — отмена одного дня занятия. Дата хранится без времени суток.
type ClassException struct {
	gorm.Model
	ClassID uint      `gorm:"uniqueIndex:idx_class_exception_date;not null"`
	Class   Class     `gorm:"foreignKey:ClassID"`
	Date    time.Time `gorm:"uniqueIndex:idx_class_exception_date;not null"`
	Reason  *string
}
