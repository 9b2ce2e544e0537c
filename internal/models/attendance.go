package models

import (
	"time"

	"gorm.io/gorm"
)

// Статусы посещаемости.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
)

// ValidAttendanceStatus проверяет статус посещаемости.
func ValidAttendanceStatus(status string) bool {
	return status == AttendancePresent || status == AttendanceAbsent
}

// Attendance — отметка посещаемости ученика на конкретную дату занятия.
type Attendance struct {
	gorm.Model
	ClassID   uint      `gorm:"uniqueIndex:idx_attendance_unique;not null"`
	Class     Class     `gorm:"foreignKey:ClassID"`
	StudentID uint      `gorm:"uniqueIndex:idx_attendance_unique;not null"`
	Student   User      `gorm:"foreignKey:StudentID"`
	Date      time.Time `gorm:"uniqueIndex:idx_attendance_unique;index;not null"`
	Status    string    `gorm:"not null"`
}
