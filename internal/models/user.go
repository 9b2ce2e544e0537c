package models

import (
	"gorm.io/gorm"
)

// Роли пользователей.
const (
	RoleStudent   = "student"
	RoleTeacher   = "teacher"
	RoleSecretary = "secretary"
	RoleAdmin     = "admin"
)

// ValidRole проверяет, что роль входит в список известных.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleTeacher, RoleSecretary, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	gorm.Model
	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"index;not null;default:student"`
}
