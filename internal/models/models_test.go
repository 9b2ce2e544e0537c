package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleStudent, RoleTeacher, RoleSecretary, RoleAdmin} {
		assert.True(t, ValidRole(role))
	}
	assert.False(t, ValidRole("Admin"))
	assert.False(t, ValidRole("manager"))
	assert.False(t, ValidRole(""))
}

func TestValidAttendanceStatus(t *testing.T) {
	assert.True(t, ValidAttendanceStatus(AttendancePresent))
	assert.True(t, ValidAttendanceStatus(AttendanceAbsent))
	assert.False(t, ValidAttendanceStatus("late"))
	assert.False(t, ValidAttendanceStatus(""))
}

func TestValidFeedbackStatus(t *testing.T) {
	assert.True(t, ValidFeedbackStatus(FeedbackPending))
	assert.True(t, ValidFeedbackStatus(FeedbackCompleted))
	assert.False(t, ValidFeedbackStatus("draft"))
}
