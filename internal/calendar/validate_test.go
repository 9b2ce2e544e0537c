package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateRecurringDays(t *testing.T) {
	assert.True(t, ValidateRecurringDays([]int{0}))
	assert.True(t, ValidateRecurringDays([]int{2, 4, 6}))

	assert.False(t, ValidateRecurringDays(nil))
	assert.False(t, ValidateRecurringDays([]int{}))
	assert.False(t, ValidateRecurringDays([]int{7}))
	assert.False(t, ValidateRecurringDays([]int{2, -1}))
}

func TestValidateTimeFormat(t *testing.T) {
	valid := []string{"00:00", "9:00", "09:30", "19:05", "23:59"}
	for _, v := range valid {
		assert.True(t, ValidateTimeFormat(v), v)
	}

	invalid := []string{"", "24:00", "12:60", "12", "12:5", "ab:cd", "12:00:00"}
	for _, v := range invalid {
		assert.False(t, ValidateTimeFormat(v), v)
	}
}

func TestValidateScheduleTimes(t *testing.T) {
	times := map[string]ScheduleTime{
		"2": {StartTime: "9:00", EndTime: "10:00"},
	}

	assert.True(t, ValidateScheduleTimes(times, []int{2}))

	// День 3 не имеет расписания.
	assert.False(t, ValidateScheduleTimes(times, []int{2, 3}))
	assert.False(t, ValidateScheduleTimes(nil, []int{2}))
	assert.False(t, ValidateScheduleTimes(map[string]ScheduleTime{
		"2": {StartTime: "9:00", EndTime: "25:00"},
	}, []int{2}))
	assert.False(t, ValidateScheduleTimes(map[string]ScheduleTime{
		"2": {StartTime: "", EndTime: "10:00"},
	}, []int{2}))
}
