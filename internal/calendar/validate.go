package calendar

import (
	"regexp"
	"strconv"
)

// ScheduleTime — окно занятия в пределах одного дня недели.
type ScheduleTime struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

var timeFormatRegex = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ValidateRecurringDays проверяет, что список дней недели непустой
// и все значения лежат в диапазоне 0 (воскресенье) — 6 (суббота).
func ValidateRecurringDays(days []int) bool {
	if len(days) == 0 {
		return false
	}
	for _, day := range days {
		if day < 0 || day > 6 {
			return false
		}
	}
	return true
}

// ValidateTimeFormat проверяет время в 24-часовом формате H:MM или HH:MM.
func ValidateTimeFormat(t string) bool {
	return timeFormatRegex.MatchString(t)
}

// ValidateScheduleTimes проверяет, что для каждого дня из recurringDays
// задано окно с корректными startTime и endTime. Ключи карты — дни недели
// в виде строк "0".."6", ровно как они хранятся в базе.
func ValidateScheduleTimes(times map[string]ScheduleTime, recurringDays []int) bool {
	if times == nil {
		return false
	}
	for _, day := range recurringDays {
		st, ok := times[strconv.Itoa(day)]
		if !ok {
			return false
		}
		if !ValidateTimeFormat(st.StartTime) || !ValidateTimeFormat(st.EndTime) {
			return false
		}
	}
	return true
}
