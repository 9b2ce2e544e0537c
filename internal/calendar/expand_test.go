package calendar

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Понедельник 4 марта 2024.
var monday = time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)

func tueThuClass(id uint) RecurringClass {
	return RecurringClass{
		ID:            id,
		Name:          "Форро",
		RecurringDays: []int{2, 4},
		ScheduleTimes: map[string]ScheduleTime{
			"2": {StartTime: "09:00", EndTime: "10:00"},
			"4": {StartTime: "09:00", EndTime: "10:00"},
		},
		StartDate: monday,
	}
}

func TestExpandInvertedRangeReturnsEmpty(t *testing.T) {
	events := ExpandRecurringClasses(
		[]RecurringClass{tueThuClass(1)},
		nil,
		monday.AddDate(0, 0, 14), monday,
		nil, DefaultColors,
	)
	assert.Empty(t, events)
	assert.NotNil(t, events)
}

func TestExpandTueThuOverTwoWeeks(t *testing.T) {
	rangeEnd := EndOfDay(monday.AddDate(0, 0, 13))
	events := ExpandRecurringClasses(
		[]RecurringClass{tueThuClass(1)},
		nil,
		monday, rangeEnd,
		nil, DefaultColors,
	)

	// Два вторника и два четверга.
	assert.Len(t, events, 4)

	expectedDates := []time.Time{
		monday.AddDate(0, 0, 1), // вт 5 марта
		monday.AddDate(0, 0, 3), // чт 7 марта
		monday.AddDate(0, 0, 8),
		monday.AddDate(0, 0, 10),
	}
	for i, ev := range events {
		d := expectedDates[i]
		assert.Equal(t, fmt.Sprintf("class-1-%s", d.Format(DateLayout)), ev.ID)
		assert.Equal(t, time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, time.Local), ev.Start)
		assert.Equal(t, time.Date(d.Year(), d.Month(), d.Day(), 10, 0, 0, 0, time.Local), ev.End)
		assert.Equal(t, EventTypeRecurring, ev.Type)
	}
}

func TestExpandExceptionRemovesSingleOccurrence(t *testing.T) {
	cancelledTuesday := monday.AddDate(0, 0, 1)
	events := ExpandRecurringClasses(
		[]RecurringClass{tueThuClass(1)},
		[]ExceptionDate{{ClassID: 1, Date: cancelledTuesday}},
		monday, EndOfDay(monday.AddDate(0, 0, 13)),
		nil, DefaultColors,
	)

	assert.Len(t, events, 3)
	for _, ev := range events {
		assert.NotEqual(t, fmt.Sprintf("class-1-%s", cancelledTuesday.Format(DateLayout)), ev.ID)
	}
}

func TestExpandExceptionIgnoresTimeOfDay(t *testing.T) {
	// Отмена с временем суток должна сработать на тот же календарный день.
	cancelled := monday.AddDate(0, 0, 1).Add(15 * time.Hour)
	events := ExpandRecurringClasses(
		[]RecurringClass{tueThuClass(1)},
		[]ExceptionDate{{ClassID: 1, Date: cancelled}},
		monday, EndOfDay(monday.AddDate(0, 0, 6)),
		nil, DefaultColors,
	)
	assert.Len(t, events, 1)
}

func TestExpandClassOutsideRange(t *testing.T) {
	ended := tueThuClass(1)
	endDate := monday.AddDate(0, 0, -7)
	ended.StartDate = monday.AddDate(0, 0, -30)
	ended.EndDate = &endDate

	notStarted := tueThuClass(2)
	notStarted.StartDate = monday.AddDate(0, 0, 30)

	events := ExpandRecurringClasses(
		[]RecurringClass{ended, notStarted},
		nil,
		monday, EndOfDay(monday.AddDate(0, 0, 13)),
		nil, DefaultColors,
	)
	assert.Empty(t, events)
}

func TestExpandEnrollmentColors(t *testing.T) {
	cls := tueThuClass(1)
	rangeEnd := EndOfDay(monday.AddDate(0, 0, 6))

	enrolledEvents := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil, monday, rangeEnd,
		map[uint]struct{}{1: {}}, DefaultColors,
	)
	plainEvents := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil, monday, rangeEnd,
		nil, DefaultColors,
	)

	assert.Len(t, enrolledEvents, 2)
	assert.Len(t, plainEvents, 2)

	assert.True(t, enrolledEvents[0].IsEnrolled)
	assert.Equal(t, DefaultColors.Enrolled.Background, enrolledEvents[0].BackgroundColor)
	assert.Equal(t, DefaultColors.Enrolled.Border, enrolledEvents[0].BorderColor)

	assert.False(t, plainEvents[0].IsEnrolled)
	assert.Equal(t, DefaultColors.NotEnrolled.Background, plainEvents[0].BackgroundColor)
	assert.Equal(t, DefaultColors.NotEnrolled.Border, plainEvents[0].BorderColor)

	assert.NotEqual(t, enrolledEvents[0].BackgroundColor, plainEvents[0].BackgroundColor)
}

func TestExpandOverrideColorsOnlyForEnrolled(t *testing.T) {
	cls := tueThuClass(1)
	cls.BackgroundColor = "#111111"
	cls.BorderColor = "#222222"
	rangeEnd := EndOfDay(monday.AddDate(0, 0, 6))

	enrolledEvents := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil, monday, rangeEnd,
		map[uint]struct{}{1: {}}, DefaultColors,
	)
	assert.Equal(t, "#111111", enrolledEvents[0].BackgroundColor)
	assert.Equal(t, "#222222", enrolledEvents[0].BorderColor)

	// Цвета занятия не применяются без записи.
	plainEvents := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil, monday, rangeEnd,
		nil, DefaultColors,
	)
	assert.Equal(t, DefaultColors.NotEnrolled.Background, plainEvents[0].BackgroundColor)
	assert.Equal(t, DefaultColors.NotEnrolled.Border, plainEvents[0].BorderColor)
}

func TestExpandSingleOccurrenceClass(t *testing.T) {
	// Занятие с одинаковыми датами начала и конца в свой день недели.
	tuesday := monday.AddDate(0, 0, 1)
	cls := RecurringClass{
		ID:            7,
		Name:          "Мастер-класс",
		RecurringDays: []int{2},
		ScheduleTimes: map[string]ScheduleTime{
			"2": {StartTime: "19:00", EndTime: "21:00"},
		},
		StartDate: tuesday,
		EndDate:   &tuesday,
	}

	events := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil,
		monday, EndOfDay(monday.AddDate(0, 0, 13)),
		nil, DefaultColors,
	)
	assert.Len(t, events, 1)
	assert.Equal(t, fmt.Sprintf("class-7-%s", tuesday.Format(DateLayout)), events[0].ID)
}

func TestExpandOvernightWindowRollsEndToNextDay(t *testing.T) {
	cls := RecurringClass{
		ID:            3,
		Name:          "Ночная милонга",
		RecurringDays: []int{5},
		ScheduleTimes: map[string]ScheduleTime{
			"5": {StartTime: "22:00", EndTime: "01:00"},
		},
		StartDate: monday,
	}

	events := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil,
		monday, EndOfDay(monday.AddDate(0, 0, 6)),
		nil, DefaultColors,
	)
	assert.Len(t, events, 1)

	friday := monday.AddDate(0, 0, 4)
	assert.Equal(t, time.Date(friday.Year(), friday.Month(), friday.Day(), 22, 0, 0, 0, time.Local), events[0].Start)
	assert.Equal(t, events[0].Start.Add(3*time.Hour), events[0].End)
}

func TestExpandSkipsDayWithoutSchedule(t *testing.T) {
	cls := tueThuClass(1)
	delete(cls.ScheduleTimes, "4")

	events := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil,
		monday, EndOfDay(monday.AddDate(0, 0, 13)),
		nil, DefaultColors,
	)
	// Четверги пропущены, остались только вторники.
	assert.Len(t, events, 2)
}

func TestExpandSkipsMalformedTime(t *testing.T) {
	cls := tueThuClass(1)
	cls.ScheduleTimes["2"] = ScheduleTime{StartTime: "25:00", EndTime: "26:00"}

	events := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil,
		monday, EndOfDay(monday.AddDate(0, 0, 6)),
		nil, DefaultColors,
	)
	assert.Len(t, events, 1)
}

func TestExpandTitleIncludesStyle(t *testing.T) {
	cls := tueThuClass(1)
	cls.Style = "Бачата"

	events := ExpandRecurringClasses(
		[]RecurringClass{cls}, nil,
		monday, EndOfDay(monday.AddDate(0, 0, 6)),
		nil, DefaultColors,
	)
	assert.Equal(t, "Форро - Бачата", events[0].Title)
}

func TestFormatSingleEvents(t *testing.T) {
	start := time.Date(2024, 3, 9, 18, 0, 0, 0, time.Local)
	events := FormatSingleEvents([]SingleEvent{
		{ID: 42, Title: "Отчётный концерт", Start: start, End: start.Add(2 * time.Hour)},
		{ID: 43, Title: "Вечеринка", Start: start, End: start.Add(4 * time.Hour), BackgroundColor: "#000000", BorderColor: "#ffffff"},
	}, DefaultColors)

	assert.Len(t, events, 2)

	assert.Equal(t, "42", events[0].ID)
	assert.Equal(t, EventTypeSingle, events[0].Type)
	assert.False(t, events[0].IsEnrolled)
	assert.Equal(t, DefaultColors.SingleEvent.Background, events[0].BackgroundColor)
	assert.Equal(t, DefaultColors.SingleEvent.Border, events[0].BorderColor)

	assert.Equal(t, "#000000", events[1].BackgroundColor)
	assert.Equal(t, "#ffffff", events[1].BorderColor)
}
