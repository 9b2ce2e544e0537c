package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Типы событий календаря.
const (
	EventTypeRecurring = "recurring-class"
	EventTypeSingle    = "single-event"
)

// RecurringClass — занятие с недельной повторяемостью.
// Читается движком, но не изменяется.
type RecurringClass struct {
	ID              uint
	Name            string
	Style           string
	Description     string
	RecurringDays   []int
	ScheduleTimes   map[string]ScheduleTime
	StartDate       time.Time
	EndDate         *time.Time // nil — занятие без даты окончания
	BackgroundColor string
	BorderColor     string
}

// ExceptionDate — отмена одного дня занятия.
type ExceptionDate struct {
	ClassID uint
	Date    time.Time
}

// SingleEvent — разовое событие с абсолютными датами, не связанное с занятиями.
type SingleEvent struct {
	ID              uint
	Title           string
	Start           time.Time
	End             time.Time
	BackgroundColor string
	BorderColor     string
	Description     string
}

// EventInstance — конкретное событие календаря. Вычисляется на каждый запрос
// заново и нигде не сохраняется.
type EventInstance struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	Description     string    `json:"description,omitempty"`
	Type            string    `json:"type"`
	ClassID         uint      `json:"classId,omitempty"`
	IsEnrolled      bool      `json:"isEnrolled"`
}

// ExpandRecurringClasses разворачивает занятия с повторяемостью в конкретные
// события календаря для диапазона дат [rangeStart, rangeEnd].
// enrolled — множество ID занятий, на которые записан смотрящий ученик.
// Чистая функция: не лезет в базу, не меняет входные данные, ошибок не возвращает.
func ExpandRecurringClasses(
	classes []RecurringClass,
	exceptions []ExceptionDate,
	rangeStart, rangeEnd time.Time,
	enrolled map[uint]struct{},
	colors Colors,
) []EventInstance {
	events := make([]EventInstance, 0)
	if rangeStart.After(rangeEnd) {
		return events
	}

	index := buildExceptionIndex(exceptions)

	for _, cls := range classes {
		events = append(events, expandClass(cls, index, rangeStart, rangeEnd, enrolled, colors)...)
	}
	return events
}

// buildExceptionIndex строит множество отменённых дней для быстрого поиска.
// Ключ: "classID-YYYY-MM-DD", время суток отбрасывается.
func buildExceptionIndex(exceptions []ExceptionDate) map[string]struct{} {
	index := make(map[string]struct{}, len(exceptions))
	for _, ex := range exceptions {
		index[exceptionKey(ex.ClassID, ex.Date)] = struct{}{}
	}
	return index
}

func exceptionKey(classID uint, date time.Time) string {
	return fmt.Sprintf("%d-%s", classID, NormalizeDate(date).Format(DateLayout))
}

// expandClass проходит по дням занятия в границах диапазона и порождает события.
func expandClass(
	cls RecurringClass,
	exceptions map[string]struct{},
	rangeStart, rangeEnd time.Time,
	enrolled map[uint]struct{},
	colors Colors,
) []EventInstance {
	// Рабочее окно: пересечение периода занятия и запрошенного диапазона.
	actualStart := cls.StartDate
	if rangeStart.After(actualStart) {
		actualStart = rangeStart
	}
	actualEnd := rangeEnd
	if cls.EndDate != nil && cls.EndDate.Before(rangeEnd) {
		actualEnd = *cls.EndDate
	}

	var events []EventInstance

	for day := NormalizeDate(actualStart); !day.After(actualEnd); day = day.AddDate(0, 0, 1) {
		weekday := int(day.Weekday())
		if !containsDay(cls.RecurringDays, weekday) {
			continue
		}
		if _, cancelled := exceptions[exceptionKey(cls.ID, day)]; cancelled {
			continue
		}

		// Расписание на этот день недели может отсутствовать или быть битым —
		// такой день молча пропускается, создание занятия валидирует его заранее.
		window, ok := timeForDay(cls.ScheduleTimes, weekday)
		if !ok {
			continue
		}
		startHour, startMinute, ok := parseClock(window.StartTime)
		if !ok {
			continue
		}
		endHour, endMinute, ok := parseClock(window.EndTime)
		if !ok {
			continue
		}

		start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMinute, 0, 0, day.Location())
		end := time.Date(day.Year(), day.Month(), day.Day(), endHour, endMinute, 0, 0, day.Location())
		// Окно через полночь: конец переносится на следующий день.
		if end.Before(start) {
			end = end.AddDate(0, 0, 1)
		}

		title := cls.Name
		if cls.Style != "" {
			title = cls.Name + " - " + cls.Style
		}

		_, isEnrolled := enrolled[cls.ID]
		background := colors.NotEnrolled.Background
		border := colors.NotEnrolled.Border
		if isEnrolled {
			// Собственные цвета занятия применяются только для записанных.
			background = colors.Enrolled.Background
			border = colors.Enrolled.Border
			if cls.BackgroundColor != "" {
				background = cls.BackgroundColor
			}
			if cls.BorderColor != "" {
				border = cls.BorderColor
			}
		}

		events = append(events, EventInstance{
			ID:              fmt.Sprintf("class-%d-%s", cls.ID, day.Format(DateLayout)),
			Title:           title,
			Start:           start,
			End:             end,
			BackgroundColor: background,
			BorderColor:     border,
			Description:     cls.Description,
			Type:            EventTypeRecurring,
			ClassID:         cls.ID,
			IsEnrolled:      isEnrolled,
		})
	}
	return events
}

// FormatSingleEvents приводит разовые события к формату календаря.
// События без собственных цветов получают палитру разовых событий.
func FormatSingleEvents(events []SingleEvent, colors Colors) []EventInstance {
	formatted := make([]EventInstance, 0, len(events))
	for _, e := range events {
		background := e.BackgroundColor
		if background == "" {
			background = colors.SingleEvent.Background
		}
		border := e.BorderColor
		if border == "" {
			border = colors.SingleEvent.Border
		}
		formatted = append(formatted, EventInstance{
			ID:              strconv.FormatUint(uint64(e.ID), 10),
			Title:           e.Title,
			Start:           e.Start,
			End:             e.End,
			BackgroundColor: background,
			BorderColor:     border,
			Description:     e.Description,
			Type:            EventTypeSingle,
		})
	}
	return formatted
}

// timeForDay возвращает окно занятия для дня недели, если оно задано.
func timeForDay(times map[string]ScheduleTime, weekday int) (ScheduleTime, bool) {
	st, ok := times[strconv.Itoa(weekday)]
	if !ok || st.StartTime == "" || st.EndTime == "" {
		return ScheduleTime{}, false
	}
	return st, true
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// parseClock разбирает строку "HH:MM". Некорректное время — ok=false.
func parseClock(s string) (hour, minute int, ok bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
