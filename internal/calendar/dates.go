package calendar

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout — формат даты календарного дня.
const DateLayout = "2006-01-02"

var datePrefixRegex = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)

// NormalizeDate обрезает время до местной полуночи.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ParseDate разбирает дату из строки запроса и нормализует её к местной полуночи.
// Строка, начинающаяся с YYYY-MM-DD, трактуется как местная календарная дата,
// а не UTC — иначе фильтры по датам съезжали бы на день в других часовых поясах.
func ParseDate(s string) (time.Time, error) {
	if m := datePrefixRegex.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeDate(t.Local()), nil
}

// EndOfDay возвращает конец дня (23:59:59.999) для переданной даты.
func EndOfDay(t time.Time) time.Time {
	d := NormalizeDate(t)
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999000000, d.Location())
}

var dayNames = [7]string{
	"Воскресенье",
	"Понедельник",
	"Вторник",
	"Среда",
	"Четверг",
	"Пятница",
	"Суббота",
}

// FormatRecurringDays форматирует дни недели в читаемую строку, например "Вторник, Среда".
func FormatRecurringDays(days []int) string {
	sorted := make([]int, len(days))
	copy(sorted, days)
	sort.Ints(sorted)

	names := make([]string, 0, len(sorted))
	for _, day := range sorted {
		if day >= 0 && day <= 6 {
			names = append(names, dayNames[day])
		}
	}
	return strings.Join(names, ", ")
}
