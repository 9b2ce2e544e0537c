package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDate(t *testing.T) {
	src := time.Date(2024, 3, 10, 18, 42, 7, 123, time.Local)
	normalized := NormalizeDate(src)

	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), normalized)
	// Идемпотентность.
	assert.Equal(t, normalized, NormalizeDate(normalized))
}

func TestParseDateLocalCalendarDate(t *testing.T) {
	parsed, err := ParseDate("2024-03-10")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), parsed)
}

func TestParseDateWithTimePrefix(t *testing.T) {
	// Полная ISO-строка трактуется по календарной дате из префикса, без сдвига зоны.
	parsed, err := ParseDate("2024-03-10T22:00:00Z")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), parsed)
}

func TestParseDateInvalid(t *testing.T) {
	_, err := ParseDate("не дата")
	assert.Error(t, err)
}

func TestEndOfDay(t *testing.T) {
	end := EndOfDay(time.Date(2024, 3, 10, 11, 30, 0, 0, time.Local))
	assert.Equal(t, time.Date(2024, 3, 10, 23, 59, 59, 999000000, time.Local), end)
}

func TestFormatRecurringDays(t *testing.T) {
	assert.Equal(t, "Вторник, Среда", FormatRecurringDays([]int{3, 2}))
	assert.Equal(t, "Воскресенье", FormatRecurringDays([]int{0}))
	assert.Equal(t, "", FormatRecurringDays(nil))
}
