package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	p := Parse("", "", 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseValues(t *testing.T) {
	p := Parse("3", "25", 10)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Offset)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := Parse("-1", "ноль", 10)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(21, Params{Page: 2, Limit: 10, Offset: 10})
	assert.Equal(t, int64(21), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	meta = NewMeta(20, Params{Page: 1, Limit: 10})
	assert.Equal(t, 2, meta.TotalPages)

	meta = NewMeta(0, Params{Page: 1, Limit: 10})
	assert.Equal(t, 0, meta.TotalPages)
}
