package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Params — параметры пагинации, извлечённые из строки запроса.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Meta — метаданные пагинации в ответе.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Parse валидирует строковые значения page и limit.
// Нечисловые и неположительные значения заменяются значениями по умолчанию.
func Parse(pageStr, limitStr string, defaultLimit int) Params {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// FromQuery извлекает параметры пагинации из запроса.
func FromQuery(c *gin.Context, defaultLimit int) Params {
	return Parse(c.Query("page"), c.Query("limit"), defaultLimit)
}

// NewMeta считает метаданные для ответа со списком.
func NewMeta(total int64, p Params) Meta {
	totalPages := int(total) / p.Limit
	if int(total)%p.Limit != 0 {
		totalPages++
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
