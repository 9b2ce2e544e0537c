package handlers

import (
	"net/http"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
)

// classToRecurring готовит занятие для движка развёртки.
func classToRecurring(cls models.Class) calendar.RecurringClass {
	rec := calendar.RecurringClass{
		ID:            cls.ID,
		Name:          cls.Name,
		Description:   cls.Description,
		RecurringDays: []int(cls.RecurringDays),
		ScheduleTimes: cls.ScheduleTimes.Data(),
		StartDate:     cls.StartDate,
		EndDate:       cls.EndDate,
	}
	if cls.Style != nil {
		rec.Style = *cls.Style
	}
	if cls.BackgroundColor != nil {
		rec.BackgroundColor = *cls.BackgroundColor
	}
	if cls.BorderColor != nil {
		rec.BorderColor = *cls.BorderColor
	}
	return rec
}

// @Summary		Календарь
// @Description	Разворачивает повторяющиеся занятия в конкретные события и добавляет разовые события.
// @Description	Без параметров берётся диапазон от сегодня до +30 дней. Для авторизованного ученика
// @Description	его занятия подсвечиваются цветами записи.
// @Tags			calendar
// @Produce		json
// @Param			start	query		string	false	"Начало диапазона (YYYY-MM-DD)"
// @Param			end		query		string	false	"Конец диапазона (YYYY-MM-DD)"
// @Success		200		{array}		calendar.EventInstance	"События календаря"
// @Failure		400		{object}	response.ErrorResponse	"Неверная дата (INVALID_DATE)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/calendar [get]
func GetCalendarHandler(c *gin.Context) {
	now := time.Now()
	rangeStart := calendar.NormalizeDate(now)
	rangeEnd := calendar.EndOfDay(now.AddDate(0, 0, 30))

	if start := c.Query("start"); start != "" {
		parsed, err := calendar.ParseDate(start)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return
		}
		rangeStart = parsed
	}
	if end := c.Query("end"); end != "" {
		parsed, err := calendar.ParseDate(end)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты окончания",
			})
			return
		}
		rangeEnd = calendar.EndOfDay(parsed)
	}

	// Активные занятия, период которых пересекает диапазон.
	var classes []models.Class
	if err := storage.DB.Where("active = ?", true).
		Where("start_date <= ?", rangeEnd).
		Where("end_date IS NULL OR end_date >= ?", rangeStart).
		Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении занятий",
		})
		return
	}

	recurring := make([]calendar.RecurringClass, 0, len(classes))
	classIDs := make([]uint, 0, len(classes))
	for _, cls := range classes {
		recurring = append(recurring, classToRecurring(cls))
		classIDs = append(classIDs, cls.ID)
	}

	exceptions := make([]calendar.ExceptionDate, 0)
	if len(classIDs) > 0 {
		var stored []models.ClassException
		if err := storage.DB.Where("class_id IN ?", classIDs).
			Where("date BETWEEN ? AND ?", calendar.NormalizeDate(rangeStart), rangeEnd).
			Find(&stored).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при получении отмен",
			})
			return
		}
		for _, ex := range stored {
			exceptions = append(exceptions, calendar.ExceptionDate{ClassID: ex.ClassID, Date: ex.Date})
		}
	}

	// Записи смотрящего ученика. Для остальных ролей и анонимов подсветки нет.
	enrolled := make(map[uint]struct{})
	if c.GetString("role") == models.RoleStudent {
		var registrations []models.ClassStudent
		if err := storage.DB.Where("student_id = ?", c.GetUint("userID")).Find(&registrations).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при получении записей ученика",
			})
			return
		}
		for _, reg := range registrations {
			enrolled[reg.ClassID] = struct{}{}
		}
	}

	expanded := calendar.ExpandRecurringClasses(recurring, exceptions, rangeStart, rangeEnd, enrolled, calendar.DefaultColors)

	// Разовые события, пересекающие диапазон, в порядке начала.
	var events []models.Event
	if err := storage.DB.Where("end_time >= ? AND start_time <= ?", rangeStart, rangeEnd).
		Order("start_time ASC").
		Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении событий",
		})
		return
	}

	singles := make([]calendar.SingleEvent, 0, len(events))
	for _, event := range events {
		se := calendar.SingleEvent{
			ID:              event.ID,
			Title:           event.Title,
			Start:           event.StartTime,
			End:             event.EndTime,
			BackgroundColor: event.BackgroundColor,
			BorderColor:     event.BorderColor,
		}
		if event.Description != nil {
			se.Description = *event.Description
		}
		singles = append(singles, se)
	}

	// Списки склеиваются без общей сортировки: разовые события упорядочены
	// запросом, занятия — обходом по дням внутри каждого занятия.
	result := append(calendar.FormatSingleEvents(singles, calendar.DefaultColors), expanded...)
	c.JSON(http.StatusOK, result)
}
