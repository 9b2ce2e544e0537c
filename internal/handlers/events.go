package handlers

import (
	"net/http"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/response"
	"dance_school/internal/storage"
	"dance_school/internal/ws"

	"github.com/gin-gonic/gin"
)

type EventRequest struct {
	Title           string  `json:"title" binding:"required"`
	Start           string  `json:"start" binding:"required"`
	End             string  `json:"end" binding:"required"`
	Description     *string `json:"description"`
	BackgroundColor string  `json:"backgroundColor"`
	BorderColor     string  `json:"borderColor"`
}

type UpdateEventRequest struct {
	Title           *string `json:"title"`
	Start           *string `json:"start"`
	End             *string `json:"end"`
	Description     *string `json:"description"`
	BackgroundColor *string `json:"backgroundColor"`
	BorderColor     *string `json:"borderColor"`
}

type EventResponse struct {
	ID              uint      `json:"id"`
	Title           string    `json:"title"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	Description     *string   `json:"description"`
}

func eventToResponse(event models.Event) EventResponse {
	return EventResponse{
		ID:              event.ID,
		Title:           event.Title,
		Start:           event.StartTime,
		End:             event.EndTime,
		BackgroundColor: event.BackgroundColor,
		BorderColor:     event.BorderColor,
		Description:     event.Description,
	}
}

// @Summary		Список разовых событий
// @Description	События, отфильтрованные по диапазону дат, в порядке начала
// @Tags			events
// @Produce		json
// @Security		BearerAuth
// @Param			start	query		string	false	"Начало диапазона"
// @Param			end		query		string	false	"Конец диапазона"
// @Success		200		{array}		EventResponse			"События"
// @Failure		400		{object}	response.ErrorResponse	"Неверная дата (INVALID_DATE)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/events [get]
func GetEventsHandler(c *gin.Context) {
	query := storage.DB.Order("start_time ASC")

	if start := c.Query("start"); start != "" {
		parsed, err := calendar.ParseDate(start)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return
		}
		query = query.Where("start_time >= ?", parsed)
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
		query = query.Where("end_time <= ?", calendar.EndOfDay(parsed))
	}

	var events []models.Event
	if err := query.Find(&events).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении событий",
		})
		return
	}

	result := make([]EventResponse, 0, len(events))
	for _, event := range events {
		result = append(result, eventToResponse(event))
	}
	c.JSON(http.StatusOK, result)
}

// @Summary		Событие по ID
// @Tags			events
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID события"
// @Success		200	{object}	EventResponse			"Событие"
// @Failure		404	{object}	response.ErrorResponse	"Событие не найдено (EVENT_NOT_FOUND)"
// @Router			/api/events/{id} [get]
func GetEventHandler(c *gin.Context) {
	var event models.Event
	if err := storage.DB.First(&event, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EVENT_NOT_FOUND",
			Message: "Событие не найдено",
		})
		return
	}
	c.JSON(http.StatusOK, eventToResponse(event))
}

// @Summary		Создание события
// @Tags			events
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			event	body		EventRequest	true	"Данные события"
// @Success		201		{object}	EventResponse			"Созданное событие"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DATE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/events [post]
func CreateEventHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	start, err := time.Parse(time.RFC3339, req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Неверный формат даты начала",
		})
		return
	}
	end, err := time.Parse(time.RFC3339, req.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Неверный формат даты окончания",
		})
		return
	}

	background := req.BackgroundColor
	if background == "" {
		background = calendar.DefaultColors.SingleEvent.Background
	}
	border := req.BorderColor
	if border == "" {
		border = calendar.DefaultColors.SingleEvent.Border
	}

	event := models.Event{
		Title:           req.Title,
		StartTime:       start,
		EndTime:         end,
		BackgroundColor: background,
		BorderColor:     border,
		Description:     req.Description,
	}
	if err := storage.DB.Create(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании события",
		})
		return
	}

	ws.NotifyCalendarChanged("event", event.ID)
	c.JSON(http.StatusCreated, eventToResponse(event))
}

// @Summary		Обновление события
// @Tags			events
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int					true	"ID события"
// @Param			event	body		UpdateEventRequest	true	"Изменяемые поля"
// @Success		200		{object}	EventResponse			"Обновлённое событие"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DATE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404		{object}	response.ErrorResponse	"Событие не найдено (EVENT_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/events/{id} [put]
func UpdateEventHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EVENT_NOT_FOUND",
			Message: "Событие не найдено",
		})
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Start != nil {
		start, err := time.Parse(time.RFC3339, *req.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return
		}
		event.StartTime = start
	}
	if req.End != nil {
		end, err := time.Parse(time.RFC3339, *req.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты окончания",
			})
			return
		}
		event.EndTime = end
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.BackgroundColor != nil {
		event.BackgroundColor = *req.BackgroundColor
	}
	if req.BorderColor != nil {
		event.BorderColor = *req.BorderColor
	}

	if err := storage.DB.Save(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении события",
		})
		return
	}

	ws.NotifyCalendarChanged("event", event.ID)
	c.JSON(http.StatusOK, eventToResponse(event))
}

// @Summary		Удаление события
// @Tags			events
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID события"
// @Success		200	{object}	response.SuccessResponse	"Событие удалено"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Событие не найдено (EVENT_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/events/{id} [delete]
func DeleteEventHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var event models.Event
	if err := storage.DB.First(&event, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EVENT_NOT_FOUND",
			Message: "Событие не найдено",
		})
		return
	}

	if err := storage.DB.Delete(&event).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении события",
		})
		return
	}

	ws.NotifyCalendarChanged("event", event.ID)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Событие удалено"})
}
