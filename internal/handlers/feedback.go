package handlers

import (
	"net/http"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/pagination"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FeedbackRequest struct {
	StudentID         uint                                  `json:"studentId" binding:"required"`
	ClassID           uint                                  `json:"classId" binding:"required"`
	Date              string                                `json:"date" binding:"required"`
	Average           float64                               `json:"average"`
	Status            string                                `json:"status"`
	EvaluatorFeedback *string                               `json:"evaluatorFeedback"`
	Parameters        map[string]models.FeedbackParameter   `json:"parameters"`
}

type UpdateFeedbackRequest struct {
	ClassID           *uint                                `json:"classId"`
	Date              *string                              `json:"date"`
	Average           *float64                             `json:"average"`
	Status            *string                              `json:"status"`
	EvaluatorFeedback *string                              `json:"evaluatorFeedback"`
	Parameters        *map[string]models.FeedbackParameter `json:"parameters"`
}

type FeedbackResponse struct {
	ID                uint                                `json:"id"`
	StudentID         uint                                `json:"studentId"`
	ClassID           uint                                `json:"classId"`
	ClassName         string                              `json:"className"`
	ClassStyle        *string                             `json:"classStyle,omitempty"`
	Date              time.Time                           `json:"date"`
	Average           float64                             `json:"average"`
	Status            string                              `json:"status"`
	EvaluatorFeedback *string                             `json:"evaluatorFeedback,omitempty"`
	Parameters        map[string]models.FeedbackParameter `json:"parameters"`
	CreatedAt         time.Time                           `json:"createdAt"`
	UpdatedAt         time.Time                           `json:"updatedAt"`
}

type FeedbackListResponse struct {
	Data       []FeedbackResponse `json:"data"`
	Pagination pagination.Meta    `json:"pagination"`
}

type FeedbackClassGroup struct {
	ClassID   uint    `json:"classId"`
	ClassName string  `json:"className"`
	Style     *string `json:"style,omitempty"`
	Count     int64   `json:"count"`
}

func feedbackToResponse(fb models.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:                fb.ID,
		StudentID:         fb.StudentID,
		ClassID:           fb.ClassID,
		ClassName:         fb.Class.Name,
		ClassStyle:        fb.Class.Style,
		Date:              fb.Date,
		Average:           fb.Average,
		Status:            fb.Status,
		EvaluatorFeedback: fb.EvaluatorFeedback,
		Parameters:        fb.Parameters.Data(),
		CreatedAt:         fb.CreatedAt,
		UpdatedAt:         fb.UpdatedAt,
	}
}

// applyFeedbackDateFilters добавляет фильтры по диапазону дат из query-параметров.
func applyFeedbackDateFilters(c *gin.Context, query *gorm.DB) (*gorm.DB, bool) {
	if startDate := c.Query("startDate"); startDate != "" {
		parsed, err := calendar.ParseDate(startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return nil, false
		}
		query = query.Where("feedbacks.date >= ?", parsed)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		parsed, err := calendar.ParseDate(endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты окончания",
			})
			return nil, false
		}
		query = query.Where("feedbacks.date <= ?", calendar.EndOfDay(parsed))
	}
	return query, true
}

// @Summary		Список оценок
// @Description	Оценки с фильтрами по ученику, стилю, занятию и диапазону дат, с пагинацией
// @Tags			feedback
// @Produce		json
// @Param			userId		query		int		false	"ID ученика"
// @Param			classId		query		int		false	"ID занятия"
// @Param			style		query		string	false	"Стиль занятия"
// @Param			startDate	query		string	false	"Начало диапазона"
// @Param			endDate		query		string	false	"Конец диапазона"
// @Param			page		query		int		false	"Номер страницы"
// @Param			limit		query		int		false	"Размер страницы"
// @Success		200			{object}	FeedbackListResponse	"Оценки"
// @Failure		400			{object}	response.ErrorResponse	"Неверная дата (INVALID_DATE)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback [get]
func GetFeedbacksHandler(c *gin.Context) {
	p := pagination.FromQuery(c, 20)

	query := storage.DB.Model(&models.Feedback{}).
		Joins("JOIN classes ON classes.id = feedbacks.class_id")

	if userID := c.Query("userId"); userID != "" {
		query = query.Where("feedbacks.student_id = ?", userID)
	}
	if classID := c.Query("classId"); classID != "" {
		query = query.Where("feedbacks.class_id = ?", classID)
	}
	if style := c.Query("style"); style != "" {
		query = query.Where("classes.style = ?", style)
	}

	query, ok := applyFeedbackDateFilters(c, query)
	if !ok {
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при подсчёте оценок",
		})
		return
	}

	var feedbacks []models.Feedback
	if err := query.Preload("Class").
		Order("feedbacks.date DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении оценок",
		})
		return
	}

	result := make([]FeedbackResponse, 0, len(feedbacks))
	for _, fb := range feedbacks {
		result = append(result, feedbackToResponse(fb))
	}
	c.JSON(http.StatusOK, FeedbackListResponse{
		Data:       result,
		Pagination: pagination.NewMeta(total, p),
	})
}

// @Summary		Оценка по ID
// @Tags			feedback
// @Produce		json
// @Param			id	path		int	true	"ID оценки"
// @Success		200	{object}	FeedbackResponse		"Оценка"
// @Failure		404	{object}	response.ErrorResponse	"Оценка не найдена (FEEDBACK_NOT_FOUND)"
// @Router			/api/feedback/{id} [get]
func GetFeedbackHandler(c *gin.Context) {
	var fb models.Feedback
	if err := storage.DB.Preload("Class").First(&fb, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "FEEDBACK_NOT_FOUND",
			Message: "Оценка не найдена",
		})
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(fb))
}

// @Summary		Создание оценки
// @Tags			feedback
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			feedback	body		FeedbackRequest	true	"Оценка"
// @Success		201			{object}	FeedbackResponse		"Созданная оценка"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DATE, INVALID_STATUS)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback [post]
func CreateFeedbackHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var cls models.Class
	if err := storage.DB.First(&cls, req.ClassID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Неверный формат даты",
		})
		return
	}

	status := req.Status
	if status == "" {
		status = models.FeedbackPending
	}
	if !models.ValidFeedbackStatus(status) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_STATUS",
			Message: "Статус должен быть pending или completed",
		})
		return
	}

	params := req.Parameters
	if params == nil {
		params = map[string]models.FeedbackParameter{}
	}

	fb := models.Feedback{
		StudentID:         req.StudentID,
		ClassID:           req.ClassID,
		Date:              date,
		Average:           req.Average,
		Status:            status,
		EvaluatorFeedback: req.EvaluatorFeedback,
		Parameters:        datatypes.NewJSONType(params),
	}
	if err := storage.DB.Create(&fb).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании оценки",
		})
		return
	}

	fb.Class = cls
	c.JSON(http.StatusCreated, feedbackToResponse(fb))
}

// @Summary		Обновление оценки
// @Tags			feedback
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id			path		int					true	"ID оценки"
// @Param			feedback	body		UpdateFeedbackRequest	true	"Изменяемые поля"
// @Success		200			{object}	FeedbackResponse		"Обновлённая оценка"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DATE, INVALID_STATUS)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Оценка или занятие не найдены (FEEDBACK_NOT_FOUND, CLASS_NOT_FOUND)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback/{id} [put]
func UpdateFeedbackHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var fb models.Feedback
	if err := storage.DB.First(&fb, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "FEEDBACK_NOT_FOUND",
			Message: "Оценка не найдена",
		})
		return
	}

	var req UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if req.ClassID != nil {
		var cls models.Class
		if err := storage.DB.First(&cls, *req.ClassID).Error; err != nil {
			c.JSON(http.StatusNotFound, response.ErrorResponse{
				Code:    "CLASS_NOT_FOUND",
				Message: "Занятие не найдено",
			})
			return
		}
		fb.ClassID = *req.ClassID
	}
	if req.Date != nil {
		date, err := calendar.ParseDate(*req.Date)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты",
			})
			return
		}
		fb.Date = date
	}
	if req.Average != nil {
		fb.Average = *req.Average
	}
	if req.Status != nil {
		if !models.ValidFeedbackStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_STATUS",
				Message: "Статус должен быть pending или completed",
			})
			return
		}
		fb.Status = *req.Status
	}
	if req.EvaluatorFeedback != nil {
		fb.EvaluatorFeedback = req.EvaluatorFeedback
	}
	if req.Parameters != nil {
		fb.Parameters = datatypes.NewJSONType(*req.Parameters)
	}

	if err := storage.DB.Save(&fb).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении оценки",
		})
		return
	}

	if err := storage.DB.Preload("Class").First(&fb, fb.ID).Error; err == nil {
		c.JSON(http.StatusOK, feedbackToResponse(fb))
		return
	}
	c.JSON(http.StatusOK, feedbackToResponse(fb))
}

// @Summary		Удаление оценки
// @Tags			feedback
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID оценки"
// @Success		200	{object}	response.SuccessResponse	"Оценка удалена"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Оценка не найдена (FEEDBACK_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback/{id} [delete]
func DeleteFeedbackHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var fb models.Feedback
	if err := storage.DB.First(&fb, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "FEEDBACK_NOT_FOUND",
			Message: "Оценка не найдена",
		})
		return
	}

	if err := storage.DB.Delete(&fb).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении оценки",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Оценка удалена"})
}

// @Summary		Занятия с оценками
// @Description	Список занятий, по которым есть оценки, с количеством оценок
// @Tags			feedback
// @Produce		json
// @Param			userId	query		int	false	"ID ученика (только его оценки)"
// @Success		200		{array}		FeedbackClassGroup		"Занятия"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback/classes [get]
func GetFeedbackClassesHandler(c *gin.Context) {
	query := storage.DB.Model(&models.Feedback{}).
		Select("feedbacks.class_id AS class_id, classes.name AS class_name, classes.style AS style, COUNT(*) AS count").
		Joins("JOIN classes ON classes.id = feedbacks.class_id").
		Group("feedbacks.class_id, classes.name, classes.style").
		Order("classes.name ASC")

	if userID := c.Query("userId"); userID != "" {
		query = query.Where("feedbacks.student_id = ?", userID)
	}

	var groups []FeedbackClassGroup
	if err := query.Scan(&groups).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении занятий",
		})
		return
	}
	if groups == nil {
		groups = []FeedbackClassGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

// @Summary		Занятия ученика с оценками
// @Description	То же самое, но userId обязателен
// @Tags			feedback
// @Produce		json
// @Param			userId	query		int	true	"ID ученика"
// @Success		200		{array}		FeedbackClassGroup		"Занятия"
// @Failure		400		{object}	response.ErrorResponse	"Нет userId (USER_ID_REQUIRED)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback/student-classes [get]
func GetStudentFeedbackClassesHandler(c *gin.Context) {
	if c.Query("userId") == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "USER_ID_REQUIRED",
			Message: "Не указан userId",
		})
		return
	}
	GetFeedbackClassesHandler(c)
}

// @Summary		Оценки по занятию
// @Tags			feedback
// @Produce		json
// @Param			classId	path		int	true	"ID занятия"
// @Success		200		{array}		FeedbackResponse		"Оценки"
// @Failure		404		{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/feedback/by-class/{classId} [get]
func GetFeedbacksByClassHandler(c *gin.Context) {
	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("classId")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	var feedbacks []models.Feedback
	if err := storage.DB.Preload("Class").
		Where("class_id = ?", cls.ID).
		Order("date DESC").
		Find(&feedbacks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении оценок",
		})
		return
	}

	result := make([]FeedbackResponse, 0, len(feedbacks))
	for _, fb := range feedbacks {
		result = append(result, feedbackToResponse(fb))
	}
	c.JSON(http.StatusOK, result)
}
