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

type ClassExceptionRequest struct {
	ClassID uint    `json:"classId" binding:"required"`
	Date    string  `json:"date" binding:"required"`
	Reason  *string `json:"reason"`
}

type ClassExceptionResponse struct {
	ID        uint      `json:"id"`
	ClassID   uint      `json:"classId"`
	Date      time.Time `json:"date"`
	Reason    *string   `json:"reason"`
	ClassName string    `json:"className"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// @Summary		Отмена дня занятия
// @Description	Создаёт отмену одного дня занятия; дата нормализуется к началу дня
// @Tags			class-exceptions
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			exception	body		ClassExceptionRequest	true	"Отмена"
// @Success		201			{object}	ClassExceptionResponse	"Созданная отмена"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_DATE)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		409			{object}	response.ErrorResponse	"Отмена на эту дату уже есть (EXCEPTION_EXISTS)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/class-exceptions [post]
func CreateClassExceptionHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var req ClassExceptionRequest
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

	// Храним только календарный день, без времени суток.
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Неверный формат даты",
		})
		return
	}

	var existing models.ClassException
	if err := storage.DB.Where("class_id = ? AND date = ?", cls.ID, date).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "EXCEPTION_EXISTS",
			Message: "Отмена на эту дату уже существует",
		})
		return
	}

	exception := models.ClassException{
		ClassID: cls.ID,
		Date:    date,
		Reason:  req.Reason,
	}
	if err := storage.DB.Create(&exception).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании отмены",
		})
		return
	}

	ws.NotifyCalendarChanged("exception", exception.ID)
	c.JSON(http.StatusCreated, ClassExceptionResponse{
		ID:        exception.ID,
		ClassID:   exception.ClassID,
		Date:      exception.Date,
		Reason:    exception.Reason,
		ClassName: cls.Name,
		CreatedAt: exception.CreatedAt,
		UpdatedAt: exception.UpdatedAt,
	})
}

// @Summary		Список отмен
// @Description	Отмены занятий, опционально по конкретному занятию
// @Tags			class-exceptions
// @Produce		json
// @Security		BearerAuth
// @Param			classId	query		int	false	"ID занятия"
// @Success		200		{array}		ClassExceptionResponse	"Отмены"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/class-exceptions [get]
func GetClassExceptionsHandler(c *gin.Context) {
	query := storage.DB.Preload("Class").Order("date ASC")
	if classID := c.Query("classId"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}

	var exceptions []models.ClassException
	if err := query.Find(&exceptions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении отмен",
		})
		return
	}

	result := make([]ClassExceptionResponse, 0, len(exceptions))
	for _, ex := range exceptions {
		result = append(result, ClassExceptionResponse{
			ID:        ex.ID,
			ClassID:   ex.ClassID,
			Date:      ex.Date,
			Reason:    ex.Reason,
			ClassName: ex.Class.Name,
			CreatedAt: ex.CreatedAt,
			UpdatedAt: ex.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, result)
}

// @Summary		Удаление отмены
// @Description	Удаляет отмену, день снова появляется в календаре
// @Tags			class-exceptions
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID отмены"
// @Success		200	{object}	response.SuccessResponse	"Отмена удалена"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Отмена не найдена (EXCEPTION_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/class-exceptions/{id} [delete]
func DeleteClassExceptionHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var exception models.ClassException
	if err := storage.DB.First(&exception, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "EXCEPTION_NOT_FOUND",
			Message: "Отмена не найдена",
		})
		return
	}

	if err := storage.DB.Delete(&exception).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении отмены",
		})
		return
	}

	ws.NotifyCalendarChanged("exception", exception.ID)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Отмена удалена"})
}
