package handlers

import (
	"net/http"
	"strings"
	"time"

	"dance_school/internal/calendar"
	"dance_school/internal/models"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AttendanceRequest struct {
	ClassID   uint   `json:"classId" binding:"required"`
	StudentID uint   `json:"studentId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

type UpdateAttendanceRequest struct {
	Date   *string `json:"date"`
	Status *string `json:"status"`
}

type BulkAttendanceEntry struct {
	StudentID uint   `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

type BulkAttendanceRequest struct {
	ClassID uint                  `json:"classId" binding:"required"`
	Date    string                `json:"date" binding:"required"`
	Entries []BulkAttendanceEntry `json:"entries" binding:"required,min=1"`
}

type AttendanceResponse struct {
	ID        uint      `json:"id"`
	ClassID   uint      `json:"classId"`
	StudentID uint      `json:"studentId"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	ClassName string    `json:"className"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func attendanceToResponse(att models.Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:        att.ID,
		ClassID:   att.ClassID,
		StudentID: att.StudentID,
		Date:      att.Date,
		Status:    att.Status,
		ClassName: att.Class.Name,
		CreatedAt: att.CreatedAt,
		UpdatedAt: att.UpdatedAt,
	}
}

// @Summary		Список отметок посещаемости
// @Description	Отметки с фильтрами по занятию, ученику и диапазону дат
// @Tags			attendance
// @Produce		json
// @Param			classId		query		int		false	"ID занятия"
// @Param			studentId	query		int		false	"ID ученика"
// @Param			startDate	query		string	false	"Начало диапазона"
// @Param			endDate		query		string	false	"Конец диапазона"
// @Success		200			{array}		AttendanceResponse		"Отметки"
// @Failure		400			{object}	response.ErrorResponse	"Неверная дата (INVALID_DATE)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/attendance [get]
func GetAttendancesHandler(c *gin.Context) {
	query := storage.DB.Preload("Class").Order("date DESC")

	if classID := c.Query("classId"); classID != "" {
		query = query.Where("class_id = ?", classID)
	}
	if studentID := c.Query("studentId"); studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	if startDate := c.Query("startDate"); startDate != "" {
		parsed, err := calendar.ParseDate(startDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return
		}
		query = query.Where("date >= ?", parsed)
	}
	if endDate := c.Query("endDate"); endDate != "" {
		parsed, err := calendar.ParseDate(endDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты окончания",
			})
			return
		}
		query = query.Where("date <= ?", calendar.EndOfDay(parsed))
	}

	var attendances []models.Attendance
	if err := query.Find(&attendances).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении посещаемости",
		})
		return
	}

	result := make([]AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		result = append(result, attendanceToResponse(att))
	}
	c.JSON(http.StatusOK, result)
}

// @Summary		Отметка по ID
// @Tags			attendance
// @Produce		json
// @Param			id	path		int	true	"ID отметки"
// @Success		200	{object}	AttendanceResponse		"Отметка"
// @Failure		404	{object}	response.ErrorResponse	"Отметка не найдена (ATTENDANCE_NOT_FOUND)"
// @Router			/api/attendance/{id} [get]
func GetAttendanceHandler(c *gin.Context) {
	var att models.Attendance
	if err := storage.DB.Preload("Class").First(&att, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ATTENDANCE_NOT_FOUND",
			Message: "Отметка посещаемости не найдена",
		})
		return
	}
	c.JSON(http.StatusOK, attendanceToResponse(att))
}

// checkAttendanceRefs проверяет, что занятие и ученик существуют.
func checkAttendanceRefs(c *gin.Context, classID, studentID uint) (models.Class, bool) {
	var cls models.Class
	if err := storage.DB.First(&cls, classID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return cls, false
	}
	var student models.User
	if err := storage.DB.First(&student, studentID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return cls, false
	}
	return cls, true
}

// @Summary		Создание отметки
// @Tags			attendance
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			attendance	body		AttendanceRequest	true	"Отметка"
// @Success		201			{object}	AttendanceResponse		"Созданная отметка"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, INVALID_DATE)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Занятие или пользователь не найдены (CLASS_NOT_FOUND, USER_NOT_FOUND)"
// @Failure		409			{object}	response.ErrorResponse	"Отметка уже есть (ATTENDANCE_EXISTS)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/attendance [post]
func CreateAttendanceHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var req AttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	status := strings.ToLower(req.Status)
	if !models.ValidAttendanceStatus(status) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_STATUS",
			Message: "Статус должен быть present или absent",
		})
		return
	}

	cls, ok := checkAttendanceRefs(c, req.ClassID, req.StudentID)
	if !ok {
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

	var existing models.Attendance
	if err := storage.DB.Where("class_id = ? AND student_id = ? AND date = ?", req.ClassID, req.StudentID, date).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "ATTENDANCE_EXISTS",
			Message: "Отметка для этого ученика на эту дату уже существует",
		})
		return
	}

	att := models.Attendance{
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		Date:      date,
		Status:    status,
	}
	if err := storage.DB.Create(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании отметки",
		})
		return
	}

	att.Class = cls
	c.JSON(http.StatusCreated, attendanceToResponse(att))
}

// @Summary		Массовое создание отметок
// @Description	Отметки для нескольких учеников одного занятия на одну дату, в одной транзакции
// @Tags			attendance
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			attendance	body		BulkAttendanceRequest	true	"Отметки"
// @Success		201			{array}		AttendanceResponse		"Созданные отметки"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, INVALID_DATE)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		409			{object}	response.ErrorResponse	"Отметка уже есть (ATTENDANCE_EXISTS)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/attendance/bulk [post]
func CreateBulkAttendanceHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var req BulkAttendanceRequest
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

	created := make([]models.Attendance, 0, len(req.Entries))
	err = storage.DB.Transaction(func(tx *gorm.DB) error {
		for _, entry := range req.Entries {
			status := strings.ToLower(entry.Status)
			if !models.ValidAttendanceStatus(status) {
				c.JSON(http.StatusBadRequest, response.ErrorResponse{
					Code:    "INVALID_STATUS",
					Message: "Статус должен быть present или absent",
				})
				return gorm.ErrInvalidData
			}

			var existing models.Attendance
			if err := tx.Where("class_id = ? AND student_id = ? AND date = ?", req.ClassID, entry.StudentID, date).
				First(&existing).Error; err == nil {
				c.JSON(http.StatusConflict, response.ErrorResponse{
					Code:    "ATTENDANCE_EXISTS",
					Message: "Отметка для одного из учеников уже существует",
				})
				return gorm.ErrDuplicatedKey
			}

			att := models.Attendance{
				ClassID:   req.ClassID,
				StudentID: entry.StudentID,
				Date:      date,
				Status:    status,
			}
			if err := tx.Create(&att).Error; err != nil {
				c.JSON(http.StatusInternalServerError, response.ErrorResponse{
					Code:    "DB_ERROR",
					Message: "Ошибка при создании отметок",
				})
				return err
			}
			created = append(created, att)
		}
		return nil
	})
	if err != nil {
		// Ответ уже отправлен внутри транзакции.
		return
	}

	result := make([]AttendanceResponse, 0, len(created))
	for _, att := range created {
		att.Class = cls
		result = append(result, attendanceToResponse(att))
	}
	c.JSON(http.StatusCreated, result)
}

// @Summary		Обновление отметки
// @Tags			attendance
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id			path		int						true	"ID отметки"
// @Param			attendance	body		UpdateAttendanceRequest	true	"Изменяемые поля"
// @Success		200			{object}	AttendanceResponse		"Обновлённая отметка"
// @Failure		400			{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_STATUS, INVALID_DATE)"
// @Failure		403			{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse	"Отметка не найдена (ATTENDANCE_NOT_FOUND)"
// @Failure		500			{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/attendance/{id} [put]
func UpdateAttendanceHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var att models.Attendance
	if err := storage.DB.Preload("Class").First(&att, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ATTENDANCE_NOT_FOUND",
			Message: "Отметка посещаемости не найдена",
		})
		return
	}

	var req UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
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
		att.Date = date
	}
	if req.Status != nil {
		status := strings.ToLower(*req.Status)
		if !models.ValidAttendanceStatus(status) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_STATUS",
				Message: "Статус должен быть present или absent",
			})
			return
		}
		att.Status = status
	}

	if err := storage.DB.Save(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении отметки",
		})
		return
	}

	c.JSON(http.StatusOK, attendanceToResponse(att))
}

// @Summary		Удаление отметки
// @Tags			attendance
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID отметки"
// @Success		200	{object}	response.SuccessResponse	"Отметка удалена"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Отметка не найдена (ATTENDANCE_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/attendance/{id} [delete]
func DeleteAttendanceHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var att models.Attendance
	if err := storage.DB.First(&att, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "ATTENDANCE_NOT_FOUND",
			Message: "Отметка посещаемости не найдена",
		})
		return
	}

	if err := storage.DB.Delete(&att).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении отметки",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Отметка удалена"})
}
