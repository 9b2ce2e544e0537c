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
	"gorm.io/datatypes"
)

type ClassRequest struct {
	Name            string                           `json:"name" binding:"required"`
	Description     string                           `json:"description" binding:"required"`
	TeacherID       uint                             `json:"teacherId" binding:"required"`
	Style           *string                          `json:"style"`
	Active          *bool                            `json:"active"`
	RecurringDays   []int                            `json:"recurringDays" binding:"required"`
	ScheduleTimes   map[string]calendar.ScheduleTime `json:"scheduleTimes" binding:"required"`
	StartDate       string                           `json:"startDate" binding:"required"`
	EndDate         *string                          `json:"endDate"`
	BackgroundColor *string                          `json:"backgroundColor"`
	BorderColor     *string                          `json:"borderColor"`
}

type UpdateClassRequest struct {
	Name            *string                          `json:"name"`
	Description     *string                          `json:"description"`
	TeacherID       *uint                            `json:"teacherId"`
	Style           *string                          `json:"style"`
	Active          *bool                            `json:"active"`
	RecurringDays   []int                            `json:"recurringDays"`
	ScheduleTimes   map[string]calendar.ScheduleTime `json:"scheduleTimes"`
	StartDate       *string                          `json:"startDate"`
	EndDate         *string                          `json:"endDate"`
	BackgroundColor *string                          `json:"backgroundColor"`
	BorderColor     *string                          `json:"borderColor"`
}

type ClassResponse struct {
	ID              uint                             `json:"id"`
	Name            string                           `json:"name"`
	Description     string                           `json:"description"`
	TeacherID       uint                             `json:"teacherId"`
	Style           *string                          `json:"style"`
	Active          bool                             `json:"active"`
	RecurringDays   []int                            `json:"recurringDays"`
	ScheduleTimes   map[string]calendar.ScheduleTime `json:"scheduleTimes"`
	StartDate       time.Time                        `json:"startDate"`
	EndDate         *time.Time                       `json:"endDate"`
	BackgroundColor *string                          `json:"backgroundColor,omitempty"`
	BorderColor     *string                          `json:"borderColor,omitempty"`
	AttendanceCount int64                            `json:"attendanceCount,omitempty"`
	StudentsCount   int64                            `json:"studentsCount,omitempty"`
	CreatedAt       time.Time                        `json:"createdAt"`
	UpdatedAt       time.Time                        `json:"updatedAt"`
}

func classToResponse(cls models.Class) ClassResponse {
	return ClassResponse{
		ID:              cls.ID,
		Name:            cls.Name,
		Description:     cls.Description,
		TeacherID:       cls.TeacherID,
		Style:           cls.Style,
		Active:          cls.Active,
		RecurringDays:   []int(cls.RecurringDays),
		ScheduleTimes:   cls.ScheduleTimes.Data(),
		StartDate:       cls.StartDate,
		EndDate:         cls.EndDate,
		BackgroundColor: cls.BackgroundColor,
		BorderColor:     cls.BorderColor,
		CreatedAt:       cls.CreatedAt,
		UpdatedAt:       cls.UpdatedAt,
	}
}

// validateRecurrence проверяет поля повторяемости при создании и обновлении занятия.
func validateRecurrence(c *gin.Context, recurringDays []int, scheduleTimes map[string]calendar.ScheduleTime) bool {
	if !calendar.ValidateRecurringDays(recurringDays) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_RECURRING_DAYS",
			Message: "Дни недели должны быть числами от 0 (воскресенье) до 6 (суббота)",
		})
		return false
	}
	if !calendar.ValidateScheduleTimes(scheduleTimes, recurringDays) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_SCHEDULE_TIMES",
			Message: "Для каждого дня повторения должно быть задано время startTime/endTime в формате HH:MM",
		})
		return false
	}
	return true
}

// @Summary		Список занятий
// @Description	Все занятия со счётчиками посещаемости и записанных учеников
// @Tags			classes
// @Produce		json
// @Success		200	{array}		ClassResponse			"Список занятий"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes [get]
func GetClassesHandler(c *gin.Context) {
	var classes []models.Class
	if err := storage.DB.Order("created_at DESC").Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении занятий",
		})
		return
	}

	result := make([]ClassResponse, 0, len(classes))
	for _, cls := range classes {
		item := classToResponse(cls)
		storage.DB.Model(&models.Attendance{}).Where("class_id = ?", cls.ID).Count(&item.AttendanceCount)
		storage.DB.Model(&models.ClassStudent{}).Where("class_id = ?", cls.ID).Count(&item.StudentsCount)
		result = append(result, item)
	}

	c.JSON(http.StatusOK, result)
}

type ClassStudentResponse struct {
	ID           uint          `json:"id"`
	StudentID    uint          `json:"studentId"`
	Student      *UserResponse `json:"student"`
	RegisteredAt time.Time     `json:"registeredAt"`
}

type AttendanceShortResponse struct {
	ID        uint      `json:"id"`
	StudentID uint      `json:"studentId"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
}

type ClassDetailsResponse struct {
	ClassResponse
	Attendance []AttendanceShortResponse `json:"attendance"`
	Students   []ClassStudentResponse    `json:"students"`
}

// @Summary		Занятие по ID
// @Description	Занятие с посещаемостью и списком записанных учеников
// @Tags			classes
// @Produce		json
// @Param			id	path		int	true	"ID занятия"
// @Success		200	{object}	ClassDetailsResponse	"Занятие"
// @Failure		404	{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id} [get]
func GetClassHandler(c *gin.Context) {
	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	var attendance []models.Attendance
	if err := storage.DB.Where("class_id = ?", cls.ID).Order("date DESC").Find(&attendance).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении посещаемости",
		})
		return
	}

	var registrations []models.ClassStudent
	if err := storage.DB.Preload("Student").Where("class_id = ?", cls.ID).Find(&registrations).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении списка учеников",
		})
		return
	}

	details := ClassDetailsResponse{
		ClassResponse: classToResponse(cls),
		Attendance:    make([]AttendanceShortResponse, 0, len(attendance)),
		Students:      make([]ClassStudentResponse, 0, len(registrations)),
	}
	details.AttendanceCount = int64(len(attendance))
	details.StudentsCount = int64(len(registrations))

	for _, att := range attendance {
		details.Attendance = append(details.Attendance, AttendanceShortResponse{
			ID:        att.ID,
			StudentID: att.StudentID,
			Date:      att.Date,
			Status:    att.Status,
		})
	}
	for _, reg := range registrations {
		item := ClassStudentResponse{
			ID:           reg.ID,
			StudentID:    reg.StudentID,
			RegisteredAt: reg.CreatedAt,
		}
		if reg.Student.ID != 0 {
			student := userToResponse(reg.Student)
			item.Student = &student
		}
		details.Students = append(details.Students, item)
	}

	c.JSON(http.StatusOK, details)
}

// @Summary		Создание занятия
// @Description	Создание занятия с недельной повторяемостью
// @Tags			classes
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			class	body		ClassRequest	true	"Данные занятия"
// @Success		201		{object}	ClassResponse			"Созданное занятие"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_RECURRING_DAYS, INVALID_SCHEDULE_TIMES, INVALID_DATE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes [post]
func CreateClassHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var req ClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if !validateRecurrence(c, req.RecurringDays, req.ScheduleTimes) {
		return
	}

	startDate, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Неверный формат даты начала",
		})
		return
	}

	var endDate *time.Time
	if req.EndDate != nil && *req.EndDate != "" {
		parsed, err := calendar.ParseDate(*req.EndDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты окончания",
			})
			return
		}
		if parsed.Before(startDate) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Дата окончания не может быть раньше даты начала",
			})
			return
		}
		endDate = &parsed
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	cls := models.Class{
		Name:            req.Name,
		Description:     req.Description,
		TeacherID:       req.TeacherID,
		Style:           req.Style,
		Active:          active,
		RecurringDays:   datatypes.NewJSONSlice(req.RecurringDays),
		ScheduleTimes:   datatypes.NewJSONType(req.ScheduleTimes),
		StartDate:       startDate,
		EndDate:         endDate,
		BackgroundColor: req.BackgroundColor,
		BorderColor:     req.BorderColor,
	}
	if err := storage.DB.Create(&cls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании занятия",
		})
		return
	}

	ws.NotifyCalendarChanged("class", cls.ID)
	c.JSON(http.StatusCreated, classToResponse(cls))
}

// @Summary		Обновление занятия
// @Tags			classes
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int					true	"ID занятия"
// @Param			class	body		UpdateClassRequest	true	"Изменяемые поля"
// @Success		200		{object}	ClassResponse			"Обновлённое занятие"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_RECURRING_DAYS, INVALID_SCHEDULE_TIMES, INVALID_DATE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404		{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id} [put]
func UpdateClassHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	var req UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	// Повторяемость валидируется против итогового набора дней.
	finalDays := []int(cls.RecurringDays)
	if req.RecurringDays != nil {
		finalDays = req.RecurringDays
	}
	finalTimes := cls.ScheduleTimes.Data()
	if req.ScheduleTimes != nil {
		finalTimes = req.ScheduleTimes
	}
	if req.RecurringDays != nil || req.ScheduleTimes != nil {
		if !validateRecurrence(c, finalDays, finalTimes) {
			return
		}
		cls.RecurringDays = datatypes.NewJSONSlice(finalDays)
		cls.ScheduleTimes = datatypes.NewJSONType(finalTimes)
	}

	if req.Name != nil {
		cls.Name = *req.Name
	}
	if req.Description != nil {
		cls.Description = *req.Description
	}
	if req.TeacherID != nil {
		cls.TeacherID = *req.TeacherID
	}
	if req.Style != nil {
		cls.Style = req.Style
	}
	if req.Active != nil {
		cls.Active = *req.Active
	}
	if req.BackgroundColor != nil {
		cls.BackgroundColor = req.BackgroundColor
	}
	if req.BorderColor != nil {
		cls.BorderColor = req.BorderColor
	}
	if req.StartDate != nil {
		parsed, err := calendar.ParseDate(*req.StartDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_DATE",
				Message: "Неверный формат даты начала",
			})
			return
		}
		cls.StartDate = parsed
	}
	if req.EndDate != nil {
		if *req.EndDate == "" {
			cls.EndDate = nil
		} else {
			parsed, err := calendar.ParseDate(*req.EndDate)
			if err != nil {
				c.JSON(http.StatusBadRequest, response.ErrorResponse{
					Code:    "INVALID_DATE",
					Message: "Неверный формат даты окончания",
				})
				return
			}
			cls.EndDate = &parsed
		}
	}
	if cls.EndDate != nil && cls.EndDate.Before(cls.StartDate) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_DATE",
			Message: "Дата окончания не может быть раньше даты начала",
		})
		return
	}

	if err := storage.DB.Save(&cls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении занятия",
		})
		return
	}

	ws.NotifyCalendarChanged("class", cls.ID)
	c.JSON(http.StatusOK, classToResponse(cls))
}

// @Summary		Удаление занятия
// @Tags			classes
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID занятия"
// @Success		200	{object}	response.SuccessResponse	"Занятие удалено"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id} [delete]
func DeleteClassHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	if err := storage.DB.Delete(&cls).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении занятия",
		})
		return
	}

	ws.NotifyCalendarChanged("class", cls.ID)
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Занятие удалено"})
}

type RegisterStudentRequest struct {
	StudentID uint `json:"studentId" binding:"required"`
}

// @Summary		Запись ученика на занятие
// @Tags			classes
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int						true	"ID занятия"
// @Param			student	body		RegisterStudentRequest	true	"ID ученика"
// @Success		201		{object}	ClassStudentResponse	"Запись создана"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, NOT_A_STUDENT)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404		{object}	response.ErrorResponse	"Занятие или пользователь не найдены (CLASS_NOT_FOUND, USER_NOT_FOUND)"
// @Failure		409		{object}	response.ErrorResponse	"Ученик уже записан (ALREADY_REGISTERED)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id}/students [post]
func RegisterStudentHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var req RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	var student models.User
	if err := storage.DB.First(&student, req.StudentID).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}
	if student.Role != models.RoleStudent {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "NOT_A_STUDENT",
			Message: "Записать на занятие можно только ученика",
		})
		return
	}

	var existing models.ClassStudent
	if err := storage.DB.Where("class_id = ? AND student_id = ?", cls.ID, student.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "ALREADY_REGISTERED",
			Message: "Ученик уже записан на это занятие",
		})
		return
	}

	registration := models.ClassStudent{
		ClassID:   cls.ID,
		StudentID: student.ID,
	}
	if err := storage.DB.Create(&registration).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при записи ученика",
		})
		return
	}

	studentResp := userToResponse(student)
	c.JSON(http.StatusCreated, ClassStudentResponse{
		ID:           registration.ID,
		StudentID:    registration.StudentID,
		Student:      &studentResp,
		RegisteredAt: registration.CreatedAt,
	})
}

// @Summary		Снятие ученика с занятия
// @Tags			classes
// @Produce		json
// @Security		BearerAuth
// @Param			id			path		int	true	"ID занятия"
// @Param			studentId	path		int	true	"ID ученика"
// @Success		200			{object}	response.SuccessResponse	"Запись удалена"
// @Failure		403			{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404			{object}	response.ErrorResponse		"Запись не найдена (REGISTRATION_NOT_FOUND)"
// @Failure		500			{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id}/students/{studentId} [delete]
func RemoveStudentHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher) {
		forbidden(c)
		return
	}

	var registration models.ClassStudent
	if err := storage.DB.Where("class_id = ? AND student_id = ?", c.Param("id"), c.Param("studentId")).
		First(&registration).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "REGISTRATION_NOT_FOUND",
			Message: "Запись ученика на занятие не найдена",
		})
		return
	}

	if err := storage.DB.Delete(&registration).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении записи",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Запись ученика удалена"})
}

// @Summary		Ученики, ещё не записанные на занятие
// @Tags			classes
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID занятия"
// @Success		200	{array}		UserResponse			"Доступные ученики"
// @Failure		404	{object}	response.ErrorResponse	"Занятие не найдено (CLASS_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/classes/{id}/available-students [get]
func GetAvailableStudentsHandler(c *gin.Context) {
	var cls models.Class
	if err := storage.DB.First(&cls, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "CLASS_NOT_FOUND",
			Message: "Занятие не найдено",
		})
		return
	}

	var students []models.User
	subquery := storage.DB.Model(&models.ClassStudent{}).Select("student_id").Where("class_id = ?", cls.ID)
	if err := storage.DB.Where("role = ?", models.RoleStudent).
		Where("id NOT IN (?)", subquery).
		Order("name ASC").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении списка учеников",
		})
		return
	}

	result := make([]UserResponse, 0, len(students))
	for _, student := range students {
		result = append(result, userToResponse(student))
	}
	c.JSON(http.StatusOK, result)
}
