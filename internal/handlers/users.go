package handlers

import (
	"net/http"
	"strings"

	"dance_school/internal/models"
	"dance_school/internal/pagination"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Name     *string `json:"name"`
	Role     *string `json:"role"`
}

type UserListResponse struct {
	Data       []UserResponse  `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

// @Summary		Список пользователей
// @Description	Список пользователей с пагинацией, фильтром по роли и поиском по имени и email
// @Tags			users
// @Produce		json
// @Security		BearerAuth
// @Param			page	query		int		false	"Номер страницы"
// @Param			limit	query		int		false	"Размер страницы"
// @Param			role	query		string	false	"Фильтр по роли"
// @Param			search	query		string	false	"Поиск по имени или email"
// @Success		200		{object}	UserListResponse		"Список пользователей"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/users [get]
func GetUsersHandler(c *gin.Context) {
	p := pagination.FromQuery(c, 10)

	query := storage.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении пользователей",
		})
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").Offset(p.Offset).Limit(p.Limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении пользователей",
		})
		return
	}

	data := make([]UserResponse, 0, len(users))
	for _, user := range users {
		data = append(data, userToResponse(user))
	}

	c.JSON(http.StatusOK, UserListResponse{
		Data:       data,
		Pagination: pagination.NewMeta(total, p),
	})
}

// @Summary		Пользователь по ID
// @Tags			users
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID пользователя"
// @Success		200	{object}	UserResponse			"Данные пользователя"
// @Failure		404	{object}	response.ErrorResponse	"Пользователь не найден (USER_NOT_FOUND)"
// @Router			/api/users/{id} [get]
func GetUserHandler(c *gin.Context) {
	var user models.User
	if err := storage.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

// @Summary		Создание пользователя
// @Description	Создание пользователя администратором или секретарём
// @Tags			users
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			user	body		CreateUserRequest	true	"Данные пользователя"
// @Success		201		{object}	UserResponse			"Созданный пользователь"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_ROLE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		409		{object}	response.ErrorResponse	"Email уже используется (EMAIL_EXISTS)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (PASSWORD_HASH_ERROR, DB_ERROR)"
// @Router			/api/users [post]
func CreateUserHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	role := strings.ToLower(req.Role)
	if !models.ValidRole(role) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "INVALID_ROLE",
			Message: "Неизвестная роль пользователя",
		})
		return
	}

	var existing models.User
	if err := storage.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, response.ErrorResponse{
			Code:    "EMAIL_EXISTS",
			Message: "Пользователь с таким email уже существует",
		})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "PASSWORD_HASH_ERROR",
			Message: "Ошибка при хешировании пароля",
		})
		return
	}

	user := models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}
	if err := storage.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании пользователя",
		})
		return
	}

	c.JSON(http.StatusCreated, userToResponse(user))
}

// @Summary		Обновление пользователя
// @Tags			users
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int					true	"ID пользователя"
// @Param			user	body		UpdateUserRequest	true	"Изменяемые поля"
// @Success		200		{object}	UserResponse			"Обновлённый пользователь"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR, INVALID_ROLE)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404		{object}	response.ErrorResponse	"Пользователь не найден (USER_NOT_FOUND)"
// @Failure		409		{object}	response.ErrorResponse	"Email уже используется (EMAIL_EXISTS)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (PASSWORD_HASH_ERROR, DB_ERROR)"
// @Router			/api/users/{id} [put]
func UpdateUserHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if req.Email != nil {
		var existing models.User
		if err := storage.DB.Where("email = ? AND id <> ?", *req.Email, user.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, response.ErrorResponse{
				Code:    "EMAIL_EXISTS",
				Message: "Пользователь с таким email уже существует",
			})
			return
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Role != nil {
		role := strings.ToLower(*req.Role)
		if !models.ValidRole(role) {
			c.JSON(http.StatusBadRequest, response.ErrorResponse{
				Code:    "INVALID_ROLE",
				Message: "Неизвестная роль пользователя",
			})
			return
		}
		user.Role = role
	}
	if req.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "PASSWORD_HASH_ERROR",
				Message: "Ошибка при хешировании пароля",
			})
			return
		}
		user.PasswordHash = string(hashedPassword)
	}

	if err := storage.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении пользователя",
		})
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

// @Summary		Удаление пользователя
// @Tags			users
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID пользователя"
// @Success		200	{object}	response.SuccessResponse	"Пользователь удалён"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Пользователь не найден (USER_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/users/{id} [delete]
func DeleteUserHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin) {
		forbidden(c)
		return
	}

	var user models.User
	if err := storage.DB.First(&user, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "USER_NOT_FOUND",
			Message: "Пользователь не найден",
		})
		return
	}

	if err := storage.DB.Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении пользователя",
		})
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Пользователь удалён"})
}

type UserCountsResponse struct {
	Students    int64 `json:"students"`
	Teachers    int64 `json:"teachers"`
	Secretaries int64 `json:"secretaries"`
	Admins      int64 `json:"admins"`
	Total       int64 `json:"total"`
}

// @Summary		Количество пользователей по ролям
// @Tags			users
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	UserCountsResponse		"Счётчики по ролям"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/users/count [get]
func GetUserCountsHandler(c *gin.Context) {
	var counts UserCountsResponse
	rows := []struct {
		role string
		dst  *int64
	}{
		{models.RoleStudent, &counts.Students},
		{models.RoleTeacher, &counts.Teachers},
		{models.RoleSecretary, &counts.Secretaries},
		{models.RoleAdmin, &counts.Admins},
	}
	for _, row := range rows {
		if err := storage.DB.Model(&models.User{}).Where("role = ?", row.role).Count(row.dst).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Message: "Ошибка при подсчёте пользователей",
			})
			return
		}
	}
	counts.Total = counts.Students + counts.Teachers + counts.Secretaries + counts.Admins

	c.JSON(http.StatusOK, counts)
}
