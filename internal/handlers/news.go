package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dance_school/internal/models"
	"dance_school/internal/pagination"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
)

const latestNewsCacheKey = "news_latest"

type NewsRequest struct {
	Title    string  `json:"title" binding:"required"`
	Content  string  `json:"content" binding:"required"`
	Author   *string `json:"author"`
	ImageURL *string `json:"imageUrl"`
}

type UpdateNewsRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Author   *string `json:"author"`
	ImageURL *string `json:"imageUrl"`
}

type NewsResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishedAt time.Time `json:"publishedAt"`
	Author      *string   `json:"author,omitempty"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type NewsListResponse struct {
	Data       []NewsResponse  `json:"data"`
	Pagination pagination.Meta `json:"pagination"`
}

func newsToResponse(n models.News) NewsResponse {
	return NewsResponse{
		ID:          n.ID,
		Title:       n.Title,
		Content:     n.Content,
		PublishedAt: n.PublishedAt,
		Author:      n.Author,
		ImageURL:    n.ImageURL,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func invalidateLatestNewsCache() {
	if storage.RedisClient == nil {
		return
	}
	ctx := context.Background()
	keys, err := storage.RedisClient.Keys(ctx, latestNewsCacheKey+"_*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	storage.RedisClient.Del(ctx, keys...)
}

// @Summary		Список новостей
// @Description	Новости школы, свежие первыми, с пагинацией
// @Tags			news
// @Produce		json
// @Param			page	query		int	false	"Номер страницы"
// @Param			limit	query		int	false	"Размер страницы"
// @Success		200		{object}	NewsListResponse		"Новости"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/news [get]
func GetNewsListHandler(c *gin.Context) {
	p := pagination.FromQuery(c, 10)

	var total int64
	if err := storage.DB.Model(&models.News{}).Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при подсчёте новостей",
		})
		return
	}

	var news []models.News
	if err := storage.DB.Order("published_at DESC").
		Offset(p.Offset).Limit(p.Limit).
		Find(&news).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении новостей",
		})
		return
	}

	result := make([]NewsResponse, 0, len(news))
	for _, n := range news {
		result = append(result, newsToResponse(n))
	}
	c.JSON(http.StatusOK, NewsListResponse{
		Data:       result,
		Pagination: pagination.NewMeta(total, p),
	})
}

// @Summary		Новость по ID
// @Tags			news
// @Produce		json
// @Param			id	path		int	true	"ID новости"
// @Success		200	{object}	NewsResponse			"Новость"
// @Failure		404	{object}	response.ErrorResponse	"Новость не найдена (NEWS_NOT_FOUND)"
// @Router			/api/news/{id} [get]
func GetNewsHandler(c *gin.Context) {
	var n models.News
	if err := storage.DB.First(&n, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NEWS_NOT_FOUND",
			Message: "Новость не найдена",
		})
		return
	}
	c.JSON(http.StatusOK, newsToResponse(n))
}

// @Summary		Поиск новостей
// @Description	Поиск по заголовку и тексту, без учёта регистра
// @Tags			news
// @Produce		json
// @Param			query	query		string	true	"Поисковый запрос"
// @Success		200		{array}		NewsResponse			"Найденные новости"
// @Failure		400		{object}	response.ErrorResponse	"Пустой запрос (QUERY_REQUIRED)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/news/search [get]
func SearchNewsHandler(c *gin.Context) {
	q := c.Query("query")
	if q == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "QUERY_REQUIRED",
			Message: "Не указан поисковый запрос",
		})
		return
	}

	pattern := "%" + q + "%"
	var news []models.News
	if err := storage.DB.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern).
		Order("published_at DESC").
		Find(&news).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при поиске новостей",
		})
		return
	}

	result := make([]NewsResponse, 0, len(news))
	for _, n := range news {
		result = append(result, newsToResponse(n))
	}
	c.JSON(http.StatusOK, result)
}

// @Summary		Последние новости
// @Description	Несколько последних новостей для главной страницы, кешируются в Redis
// @Tags			news
// @Produce		json
// @Param			limit	query		int	false	"Сколько новостей вернуть (по умолчанию 5)"
// @Success		200		{array}		NewsResponse			"Новости"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/news/latest [get]
func GetLatestNewsHandler(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	cacheKey := latestNewsCacheKey + "_" + strconv.Itoa(limit)
	ctx := context.Background()
	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, cacheKey).Result(); err == nil {
			var result []NewsResponse
			if json.Unmarshal([]byte(cached), &result) == nil {
				c.JSON(http.StatusOK, result)
				return
			}
		}
	}

	var news []models.News
	if err := storage.DB.Order("published_at DESC").Limit(limit).Find(&news).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении новостей",
		})
		return
	}

	result := make([]NewsResponse, 0, len(news))
	for _, n := range news {
		result = append(result, newsToResponse(n))
	}

	if storage.RedisClient != nil {
		if payload, err := json.Marshal(result); err == nil {
			storage.RedisClient.Set(ctx, cacheKey, payload, 5*time.Minute)
		}
	}

	c.JSON(http.StatusOK, result)
}

// @Summary		Создание новости
// @Tags			news
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			news	body		NewsRequest	true	"Новость"
// @Success		201		{object}	NewsResponse			"Созданная новость"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/news [post]
func CreateNewsHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var req NewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	n := models.News{
		Title:       req.Title,
		Content:     req.Content,
		PublishedAt: time.Now(),
		Author:      req.Author,
		ImageURL:    req.ImageURL,
	}
	if err := storage.DB.Create(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при создании новости",
		})
		return
	}

	invalidateLatestNewsCache()
	c.JSON(http.StatusCreated, newsToResponse(n))
}

// @Summary		Обновление новости
// @Tags			news
// @Accept			json
// @Produce		json
// @Security		BearerAuth
// @Param			id		path		int					true	"ID новости"
// @Param			news	body		UpdateNewsRequest	true	"Изменяемые поля"
// @Success		200		{object}	NewsResponse			"Обновлённая новость"
// @Failure		400		{object}	response.ErrorResponse	"Ошибка валидации (VALIDATION_ERROR)"
// @Failure		403		{object}	response.ErrorResponse	"Недостаточно прав (FORBIDDEN)"
// @Failure		404		{object}	response.ErrorResponse	"Новость не найдена (NEWS_NOT_FOUND)"
// @Failure		500		{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/news/{id} [put]
func UpdateNewsHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var n models.News
	if err := storage.DB.First(&n, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NEWS_NOT_FOUND",
			Message: "Новость не найдена",
		})
		return
	}

	var req UpdateNewsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse{
			Code:    "VALIDATION_ERROR",
			Message: "Ошибка валидации данных",
			Details: err.Error(),
		})
		return
	}

	if req.Title != nil {
		n.Title = *req.Title
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.Author != nil {
		n.Author = req.Author
	}
	if req.ImageURL != nil {
		n.ImageURL = req.ImageURL
	}

	if err := storage.DB.Save(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при обновлении новости",
		})
		return
	}

	invalidateLatestNewsCache()
	c.JSON(http.StatusOK, newsToResponse(n))
}

// @Summary		Удаление новости
// @Tags			news
// @Produce		json
// @Security		BearerAuth
// @Param			id	path		int	true	"ID новости"
// @Success		200	{object}	response.SuccessResponse	"Новость удалена"
// @Failure		403	{object}	response.ErrorResponse		"Недостаточно прав (FORBIDDEN)"
// @Failure		404	{object}	response.ErrorResponse		"Новость не найдена (NEWS_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Ошибка сервера (DB_ERROR)"
// @Router			/api/news/{id} [delete]
func DeleteNewsHandler(c *gin.Context) {
	if !hasRole(c, models.RoleAdmin, models.RoleSecretary) {
		forbidden(c)
		return
	}

	var n models.News
	if err := storage.DB.First(&n, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, response.ErrorResponse{
			Code:    "NEWS_NOT_FOUND",
			Message: "Новость не найдена",
		})
		return
	}

	if err := storage.DB.Delete(&n).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при удалении новости",
		})
		return
	}

	invalidateLatestNewsCache()
	c.JSON(http.StatusOK, response.SuccessResponse{Message: "Новость удалена"})
}
