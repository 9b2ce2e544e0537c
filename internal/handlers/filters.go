package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dance_school/internal/models"
	"dance_school/internal/response"
	"dance_school/internal/storage"

	"github.com/gin-gonic/gin"
)

const filtersCacheTTL = time.Hour

// cachedStrings отдаёт список строк из Redis или, при промахе, из loader с записью в кеш.
func cachedStrings(key string, loader func() ([]string, error)) ([]string, error) {
	ctx := context.Background()
	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, key).Result(); err == nil {
			var values []string
			if json.Unmarshal([]byte(cached), &values) == nil {
				return values, nil
			}
		}
	}

	values, err := loader()
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}

	if storage.RedisClient != nil {
		if payload, err := json.Marshal(values); err == nil {
			storage.RedisClient.Set(ctx, key, payload, filtersCacheTTL)
		}
	}
	return values, nil
}

// @Summary		Стили занятий
// @Description	Уникальные стили для фильтров, кешируются в Redis
// @Tags			filters
// @Produce		json
// @Success		200	{array}		string					"Стили"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/filters/styles [get]
func GetStylesFilterHandler(c *gin.Context) {
	values, err := cachedStrings("filters_styles", func() ([]string, error) {
		var styles []string
		err := storage.DB.Model(&models.Class{}).
			Distinct("style").
			Where("style IS NOT NULL").
			Order("style ASC").
			Pluck("style", &styles).Error
		return styles, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении стилей",
		})
		return
	}
	c.JSON(http.StatusOK, values)
}

// @Summary		Названия занятий
// @Description	Уникальные названия занятий для фильтров, кешируются в Redis
// @Tags			filters
// @Produce		json
// @Success		200	{array}		string					"Названия"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/filters/class-names [get]
func GetClassNamesFilterHandler(c *gin.Context) {
	values, err := cachedStrings("filters_class_names", func() ([]string, error) {
		var names []string
		err := storage.DB.Model(&models.Class{}).
			Distinct("name").
			Order("name ASC").
			Pluck("name", &names).Error
		return names, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении названий занятий",
		})
		return
	}
	c.JSON(http.StatusOK, values)
}

// @Summary		Годы с оценками
// @Description	Годы, за которые есть оценки, по возрастанию; кешируются в Redis
// @Tags			filters
// @Produce		json
// @Success		200	{array}		int						"Годы"
// @Failure		500	{object}	response.ErrorResponse	"Ошибка сервера (DB_ERROR)"
// @Router			/api/filters/feedback-years [get]
func GetFeedbackYearsFilterHandler(c *gin.Context) {
	ctx := context.Background()
	const cacheKey = "filters_feedback_years"

	if storage.RedisClient != nil {
		if cached, err := storage.RedisClient.Get(ctx, cacheKey).Result(); err == nil {
			var years []int
			if json.Unmarshal([]byte(cached), &years) == nil {
				c.JSON(http.StatusOK, years)
				return
			}
		}
	}

	var years []int
	if err := storage.DB.Model(&models.Feedback{}).
		Distinct("EXTRACT(YEAR FROM date)::int").
		Order("EXTRACT(YEAR FROM date)::int ASC").
		Pluck("EXTRACT(YEAR FROM date)::int", &years).Error; err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Message: "Ошибка при получении годов",
		})
		return
	}
	if years == nil {
		years = []int{}
	}

	if storage.RedisClient != nil {
		if payload, err := json.Marshal(years); err == nil {
			storage.RedisClient.Set(ctx, cacheKey, payload, filtersCacheTTL)
		}
	}

	c.JSON(http.StatusOK, years)
}
