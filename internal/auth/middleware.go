package auth

import (
	"net/http"
	"strings"

	"dance_school/internal/handlers"
	"dance_school/internal/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware проверяет валидность access токена
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "NO_AUTH_HEADER",
				Message: "Требуется авторизация",
			})
			c.Abort()
			return
		}

		userID, role, ok := parseAccessToken(authHeader)
		if !ok {
			c.JSON(http.StatusUnauthorized, response.ErrorResponse{
				Code:    "INVALID_TOKEN",
				Message: "Неверный или просроченный токен",
			})
			c.Abort()
			return
		}

		c.Set("userID", userID)
		c.Set("role", role)
		c.Next()
	}
}

// OptionalAuthMiddleware извлекает пользователя из токена, если он передан.
// Без токена запрос продолжается анонимно — календарь открыт всем,
// но запись ученика подсвечивается только для него.
func OptionalAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			if userID, role, ok := parseAccessToken(authHeader); ok {
				c.Set("userID", userID)
				c.Set("role", role)
			}
		}
		c.Next()
	}
}

func parseAccessToken(authHeader string) (userID uint, role string, ok bool) {
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return handlers.AccessSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}

	claims, claimsOk := token.Claims.(jwt.MapClaims)
	if !claimsOk {
		return 0, "", false
	}

	userIDFloat, idOk := claims["user_id"].(float64)
	if !idOk {
		return 0, "", false
	}
	role, _ = claims["role"].(string)

	return uint(userIDFloat), role, true
}
