package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"dance_school/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenClaims(t *testing.T) {
	secret := []byte("test-secret")

	signed, err := generateToken(7, models.RoleTeacher, time.Minute*15, secret)
	assert.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])
	assert.Equal(t, models.RoleTeacher, claims["role"])

	exp, ok := claims["exp"].(float64)
	assert.True(t, ok)
	assert.Greater(t, exp, float64(time.Now().Unix()))
}

func TestGenerateTokenWrongSecretRejected(t *testing.T) {
	signed, err := generateToken(1, models.RoleStudent, time.Minute, []byte("right"))
	assert.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	assert.Error(t, err)
	assert.False(t, token.Valid)
}

func TestGenerateTokenExpired(t *testing.T) {
	secret := []byte("test-secret")
	signed, err := generateToken(1, models.RoleStudent, -time.Minute, secret)
	assert.NoError(t, err)

	token, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	assert.Error(t, err)
	assert.False(t, token.Valid)
}

func testContextWithRole(role string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if role != "" {
		c.Set("role", role)
	}
	return c
}

func TestHasRole(t *testing.T) {
	c := testContextWithRole(models.RoleSecretary)
	assert.True(t, hasRole(c, models.RoleAdmin, models.RoleSecretary))
	assert.False(t, hasRole(c, models.RoleAdmin))

	// Анонимный запрос — роли нет вообще.
	anon := testContextWithRole("")
	assert.False(t, hasRole(anon, models.RoleAdmin, models.RoleSecretary, models.RoleTeacher, models.RoleStudent))
}

func TestUserToResponseOmitsPasswordHash(t *testing.T) {
	user := models.User{
		Name:         "Мария",
		Email:        "maria@dance.local",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		Role:         models.RoleTeacher,
	}
	user.ID = 3

	resp := userToResponse(user)
	assert.Equal(t, uint(3), resp.ID)
	assert.Equal(t, "maria@dance.local", resp.Email)
	assert.Equal(t, models.RoleTeacher, resp.Role)
}
