package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"palette/config"
	"palette/internal/auth"
)

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	config.GlobalConfig = &config.Config{
		JWT:  config.JWTConfig{Secret: "test-secret", AccessExpire: 3600},
		Auth: config.AuthConfig{BcryptCost: bcrypt.MinCost, MaxLoginFailures: 5, LockoutSeconds: 900},
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"email":   c.GetString(ContextEmail),
		})
	})
	return r
}

func doGet(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	r := setupAuthTest(t)

	w := doGet(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "missing bearer token")
}

func TestAuthMiddleware_MalformedScheme(t *testing.T) {
	r := setupAuthTest(t)

	for _, header := range []string{"Basic abc", "bearer x", "Bearertoken"} {
		w := doGet(r, header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", header)
		assert.Contains(t, w.Body.String(), "missing bearer token")
	}
}

func TestAuthMiddleware_InvalidToken(t *testing.T) {
	r := setupAuthTest(t)

	w := doGet(r, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	r := setupAuthTest(t)

	token, err := auth.GenerateToken("user-42", "a@b.com")
	require.NoError(t, err)

	w := doGet(r, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
	assert.Contains(t, w.Body.String(), "a@b.com")
}
