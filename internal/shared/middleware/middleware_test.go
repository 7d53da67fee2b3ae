package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backoffice-backend/pkg/jwt"
)

func newEngine(tokens *jwt.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), Logger(), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	auth := r.Group("/private", AuthMiddleware(tokens))
	auth.GET("/me", func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	tokens := jwt.NewManager("secret")
	r := newEngine(tokens)
	userID := uuid.NewString()

	token, err := tokens.GenerateAccessToken(userID, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, rec.Body.String())

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req = httptest.NewRequest(http.MethodGet, "/private/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := newEngine(jwt.NewManager("secret"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(HeaderRequestID))
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")

	req = httptest.NewRequest(http.MethodGet, "/private/me", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
}
