package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newRouter(roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuth(testSecret)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRoles(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := CurrentUserID(c)
		c.String(http.StatusOK, id)
	})
	r.GET("/me", handlers...)
	return r
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	valid := jwt.MapClaims{
		"user_id": "u-1",
		"role":    RoleUser,
		"type":    "access",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}

	t.Run("accepts access token", func(t *testing.T) {
		w := doRequest(newRouter(), signToken(t, valid))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "u-1", w.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		w := doRequest(newRouter(), "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": "u-1", "type": "refresh", "exp": valid["exp"]}
		w := doRequest(newRouter(), signToken(t, claims))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := jwt.MapClaims{"user_id": "u-1", "type": "access", "exp": time.Now().Add(-time.Minute).Unix()}
		w := doRequest(newRouter(), signToken(t, claims))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("role mismatch is forbidden", func(t *testing.T) {
		w := doRequest(newRouter(RoleOrganizer, RoleAdmin), signToken(t, valid))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
