package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chatinsight/core/internal/models"
	"github.com/chatinsight/core/internal/pkg/jwt"
	"github.com/chatinsight/core/internal/store"
)

func authRouter(t *testing.T) (*gin.Engine, *jwt.Signer, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := store.NewMemory()
	user := &models.User{Email: "a@example.com", APIKey: "key-1", Role: models.RoleAdmin}
	require.NoError(t, mem.CreateUser(context.Background(), user))

	signer, err := jwt.NewSigner("secret")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", Auth(mem, signer, zap.NewNop()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c), "admin": IsAdmin(c)})
	})
	return r, signer, user
}

func get(r http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthAPIKey(t *testing.T) {
	r, _, user := authRouter(t)

	w := get(r, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")

	w = get(r, "X-API-Key", "wrong")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid API key")

	w = get(r, "X-API-Key", "key-1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.ID)
	assert.Contains(t, w.Body.String(), `"admin":true`)
}

func TestAuthBearer(t *testing.T) {
	r, signer, _ := authRouter(t)

	token, _, err := signer.Sign("u-42", string(models.RoleUser), time.Minute)
	require.NoError(t, err)

	w := get(r, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "u-42")
	assert.Contains(t, w.Body.String(), `"admin":false`)

	w = get(r, "Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("  Bearer abc "))
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter(2)
	now := time.Date(2024, 1, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := l.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, retry, _ := l.Allow(ctx, "1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 50*time.Second, retry)

	ok, _, _ = l.Allow(ctx, "5.6.7.8")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	ok, _, _ = l.Allow(ctx, "1.2.3.4")
	assert.True(t, ok)
}

func limitedRouter(t *testing.T, trusted []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(trusted))
	r.Use(RateLimit(NewMemoryLimiter(1), zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func sendFrom(r http.Handler, remote, forwarded string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	r := limitedRouter(t, nil)

	assert.Equal(t, http.StatusOK, sendFrom(r, "9.9.9.9:1000", "").Code)
	w := sendFrom(r, "9.9.9.9:1001", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, sendFrom(r, "8.8.8.8:1000", "").Code)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	r := limitedRouter(t, nil)

	assert.Equal(t, http.StatusOK, sendFrom(r, "9.9.9.9:1000", "1.1.1.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(r, "9.9.9.9:1000", "2.2.2.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(r, "9.9.9.9:1000", "3.3.3.3, 10.0.0.1").Code)
}

func TestRateLimitTrustedProxyForwardsClient(t *testing.T) {
	r := limitedRouter(t, []string{"10.0.0.0/8"})

	assert.Equal(t, http.StatusOK, sendFrom(r, "10.0.0.5:1000", "1.1.1.1").Code)
	assert.Equal(t, http.StatusOK, sendFrom(r, "10.0.0.5:1000", "2.2.2.2").Code)
	assert.Equal(t, http.StatusTooManyRequests, sendFrom(r, "10.0.0.6:1000", "1.1.1.1").Code)
}

func TestLoggerSetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "given")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "given", w.Header().Get(requestIDHeader))
}
