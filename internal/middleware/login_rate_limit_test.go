package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bank-dashboard/internal/logging"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLoginLimiter(t *testing.T, maxPerMin int) (*echo.Echo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		cache.Close()
		mr.Close()
	})

	e := echo.New()
	e.POST("/users/login", func(c echo.Context) error {
		var body struct {
			Username string `json:"username"`
		}
		if err := c.Bind(&body); err != nil {
			return err
		}
		return c.String(http.StatusOK, body.Username)
	}, LoginRateLimit(cache, maxPerMin, logging.Discard()))

	return e, mr
}

func login(e *echo.Echo, username string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/users/login", strings.NewReader(`{"username":"`+username+`","password":"x"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestLoginRateLimit_BlocksAfterLimit(t *testing.T) {
	e, mr := setupLoginLimiter(t, 2)

	first := login(e, "alice")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "alice", first.Body.String(), "body must still be readable downstream")

	assert.Equal(t, http.StatusOK, login(e, "Alice").Code)
	assert.Equal(t, http.StatusTooManyRequests, login(e, "alice").Code)

	// Other usernames have their own window.
	assert.Equal(t, http.StatusOK, login(e, "bob").Code)

	ttl := mr.TTL(loginRateLimitPrefix + "user:alice")
	assert.Greater(t, ttl.Seconds(), 0.0)
}

func TestLoginRateLimit_WindowExpires(t *testing.T) {
	e, mr := setupLoginLimiter(t, 1)

	assert.Equal(t, http.StatusOK, login(e, "carol").Code)
	assert.Equal(t, http.StatusTooManyRequests, login(e, "carol").Code)

	mr.FastForward(61 * time.Second)

	assert.Equal(t, http.StatusOK, login(e, "carol").Code)
}

func TestLoginRateLimit_FailsOpen(t *testing.T) {
	e, mr := setupLoginLimiter(t, 1)
	mr.Close()

	assert.Equal(t, http.StatusOK, login(e, "dave").Code)
	assert.Equal(t, http.StatusOK, login(e, "dave").Code)
}

func TestLoginRateLimit_NilClient(t *testing.T) {
	e := echo.New()
	e.POST("/users/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, LoginRateLimit(nil, 1, logging.Discard()))

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, login(e, "erin").Code)
	}
}
