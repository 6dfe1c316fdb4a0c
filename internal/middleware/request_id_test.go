package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRequestID(t *testing.T) {
	e := echo.New()

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		var seen string
		handler := RequestID()(func(c echo.Context) error {
			seen = GetTraceID(c)
			return c.NoContent(http.StatusOK)
		})

		assert.NoError(t, handler(c))
		assert.Len(t, seen, 36)
		assert.Equal(t, seen, rec.Header().Get(TraceIDHeader))
	})

	t.Run("keeps incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := RequestID()(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})

		assert.NoError(t, handler(c))
		assert.Equal(t, "abc-123", rec.Header().Get(TraceIDHeader))
		assert.Equal(t, "abc-123", GetTraceID(c))
	})

	t.Run("missing id", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		assert.Empty(t, GetTraceID(c))
	})
}
