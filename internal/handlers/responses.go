package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"bank-dashboard/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Handlers report failures through SendError (4xx, business rule or
// validation failures) and SendSystemError (500, internal details hidden).
// Raw validator errors are returned as-is so the HTTP error handler can
// render one detail per field.

const (
	// TraceIDContextKey is the context key for storing the trace ID
	TraceIDContextKey = "trace_id"

	// ErrorCounterContextKey holds the api_errors_total counter of the
	// serving instance.
	ErrorCounterContextKey = "api_errors_counter"
)

// ErrorResponse is an alias for the standardized error response type
type ErrorResponse = errors.ErrorResponse

func getTraceID(c echo.Context) string {
	traceID, ok := c.Get(TraceIDContextKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// SendError sends a standardized error response with trace ID from context
func SendError(c echo.Context, code errors.ErrorCode, opts ...errors.ErrorOption) error {
	traceID := getTraceID(c)
	errorResponse := errors.NewErrorResponse(code, traceID, opts...)
	status := errorResponse.GetHTTPStatus()
	RecordError(c, errorResponse, status)
	return c.JSON(status, errorResponse)
}

// SendSystemError hides err behind a generic message and logs it with the
// trace ID so support can correlate the two.
func SendSystemError(c echo.Context, err error) error {
	traceID := getTraceID(c)
	errorResponse, cause := errors.WrapSystemError(err, traceID)
	slog.Error("internal error",
		"trace_id", traceID,
		"path", c.Request().URL.Path,
		"error", cause)
	RecordError(c, errorResponse, http.StatusInternalServerError)
	return c.JSON(http.StatusInternalServerError, errorResponse)
}

// RecordError counts a rendered error in api_errors_total. It is a no-op
// when no counter is attached to the request.
func RecordError(c echo.Context, errorResponse *errors.ErrorResponse, status int) {
	counter, ok := c.Get(ErrorCounterContextKey).(*prometheus.CounterVec)
	if !ok || counter == nil {
		return
	}
	counter.WithLabelValues(
		errorResponse.Error.Code,
		c.Path(),
		strconv.Itoa(status),
	).Inc()
}
