package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "bank-dashboard/internal/errors"
	"bank-dashboard/internal/handlers"
	"bank-dashboard/internal/logging"
	"bank-dashboard/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ErrorHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	reg     *prometheus.Registry
	counter *prometheus.CounterVec
	handler echo.HTTPErrorHandler
}

func (s *ErrorHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.reg = prometheus.NewRegistry()
	s.counter = NewAPIErrorsCounter(s.reg)
	s.handler = NewHTTPErrorHandler(logging.Discard(), s.counter)
	s.echo.HTTPErrorHandler = s.handler
}

func TestErrorHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorHandlerTestSuite))
}

func (s *ErrorHandlerTestSuite) context() (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set(TraceIDContextKey, "test-trace-id")
	return c, rec
}

// counted returns api_errors_total keyed by "code endpoint status".
func (s *ErrorHandlerTestSuite) counted() map[string]float64 {
	families, err := s.reg.Gather()
	s.Require().NoError(err)

	out := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "api_errors_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			out[labels["code"]+" "+labels["endpoint"]+" "+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	return out
}

func (s *ErrorHandlerTestSuite) TestEchoHTTPError() {
	c, rec := s.context()

	s.handler(echo.NewHTTPError(http.StatusNotFound, "Not Found"), c)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_005")
	s.Contains(rec.Body.String(), "test-trace-id")
}

func (s *ErrorHandlerTestSuite) TestGenericErrorIsHidden() {
	c, rec := s.context()

	s.handler(errors.New("pq: relation does not exist"), c)

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Contains(rec.Body.String(), "SYSTEM_001")
	s.NotContains(rec.Body.String(), "relation")
}

func (s *ErrorHandlerTestSuite) TestValidationErrors() {
	c, rec := s.context()

	type amountForm struct {
		Amount decimal.Decimal `json:"amount" validate:"positive_amount,money"`
		Kind   string          `json:"accountType" validate:"required,account_type"`
	}
	err := validation.GetValidator().Struct(amountForm{Amount: decimal.NewFromInt(-1), Kind: "GOLD"})
	s.Require().Error(err)

	s.handler(err, c)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.JSONEq(`{"error":{
		"code":"VALIDATION_001",
		"message":"Validation failed",
		"details":["accountType: must be SAVINGS or CURRENT","amount: must be greater than 0"],
		"trace_id":"test-trace-id"}}`, rec.Body.String())
}

func (s *ErrorHandlerTestSuite) TestCommittedResponseIsLeftAlone() {
	c, rec := s.context()
	s.Require().NoError(c.String(http.StatusOK, "done"))

	s.handler(errors.New("late"), c)

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("done", rec.Body.String())
}

func (s *ErrorHandlerTestSuite) TestErrorsAreCounted() {
	c, _ := s.context()
	s.handler(echo.NewHTTPError(http.StatusTooManyRequests, "slow down"), c)

	families, err := s.reg.Gather()
	s.Require().NoError(err)
	s.Require().Len(families, 1)
	s.Equal("api_errors_total", families[0].GetName())
	s.Equal(float64(1), families[0].GetMetric()[0].GetCounter().GetValue())
}

func (s *ErrorHandlerTestSuite) TestHandlerWrittenErrorsAreCounted() {
	c, rec := s.context()
	c.SetPath("/api/accounts/:id")
	h := ErrorMetrics(s.counter)(func(c echo.Context) error {
		return handlers.SendError(c, apperrors.AccountNotFound)
	})

	s.Require().NoError(h(c))
	s.Equal(http.StatusNotFound, rec.Code)

	s.Equal(map[string]float64{"ACCOUNT_001 /api/accounts/:id 404": 1}, s.counted())
}

func (s *ErrorHandlerTestSuite) TestSystemErrorsAreCounted() {
	c, rec := s.context()
	h := ErrorMetrics(s.counter)(func(c echo.Context) error {
		return handlers.SendSystemError(c, errors.New("disk full"))
	})

	s.Require().NoError(h(c))
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal(map[string]float64{"SYSTEM_001  500": 1}, s.counted())
}

func (s *ErrorHandlerTestSuite) TestNoCounterAttached() {
	c, rec := s.context()

	s.Require().NoError(handlers.SendError(c, apperrors.AccountNotFound))
	s.Equal(http.StatusNotFound, rec.Code)
	s.Empty(s.counted())
}

func (s *ErrorHandlerTestSuite) TestMapHTTPStatusToErrorCode() {
	s.Equal("AUTH_002", string(mapHTTPStatusToErrorCode(http.StatusUnauthorized)))
	s.Equal("SYSTEM_004", string(mapHTTPStatusToErrorCode(http.StatusTooManyRequests)))
	s.Equal("VALIDATION_001", string(mapHTTPStatusToErrorCode(http.StatusMethodNotAllowed)))
	s.Equal("SYSTEM_001", string(mapHTTPStatusToErrorCode(http.StatusTeapot)))
}
