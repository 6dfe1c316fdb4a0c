package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/models"
	"bank-dashboard/internal/repositories"
	"bank-dashboard/internal/repositories/repository_mocks"
	"bank-dashboard/internal/services"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestAuthMiddleware(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

type AuthMiddlewareSuite struct {
	suite.Suite
	ctrl                     *gomock.Controller
	tokenService             services.TokenServiceInterface
	mockBlacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	e                        *echo.Echo
	user                     *models.User
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.tokenService = s.newTokenService(24 * time.Hour)
	s.mockBlacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.e = echo.New()
	s.user = &models.User{ID: 21, Username: "alice", Email: "alice@example.com"}
}

func (s *AuthMiddlewareSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AuthMiddlewareSuite) newTokenService(ttl time.Duration) services.TokenServiceInterface {
	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	s.Require().NoError(err)

	return services.NewTokenService(&config.JWTConfig{
		PrivateKey:          privateKey,
		PublicKey:           publicKey,
		Issuer:              "test-issuer",
		AccessTokenDuration: ttl,
	})
}

func (s *AuthMiddlewareSuite) serve(header string) (*httptest.ResponseRecorder, echo.Context, bool) {
	req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := s.e.NewContext(req, rec)

	called := false
	handler := RequireAuth(s.tokenService, s.mockBlacklistedTokenRepo)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	s.Require().NoError(handler(c))
	return rec, c, called
}

func (s *AuthMiddlewareSuite) TestValidToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(gomock.Any()).Return(nil, repositories.ErrTokenNotFound)

	rec, c, called := s.serve("Bearer " + token)
	s.True(called)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(int64(21), c.Get("user_id"))
	s.Equal("alice", c.Get("username"))
	s.NotEmpty(c.Get("token_jti"))
}

func (s *AuthMiddlewareSuite) TestMissingHeader() {
	rec, _, called := s.serve("")
	s.False(called)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_002")
}

func (s *AuthMiddlewareSuite) TestMalformedHeader() {
	rec, _, called := s.serve("Basic abc")
	s.False(called)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_004")
}

func (s *AuthMiddlewareSuite) TestTokenFromAnotherKey() {
	other := s.newTokenService(time.Hour)
	token, _, err := other.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, _, called := s.serve("Bearer " + token)
	s.False(called)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *AuthMiddlewareSuite) TestExpiredToken() {
	s.tokenService = s.newTokenService(-time.Minute)
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	rec, _, called := s.serve("Bearer " + token)
	s.False(called)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "AUTH_003")
}

func (s *AuthMiddlewareSuite) TestRevokedToken() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(gomock.Any()).
		Return(&models.BlacklistedToken{JTI: "x", UserID: 21}, nil)

	rec, _, called := s.serve("Bearer " + token)
	s.False(called)
	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Contains(rec.Body.String(), "Token has been revoked")
}

func (s *AuthMiddlewareSuite) TestBlacklistLookupFailure() {
	token, _, err := s.tokenService.GenerateAccessToken(s.user)
	s.Require().NoError(err)

	s.mockBlacklistedTokenRepo.EXPECT().GetByJTI(gomock.Any()).Return(nil, errors.New("db down"))

	rec, _, called := s.serve("Bearer " + token)
	s.False(called)
	s.Equal(http.StatusInternalServerError, rec.Code)
}
