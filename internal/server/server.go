package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/database"
	"bank-dashboard/internal/handlers"
	"bank-dashboard/internal/middleware"
	"bank-dashboard/internal/repositories"
	"bank-dashboard/internal/services"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server wires the repositories, services and handlers behind one echo
// instance.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *slog.Logger
	cancel context.CancelFunc
}

// New builds the API. cache may be nil, in which case login attempts are only
// limited by the per-IP rate limiter. Metrics are registered on reg and
// exposed at /metrics.
func New(cfg *config.Config, db *database.DB, cache *redis.Client, reg *prometheus.Registry, logger *slog.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handlers.NewValidator()
	apiErrors := middleware.NewAPIErrorsCounter(reg)
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(logger, apiErrors)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	userRepo := repositories.NewUserRepository(db.DB)
	accountRepo := repositories.NewAccountRepository(db.DB)
	auditRepo := repositories.NewAuditLogRepository(db.DB)
	blacklistedTokenRepo := repositories.NewBlacklistedTokenRepository(db.DB)

	metrics := services.NewPrometheusMetricsWithRegistry(reg)
	auditLogger := services.NewAuditLogger(logger)
	passwordService := services.NewPasswordService(cfg.Security)
	tokenService := services.NewTokenService(&cfg.JWT)

	authService := services.NewAuthService(userRepo, auditRepo, blacklistedTokenRepo,
		passwordService, tokenService, metrics, cfg.Security.MaxFailedAttempts, logger)
	userService := services.NewUserService(userRepo, auditRepo, passwordService, logger)
	accountService := services.NewAccountService(accountRepo, metrics, auditLogger, logger)

	userHandler := handlers.NewUserHandler(authService, userService)
	accountHandler := handlers.NewAccountHandler(accountService)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e.Use(middleware.RequestID())
	e.Use(middleware.ErrorMetrics(apiErrors))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.PanicRecovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.BodyLimit("1M"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  cfg.Server.CORSAllowOrigins,
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderAuthorization, echo.HeaderContentType, middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader, "X-Total-Count"},
	}))

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := e.Group("/api", middleware.RateLimiter(ctx, cfg.Security.RateLimitPerSecond, 0))
	requireAuth := middleware.RequireAuth(tokenService, blacklistedTokenRepo)

	api.POST("/users", userHandler.Register)
	api.POST("/users/login", userHandler.Login, middleware.LoginRateLimit(cache, cfg.Redis.LoginLimitPerMin, logger))
	api.POST("/users/logout", userHandler.Logout)

	users := api.Group("/users", requireAuth)
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.DeleteUser)

	accounts := api.Group("/accounts", requireAuth)
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.POST("/transfer", accountHandler.Transfer)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.PUT("/:id/deposit", accountHandler.Deposit)
	accounts.PUT("/:id/withdraw", accountHandler.Withdraw)

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
		cancel: cancel,
	}
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting server", "address", s.cfg.Server.Address(), "environment", s.cfg.Server.Environment)
	if err := s.echo.Start(s.cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops background workers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.echo.Shutdown(ctx)
}

// Close stops background workers without touching the listener. Tests that
// only use Handler call it.
func (s *Server) Close() {
	s.cancel()
}
