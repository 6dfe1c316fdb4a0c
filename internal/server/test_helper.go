package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"bank-dashboard/internal/config"
	"bank-dashboard/internal/database"
	"bank-dashboard/internal/logging"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

// TestConfig returns a configuration suitable for in-process tests: fresh RSA
// keys, minimum bcrypt cost and a rate limit high enough to stay out of the
// way.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()

	privateKey, publicKey, err := config.GenerateRSAKeyPair()
	if err != nil {
		t.Fatalf("failed to generate RSA keys: %v", err)
	}

	return &config.Config{
		Server: config.ServerConfig{
			Host:             "127.0.0.1",
			Port:             "0",
			Environment:      "test",
			ReadTimeout:      5 * time.Second,
			WriteTimeout:     5 * time.Second,
			ShutdownPeriod:   time.Second,
			CORSAllowOrigins: []string{"*"},
		},
		Redis: config.RedisConfig{LoginLimitPerMin: 100},
		JWT: config.JWTConfig{
			AccessTokenDuration: time.Hour,
			PrivateKey:          privateKey,
			PublicKey:           publicKey,
			Issuer:              "bank-api-test",
		},
		Security: config.SecurityConfig{
			BCryptCost:         bcrypt.MinCost,
			RateLimitPerSecond: 1000,
			MaxFailedAttempts:  3,
			PasswordMinLength:  8,
			RequireUppercase:   true,
			RequireLowercase:   true,
			RequireNumbers:     true,
		},
		LogLevel: "error",
	}
}

// StartTestServer runs the full API over an in-memory SQLite database and
// returns the httptest server. Everything is torn down with the test.
func StartTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db := database.SetupTestDB(t)
	srv := New(TestConfig(t), db, nil, prometheus.NewRegistry(), logging.Discard())
	ts := httptest.NewServer(srv.Handler())

	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})

	return ts
}
