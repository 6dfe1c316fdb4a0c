package config

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "testing")
	t.Setenv("JWT_PRIVATE_KEY", "")
	t.Setenv("JWT_PUBLIC_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost:8080", cfg.Server.Address())
	assert.True(t, cfg.IsTesting())
	assert.Equal(t, 3, cfg.Security.MaxFailedAttempts)
	assert.Equal(t, 8, cfg.Security.PasswordMinLength)
	assert.Equal(t, 24*time.Hour, cfg.JWT.AccessTokenDuration)
	assert.Equal(t, 90*24*time.Hour, cfg.Security.AuditRetention)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSAllowOrigins)
	assert.NotNil(t, cfg.JWT.PrivateKey)
	assert.NotNil(t, cfg.JWT.PublicKey)
}

func TestLoad_ProductionRequiresKeys(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_PRIVATE_KEY", "")
	t.Setenv("JWT_PUBLIC_KEY", "")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_KeysFromEnvironment(t *testing.T) {
	priv, pub, err := GenerateRSAKeyPair()
	require.NoError(t, err)

	pubDER, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_PRIVATE_KEY", base64.StdEncoding.EncodeToString(privPEM))
	t.Setenv("JWT_PUBLIC_KEY", base64.StdEncoding.EncodeToString(pubPEM))
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, priv.Equal(cfg.JWT.PrivateKey))
	assert.True(t, pub.Equal(cfg.JWT.PublicKey))
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowOrigins)
}

func TestLoad_InvalidKeyEncoding(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_PRIVATE_KEY", "not base64!")
	t.Setenv("JWT_PUBLIC_KEY", "also not")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadClient(t *testing.T) {
	t.Setenv("BANK_API_URL", "http://bank.test/api")
	t.Setenv("FILTER_BY_OWNER", "false")
	t.Setenv("TX_COOLDOWN", "2s")
	t.Setenv("SESSION_STORE", "memory")

	cfg := LoadClient()
	assert.Equal(t, "http://bank.test/api", cfg.APIBaseURL)
	assert.False(t, cfg.FilterByOwner)
	assert.Equal(t, 2*time.Second, cfg.TxCooldown)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.NotEmpty(t, cfg.SessionPath)
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 4, getIntEnv("X_INT", 4))
	assert.True(t, getBoolEnv("X_BOOL", true))
	assert.Equal(t, time.Minute, getDurationEnv("X_DUR", time.Minute))
}
