package database

import (
	"context"
	"testing"
	"time"

	"bank-dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestDB_CreatesSchema(t *testing.T) {
	db := SetupTestDB(t)

	user := CreateTestUser(t, db, "alice")
	account := CreateTestAccount(t, db, user, "100.00")

	assert.NotZero(t, user.ID)
	assert.NotZero(t, account.ID)
	assert.Equal(t, "100.00", account.Balance.StringFixed(2))
	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestCleanupExpiredTokens(t *testing.T) {
	db := SetupTestDB(t)
	user := CreateTestUser(t, db, "bob")

	require.NoError(t, db.Create(&models.BlacklistedToken{JTI: "old", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Hour)}).Error)
	require.NoError(t, db.Create(&models.BlacklistedToken{JTI: "live", UserID: user.ID, ExpiresAt: time.Now().Add(time.Hour)}).Error)

	removed, err := db.CleanupExpiredTokens()
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	var remaining int64
	require.NoError(t, db.Model(&models.BlacklistedToken{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestCleanupTestDB(t *testing.T) {
	db := SetupTestDB(t)
	CreateTestAccount(t, db, CreateTestUser(t, db, "carol"), "")

	CleanupTestDB(t, db)

	var users, accounts int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.Account{}).Count(&accounts).Error)
	assert.Zero(t, users)
	assert.Zero(t, accounts)
}
