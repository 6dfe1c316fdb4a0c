package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"bank-dashboard/internal/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupEnv(t *testing.T) {
	t.Helper()
	ts := server.StartTestServer(t)

	t.Setenv("BANK_API_URL", ts.URL+"/api")
	t.Setenv("SESSION_STORE", "file")
	t.Setenv("SESSION_PATH", filepath.Join(t.TempDir(), "session.json"))
	t.Setenv("TX_COOLDOWN", "0s")
	t.Setenv("FILTER_BY_OWNER", "true")
	t.Setenv("LOG_LEVEL", "error")
}

func bankctl(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestSession(t *testing.T) {
	setupEnv(t)

	out, err := bankctl(t, "Passw0rd1\n", "register", "-user", "alice", "-email", "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "User alice registered")

	_, err = bankctl(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)

	out, err = bankctl(t, "", "login", "-user", "alice", "-password", "Passw0rd1")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as alice")

	out, err = bankctl(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "alice <alice@example.com>")

	out, err = bankctl(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	_, err = bankctl(t, "", "accounts")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestBadLogin(t *testing.T) {
	setupEnv(t)

	_, err := bankctl(t, "", "register", "-user", "bob", "-email", "bob@example.com", "-password", "Passw0rd1")
	require.NoError(t, err)

	_, err = bankctl(t, "", "login", "-user", "bob", "-password", "wrong")
	assert.EqualError(t, err, "Invalid username or password")
}

func TestAccountCommands(t *testing.T) {
	setupEnv(t)

	_, err := bankctl(t, "", "register", "-user", "carol", "-email", "carol@example.com", "-password", "Passw0rd1")
	require.NoError(t, err)
	_, err = bankctl(t, "", "login", "-user", "carol", "-password", "Passw0rd1")
	require.NoError(t, err)

	out, err := bankctl(t, "", "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "No accounts")

	out, err = bankctl(t, "", "create", "-balance", "100.00")
	require.NoError(t, err)
	assert.Contains(t, out, "Created SAVINGS account #1 with balance 100.00")

	_, err = bankctl(t, "", "create", "-balance", "-5")
	assert.ErrorContains(t, err, "Balance cannot be negative")

	out, err = bankctl(t, "", "create", "-type", "current")
	require.NoError(t, err)
	assert.Contains(t, out, "Created CURRENT account #2")

	out, err = bankctl(t, "", "deposit", "1", "50")
	require.NoError(t, err)
	assert.Contains(t, out, "account #1 balance 150.00")

	_, err = bankctl(t, "", "withdraw", "1", "151")
	assert.EqualError(t, err, "Cannot withdraw amount more than current balance")

	_, err = bankctl(t, "", "withdraw", "1", "abc")
	assert.EqualError(t, err, "Please enter a valid amount")

	out, err = bankctl(t, "", "transfer", "1", "2", "25.50")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 balance 124.50, #2 balance 25.50")

	out, err = bankctl(t, "", "accounts")
	require.NoError(t, err)
	assert.Contains(t, out, "Total balance 150.00 across 2 account(s)")

	out, err = bankctl(t, "", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Account deleted successfully")

	_, err = bankctl(t, "", "delete", "2")
	assert.EqualError(t, err, "Account not found")
}

func TestUsage(t *testing.T) {
	setupEnv(t)

	_, err := bankctl(t, "")
	assert.Error(t, err)

	out, err := bankctl(t, "", "help")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: bankctl")

	_, err = bankctl(t, "", "frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = bankctl(t, "", "deposit", "x", "1")
	assert.ErrorContains(t, err, "invalid account id")
}
