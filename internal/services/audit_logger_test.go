package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"bank-dashboard/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		out = append(out, entry)
	}
	return out
}

func TestAuditLogger_BalanceUpdateCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(logging.NewWithWriter(&buf, "info"))

	ctx := WithCorrelationID(context.Background(), "trace-123")
	al.LogBalanceUpdate(ctx, 7, "deposit", "50", "100", "150")

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 1)
	assert.Equal(t, "balance update", entries[0]["msg"])
	assert.Equal(t, "balance_update", entries[0]["event_type"])
	assert.Equal(t, "audit", entries[0]["component"])
	assert.Equal(t, float64(7), entries[0]["account_id"])
	assert.Equal(t, "150", entries[0]["new_balance"])
	assert.Equal(t, "trace-123", entries[0]["correlation_id"])
}

func TestAuditLogger_FailuresLogAtWarn(t *testing.T) {
	var buf bytes.Buffer
	al := NewAuditLogger(logging.NewWithWriter(&buf, "warn"))

	al.LogAccountCreated(context.Background(), 1, 2, "SAVINGS", "0")
	al.LogTransferFailed(context.Background(), 1, 2, "10", "insufficient funds")
	al.LogAuthorizationFailure(context.Background(), "withdraw", 2, 9)

	entries := decodeLines(t, &buf)
	require.Len(t, entries, 2)
	assert.Equal(t, "WARN", entries[0]["level"])
	assert.Equal(t, "transfer_failed", entries[0]["event_type"])
	assert.Equal(t, "authorization_failure", entries[1]["event_type"])
	assert.Equal(t, "", entries[1]["correlation_id"])
}
