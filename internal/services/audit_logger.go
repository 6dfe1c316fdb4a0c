package services

import (
	"context"
	"log/slog"
	"time"
)

type correlationIDKey struct{}

// WithCorrelationID returns a context carrying the request trace ID so audit
// events can be joined with request logs.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// AuditLogger emits structured audit events for account activity.
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) AuditLoggerInterface {
	return &AuditLogger{
		logger: logger.With(slog.String("component", "audit")),
	}
}

func (al *AuditLogger) LogAccountCreated(ctx context.Context, accountID, userID int64, accountType, initialBalance string) {
	al.logger.InfoContext(ctx, "account created",
		slog.String("event_type", "account_created"),
		slog.Int64("account_id", accountID),
		slog.Int64("user_id", userID),
		slog.String("account_type", accountType),
		slog.String("initial_balance", initialBalance),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAccountDeleted(ctx context.Context, accountID, userID int64) {
	al.logger.InfoContext(ctx, "account deleted",
		slog.String("event_type", "account_deleted"),
		slog.Int64("account_id", accountID),
		slog.Int64("user_id", userID),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogBalanceUpdate(ctx context.Context, accountID int64, operation, amount, oldBalance, newBalance string) {
	al.logger.InfoContext(ctx, "balance update",
		slog.String("event_type", "balance_update"),
		slog.Int64("account_id", accountID),
		slog.String("operation", operation),
		slog.String("amount", amount),
		slog.String("old_balance", oldBalance),
		slog.String("new_balance", newBalance),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogBalanceUpdateFailed(ctx context.Context, accountID int64, operation, amount, errorMsg string) {
	al.logger.WarnContext(ctx, "balance update failed",
		slog.String("event_type", "balance_update_failed"),
		slog.Int64("account_id", accountID),
		slog.String("operation", operation),
		slog.String("amount", amount),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransferCompleted(ctx context.Context, fromAccountID, toAccountID int64, amount string, durationMs int64) {
	al.logger.InfoContext(ctx, "transfer completed",
		slog.String("event_type", "transfer_completed"),
		slog.Int64("from_account_id", fromAccountID),
		slog.Int64("to_account_id", toAccountID),
		slog.String("amount", amount),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogTransferFailed(ctx context.Context, fromAccountID, toAccountID int64, amount, errorMsg string) {
	al.logger.WarnContext(ctx, "transfer failed",
		slog.String("event_type", "transfer_failed"),
		slog.Int64("from_account_id", fromAccountID),
		slog.Int64("to_account_id", toAccountID),
		slog.String("amount", amount),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (al *AuditLogger) LogAuthorizationFailure(ctx context.Context, operation string, userID, accountID int64) {
	al.logger.WarnContext(ctx, "authorization failure",
		slog.String("event_type", "authorization_failure"),
		slog.String("operation", operation),
		slog.Int64("user_id", userID),
		slog.Int64("account_id", accountID),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}
