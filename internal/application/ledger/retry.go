package ledger

import (
	"context"
	"time"

	"github.com/warehousepro/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// runWithRetry executes one unit of work through the scope, transparently
// re-running it on transient store failures with exponential backoff.
// Exhausted retries surface as an internal error; everything else returns
// unchanged after a full rollback.
func runWithRetry(ctx context.Context, scope LedgerScope, retry RetryConfig, logger *zap.Logger, fn func(ctx context.Context, repos Repositories) error) error {
	var lastErr error
	delay := retry.BaseDelay
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		lastErr = scope.Execute(ctx, fn)
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		logger.Warn("transient store failure, retrying unit of work",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", retry.MaxAttempts),
			zap.Error(lastErr))
		if attempt == retry.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return &shared.DomainError{Code: "INTERNAL", Message: ctx.Err().Error()}
		case <-time.After(delay):
		}
		delay *= 2
	}
	logger.Error("unit of work failed after retries", zap.Error(lastErr))
	return shared.ErrInternal
}
