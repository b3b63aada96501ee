package logx

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type runIDContextKey struct{}

// NewRunID returns a fresh identifier used to correlate every record and
// sandbox label produced by one invocation.
func NewRunID() string {
	return uuid.NewString()
}

func WithRunID(ctx context.Context, runID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runIDContextKey{}, runID)
}

func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	runID, _ := ctx.Value(runIDContextKey{}).(string)
	return runID
}

func LoggerWithRunID(ctx context.Context) *slog.Logger {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		return slog.Default()
	}
	return slog.Default().With("run_id", runID)
}
