package async

import (
	"context"
	"log/slog"
	"time"
)

const fireTimeout = 30 * time.Second

// Fire runs fn in a goroutine detached from the caller's context, so the work
// survives request completion. Errors and panics are logged, never returned.
// Used for best-effort side effects that must not fail the main operation.
func Fire(logger *slog.Logger, name string, fn func(ctx context.Context) error) {
	if fn == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("background task panicked",
					slog.String("task", name),
					slog.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), fireTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			logger.Error("background task failed",
				slog.String("task", name),
				slog.String("error", err.Error()))
		}
	}()
}
