package utils

import (
	"context"
	"runtime/debug"

	"golang-stock-digest/pkg/logger"

	"go.uber.org/zap"
)

// GoSafe runs fn in a goroutine and recovers any panic, reporting it to the global zap logger.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("Recovered from panic",
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still alive, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.WarnContext(ctx, "Context done, stopping work", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
