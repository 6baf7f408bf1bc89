package async

import (
	"context"

	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// The handler runs on a background context so it is not cancelled when the
// triggering operation finishes, but the logger bound to ctx is preserved.
// Errors and panics are logged and swallowed; dispatched work is best-effort.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := context.Background()
	if logger := logging.From(ctx); logger != nil {
		bgCtx = logging.With(bgCtx, logger)
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}
