package logging

import (
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes closer and logs, rather than returns, a failure.
// It is meant for deferred cleanup where the error has nowhere else to go. A nil
// closer is ignored.
func SafeCloseWithLogging(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "close failed", err,
			slog.String("operation", operation),
			Component("shutdown"))
	}
}
