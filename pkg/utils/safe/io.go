package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/airform/pkg/utils/logging"
)

// maxDrain bounds how much of an unread response body is discarded
const maxDrain = 64 << 10

// Close closes closer and logs a failure. nil is ignored.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Warn("failed to close", "error", err.Error())
	}
}

// DrainClose discards what is left of an HTTP response body before closing
// it, so the connection can go back to the pool
func DrainClose(ctx context.Context, body io.ReadCloser) {
	if body == nil {
		return
	}
	if _, err := io.Copy(io.Discard, io.LimitReader(body, maxDrain)); err != nil {
		logging.From(ctx).Debug("failed to drain body", "error", err.Error())
	}
	Close(ctx, body)
}
