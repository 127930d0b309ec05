package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/utils/errutil"
)

// Dispatch runs fn in its own goroutine. fn outlives the caller: ctx keeps
// its values (logger included) but loses its deadline and cancellation.
// Returned errors and panics are logged and reported, never propagated.
func Dispatch(ctx context.Context, fn func(ctx context.Context) error) {
	bgCtx := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in background task", goerr.V("panic", r)), "background task panicked")
			}
		}()

		if err := fn(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "background task failed")
		}
	}()
}
