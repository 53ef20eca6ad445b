// Package delay holds the suspend point shared by every simulated remote
// call (auth, catalog load, payment, chat typing).
package delay

import (
	"context"
	"time"
)

// Wait blocks for d or until ctx is done, whichever comes first. It returns
// ctx.Err() when the wait was cut short.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
