package repeat

import (
	"context"
	"time"
)

// Repeat calls f until it succeeds, the attempts are exhausted, or ctx is
// cancelled. The last error is returned.
func Repeat(ctx context.Context, f func() error, attempts int, delay time.Duration) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = f(); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return err
}
