package retry

import (
	"context"
	"time"
)

// Do runs fn up to attempts times, doubling the delay between tries. It
// returns nil as soon as fn succeeds, ctx.Err() if the context ends while
// waiting, and otherwise the last error from fn.
func Do(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(base << i):
		}
	}
	return err
}
