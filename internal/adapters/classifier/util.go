package classifier

import (
	"context"
	"io"
	"net/http"
	"time"
)

// backoff is exponential from base, capped
func backoff(base time.Duration, attempt int) time.Duration {
	d := base << uint(attempt)
	if d <= 0 || d > maxRetryWait {
		return maxRetryWait
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 64<<10))
	return rc.Close()
}

// transient statuses are retried, 429 and every 5xx
func transient(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
