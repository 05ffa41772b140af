package notifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RetryNotifier retries failed deliveries with exponential backoff.
// ErrNotConfigured is returned immediately.
type RetryNotifier struct {
	Next            Notifier
	MaxRetries      int
	InitialInterval time.Duration
}

// WithRetry wraps next with exponential backoff retry.
func WithRetry(next Notifier, maxRetries int) *RetryNotifier {
	return &RetryNotifier{Next: next, MaxRetries: maxRetries, InitialInterval: time.Second}
}

func (r *RetryNotifier) Send(ctx context.Context, text string) error {
	attempt := 0
	op := func() error {
		attempt++
		err := r.Next.Send(ctx, text)
		if errors.Is(err, ErrNotConfigured) {
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.InitialInterval
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.MaxRetries)), ctx)

	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("notification failed, retrying")
	})
	if err != nil {
		return fmt.Errorf("deliver after %d attempt(s): %w", attempt, err)
	}
	return nil
}
