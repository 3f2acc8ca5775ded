package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/confcentral/central"
)

// How conflicting transactions are retried.
type RetryPolicy struct {
	MaxAttempts     uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:     10,
	InitialInterval: 10 * time.Millisecond,
	MaxInterval:     500 * time.Millisecond,
}

func (p RetryPolicy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	return b
}

// runInTx runs fn in a store transaction, starting over with fresh reads
// whenever the commit fails with central.ErrConflict. A panic in fn fails
// the attempt like any other error, so the store rolls it back.
func runInTx(ctx context.Context, store central.Store, policy RetryPolicy,
	fn func(ctx context.Context, tx central.Tx) error) error {
	maxAttempts := policy.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = 1
	}

	body := func(ctx context.Context, tx central.Tx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("transaction body panicked: %v", r)
			}
		}()
		return fn(ctx, tx)
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := store.RunInTx(ctx, body)
		if err != nil && !errors.Is(err, central.ErrConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(policy.backOff()), backoff.WithMaxTries(maxAttempts))
	return err
}
