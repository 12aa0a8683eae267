// Package retry wraps an operation with bounded retry. It is a pure control
// construct: the caller supplies the operation, a predicate deciding which
// errors are worth retrying, and a total attempt budget. Non-retryable
// errors surface unchanged after a single attempt; exhausting the budget
// surfaces the last retryable error wrapped in ErrRetriesExhausted.
package retry

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrRetriesExhausted wraps the final error after all attempts failed with
// retryable errors.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Backoff between attempts. Tests shrink initialInterval to keep retry
// paths fast.
var (
	initialInterval = 250 * time.Millisecond
	maxInterval     = 5 * time.Second
)

// Do runs op up to maxTries times, retrying with jittered exponential
// backoff only while retryable(err) is true. maxTries below 1 is treated
// as 1; 1 means no retry.
func Do[T any](op func() (T, error), retryable func(error) bool, maxTries uint64) (T, error) {
	if maxTries < 1 {
		maxTries = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.MaxInterval = maxInterval
	b.MaxElapsedTime = 0 // bounded by attempts, not wall clock

	result, err := backoff.RetryWithData(func() (T, error) {
		v, err := op()
		if err != nil && !retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithMaxRetries(b, maxTries-1))

	if err != nil && retryable(err) {
		return result, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxTries, err)
	}
	return result, err
}
