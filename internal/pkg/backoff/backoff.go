// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package backoff retries operations with exponential backoff and jitter.
package backoff

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultPolicy is the policy used to wait for a database to accept connections.
var DefaultPolicy = Policy{
	MaxAttempts:  5,
	InitialDelay: 500 * time.Millisecond,
	MaxDelay:     8 * time.Second,
}

// Policy configures Retry.
type Policy struct {
	// MaxAttempts is the maximum number of calls. Values below 1 are treated as 1.
	MaxAttempts int
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps the delay between attempts.
	MaxDelay time.Duration
}

// Permanent wraps an error so that Retry returns it without retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry calls f until it succeeds, returns an error wrapped with Permanent, or
// policy.MaxAttempts calls have been made.
//
// Between attempts Retry waits a random duration between half the current delay
// and the full delay. The delay doubles after each attempt, up to MaxDelay.
func Retry(ctx context.Context, policy Policy, f func(ctx context.Context, attempt int) error) error {
	maxAttempts := max(policy.MaxAttempts, 1)
	delay := policy.InitialDelay
	var err error
	for attempt := range maxAttempts {
		if err = f(ctx, attempt); err == nil {
			return nil
		}
		var permanent *permanentError
		if errors.As(err, &permanent) {
			return permanent.err
		}
		if attempt == maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-time.After(jitter(delay)):
		}
		delay = min(delay*2, policy.MaxDelay)
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, err)
}

// *** PRIVATE ***

type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

func jitter(delay time.Duration) time.Duration {
	if delay <= 0 {
		return 0
	}
	return delay/2 + time.Duration(rand.Int64N(int64(delay/2+1)))
}
