/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	apperrors "github.com/NVIDIA/deployctl/pkg/errors"
)

// PollSpec bounds a fixed-interval polling loop. Only idempotent,
// read-only checks may be polled; mutating commands run exactly once.
type PollSpec struct {
	// Interval between attempts.
	Interval time.Duration
	// Timeout is the maximum wall-clock duration for the whole loop.
	Timeout time.Duration
}

// Poll runs check at a fixed interval until it reports done, fails hard,
// or the wall-clock timeout expires. Pacing uses a token-bucket limiter
// so a slow check never compounds with the interval.
func Poll(ctx context.Context, spec PollSpec, check func(ctx context.Context) (bool, error)) error {
	pollCtx, cancel := context.WithTimeout(ctx, spec.Timeout)
	defer cancel()

	limiter := rate.NewLimiter(rate.Every(spec.Interval), 1)
	attempt := 0
	for {
		if err := limiter.Wait(pollCtx); err != nil {
			return apperrors.Wrap(apperrors.ErrCodeTimeout,
				"polling deadline exceeded", pollCtx.Err())
		}
		attempt++

		done, err := check(pollCtx)
		if err != nil {
			return err
		}
		if done {
			slog.Debug("poll condition met", "attempts", attempt)
			return nil
		}
	}
}

// RunIdempotent retries a read-only command at a fixed interval until it
// exits zero or the timeout expires. The final attempt's result is
// returned either way so callers can surface the captured output.
func RunIdempotent(ctx context.Context, inv Invoker, cmdSpec Spec, pollSpec PollSpec) (*Result, error) {
	var last *Result
	err := Poll(ctx, pollSpec, func(ctx context.Context) (bool, error) {
		res, runErr := inv.Run(ctx, cmdSpec)
		last = res
		if runErr == nil {
			return true, nil
		}
		// non-zero exits keep polling; anything else is fatal
		if apperrors.IsCode(runErr, apperrors.ErrCodeStepFailed) {
			slog.Debug("idempotent check not ready", "command", cmdSpec.Name)
			return false, nil
		}
		return false, runErr
	})
	return last, err
}
