// Package wait polls a condition until it holds, fails, or runs out of time.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	k8swait "k8s.io/apimachinery/pkg/util/wait"
)

// ConditionFunc reports whether the awaited condition holds. A nil transient
// and nil terminal error means it does. A transient error keeps the poll going,
// a terminal error stops it immediately and is returned as is.
type ConditionFunc func(ctx context.Context) (transient error, terminal error)

// PollImmediate checks condition right away and then once per interval.
// A timeout <= 0 means no deadline other than the one carried by ctx.
// When the deadline passes, the last transient error is appended to the
// returned context.DeadlineExceeded.
func PollImmediate(ctx context.Context, logger log.FieldLogger, interval, timeout time.Duration, condition ConditionFunc) error {
	var lastErr error

	cond := func(ctx context.Context) (bool, error) {
		transient, terminal := condition(ctx)
		if terminal != nil {
			return false, terminal
		}

		lastErr = transient
		if transient != nil && logger != nil {
			logger.Debugf("Waiting: %s", transient.Error())
		}

		return transient == nil, nil
	}

	var err error
	if timeout > 0 {
		err = k8swait.PollUntilContextTimeout(ctx, interval, timeout, true, cond)
	} else {
		err = k8swait.PollUntilContextCancel(ctx, interval, true, cond)
	}

	if lastErr != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		err = fmt.Errorf("%w; last error was: %w", err, lastErr)
	}

	return err
}
