package sora

import (
	"context"
	"time"
)

// Verdict is what a poll check decides about the current cycle.
type Verdict struct {
	Done bool
	// Wait is slept before the next cycle. Zero means go again immediately.
	Wait time.Duration
	// Free cycles are not counted against the poll limit.
	Free bool
}

// Poll runs check until it reports Done, returns an error, or limit counted
// cycles have gone by without success, in which case ErrPollExhausted is
// returned. A limit of zero or less never runs out. attempt passed to check
// is the 1-based number of the counted cycle in progress, so a free cycle is
// followed by one with the same attempt number.
func Poll(ctx context.Context, clock Clock, limit int, check func(ctx context.Context, attempt int) (Verdict, error)) error {
	attempt := 1
	for limit <= 0 || attempt <= limit {
		if err := ctx.Err(); err != nil {
			return err
		}

		v, err := check(ctx, attempt)
		if err != nil {
			return err
		}
		if v.Done {
			return nil
		}
		if !v.Free {
			attempt++
		}
		if v.Wait > 0 {
			if err := clock.Sleep(ctx, v.Wait); err != nil {
				return err
			}
		}
	}
	return ErrPollExhausted
}
