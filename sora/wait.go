package sora

import (
	"context"
	"errors"
	"time"

	"github.com/pterm/pterm"
)

// Completion is a finished generation.
type Completion struct {
	Images int
}

// Waiter polls the page until the generated images are on screen.
type Waiter struct {
	opts  Options
	probe *Prober
	log   *pterm.Logger
}

func NewWaiter(opts Options) *Waiter {
	opts = opts.withDefaults()
	return &Waiter{opts: opts, probe: NewProber(opts.Logger), log: opts.Logger}
}

// Await polls maxAttempts times, pollInterval apart, and returns once the
// page is idle with at least MinImages generated images visible. Every
// cycle that does not finish, busy or not, is followed by a full interval,
// so a timeout is reported no earlier than maxAttempts*pollInterval.
func (w *Waiter) Await(ctx context.Context, page Page, maxAttempts int, pollInterval time.Duration) (Completion, error) {
	if maxAttempts < 1 {
		maxAttempts = w.opts.PollAttempts
	}
	if pollInterval <= 0 {
		pollInterval = w.opts.PollInterval
	}

	var done Completion
	lastSeen := 0
	err := Poll(ctx, w.opts.Clock, maxAttempts, func(ctx context.Context, attempt int) (Verdict, error) {
		if w.probe.Busy(ctx, page) {
			w.log.Info("still generating", w.log.Args("poll", attempt, "max", maxAttempts))
			return Verdict{Wait: pollInterval}, nil
		}

		m, err := page.Locate(ctx, GeneratedImage)
		if err != nil {
			w.log.Debug("image lookup failed", w.log.Args("error", err))
			return Verdict{Wait: pollInterval}, nil
		}
		lastSeen = m.Visible
		if m.Visible >= MinImages {
			done = Completion{Images: m.Visible}
			return Verdict{Done: true}, nil
		}

		// Idle but short of images: keep polling until the budget runs out.
		w.log.Debug("page idle, waiting for images", w.log.Args("visible", m.Visible, "poll", attempt))
		return Verdict{Wait: pollInterval}, nil
	})
	if errors.Is(err, ErrPollExhausted) {
		return Completion{}, &TimeoutError{
			Attempts: maxAttempts,
			Budget:   time.Duration(maxAttempts) * pollInterval,
			Images:   lastSeen,
		}
	}
	if err != nil {
		return Completion{}, err
	}

	w.log.Info("generation completed", w.log.Args("images", done.Images))
	return done, nil
}
