package sora

import (
	"context"
	"errors"
	"fmt"

	"github.com/pterm/pterm"
)

// SubmitOutcome is the result of one Submit call.
type SubmitOutcome int

const (
	Submitted SubmitOutcome = iota
	ButtonNotFound
	StillBusyAfterRetries
)

func (o SubmitOutcome) String() string {
	switch o {
	case Submitted:
		return "submitted"
	case ButtonNotFound:
		return "button not found"
	case StillBusyAfterRetries:
		return "still busy"
	}
	return fmt.Sprintf("SubmitOutcome(%d)", int(o))
}

// Submitter clicks Sora's create button once the page is idle.
type Submitter struct {
	opts  Options
	probe *Prober
	log   *pterm.Logger
}

func NewSubmitter(opts Options) *Submitter {
	opts = opts.withDefaults()
	return &Submitter{opts: opts, probe: NewProber(opts.Logger), log: opts.Logger}
}

var errStillBusy = errors.New("page stayed busy")

// Submit tries up to maxRetries times to click a submit control. Attempts
// that find the page busy wait BusyBackoff and do not count; more than
// BusyLimit of them ends the call with StillBusyAfterRetries. The returned
// error is only set when ctx is done or maxRetries is invalid.
func (s *Submitter) Submit(ctx context.Context, page Page, maxRetries int) (SubmitOutcome, error) {
	if maxRetries < 1 {
		return ButtonNotFound, ErrInvalidRetries
	}

	busy := 0
	clicked := false
	err := Poll(ctx, s.opts.Clock, maxRetries, func(ctx context.Context, attempt int) (Verdict, error) {
		if s.probe.Busy(ctx, page) {
			busy++
			if busy > s.opts.BusyLimit {
				return Verdict{}, errStillBusy
			}
			s.log.Info("waiting for previous generation to complete",
				s.log.Args("attempt", attempt, "max", maxRetries))
			return Verdict{Wait: s.opts.BusyBackoff, Free: true}, nil
		}

		s.Focus(ctx, page)

		sel, ok, err := s.findControl(ctx, page)
		if err == nil && ok {
			if err = page.Click(ctx, sel); err == nil {
				s.log.Info("clicked create button", s.log.Args("selector", sel.String()))
				clicked = true
				return Verdict{Done: true}, nil
			}
		}
		if err != nil {
			s.log.Warn("attempt failed to find any create button",
				s.log.Args("attempt", attempt, "max", maxRetries, "error", err))
		}

		if attempt == maxRetries {
			return Verdict{}, nil
		}
		s.log.Info("waiting before retry", s.log.Args("next", attempt+1, "max", maxRetries))
		return Verdict{Wait: s.opts.RetryBackoff}, nil
	})

	switch {
	case clicked:
		return Submitted, nil
	case errors.Is(err, errStillBusy):
		s.log.Warn("page stayed busy", s.log.Args("busy_waits", busy))
		return StillBusyAfterRetries, nil
	case errors.Is(err, ErrPollExhausted):
		return ButtonNotFound, nil
	case err != nil:
		return ButtonNotFound, err
	}
	return ButtonNotFound, nil
}

// findControl returns the first submit control that is visible and enabled,
// falling back to the structural selector when none is.
func (s *Submitter) findControl(ctx context.Context, page Page) (Selector, bool, error) {
	for _, sel := range SubmitControls {
		m, err := page.Locate(ctx, sel)
		if err != nil {
			s.log.Debug("selector lookup failed, trying next", s.log.Args("selector", sel.String(), "error", err))
			continue
		}
		if m.Visible > 0 && m.Enabled {
			return sel, true, nil
		}
	}

	m, err := page.Locate(ctx, FallbackSubmit)
	if err != nil {
		return FallbackSubmit, false, err
	}
	if m.Visible > 0 {
		s.log.Debug("using structural fallback for create button")
		return FallbackSubmit, true, nil
	}
	return FallbackSubmit, false, nil
}

// Focus clicks the prompt box and gives the page a moment to react. Failure
// is logged only; some views accept input without it.
func (s *Submitter) Focus(ctx context.Context, page Page) bool {
	if err := page.Click(ctx, PromptInput); err != nil {
		s.log.Warn("could not focus prompt box", s.log.Args("error", err))
		return false
	}
	s.log.Debug("focused prompt box")
	if err := s.opts.Clock.Sleep(ctx, s.opts.FocusSettle); err != nil {
		return false
	}
	return true
}
