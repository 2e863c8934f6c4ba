package sora

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"

	"promptburner/content"
)

// ItemResult records what happened to one work item.
type ItemResult struct {
	Item       content.WorkItem
	Outcome    SubmitOutcome
	Completion Completion
	Err        error
	Started    time.Time
	Elapsed    time.Duration
}

// OK reports whether the item was submitted and its images appeared.
func (r ItemResult) OK() bool {
	return r.Err == nil && r.Outcome == Submitted && r.Completion.Images >= MinImages
}

// Runner submits a batch of work items one after another on a single page.
type Runner struct {
	opts   Options
	probe  *Prober
	submit *Submitter
	wait   *Waiter
	log    *pterm.Logger

	// OnResult, if set, is called after every item.
	OnResult func(ItemResult)
	// OnTimeout, if set, is called when an item's images never appear.
	OnTimeout func(ctx context.Context, item content.WorkItem)
}

func NewRunner(opts Options) *Runner {
	opts = opts.withDefaults()
	return &Runner{
		opts:   opts,
		probe:  NewProber(opts.Logger),
		submit: NewSubmitter(opts),
		wait:   NewWaiter(opts),
		log:    opts.Logger,
	}
}

// Run processes the batch in order. A failing item is logged and recorded;
// it never stops the rest of the batch. Only a done ctx ends the run early.
func (r *Runner) Run(ctx context.Context, page Page, batch content.Batch) []ItemResult {
	results := make([]ItemResult, 0, len(batch))
	for i, item := range batch {
		if ctx.Err() != nil {
			break
		}
		r.log.Info("processing item", r.log.Args("item", item.Name, "index", i+1, "total", len(batch)))

		res := r.runItem(ctx, page, item)
		results = append(results, res)
		if r.OnResult != nil {
			r.OnResult(res)
		}
		if res.Err != nil {
			r.log.Error("item failed", r.log.Args("item", item.Name, "error", res.Err))
		} else {
			r.log.Info("item done", r.log.Args("item", item.Name, "images", res.Completion.Images, "elapsed", res.Elapsed.Round(time.Second)))
		}
	}
	return results
}

func (r *Runner) runItem(ctx context.Context, page Page, item content.WorkItem) (res ItemResult) {
	res = ItemResult{Item: item, Outcome: ButtonNotFound, Started: r.opts.Clock.Now()}
	defer func() { res.Elapsed = r.opts.Clock.Now().Sub(res.Started) }()

	if item.Prompt == "" {
		res.Err = ErrEmptyPrompt
		return res
	}

	if err := r.drain(ctx, page); err != nil && !errors.Is(err, ErrPollExhausted) {
		res.Err = err
		return res
	}

	r.submit.Focus(ctx, page)
	if err := page.Fill(ctx, PromptInput, item.Prompt); err != nil {
		res.Err = fmt.Errorf("enter prompt: %w", err)
		return res
	}
	r.log.Debug("prompt entered", r.log.Args("item", item.Name, "chars", len(item.Prompt)))

	outcome, err := r.submit.Submit(ctx, page, r.opts.MaxRetries)
	res.Outcome = outcome
	if err != nil {
		res.Err = err
		return res
	}
	if outcome != Submitted {
		res.Err = fmt.Errorf("%w: %s", ErrSubmitFailed, outcome)
		return res
	}
	r.log.Info("generation triggered", r.log.Args("item", item.Name))

	done, err := r.wait.Await(ctx, page, r.opts.PollAttempts, r.opts.PollInterval)
	res.Completion = done
	if err != nil {
		res.Err = err
		if errors.Is(err, ErrGenerationTimeout) && r.OnTimeout != nil {
			r.OnTimeout(ctx, item)
		}
		return res
	}

	if err := page.Fill(ctx, PromptInput, ""); err != nil {
		r.log.Warn("could not clear prompt box", r.log.Args("error", err))
	}
	// A cancelled delay is picked up by Run before the next item.
	_ = r.opts.Clock.Sleep(ctx, r.opts.ItemDelay)
	return res
}

// drain waits out a generation that is already running before the prompt is
// typed.
func (r *Runner) drain(ctx context.Context, page Page) error {
	err := Poll(ctx, r.opts.Clock, r.opts.DrainLimit, func(ctx context.Context, attempt int) (Verdict, error) {
		if !r.probe.Busy(ctx, page) {
			return Verdict{Done: true}, nil
		}
		r.log.Info("waiting for previous generation to complete", r.log.Args("cycle", attempt))
		return Verdict{Wait: r.opts.DrainInterval}, nil
	})
	if errors.Is(err, ErrPollExhausted) {
		r.log.Warn("page still busy after drain, submitting anyway", r.log.Args("cycles", r.opts.DrainLimit))
	}
	return err
}
