package sora

import (
	"context"
	"time"

	"github.com/pterm/pterm"
)

// fakeClock advances instantly and records every sleep.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func(d time.Duration)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(d)
	}
	return ctx.Err()
}

func (c *fakeClock) count(d time.Duration) int {
	n := 0
	for _, s := range c.sleeps {
		if s == d {
			n++
		}
	}
	return n
}

func (c *fakeClock) total() time.Duration {
	var sum time.Duration
	for _, s := range c.sleeps {
		sum += s
	}
	return sum
}

// fakePage answers Locate from a selector table that tests mutate between
// calls, and records clicks and fills.
type fakePage struct {
	state     map[Selector]Match
	errs      map[Selector]error
	clickErrs map[Selector]error

	clicks  []Selector
	fills   []string
	locates map[Selector]int

	onClick func(sel Selector)
	onFill  func(text string)
}

func newFakePage() *fakePage {
	return &fakePage{
		state:     map[Selector]Match{},
		errs:      map[Selector]error{},
		clickErrs: map[Selector]error{},
		locates:   map[Selector]int{},
	}
}

func (p *fakePage) Locate(_ context.Context, sel Selector) (Match, error) {
	p.locates[sel]++
	if err := p.errs[sel]; err != nil {
		return Match{}, err
	}
	return p.state[sel], nil
}

func (p *fakePage) Fill(_ context.Context, sel Selector, text string) error {
	p.fills = append(p.fills, text)
	if p.onFill != nil {
		p.onFill(text)
	}
	return nil
}

func (p *fakePage) Click(_ context.Context, sel Selector) error {
	if err := p.clickErrs[sel]; err != nil {
		return err
	}
	p.clicks = append(p.clicks, sel)
	if p.onClick != nil {
		p.onClick(sel)
	}
	return nil
}

func (p *fakePage) CurrentURL(context.Context) (string, error) {
	return "https://sora.chatgpt.com/explore", nil
}

func (p *fakePage) show(sel Selector, n int) {
	p.state[sel] = Match{Count: n, Visible: n, Enabled: true}
}

func (p *fakePage) setBusy(busy bool) {
	if busy {
		p.show(BusyIndicators[0], 1)
	} else {
		delete(p.state, BusyIndicators[0])
	}
}

// clicked counts clicks on sel; clicks on PromptInput are focus attempts.
func (p *fakePage) clicked(sel Selector) int {
	n := 0
	for _, c := range p.clicks {
		if c == sel {
			n++
		}
	}
	return n
}

func testOptions(clock Clock) Options {
	return Options{
		Logger: pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled),
		Clock:  clock,
	}
}
