package sora

import (
	"context"

	"github.com/pterm/pterm"
)

// Prober tells whether Sora is in the middle of a generation.
type Prober struct {
	log *pterm.Logger
}

func NewProber(log *pterm.Logger) *Prober {
	if log == nil {
		log = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	return &Prober{log: log}
}

// Busy reports true when any loading indicator is visible or the create
// button is disabled. A failed lookup says nothing about that selector, so
// the next one is still checked; when every lookup fails the page counts as
// idle.
func (p *Prober) Busy(ctx context.Context, page Page) bool {
	for _, sel := range BusyIndicators {
		m, err := page.Locate(ctx, sel)
		if err != nil {
			p.log.Debug("busy probe failed", p.log.Args("selector", sel.String(), "error", err))
			continue
		}
		if m.Visible > 0 {
			p.log.Trace("busy indicator visible", p.log.Args("selector", sel.String()))
			return true
		}
	}

	m, err := page.Locate(ctx, CreateButton)
	if err != nil {
		p.log.Debug("busy probe failed", p.log.Args("selector", CreateButton.String(), "error", err))
		return false
	}
	return m.Count > 0 && !m.Enabled
}
