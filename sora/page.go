package sora

import "context"

// Match is what a page reports for one selector at the time of the lookup.
type Match struct {
	Count   int  // elements matching the selector
	Visible int  // matching elements currently rendered
	Enabled bool // first visible match, or first match if none is visible, is not disabled
}

// Page is the remote document the driver works against. Implementations
// resolve Selector semantics themselves; cd.Tab does it over CDP.
type Page interface {
	Locate(ctx context.Context, sel Selector) (Match, error)
	Fill(ctx context.Context, sel Selector, text string) error
	Click(ctx context.Context, sel Selector) error
	CurrentURL(ctx context.Context) (string, error)
}
