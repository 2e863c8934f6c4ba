package sora

import (
	"fmt"
	"strings"
)

// Selector is one probe condition against the page. CSS narrows the candidate
// elements; Text requires the element's normalised text to equal the value;
// HasText requires it to contain the value, ignoring case.
type Selector struct {
	CSS     string
	Text    string
	HasText string
}

func (s Selector) String() string {
	switch {
	case s.Text != "" && s.CSS == "":
		return fmt.Sprintf("text=%q", s.Text)
	case s.HasText != "":
		return fmt.Sprintf("%s:has-text(%q)", s.CSS, s.HasText)
	case s.Text != "":
		return fmt.Sprintf("%s >> text=%q", s.CSS, s.Text)
	}
	return s.CSS
}

// CSS builds a selector from a CSS expression.
func CSS(css string) Selector { return Selector{CSS: css} }

// Text builds a selector matching any element whose text is exactly text.
func Text(text string) Selector { return Selector{Text: text} }

// HasText builds a selector matching css elements containing text.
func HasText(css, text string) Selector { return Selector{CSS: css, HasText: text} }

// Probe constants shared with the Sora web app. Order matters: the first
// visible indicator wins and submit controls are tried front to back.
var (
	BusyIndicators = []Selector{
		Text("Generating..."),
		Text("Processing..."),
		CSS(`div[role="progressbar"]`),
		CSS("div.loading"),
		CSS("div.spinner"),
		CSS("div.animate-spin"),
	}

	CreateButton = HasText("button", "Create image")

	SubmitControls = []Selector{
		CreateButton,
		CSS(`button[type="submit"]`),
	}

	// FallbackSubmit is the structural path to the composer's send button.
	FallbackSubmit = CSS(strings.Join([]string{
		"body > main > div > div.pointer-events-none.fixed.inset-0",
		`div.absolute.bottom-2.left-1\/2.hidden.w-full.max-w-\[800px\].-translate-x-1\/2.px-3.tablet\:block.tablet\:left-\[calc\(var\(--sidebar-width\)\+2\*var\(--sidebar-gap\)\+\(100\%-\(var\(--sidebar-width\)\+2\*var\(--sidebar-gap\)\)\)\/2\)\].tablet\:w-\[calc\(100\%-\(var\(--sidebar-width\)\+2\*var\(--sidebar-gap\)\)\)\].pointer-events-auto`,
		"div",
		"div",
		`div.flex.h-full.flex-col.gap-1\.5`,
		"div.flex.items-center.justify-between",
		"div:nth-child(2)",
		"button",
		"span",
	}, " > "))

	PromptInput = CSS("textarea")

	GeneratedImage = CSS(`img[alt="Generated image"]`)
)

// MinImages is the number of visible generated images that marks a finished
// generation. Sora renders two variations per prompt.
const MinImages = 2
