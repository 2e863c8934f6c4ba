package sora

import (
	"time"

	"github.com/pterm/pterm"
)

// Options holds the timing knobs of the driver. The zero value of any field
// is replaced by its default in withDefaults.
type Options struct {
	Logger *pterm.Logger
	Clock  Clock

	BusyBackoff  time.Duration // submit: wait while a previous generation runs
	RetryBackoff time.Duration // submit: wait after an attempt found no button
	FocusSettle  time.Duration // submit: pause after focusing the prompt box
	BusyLimit    int           // submit: busy waits allowed before giving up

	PollInterval time.Duration // wait: pause between completion polls
	PollAttempts int           // wait: completion polls before timing out

	MaxRetries    int           // batch: submit attempts per item
	DrainInterval time.Duration // batch: pause while draining a busy page
	DrainLimit    int           // batch: drain cycles before submitting anyway, 0 waits forever
	ItemDelay     time.Duration // batch: pause between items
}

// Default timings.
const (
	DefaultBusyBackoff   = 10 * time.Second
	DefaultRetryBackoff  = 5 * time.Second
	DefaultFocusSettle   = time.Second
	DefaultBusyLimit     = 60
	DefaultPollInterval  = 10 * time.Second
	DefaultPollAttempts  = 12
	DefaultMaxRetries    = 5
	DefaultDrainInterval = 5 * time.Second
	DefaultItemDelay     = 5 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = pterm.DefaultLogger.WithLevel(pterm.LogLevelDisabled)
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.BusyBackoff == 0 {
		o.BusyBackoff = DefaultBusyBackoff
	}
	if o.RetryBackoff == 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.FocusSettle == 0 {
		o.FocusSettle = DefaultFocusSettle
	}
	if o.BusyLimit == 0 {
		o.BusyLimit = DefaultBusyLimit
	}
	if o.PollInterval == 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.PollAttempts == 0 {
		o.PollAttempts = DefaultPollAttempts
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.DrainInterval == 0 {
		o.DrainInterval = DefaultDrainInterval
	}
	if o.ItemDelay == 0 {
		o.ItemDelay = DefaultItemDelay
	}
	return o
}
