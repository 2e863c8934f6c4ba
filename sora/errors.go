package sora

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrPollExhausted     = errors.New("poll limit reached")
	ErrGenerationTimeout = errors.New("generation timeout")
	ErrInvalidRetries    = errors.New("max retries must be at least 1")
	ErrEmptyPrompt       = errors.New("prompt is empty")
	ErrSubmitFailed      = errors.New("could not find or click the create button")
)

// TimeoutError is returned by Waiter.Await when no images show up within the
// poll budget.
type TimeoutError struct {
	Attempts int
	Budget   time.Duration
	Images   int // visible images seen on the last idle poll
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("generation timeout: fewer than %d images after %d polls (%s), last saw %d",
		MinImages, e.Attempts, e.Budget, e.Images)
}

func (e *TimeoutError) Unwrap() error {
	return ErrGenerationTimeout
}
