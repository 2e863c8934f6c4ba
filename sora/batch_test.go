package sora

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptburner/content"
)

// sora simulates the web app: clicking create starts a generation that
// shows two images after one busy poll, and typing clears old results.
// Prompts listed in broken never get a usable button.
func soraPage(clock *fakeClock, broken map[string]bool) *fakePage {
	page := newFakePage()
	page.show(CreateButton, 1)
	generating := false
	page.onFill = func(text string) {
		delete(page.state, GeneratedImage)
		if broken[text] {
			delete(page.state, CreateButton)
		} else {
			page.show(CreateButton, 1)
		}
	}
	page.onClick = func(sel Selector) {
		if sel == CreateButton {
			generating = true
			page.setBusy(true)
		}
	}
	clock.onSleep = func(d time.Duration) {
		if generating && d == DefaultPollInterval {
			generating = false
			page.setBusy(false)
			page.show(GeneratedImage, 2)
		}
	}
	return page
}

func batchOf(names ...string) content.Batch {
	batch := make(content.Batch, len(names))
	for i, name := range names {
		batch[i] = content.WorkItem{Name: name, Prompt: "prompt " + name}
	}
	return batch
}

func TestRunSingleItemCompletes(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage()
	page.show(CreateButton, 1)
	page.show(GeneratedImage, 2)

	results := NewRunner(testOptions(clock)).Run(context.Background(), page, batchOf("A"))

	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, Submitted, results[0].Outcome)
	assert.Equal(t, Completion{Images: 2}, results[0].Completion)
	assert.Equal(t, []string{"prompt A", ""}, page.fills)
	assert.Equal(t, 1, clock.count(DefaultItemDelay))
	assert.Zero(t, clock.count(DefaultPollInterval))
}

func TestRunProcessesItemsInOrder(t *testing.T) {
	clock := newFakeClock()
	page := soraPage(clock, nil)

	results := NewRunner(testOptions(clock)).Run(context.Background(), page, batchOf("A", "B", "C"))

	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.OK(), res.Item.Name)
		assert.Equal(t, 2, res.Completion.Images)
	}
	assert.Equal(t, []string{"prompt A", "", "prompt B", "", "prompt C", ""}, page.fills)
	assert.Equal(t, 3, page.clicked(CreateButton))
}

func TestRunContinuesAfterSubmitFailure(t *testing.T) {
	clock := newFakeClock()
	page := soraPage(clock, map[string]bool{"prompt B": true})
	var seen []string
	runner := NewRunner(testOptions(clock))
	runner.OnResult = func(res ItemResult) { seen = append(seen, res.Item.Name) }

	results := runner.Run(context.Background(), page, batchOf("A", "B", "C"))

	require.Len(t, results, 3)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())
	assert.Equal(t, ButtonNotFound, results[1].Outcome)
	assert.ErrorIs(t, results[1].Err, ErrSubmitFailed)
	assert.True(t, results[2].OK())
	assert.Equal(t, []string{"A", "B", "C"}, seen)
	assert.Equal(t, []string{"prompt A", "", "prompt B", "prompt C", ""}, page.fills)
}

func TestRunContinuesAfterTimeout(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage()
	page.show(CreateButton, 1)
	page.onFill = func(text string) {
		if text == "prompt B" {
			page.show(GeneratedImage, 2)
		}
	}
	var timedOut []string
	opts := testOptions(clock)
	opts.PollAttempts = 3
	runner := NewRunner(opts)
	runner.OnTimeout = func(_ context.Context, item content.WorkItem) { timedOut = append(timedOut, item.Name) }

	results := runner.Run(context.Background(), page, batchOf("A", "B"))

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrGenerationTimeout)
	assert.Equal(t, Submitted, results[0].Outcome)
	assert.True(t, results[1].OK())
	assert.Equal(t, []string{"A"}, timedOut)
	assert.Equal(t, 3, clock.count(DefaultPollInterval))
	assert.Equal(t, 30*time.Second, results[0].Elapsed-DefaultFocusSettle*2)
}

func TestRunDrainsBusyPageFirst(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage()
	page.setBusy(true)
	page.show(CreateButton, 1)
	page.show(GeneratedImage, 2)
	clock.onSleep = func(d time.Duration) {
		if d == DefaultDrainInterval && clock.count(DefaultDrainInterval) == 2 {
			page.setBusy(false)
		}
	}

	results := NewRunner(testOptions(clock)).Run(context.Background(), page, batchOf("A"))

	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
	assert.Equal(t, DefaultDrainInterval, clock.sleeps[0])
	assert.Equal(t, DefaultDrainInterval, clock.sleeps[1])
	assert.Zero(t, clock.count(DefaultBusyBackoff))
}

func TestRunDrainLimitSubmitsAnyway(t *testing.T) {
	clock := newFakeClock()
	page := newFakePage()
	page.setBusy(true)
	opts := testOptions(clock)
	opts.DrainLimit = 2
	opts.BusyLimit = 1

	results := NewRunner(opts).Run(context.Background(), page, batchOf("A"))

	require.Len(t, results, 1)
	assert.Equal(t, StillBusyAfterRetries, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, ErrSubmitFailed)
	assert.Equal(t, 2, clock.count(DefaultDrainInterval))
	assert.Equal(t, []string{"prompt A"}, page.fills)
}

func TestRunRejectsEmptyPrompt(t *testing.T) {
	clock := newFakeClock()
	page := soraPage(clock, nil)
	batch := content.Batch{{Name: "empty"}, {Name: "B", Prompt: "prompt B"}}

	results := NewRunner(testOptions(clock)).Run(context.Background(), page, batch)

	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, ErrEmptyPrompt)
	assert.True(t, results[1].OK())
}

func TestRunStopsWhenCancelled(t *testing.T) {
	clock := newFakeClock()
	page := soraPage(clock, nil)
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunner(testOptions(clock))
	runner.OnResult = func(ItemResult) { cancel() }

	results := runner.Run(ctx, page, batchOf("A", "B", "C"))

	require.Len(t, results, 1)
	assert.True(t, results[0].OK())
}
