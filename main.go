package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"promptburner/cd"
	"promptburner/config"
	"promptburner/content"
	"promptburner/report"
	"promptburner/sora"
)

func main() {
	if err := run(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	log := cfg.Logger()

	catalog, err := content.Load(cfg.ContentFile)
	if err != nil {
		return err
	}

	mode, err := chooseMode()
	if err != nil {
		return err
	}

	if mode == content.ModeDistinct && cfg.Mailbox.Enabled() {
		extra, err := content.FetchMailboxPrompts(cfg.Mailbox, log)
		if err != nil {
			log.Warn("skipping mailbox prompts", log.Args("error", err))
		}
		catalog.Extra = extra
	}

	batch, err := catalog.Batch(mode)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return fmt.Errorf("nothing to generate in %s mode", mode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C stops at the next wait; the deferred release still runs.
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Warn("interrupted, stopping after the current step")
		cancel()
	}()

	tab, release, err := cd.Connect(ctx, cd.Options{
		Port:       cfg.DebugPort,
		URL:        cfg.SoraURL,
		HostMarker: cfg.HostMarker,
		Logger:     log,
	})
	if err != nil {
		if errors.Is(err, cd.ErrNotConnected) {
			printRemediation(cfg)
		}
		return fmt.Errorf("connect to Chrome: %w", err)
	}
	defer release()

	runner := sora.NewRunner(sora.Options{
		Logger:     log,
		DrainLimit: cfg.DrainLimit,
		BusyLimit:  cfg.BusyLimit,
	})

	if cfg.Influx.Enabled() {
		sink := report.NewInflux(cfg.Influx.URL, cfg.Influx.Token, cfg.Influx.Org, cfg.Influx.Bucket, log)
		defer sink.Close()
		runner.OnResult = func(res sora.ItemResult) {
			sink.Record(context.WithoutCancel(ctx), res)
		}
	}

	if cfg.ScreenshotDir != "" {
		runner.OnTimeout = func(ctx context.Context, item content.WorkItem) {
			path, err := tab.Screenshot(ctx, cfg.ScreenshotDir, item.Name)
			if err != nil {
				log.Warn("could not save screenshot", log.Args("item", item.Name, "error", err))
				return
			}
			log.Info("saved screenshot of timed out item", log.Args("item", item.Name, "path", path))
		}
	}

	pterm.DefaultSection.Printfln("Generating %d prompt(s) in %s mode", len(batch), mode)
	start := time.Now()

	results := runner.Run(ctx, tab, batch)

	pterm.Println()
	if err := report.RenderTable(results); err != nil {
		log.Warn("could not render summary", log.Args("error", err))
	}
	pterm.Println("Time Elapsed:", time.Since(start).Round(time.Second))

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run stopped after %d of %d items: %w", len(results), len(batch), err)
	}
	return nil
}

func chooseMode() (content.Mode, error) {
	labels := make([]string, len(content.Modes))
	for i, m := range content.Modes {
		labels[i] = m.Describe()
	}
	choice, err := pterm.DefaultInteractiveSelect.
		WithOptions(labels).
		WithDefaultText("Select generation type").
		Show()
	if err != nil {
		return "", fmt.Errorf("select generation type: %w", err)
	}
	return content.ParseMode(choice)
}

func printRemediation(cfg config.Config) {
	explore := strings.TrimSuffix(cfg.SoraURL, "/") + "/explore"
	pterm.Error.Println("Failed to connect to Chrome. Make sure Chrome is running with remote debugging enabled.")
	pterm.Info.Println("To start Chrome with debugging enabled:")
	for i, step := range cd.Remediation(cfg.DebugPort, cfg.ChromeUserDataDir, explore) {
		pterm.Printfln("%d. %s", i+1, step)
	}
}
