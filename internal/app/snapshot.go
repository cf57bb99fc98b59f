package app

import (
	"context"
	"fmt"
	"log/slog"

	"bikepulse/internal/snapshot"
)

// Snapshot serves the report, captures it to output as a PNG and shuts the
// server down again. No browser tab is opened.
func (a *Application) Snapshot(ctx context.Context, output string) error {
	a.Config.Report.OpenBrowser = false

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(context.Background()); err != nil {
			a.Logger.ErrorContext(ctx, "Shutdown after snapshot failed", slog.String("error", err.Error()))
		}
	}()

	if err := a.WaitReady(ctx); err != nil {
		return fmt.Errorf("report server not ready: %w", err)
	}

	return a.capture(ctx, snapshot.Options{
		URL:      a.URL(),
		Output:   output,
		Timeout:  a.Config.Report.SnapshotTimeout,
		Settle:   snapshot.DefaultSettle,
		Headless: true,
	})
}
