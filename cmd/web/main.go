// Command web serves the BikePulse report on the configured address and
// opens it in the default browser.
//
//	web                       serve until interrupted
//	web -snapshot report.png  serve, capture the page headlessly and exit
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"bikepulse/internal/app"
)

func main() {
	configPath := flag.String("config", "", "path to bikepulse.yaml (defaults to the well-known locations)")
	snapshotPath := flag.String("snapshot", "", "write a PNG of the report to this path and exit")
	flag.Parse()

	application, err := app.NewApplication(*configPath)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *snapshotPath != "" {
		if err := application.Snapshot(context.Background(), *snapshotPath); err != nil {
			application.Logger.Error("Snapshot failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
