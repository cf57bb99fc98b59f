package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

type browserMethod struct {
	name string
	cmd  string
	args []string
}

// OpenBrowser tries each platform launcher in turn until one starts
func OpenBrowser(ctx context.Context, url string) error {
	var lastErr error
	for _, method := range getBrowserOpenMethods(url) {
		slog.DebugContext(ctx, "Attempting to open browser",
			slog.String("method", method.name),
			slog.String("url", url))

		if err := exec.Command(method.cmd, method.args...).Start(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed to open browser: %w", lastErr)
}

func getBrowserOpenMethods(url string) []browserMethod {
	switch runtime.GOOS {
	case "windows":
		return []browserMethod{
			{name: "start_command", cmd: "cmd", args: []string{"/c", "start", "", url}},
			{name: "rundll32", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler", url}},
		}
	case "darwin":
		return []browserMethod{
			{name: "open", cmd: "open", args: []string{url}},
		}
	default:
		return []browserMethod{
			{name: "xdg-open", cmd: "xdg-open", args: []string{url}},
			{name: "sensible-browser", cmd: "sensible-browser", args: []string{url}},
		}
	}
}
