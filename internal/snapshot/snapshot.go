// Package snapshot renders the served report page in headless Chrome and
// saves it as a PNG.
package snapshot

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	apierrors "bikepulse/internal/errors"
	"bikepulse/internal/infrastructure"
)

const (
	DefaultWidth  = 1400
	DefaultHeight = 1000
	DefaultSettle = 2 * time.Second

	// pngQuality makes chromedp capture PNG rather than JPEG
	pngQuality = 100
)

// Options describes one capture
type Options struct {
	URL     string
	Output  string
	Timeout time.Duration
	// Settle is how long to wait after load for the charts and maps to draw
	Settle   time.Duration
	Width    int
	Height   int
	Headless bool
}

// Capturer takes page screenshots through a chromedp allocator
type Capturer struct {
	logger *slog.Logger
	// allocatorOptions lets tests point at a specific browser binary
	allocatorOptions []chromedp.ExecAllocatorOption
}

// New creates a capturer
func New(logger *slog.Logger, extra ...chromedp.ExecAllocatorOption) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Capturer{
		logger:           infrastructure.WithComponent(logger, "snapshot"),
		allocatorOptions: extra,
	}
}

func (o *Options) normalize() error {
	if !strings.HasPrefix(o.URL, "http://") && !strings.HasPrefix(o.URL, "https://") {
		return apierrors.NewAppValidationError("snapshot URL must be http(s)", nil).
			WithContext("url", o.URL)
	}
	if strings.TrimSpace(o.Output) == "" {
		return apierrors.NewAppValidationError("snapshot output path is required", nil)
	}
	if !strings.EqualFold(filepath.Ext(o.Output), ".png") {
		return apierrors.NewAppValidationError("snapshot output must be a .png file", nil).
			WithContext("output", o.Output)
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Settle < 0 {
		o.Settle = 0
	}
	return nil
}

// Capture loads opts.URL and writes a full-page PNG to opts.Output
func (c *Capturer) Capture(ctx context.Context, opts Options) error {
	if err := opts.normalize(); err != nil {
		return err
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	allocOpts = append(allocOpts, c.allocatorOptions...)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	start := time.Now()
	var buf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(opts.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(opts.Settle),
		chromedp.FullScreenshot(&buf, pngQuality),
	)
	if err != nil {
		return apierrors.NewNetworkError("failed to capture "+opts.URL, err)
	}

	if dir := filepath.Dir(opts.Output); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apierrors.NewStorageError("failed to create snapshot directory", err)
		}
	}
	if err := os.WriteFile(opts.Output, buf, 0644); err != nil {
		return apierrors.NewStorageError("failed to write snapshot", err).
			WithContext("output", opts.Output)
	}

	c.logger.InfoContext(ctx, "Snapshot saved",
		slog.String("url", opts.URL),
		slog.String("output", opts.Output),
		slog.Int("bytes", len(buf)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
