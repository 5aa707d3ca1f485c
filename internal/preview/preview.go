// Package preview renders generated pages in headless Chrome and captures
// screenshots.
package preview

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/folio/internal/logger"
)

// ErrNoBrowser is returned when no Chrome or Chromium binary can be found.
var ErrNoBrowser = errors.New("no Chrome binary found")

// Config configures screenshots.
type Config struct {
	Width   int
	Height  int
	Timeout time.Duration

	// Settle is how long to wait after load for fonts and scripts.
	Settle time.Duration

	// ExecPath overrides the browser binary lookup.
	ExecPath string
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Width:   1280,
		Height:  800,
		Timeout: 30 * time.Second,
		Settle:  500 * time.Millisecond,
	}
}

// Common Chrome/Chromium binary names across different systems
var chromeBinaryNames = []string{
	"google-chrome-stable",
	"google-chrome",
	"chromium",
	"chromium-browser",
	"chrome",
	"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	"/Applications/Chromium.app/Contents/MacOS/Chromium",
	"/snap/bin/chromium",
	`C:\Program Files\Google\Chrome\Application\chrome.exe`,
}

// FindChrome returns the first browser binary found, or "".
func FindChrome() string {
	for _, name := range chromeBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			logger.Debug("found Chrome binary", "path", path)
			return path
		}
	}
	return ""
}

// Screenshot renders html and returns a full-page PNG.
func Screenshot(ctx context.Context, html string, cfg Config) ([]byte, error) {
	defaults := DefaultConfig()
	if cfg.Width == 0 {
		cfg.Width = defaults.Width
	}
	if cfg.Height == 0 {
		cfg.Height = defaults.Height
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}

	execPath := cfg.ExecPath
	if execPath == "" {
		execPath = FindChrome()
	}
	if execPath == "" {
		return nil, ErrNoBrowser
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(cfg.Width, cfg.Height),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp: " + fmt.Sprintf(format, args...))
		}),
	)
	defer cancelBrowser()

	timeoutCtx, cancelTimeout := context.WithTimeout(browserCtx, cfg.Timeout)
	defer cancelTimeout()

	var png []byte
	start := time.Now()
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.Sleep(cfg.Settle),
		chromedp.FullScreenshot(&png, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	logger.Debug("screenshot captured", "bytes", len(png), "duration", time.Since(start))
	return png, nil
}
