package snapshot

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"ottawa-housing/config"
	"ottawa-housing/utils"
)

// Page is a dashboard route to capture.
type Page struct {
	Name string
	Path string
}

// DefaultPages are the two dashboard views.
var DefaultPages = []Page{
	{Name: "sales", Path: "/"},
	{Name: "rentals", Path: "/rentals"},
}

// Capturer takes full-page screenshots of a running dashboard.
type Capturer struct {
	baseURL   string
	outDir    string
	chromeBin string
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// New creates a Capturer for the dashboard at cfg.DashboardURL.
func New(cfg *config.Config, logger *utils.Logger) *Capturer {
	return &Capturer{
		baseURL:   strings.TrimRight(cfg.DashboardURL, "/"),
		outDir:    cfg.SnapshotDir,
		chromeBin: cfg.ChromeBin,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// OutputPath is where the screenshot of p is written.
func (c *Capturer) OutputPath(p Page) string {
	return filepath.Join(c.outDir, p.Name+".png")
}

// Capture screenshots every page and returns the written file paths. Pages
// that fail are logged and skipped; an error is returned only when none
// succeeded.
func (c *Capturer) Capture(ctx context.Context, pages []Page) ([]string, error) {
	if err := os.MkdirAll(c.outDir, 0755); err != nil {
		return nil, fmt.Errorf("snapshot: create output dir: %w", err)
	}

	chromeBin := findChromeBinary(c.chromeBin)
	c.logger.Info("[snapshot] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 1024),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	var written []string
	var lastErr error
	for _, p := range pages {
		path, err := c.capturePage(browserCtx, p)
		if err != nil {
			c.logger.Error("[snapshot] %s failed: %v", p.Name, err)
			lastErr = err
			continue
		}
		c.logger.Info("[snapshot] Saved %s", path)
		written = append(written, path)
	}

	if len(written) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return written, nil
}

func (c *Capturer) capturePage(browserCtx context.Context, p Page) (string, error) {
	url := c.baseURL + p.Path
	var buf []byte

	err := c.retry.Do(browserCtx, "snapshot-"+p.Name, func() error {
		ctx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, 45*time.Second)
		defer cancelTimeout()

		return chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.WaitVisible("main", chromedp.ByQuery),
			chromedp.FullScreenshot(&buf, 90),
		)
	})
	if err != nil {
		return "", err
	}

	path := c.OutputPath(p)
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return "", fmt.Errorf("snapshot: write %s: %w", path, err)
	}
	return path, nil
}

// findChromeBinary locates a Chrome/Chromium executable. An explicit path
// wins; an empty result lets chromedp fall back to its own lookup.
func findChromeBinary(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
