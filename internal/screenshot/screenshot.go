// Package screenshot captures headless-browser screenshots of web
// services found during a scan. Port 443 is browsed over https,
// everything else over http; failures are logged and skipped so one
// dead host never stops the sweep.
package screenshot

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"
)

// DefaultPageTimeout bounds navigation and capture per page.
const DefaultPageTimeout = 10 * time.Second

// Options configures a capture sweep.
type Options struct {
	// OutputDir receives the PNG files. Empty selects a timestamped
	// directory under the working directory.
	OutputDir string
	// Width and Height set the browser window. Zero means 1280x720.
	Width, Height int
	// PageTimeout bounds each page. Zero means DefaultPageTimeout.
	PageTimeout time.Duration
}

// Entry is one host/port to capture.
type Entry struct {
	Host string
	Port int
}

// ParseEntry accepts "host port" and "host:port" lines.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	var host, portStr string
	if fields := strings.Fields(line); len(fields) == 2 {
		host, portStr = fields[0], fields[1]
	} else if h, p, err := net.SplitHostPort(line); err == nil {
		host, portStr = h, p
	} else {
		return Entry{}, fmt.Errorf("expected \"host port\" or \"host:port\", got %q", line)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port < 1 || port > 65535 {
		return Entry{}, fmt.Errorf("invalid port %q", portStr)
	}
	return Entry{Host: host, Port: port}, nil
}

// URL picks the scheme by port: 443 is https, the rest http.
func (e Entry) URL() string {
	scheme := "http"
	if e.Port == 443 {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, e.Host, e.Port)
}

// FileName is <scheme>_<host with dots underscored>_<port>.png.
func (e Entry) FileName() string {
	scheme := "http"
	if e.Port == 443 {
		scheme = "https"
	}
	return fmt.Sprintf("%s_%s_%d.png", scheme, strings.ReplaceAll(e.Host, ".", "_"), e.Port)
}

// TimestampedDir names the default output directory.
func TimestampedDir(now time.Time) string {
	return "screenshots_" + now.Format("20060102_150405")
}

// Result summarizes a sweep.
type Result struct {
	Captured []string
	Failed   int
	Dir      string
}

// Capture screenshots every entry into the output directory. A shared
// browser process serves all pages; each page gets its own tab and
// timeout.
func Capture(ctx context.Context, entries []Entry, opts Options) (*Result, error) {
	if opts.Width == 0 || opts.Height == 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = DefaultPageTimeout
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = TimestampedDir(time.Now())
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(opts.Width, opts.Height),
	)
	if os.Geteuid() == 0 {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	// Start the browser once up front so per-page failures are page
	// failures, not launch failures.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	res := &Result{Dir: dir}
	for _, e := range entries {
		path := filepath.Join(dir, e.FileName())
		if err := capturePage(browserCtx, e.URL(), path, opts.PageTimeout); err != nil {
			log.Warn("screenshot failed", "url", e.URL(), "error", err)
			res.Failed++
			continue
		}
		log.Info("captured", "url", e.URL(), "file", path)
		res.Captured = append(res.Captured, path)
	}
	return res, nil
}

func capturePage(browserCtx context.Context, url, path string, timeout time.Duration) error {
	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()
	pageCtx, pageCancel := context.WithTimeout(tabCtx, timeout)
	defer pageCancel()

	var buf []byte
	err := chromedp.Run(pageCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.CaptureScreenshot(&buf),
	)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
