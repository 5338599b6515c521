package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/palette"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// RodDriver drives a headless Chromium page via Rod. One page is created
// up front and reused serially for the whole crawl; there is no parallel
// navigation in this model.
type RodDriver struct {
	browser *rod.Browser
	page    *rod.Page
	logger  *slog.Logger
	closed  bool
}

// NewRodDriver launches a headless browser and opens the single crawl page.
func NewRodDriver(cfg *config.Config, logger *slog.Logger) (*RodDriver, error) {
	l := launcher.New().
		Headless(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("disable-blink-features", "AutomationControlled")

	launchURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(launchURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	var page *rod.Page
	if cfg.Driver.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = browser.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}

	if ua := cfg.Driver.UserAgent; ua != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: ua}); err != nil {
			logger.Warn("failed to set user agent", "error", err)
		}
	}

	logger.Info("browser driver ready", "stealth", cfg.Driver.Stealth)

	return &RodDriver{
		browser: browser,
		page:    page,
		logger:  logger.With("component", "rod_driver"),
	}, nil
}

// Navigate loads the URL and waits for the page to settle. The caller's
// ctx carries the per-navigation timeout.
func (d *RodDriver) Navigate(ctx context.Context, rawURL string) error {
	if d.closed {
		return types.ErrDriverClosed
	}
	p := d.page.Context(ctx)

	if err := p.Navigate(rawURL); err != nil {
		return &types.NavigateError{URL: rawURL, Err: err}
	}
	if err := p.WaitLoad(); err != nil {
		return &types.NavigateError{URL: rawURL, Err: err}
	}
	// Stability is best-effort: some pages animate forever.
	if err := p.WaitStable(300 * time.Millisecond); err != nil {
		d.logger.Warn("page stability timeout, continuing", "url", rawURL, "error", err)
	}
	return nil
}

// HTML returns the current serialized document.
func (d *RodDriver) HTML(ctx context.Context) (string, error) {
	if d.closed {
		return "", types.ErrDriverClosed
	}
	html, err := d.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("page html: %w", err)
	}
	return html, nil
}

// Title returns the current page title.
func (d *RodDriver) Title(ctx context.Context) (string, error) {
	if d.closed {
		return "", types.ErrDriverClosed
	}
	info, err := d.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}
	return info.Title, nil
}

// Styles runs the versioned style extraction script against the current
// page and decodes its snapshot.
func (d *RodDriver) Styles(ctx context.Context) (*palette.StyleSnapshot, error) {
	if d.closed {
		return nil, types.ErrDriverClosed
	}
	res, err := d.page.Context(ctx).Eval(styleScriptV1)
	if err != nil {
		return nil, fmt.Errorf("style script: %w", err)
	}

	var snap palette.StyleSnapshot
	if err := json.Unmarshal([]byte(res.Value.Str()), &snap); err != nil {
		return nil, fmt.Errorf("decode style snapshot: %w", err)
	}
	return &snap, nil
}

// Close shuts down the page and browser.
func (d *RodDriver) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.page != nil {
		_ = d.page.Close()
	}
	if d.browser != nil {
		return d.browser.Close()
	}
	return nil
}
