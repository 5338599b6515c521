package driver

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/palette"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StaticDriver is a page driver without a browser: a plain HTTP GET per
// navigation. It cannot compute styles, so palette extraction always
// falls back to the default palette, and JavaScript-rendered content is
// invisible to it. Useful for static sites and fast test crawls.
type StaticDriver struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger

	html  string
	title string
}

// NewStaticDriver creates a static HTTP page driver.
func NewStaticDriver(cfg *config.Config, logger *slog.Logger) *StaticDriver {
	ua := cfg.Driver.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return &StaticDriver{
		client:    &http.Client{},
		userAgent: ua,
		logger:    logger.With("component", "static_driver"),
	}
}

// Navigate fetches the URL and stores the decoded body as the current
// document.
func (d *StaticDriver) Navigate(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &types.NavigateError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", d.userAgent)
	// Setting Accept-Encoding manually disables the transport's automatic
	// gzip handling, so both encodings are decoded below.
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := d.client.Do(req)
	if err != nil {
		return &types.NavigateError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return &types.NavigateError{URL: rawURL, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var body io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		body = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return &types.NavigateError{URL: rawURL, Err: err}
		}
		defer gz.Close()
		body = gz
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return &types.NavigateError{URL: rawURL, Err: err}
	}

	d.html = string(raw)
	d.title = ""
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.html)); err == nil {
		d.title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	d.logger.Debug("page fetched", "url", rawURL, "bytes", len(raw))
	return nil
}

func (d *StaticDriver) HTML(ctx context.Context) (string, error) {
	return d.html, nil
}

func (d *StaticDriver) Title(ctx context.Context) (string, error) {
	return d.title, nil
}

// Styles is unavailable without a rendering engine.
func (d *StaticDriver) Styles(ctx context.Context) (*palette.StyleSnapshot, error) {
	return nil, types.ErrStylesUnavailable
}

func (d *StaticDriver) Close() error {
	d.client.CloseIdleConnections()
	return nil
}
