package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/palette"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// fakeDriver serves pages from an in-memory map keyed by path. It records
// every navigation so tests can assert what was (not) loaded.
type fakeDriver struct {
	pages   map[string]string
	fail    map[string]bool
	styles  *palette.StyleSnapshot
	current string
	visits  []string
}

func (d *fakeDriver) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	d.visits = append(d.visits, u.Path)
	if d.fail[u.Path] {
		return &types.NavigateError{URL: rawURL, Err: errors.New("connection refused")}
	}
	if _, ok := d.pages[u.Path]; !ok {
		return &types.NavigateError{URL: rawURL, Err: errors.New("not found")}
	}
	d.current = u.Path
	return nil
}

func (d *fakeDriver) HTML(ctx context.Context) (string, error) {
	return d.pages[d.current], nil
}

func (d *fakeDriver) Title(ctx context.Context) (string, error) {
	return "", nil
}

func (d *fakeDriver) Styles(ctx context.Context) (*palette.StyleSnapshot, error) {
	if d.styles == nil {
		return nil, types.ErrStylesUnavailable
	}
	return d.styles, nil
}

func (d *fakeDriver) Close() error { return nil }

func page(title string, links ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><head><title>%s</title></head><body><h1>%s</h1>", title, title)
	for _, l := range links {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, l, l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func testConfig(rawURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Crawl.URL = rawURL
	cfg.Crawl.Delay = 0
	cfg.Crawl.Timeout = time.Second
	return cfg
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runCrawl(t *testing.T, cfg *config.Config, drv *fakeDriver) *types.CrawlOutput {
	t.Helper()
	out, err := New(cfg, drv, testLogger()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out
}

func pagePaths(out *types.CrawlOutput) []string {
	paths := make([]string, len(out.Pages))
	for i, p := range out.Pages {
		paths[i] = p.Path
	}
	return paths
}

func TestDepthFirstOrder(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":             page("Home", "/about", "/docs"),
		"/about":        page("About"),
		"/docs":         page("Docs", "/docs/install", "/docs/api"),
		"/docs/install": page("Install"),
		"/docs/api":     page("API"),
	}}

	out := runCrawl(t, testConfig("https://example.com"), drv)

	want := []string{"/", "/about", "/docs", "/docs/install", "/docs/api"}
	got := pagePaths(out)
	if len(got) != len(want) {
		t.Fatalf("pages = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pages[%d] = %q, want %q (depth-first, document order)", i, got[i], want[i])
		}
	}

	depths := map[string]int{"/": 0, "/about": 1, "/docs": 1, "/docs/install": 2, "/docs/api": 2}
	for _, p := range out.Pages {
		if p.Depth != depths[p.Path] {
			t.Errorf("depth(%s) = %d, want %d", p.Path, p.Depth, depths[p.Path])
		}
	}
}

func TestParentAttribution(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":             page("Home", "/docs"),
		"/docs":         page("Docs", "/docs/install"),
		"/docs/install": page("Install"),
	}}

	out := runCrawl(t, testConfig("https://example.com"), drv)

	parents := map[string]string{}
	for _, p := range out.Pages {
		parents[p.Path] = p.ParentPath
	}
	if parents["/"] != "" {
		t.Errorf("root parent = %q, want empty", parents["/"])
	}
	if parents["/docs"] != "/" {
		t.Errorf("parent(/docs) = %q, want /", parents["/docs"])
	}
	if parents["/docs/install"] != "/docs" {
		t.Errorf("parent(/docs/install) = %q, want /docs", parents["/docs/install"])
	}
}

func TestMaxDepthBound(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":      page("Home", "/a"),
		"/a":     page("A", "/a/b"),
		"/a/b":   page("B", "/a/b/c"),
		"/a/b/c": page("C"),
	}}

	cfg := testConfig("https://example.com")
	cfg.Crawl.MaxDepth = 1
	out := runCrawl(t, cfg, drv)

	got := pagePaths(out)
	if len(got) != 2 || got[0] != "/" || got[1] != "/a" {
		t.Fatalf("pages = %v, want [/ /a]", got)
	}
	// Beyond-depth links are dropped without being loaded.
	for _, v := range drv.visits {
		if v == "/a/b" {
			t.Error("page beyond max depth was navigated to")
		}
	}
}

func TestMaxPagesBound(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":   page("Home", "/p1", "/p2", "/p3", "/p4"),
		"/p1": page("P1"),
		"/p2": page("P2"),
		"/p3": page("P3"),
		"/p4": page("P4"),
	}}

	cfg := testConfig("https://example.com")
	cfg.Crawl.MaxPages = 3
	out := runCrawl(t, cfg, drv)

	got := pagePaths(out)
	want := []string{"/", "/p1", "/p2"}
	if len(got) != len(want) {
		t.Fatalf("pages = %v, want %v", got, want)
	}
	if out.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", out.TotalPages)
	}
	// Pages beyond the budget are never loaded.
	for _, v := range drv.visits {
		if v == "/p3" || v == "/p4" {
			t.Errorf("page %s navigated despite exhausted page budget", v)
		}
	}
}

func TestCycleVisitedOnce(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":  page("Home", "/b"),
		"/b": page("B", "/", "/b"),
	}}

	cfg := testConfig("https://example.com")
	cfg.Crawl.MaxDepth = 5
	out := runCrawl(t, cfg, drv)

	got := pagePaths(out)
	if len(got) != 2 || got[0] != "/" || got[1] != "/b" {
		t.Fatalf("pages = %v, want [/ /b]", got)
	}
	loads := map[string]int{}
	for _, v := range drv.visits {
		loads[v]++
	}
	if loads["/"] != 1 || loads["/b"] != 1 {
		t.Errorf("navigation counts = %v, each page must load exactly once", loads)
	}
}

func TestPageFailureIsolated(t *testing.T) {
	drv := &fakeDriver{
		pages: map[string]string{
			"/":     page("Home", "/bad", "/good"),
			"/good": page("Good"),
		},
		fail: map[string]bool{"/bad": true},
	}

	out := runCrawl(t, testConfig("https://example.com"), drv)

	got := pagePaths(out)
	if len(got) != 2 || got[0] != "/" || got[1] != "/good" {
		t.Fatalf("pages = %v, want failing page omitted and sibling kept", got)
	}
}

func TestRootFailureIsFatal(t *testing.T) {
	drv := &fakeDriver{
		pages: map[string]string{},
		fail:  map[string]bool{"/": true},
	}

	_, err := New(testConfig("https://example.com"), drv, testLogger()).Run(context.Background())
	if err == nil {
		t.Fatal("unreachable root must abort the crawl")
	}
	var nav *types.NavigateError
	if !errors.As(err, &nav) {
		t.Errorf("error = %v, want a NavigateError in the chain", err)
	}
}

func TestInvalidTargetURL(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{}}
	_, err := New(testConfig("not a url"), drv, testLogger()).Run(context.Background())
	if !errors.Is(err, types.ErrInvalidURL) {
		t.Errorf("error = %v, want ErrInvalidURL", err)
	}
}

func TestPaletteFallsBackToDefault(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{"/": page("Home")}}

	out := runCrawl(t, testConfig("https://example.com"), drv)
	if out.Palette != palette.Default() {
		t.Errorf("palette = %+v, want default when styles are unavailable", out.Palette)
	}
}

func TestPaletteFromSnapshot(t *testing.T) {
	drv := &fakeDriver{
		pages: map[string]string{"/": page("Home")},
		styles: &palette.StyleSnapshot{
			Background: "rgb(250, 250, 250)",
			Text:       "rgb(30, 30, 30)",
			Candidates: []palette.Candidate{{Value: "rgb(220, 30, 30)", Weight: 10}},
		},
	}

	out := runCrawl(t, testConfig("https://example.com"), drv)
	if out.Palette.Primary != "#dc1e1e" {
		t.Errorf("primary = %q, want #dc1e1e", out.Palette.Primary)
	}
	if out.Palette.Background != "#fafafa" {
		t.Errorf("background = %q, want #fafafa", out.Palette.Background)
	}
}

func TestSiteIdentity(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{"/": page("My Product")}}

	out := runCrawl(t, testConfig("https://www.my-product.example.com"), drv)
	if out.SiteID != "my-product-example" {
		t.Errorf("siteId = %q, want my-product-example", out.SiteID)
	}
	if out.SiteName != "My Product" {
		t.Errorf("siteName = %q, want the root title", out.SiteName)
	}
	if out.BaseURL != "https://www.my-product.example.com" {
		t.Errorf("baseUrl = %q", out.BaseURL)
	}
}

func TestSiteIdentityOverrides(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{"/": page("Ignored Title")}}

	cfg := testConfig("https://example.com")
	cfg.Crawl.SiteID = "custom-id"
	cfg.Crawl.SiteName = "Custom Name"
	out := runCrawl(t, cfg, drv)

	if out.SiteID != "custom-id" {
		t.Errorf("siteId = %q, want the configured override", out.SiteID)
	}
	if out.SiteName != "Custom Name" {
		t.Errorf("siteName = %q, want the configured override", out.SiteName)
	}
}

func TestCancellationStopsTraversal(t *testing.T) {
	drv := &fakeDriver{pages: map[string]string{
		"/":  page("Home", "/a"),
		"/a": page("A"),
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := New(testConfig("https://example.com"), drv, testLogger()).Run(ctx)
	if err != nil {
		// Cancellation during the root load surfaces there; either way
		// the crawl must not hang.
		return
	}
	if out.TotalPages != 0 {
		t.Errorf("TotalPages = %d, cancelled crawl should record nothing past the gate", out.TotalPages)
	}
}

func TestSlugifyHost(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"example.com", "example"},
		{"www.example.com", "example"},
		{"My-Site.example.co", "my-site-example"},
		{"sub.domain.example.org", "sub-domain-example"},
		{"localhost", "localhost"},
	}
	for _, tt := range tests {
		if got := slugifyHost(tt.host); got != tt.want {
			t.Errorf("slugifyHost(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
