// Package crawler orchestrates the crawl: it decides what to visit, in
// what order, under what limits, calls the extractor per page, and hands
// the accumulated records to the analyzer.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/HappymanOkajima/element-hunter/internal/analyze"
	"github.com/HappymanOkajima/element-hunter/internal/config"
	"github.com/HappymanOkajima/element-hunter/internal/driver"
	"github.com/HappymanOkajima/element-hunter/internal/extract"
	"github.com/HappymanOkajima/element-hunter/internal/linknorm"
	"github.com/HappymanOkajima/element-hunter/internal/palette"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// Crawler runs one bounded depth-first crawl against a single serially
// reused page driver.
type Crawler struct {
	cfg    *config.Config
	drv    driver.Driver
	logger *slog.Logger
}

// New creates a Crawler.
func New(cfg *config.Config, drv driver.Driver, logger *slog.Logger) *Crawler {
	return &Crawler{
		cfg:    cfg,
		drv:    drv,
		logger: logger.With("component", "crawler"),
	}
}

// crawlContext is the shared mutable state of one crawl. It is created at
// crawl start and touched only by the single traversal task, so no
// locking discipline is needed.
type crawlContext struct {
	visited   map[string]struct{}
	pages     []types.PageRecord
	palette   types.SitePalette
	rootTitle string
	startedAt time.Time
}

// frame is one pending visit on the explicit traversal stack.
type frame struct {
	path  string
	depth int
}

// Run crawls the configured site and returns the finished output
// document. Only configuration-level failures (bad target URL, root page
// unreachable) return an error; per-page failures are logged and the page
// is omitted.
func (c *Crawler) Run(ctx context.Context) (*types.CrawlOutput, error) {
	base, err := url.Parse(c.cfg.Crawl.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidURL, err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", types.ErrInvalidURL, c.cfg.Crawl.URL)
	}

	cc := &crawlContext{
		visited:   make(map[string]struct{}),
		startedAt: time.Now(),
	}

	rootPath := linknorm.CanonicalPath(base.Path)

	c.logger.Info("crawl starting",
		"url", c.cfg.Crawl.URL,
		"max_depth", c.cfg.Crawl.MaxDepth,
		"max_pages", c.cfg.Crawl.MaxPages,
	)

	// The root page is loaded once before the crawl proper: the palette
	// is extracted here, and the loaded page feeds the traversal at
	// depth 0 without a duplicate navigation.
	rootEx, err := c.loadAndExtract(ctx, base, rootPath)
	if err != nil {
		return nil, fmt.Errorf("load root page: %w", err)
	}
	cc.rootTitle = rootEx.Title
	cc.palette = c.extractPalette(ctx)

	c.traverse(ctx, cc, base, rootPath, rootEx)

	duration := time.Since(cc.startedAt)
	c.logger.Info("crawl complete",
		"pages", len(cc.pages),
		"duration", duration.Round(time.Millisecond),
	)

	out := analyze.BuildOutput(analyze.Input{
		SiteID:              c.siteID(base),
		SiteName:            c.siteName(cc.rootTitle, base),
		BaseURL:             base.Scheme + "://" + base.Host,
		Palette:             cc.palette,
		Pages:               cc.pages,
		StartedAt:           cc.startedAt,
		Duration:            duration,
		CommonLinkThreshold: c.cfg.Crawl.CommonLinkThreshold,
	})
	return out, nil
}

// traverse runs the depth-first walk over an explicit LIFO stack. A path
// is marked visited at the moment it is dequeued, before extraction, so a
// link rediscovered mid-crawl is never re-queued.
func (c *Crawler) traverse(ctx context.Context, cc *crawlContext, base *url.URL, rootPath string, rootEx *extract.Extraction) {
	stack := []frame{{path: rootPath, depth: 0}}
	preloaded := rootEx

	for len(stack) > 0 {
		// Cooperative cancellation check at the traversal gate.
		if err := ctx.Err(); err != nil {
			c.logger.Warn("crawl cancelled", "pending", len(stack), "reason", err)
			return
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := cc.visited[f.path]; seen {
			continue
		}
		if f.depth > c.cfg.Crawl.MaxDepth {
			continue
		}
		cc.visited[f.path] = struct{}{}
		if len(cc.pages) >= c.cfg.Crawl.MaxPages {
			continue
		}

		var ex *extract.Extraction
		if preloaded != nil && f.depth == 0 && f.path == rootPath {
			ex = preloaded
			preloaded = nil
		} else {
			var err error
			ex, err = c.loadAndExtract(ctx, base, f.path)
			if err != nil {
				// Per-page failures are isolated: drop the page, keep
				// crawling siblings.
				c.logger.Warn("page skipped", "path", f.path, "depth", f.depth, "error", err)
				continue
			}
		}

		rec := types.PageRecord{
			Path:          f.path,
			Depth:         f.depth,
			Title:         ex.Title,
			Elements:      ex.Elements,
			ElementCount:  ex.ElementCount,
			Links:         linknorm.NormalizeAll(ex.RawLinks, base),
			ContentLength: ex.ContentLength,
			Content:       ex.Content,
			Images:        ex.Images,
			SocialImage:   ex.SocialImage,
		}
		if f.depth > 0 {
			rec.ParentPath = parentOf(f.path, cc.pages)
		}

		cc.pages = append(cc.pages, rec)

		c.logger.Info("page recorded",
			"path", f.path,
			"depth", f.depth,
			"elements", rec.ElementCount,
			"links", len(rec.Links),
		)

		// Push in reverse so the page's first link is popped next:
		// depth-first, document order.
		for i := len(rec.Links) - 1; i >= 0; i-- {
			link := rec.Links[i]
			if _, seen := cc.visited[link]; seen {
				continue
			}
			stack = append(stack, frame{path: link, depth: f.depth + 1})
		}
	}
}

// loadAndExtract navigates to a path, waits out the politeness delay, and
// extracts the page fingerprint. The configured timeout scopes the
// navigation only.
func (c *Crawler) loadAndExtract(ctx context.Context, base *url.URL, path string) (*extract.Extraction, error) {
	pageURL := base.Scheme + "://" + base.Host + path

	navCtx, cancel := context.WithTimeout(ctx, c.cfg.Crawl.Timeout)
	err := c.drv.Navigate(navCtx, pageURL)
	cancel()
	if err != nil {
		return nil, err
	}

	if d := c.cfg.Crawl.Delay; d > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(d):
		}
	}

	doc, err := c.drv.HTML(ctx)
	if err != nil {
		return nil, &types.ExtractError{Path: path, Err: err}
	}
	ex, err := extract.FromHTML(doc, base)
	if err != nil {
		return nil, &types.ExtractError{Path: path, Err: err}
	}

	// The live title can differ from the serialized one on JS-heavy pages.
	if t, err := c.drv.Title(ctx); err == nil {
		if t = strings.TrimSpace(t); t != "" {
			ex.Title = t
		}
	}
	return ex, nil
}

// extractPalette reads the root page's style snapshot. Any failure here
// substitutes the fixed default palette; it never aborts the crawl.
func (c *Crawler) extractPalette(ctx context.Context) types.SitePalette {
	snap, err := c.drv.Styles(ctx)
	if err != nil {
		c.logger.Warn("palette extraction failed, using default palette", "error", err)
		return palette.Default()
	}
	return palette.FromSnapshot(snap)
}

// parentOf derives a page's parent by removing the last path segment and
// searching already-recorded pages for an exact match. Because only pages
// recorded so far are consulted, a page reachable via two subtrees
// attributes to whichever visited it first.
func parentOf(path string, recorded []types.PageRecord) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	parent := path[:idx]
	if parent == "" {
		parent = "/"
	}
	for i := range recorded {
		if recorded[i].Path == parent {
			return parent
		}
	}
	return ""
}

func (c *Crawler) siteID(base *url.URL) string {
	if c.cfg.Crawl.SiteID != "" {
		return c.cfg.Crawl.SiteID
	}
	return slugifyHost(base.Hostname())
}

func (c *Crawler) siteName(rootTitle string, base *url.URL) string {
	if c.cfg.Crawl.SiteName != "" {
		return c.cfg.Crawl.SiteName
	}
	if rootTitle != "" {
		return rootTitle
	}
	return base.Hostname()
}

// slugifyHost turns a hostname into a site id: strip www., strip the TLD
// suffix, lowercase, and squash non-alphanumerics to '-'.
func slugifyHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	if i := strings.LastIndex(host, "."); i > 0 {
		host = host[:i]
	}
	var b strings.Builder
	for _, r := range host {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('-')
		}
	}
	return b.String()
}
