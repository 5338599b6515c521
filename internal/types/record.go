package types

import "time"

// ElementSample is the per-page census entry for one tag: how often it
// occurred and up to 30 unique samples. The two sample lists are mutually
// exclusive: img elements collect image URLs, every other tag collects the
// element's own text.
type ElementSample struct {
	Tag             string   `json:"tag"`
	Count           int      `json:"count"`
	SampleTexts     []string `json:"sampleTexts,omitempty"`
	SampleImageURLs []string `json:"sampleImageUrls,omitempty"`
}

// PageRecord is one page's extraction result. It is created once when the
// page is visited and never mutated afterward, except that the analyzer
// attaches ParentPath and EstimatedWidth.
type PageRecord struct {
	Path           string          `json:"path"`
	Depth          int             `json:"depth"`
	Title          string          `json:"title"`
	Elements       []ElementSample `json:"elements"`
	ElementCount   int             `json:"elementCount"`
	Links          []string        `json:"links"`
	ContentLength  int             `json:"contentLength"`
	Content        string          `json:"content"`
	Images         []string        `json:"images"`
	SocialImage    string          `json:"socialImage,omitempty"`
	ParentPath     string          `json:"parentPath,omitempty"`
	EstimatedWidth int             `json:"estimatedWidth"`
}

// SitePalette holds the representative colors of the site, extracted from
// the root page only. All values are "#rrggbb" hex strings.
type SitePalette struct {
	Background string `json:"background"`
	Primary    string `json:"primary"`
	Accent     string `json:"accent"`
	Text       string `json:"text"`
	ThemeColor string `json:"themeColor,omitempty"`
}

// ElementStat is the per-tag aggregate across the whole crawl.
type ElementStat struct {
	Tag        string `json:"tag"`
	TotalCount int    `json:"totalCount"`
	PageCount  int    `json:"pageCount"`
	Rarity     int    `json:"rarity"`
}

// CrawlOutput is the terminal artifact of one crawl, written to
// {siteId}.json. Key names, millisecond durations, and hex color strings
// are the compatibility surface for the downstream renderer.
type CrawlOutput struct {
	SiteID        string        `json:"siteId"`
	SiteName      string        `json:"siteName"`
	BaseURL       string        `json:"baseUrl"`
	CrawledAt     time.Time     `json:"crawledAt"`
	DurationMs    int64         `json:"durationMs"`
	TotalPages    int           `json:"totalPages"`
	TotalElements int           `json:"totalElements"`
	Palette       SitePalette   `json:"palette"`
	Pages         []PageRecord  `json:"pages"`
	CommonLinks   []string      `json:"commonLinks"`
	RareTags      []string      `json:"rareTags"`
	DeepestPages  []string      `json:"deepestPages"`
	ElementStats  []ElementStat `json:"elementStats"`
}
