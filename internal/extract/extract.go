// Package extract turns a loaded page into a structural fingerprint: a
// tag census with samples, the raw outbound links, a sanitized readable
// excerpt, a small image shortlist, and the social preview image. It
// works on the serialized document the page driver hands back, so the
// whole package runs without a browser.
package extract

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/HappymanOkajima/element-hunter/internal/linknorm"
	"github.com/HappymanOkajima/element-hunter/internal/types"
)

const (
	maxSamplesPerTag = 30
	maxSampleText    = 50
	minSampleText    = 3
	maxImageList     = 5

	// Per-tag image sampling thresholds (strict filter).
	minSampleImageSide = 100
	maxAspectRatio     = 5.0

	// Page-wide shortlist threshold (loose filter).
	minShortlistSide = 50
)

// Tags that carry no visible structure; skipped by the census.
var noiseTags = map[string]struct{}{
	"script": {}, "style": {}, "meta": {}, "link": {}, "noscript": {},
}

// Keyword blocklist for decorative assets in per-tag image sampling.
var decorativeKeywords = []string{
	"icon", "logo", "favicon", "button", "arrow", "close", "chevron",
	"caret", "spinner", "loading", "spacer", "placeholder", "blank",
	"pixel", "transparent", "badge",
}

// The page-wide shortlist only screens out branding assets.
var shortlistKeywords = []string{"icon", "logo", "favicon"}

var wsRe = regexp.MustCompile(`\s+`)

// Extraction is one page's fingerprint before the controller attaches
// path and depth.
type Extraction struct {
	Title         string
	Elements      []types.ElementSample
	ElementCount  int
	RawLinks      []string
	Content       string
	ContentLength int
	Images        []string
	SocialImage   string
}

// FromHTML extracts a page fingerprint from a serialized document. Image
// URLs are resolved to absolute form against the base origin; a failed
// resolution keeps the original string.
func FromHTML(document string, base *url.URL) (*Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, err
	}

	ex := &Extraction{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}

	ex.Elements, ex.ElementCount = census(doc)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			ex.RawLinks = append(ex.RawLinks, href)
		}
	})

	ex.Content, ex.ContentLength = readableExcerpt(doc)
	ex.Images = imageShortlist(doc)

	if og, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content"); ok {
		ex.SocialImage = strings.TrimSpace(og)
	}

	// Absolute-URL resolution happens outside the census walk, all in one
	// place, for samples, shortlist, and preview alike.
	for i := range ex.Elements {
		for j, src := range ex.Elements[i].SampleImageURLs {
			ex.Elements[i].SampleImageURLs[j] = linknorm.ResolveURL(src, base)
		}
	}
	for i, src := range ex.Images {
		ex.Images[i] = linknorm.ResolveURL(src, base)
	}
	if ex.SocialImage != "" {
		ex.SocialImage = linknorm.ResolveURL(ex.SocialImage, base)
	}

	return ex, nil
}

// census visits every element in the document, skipping the noise set,
// and collects per-tag counts with up to 30 unique samples each: image
// URLs for img, the element's own direct text for everything else.
func census(doc *goquery.Document) ([]types.ElementSample, int) {
	type tally struct {
		sample types.ElementSample
		seen   map[string]struct{}
	}

	var order []string
	tallies := make(map[string]*tally)
	total := 0

	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		tag := goquery.NodeName(s)
		if _, noise := noiseTags[tag]; noise {
			return
		}
		total++

		t, ok := tallies[tag]
		if !ok {
			t = &tally{
				sample: types.ElementSample{Tag: tag},
				seen:   make(map[string]struct{}),
			}
			tallies[tag] = t
			order = append(order, tag)
		}
		t.sample.Count++

		if len(t.seen) >= maxSamplesPerTag {
			return
		}

		if tag == "img" {
			src, ok := s.Attr("src")
			if !ok || !keepSampleImage(src, s) {
				return
			}
			if _, dup := t.seen[src]; dup {
				return
			}
			t.seen[src] = struct{}{}
			t.sample.SampleImageURLs = append(t.sample.SampleImageURLs, src)
			return
		}

		text := collapse(directText(s))
		if len([]rune(text)) < minSampleText {
			return
		}
		text = truncateSample(text)
		if _, dup := t.seen[text]; dup {
			return
		}
		t.seen[text] = struct{}{}
		t.sample.SampleTexts = append(t.sample.SampleTexts, text)
	})

	samples := make([]types.ElementSample, 0, len(order))
	for _, tag := range order {
		samples = append(samples, tallies[tag].sample)
	}
	return samples, total
}

// keepSampleImage applies the strict decorative-asset filter used by the
// per-tag census.
func keepSampleImage(src string, s *goquery.Selection) bool {
	lower := strings.ToLower(src)
	if lower == "" || strings.HasPrefix(lower, "data:") {
		return false
	}
	for _, kw := range decorativeKeywords {
		if strings.Contains(lower, kw) {
			return false
		}
	}
	if p := strings.SplitN(lower, "?", 2)[0]; strings.HasSuffix(p, ".svg") {
		return false
	}

	w, hasW := declaredSize(s, "width")
	h, hasH := declaredSize(s, "height")
	if (hasW && w < minSampleImageSide) || (hasH && h < minSampleImageSide) {
		return false
	}
	if hasW && hasH && w > 0 && h > 0 {
		long, short := float64(w), float64(h)
		if short > long {
			long, short = short, long
		}
		// Filters banners and dividers.
		if long/short > maxAspectRatio {
			return false
		}
	}
	return true
}

// imageShortlist collects up to 5 representative images page-wide with a
// deliberately looser filter than the census sampling; the two passes are
// independent signals and may disagree.
func imageShortlist(doc *goquery.Document) []string {
	var images []string
	seen := make(map[string]struct{})

	doc.Find("img[src]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		src, _ := s.Attr("src")
		lower := strings.ToLower(src)
		if lower == "" {
			return true
		}
		for _, kw := range shortlistKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
		w, hasW := declaredSize(s, "width")
		h, hasH := declaredSize(s, "height")
		if (hasW && w < minShortlistSide) || (hasH && h < minShortlistSide) {
			return true
		}
		if _, dup := seen[src]; dup {
			return true
		}
		seen[src] = struct{}{}
		images = append(images, src)
		return len(images) < maxImageList
	})

	return images
}

// declaredSize parses a width/height attribute as pixels. Percentages and
// other non-numeric declarations count as absent.
func declaredSize(s *goquery.Selection, attr string) (int, bool) {
	v, ok := s.Attr(attr)
	if !ok {
		return 0, false
	}
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// directText returns the element's own text: child text nodes only, not
// descendant elements' text.
func directText(s *goquery.Selection) string {
	if len(s.Nodes) == 0 {
		return ""
	}
	var b strings.Builder
	for c := s.Nodes[0].FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

func truncateSample(s string) string {
	r := []rune(s)
	if len(r) <= maxSampleText {
		return s
	}
	return string(r[:maxSampleText]) + "…"
}
