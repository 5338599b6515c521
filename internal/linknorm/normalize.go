// Package linknorm turns raw anchor hrefs into canonical, deduplicated,
// same-host paths. It is the leaf of the crawl pipeline: the extractor
// collects hrefs raw, the controller normalizes them here before queuing.
package linknorm

import (
	"net/url"
	"strings"
)

var blockedSchemes = []string{"javascript:", "mailto:", "tel:"}

// Normalize resolves a raw href against the crawl's base origin and
// returns its canonical same-host path. The second return value is false
// when the href is rejected: empty or fragment-only hrefs, blocked
// schemes, cross-host targets, and malformed URLs are all silently
// dropped rather than treated as errors.
func Normalize(href string, base *url.URL) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}

	lower := strings.ToLower(href)
	for _, scheme := range blockedSchemes {
		if strings.HasPrefix(lower, scheme) {
			return "", false
		}
	}

	u, err := base.Parse(href)
	if err != nil {
		return "", false
	}
	if !strings.EqualFold(u.Hostname(), base.Hostname()) {
		return "", false
	}

	// Query and fragment are discarded: two links differing only by
	// fragment collapse to one node.
	return CanonicalPath(u.Path), true
}

// NormalizeAll normalizes a page's raw hrefs into a deduplicated list of
// canonical paths, preserving first-seen order.
func NormalizeAll(hrefs []string, base *url.URL) []string {
	seen := make(map[string]struct{}, len(hrefs))
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		path, ok := Normalize(href, base)
		if !ok {
			continue
		}
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}
	return out
}

// CanonicalPath normalizes a URL path: single leading slash, no trailing
// slashes except for the root path itself.
func CanonicalPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	return p
}

// ResolveURL resolves a raw URL reference against the base origin,
// returning an absolute URL string. A resolution failure keeps the
// original string unchanged rather than failing the page.
func ResolveURL(raw string, base *url.URL) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	u, err := base.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}
