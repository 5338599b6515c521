// Package analyze computes cross-page statistics over the completed set
// of page records and assembles the final output document. Everything
// here is a pure function of its input: no driver, no I/O, no shared
// state, which keeps the whole stage trivially testable.
package analyze

import (
	"sort"
	"time"

	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// rareTotalThreshold is the whole-crawl occurrence count at or under
// which a tag lands on the rare-element list.
const rareTotalThreshold = 5

const (
	minEstimatedWidth = 800
	maxEstimatedWidth = 4000
)

// Input is the finished crawl context handed to the builder.
type Input struct {
	SiteID              string
	SiteName            string
	BaseURL             string
	Palette             types.SitePalette
	Pages               []types.PageRecord
	StartedAt           time.Time
	Duration            time.Duration
	CommonLinkThreshold float64
}

// BuildOutput assembles the output document from the finished crawl
// context: common-link detection and removal, per-tag aggregates with
// rarity, deepest pages, and derived sizing. The input pages are not
// mutated; the returned value is built exactly once and never touched
// again.
func BuildOutput(in Input) *types.CrawlOutput {
	pages := make([]types.PageRecord, len(in.Pages))
	copy(pages, in.Pages)

	common := commonLinks(pages, in.CommonLinkThreshold)
	commonSet := make(map[string]struct{}, len(common))
	for _, l := range common {
		commonSet[l] = struct{}{}
	}

	totalElements := 0
	for i := range pages {
		// Removing common links isolates page-specific graph structure
		// from site-wide navigation chrome.
		pages[i].Links = withoutCommon(pages[i].Links, commonSet)
		pages[i].EstimatedWidth = estimatedWidth(pages[i].ElementCount, pages[i].ContentLength)
		totalElements += pages[i].ElementCount
	}

	stats := elementStats(pages)

	return &types.CrawlOutput{
		SiteID:        in.SiteID,
		SiteName:      in.SiteName,
		BaseURL:       in.BaseURL,
		CrawledAt:     in.StartedAt,
		DurationMs:    in.Duration.Milliseconds(),
		TotalPages:    len(pages),
		TotalElements: totalElements,
		Palette:       in.Palette,
		Pages:         pages,
		CommonLinks:   common,
		RareTags:      rareTags(stats),
		DeepestPages:  deepestPages(pages),
		ElementStats:  stats,
	}
}

// commonLinks classifies a link as site-wide chrome when it appears on at
// least the threshold fraction of crawled pages. Each page counts a
// distinct link once, regardless of how often it occurs there.
func commonLinks(pages []types.PageRecord, threshold float64) []string {
	if len(pages) == 0 {
		return []string{}
	}

	counts := make(map[string]int)
	for _, p := range pages {
		distinct := make(map[string]struct{}, len(p.Links))
		for _, l := range p.Links {
			distinct[l] = struct{}{}
		}
		for l := range distinct {
			counts[l]++
		}
	}

	total := float64(len(pages))
	common := make([]string, 0)
	for link, n := range counts {
		if float64(n)/total >= threshold {
			common = append(common, link)
		}
	}
	sort.Strings(common)
	return common
}

func withoutCommon(links []string, common map[string]struct{}) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		if _, ok := common[l]; ok {
			continue
		}
		out = append(out, l)
	}
	return out
}

// elementStats aggregates per-tag totals and page counts across the
// crawl, with the effective rarity tier attached.
func elementStats(pages []types.PageRecord) []types.ElementStat {
	type agg struct {
		total     int
		pageCount int
	}
	aggs := make(map[string]*agg)

	for _, p := range pages {
		for _, e := range p.Elements {
			a, ok := aggs[e.Tag]
			if !ok {
				a = &agg{}
				aggs[e.Tag] = a
			}
			a.total += e.Count
			a.pageCount++
		}
	}

	stats := make([]types.ElementStat, 0, len(aggs))
	for tag, a := range aggs {
		stats = append(stats, types.ElementStat{
			Tag:        tag,
			TotalCount: a.total,
			PageCount:  a.pageCount,
			Rarity:     EffectiveRarity(tag, a.pageCount, len(pages)),
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalCount != stats[j].TotalCount {
			return stats[i].TotalCount > stats[j].TotalCount
		}
		return stats[i].Tag < stats[j].Tag
	})
	return stats
}

// rareTags lists tags whose total occurrence count across the whole crawl
// is at or under the rarity threshold, alphabetically.
func rareTags(stats []types.ElementStat) []string {
	rare := make([]string, 0)
	for _, s := range stats {
		if s.TotalCount <= rareTotalThreshold {
			rare = append(rare, s.Tag)
		}
	}
	sort.Strings(rare)
	return rare
}

// deepestPages returns every page path sharing the maximum observed depth.
func deepestPages(pages []types.PageRecord) []string {
	maxDepth := 0
	for _, p := range pages {
		if p.Depth > maxDepth {
			maxDepth = p.Depth
		}
	}
	deepest := make([]string, 0)
	for _, p := range pages {
		if p.Depth == maxDepth {
			deepest = append(deepest, p.Path)
		}
	}
	return deepest
}

// estimatedWidth derives a layout hint from page richness, clamped to
// [800, 4000]. No further meaning is ascribed to it here; the downstream
// consumer owns its interpretation.
func estimatedWidth(elementCount, contentLength int) int {
	w := minEstimatedWidth + float64(elementCount)*5 + float64(contentLength)*0.1
	if w < minEstimatedWidth {
		return minEstimatedWidth
	}
	if w > maxEstimatedWidth {
		return maxEstimatedWidth
	}
	return int(w)
}
