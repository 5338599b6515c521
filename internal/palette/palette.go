// Package palette infers a small set of representative site colors from a
// style snapshot taken on the root page. The snapshot itself is produced
// by the page driver's in-page extraction script; everything here is pure
// scoring and conversion, so it can run and be tested outside a browser.
package palette

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/HappymanOkajima/element-hunter/internal/types"
)

// Candidate is one weighted color observed on the root page. Weight
// encodes the source: 10 for call-to-action/button-like elements, 5 for
// header/nav, 2 for headings and emphasis, 1 for plain links.
type Candidate struct {
	Value  string  `json:"value"`
	Weight float64 `json:"weight"`
}

// StyleSnapshot is the declared output shape of the in-page style script.
// The core depends only on this shape, not on how a driver produced it.
type StyleSnapshot struct {
	Background string      `json:"background"`
	Text       string      `json:"text"`
	ThemeColor string      `json:"themeColor"`
	Candidates []Candidate `json:"candidates"`
}

const (
	minSaturation    = 0.3
	neutralDelta     = 30
	saturationWeight = 5
)

// Default returns the fixed fallback palette used when extraction fails.
func Default() types.SitePalette {
	return types.SitePalette{
		Background: "#ffffff",
		Primary:    "#3b82f6",
		Accent:     "#8b5cf6",
		Text:       "#1f2937",
	}
}

// FromSnapshot scores the snapshot's candidates and builds the site
// palette. A nil snapshot or one that yields no usable candidates
// produces the default palette; this is the only component with a hard
// fallback.
func FromSnapshot(s *StyleSnapshot) types.SitePalette {
	if s == nil {
		return Default()
	}

	pal := Default()

	if c, ok := parseColor(s.Background); ok && !c.transparent {
		pal.Background = c.hex()
	}
	if c, ok := parseColor(s.Text); ok && !c.transparent {
		pal.Text = c.hex()
	}

	type scored struct {
		hex   string
		score float64
	}
	var best []scored
	for _, cand := range s.Candidates {
		c, ok := parseColor(cand.Value)
		if !ok || c.transparent {
			continue
		}
		if c.neutral() || c.saturation() <= minSaturation {
			continue
		}
		best = append(best, scored{hex: c.hex(), score: cand.Weight + c.saturation()*saturationWeight})
	}

	if len(best) == 0 {
		pal = Default()
	} else {
		top := best[0]
		for _, s := range best[1:] {
			if s.score > top.score {
				top = s
			}
		}
		pal.Primary = top.hex
		pal.Accent = pal.Primary
		var second *scored
		for i := range best {
			if best[i].hex == top.hex {
				continue
			}
			if second == nil || best[i].score > second.score {
				second = &best[i]
			}
		}
		if second != nil {
			pal.Accent = second.hex
		}
	}

	// An explicit theme-color meta tag overrides the computed primary
	// unconditionally, but only when hex-formatted.
	if theme, ok := parseHex(s.ThemeColor); ok {
		pal.ThemeColor = theme.hex()
		pal.Primary = theme.hex()
	}

	return pal
}

// --- Color parsing ---

type rgb struct {
	r, g, b     int
	transparent bool
}

var rgbRe = regexp.MustCompile(`^rgba?\(\s*(\d+)\s*,\s*(\d+)\s*,\s*(\d+)\s*(?:,\s*([\d.]+)\s*)?\)$`)

// parseColor accepts the two forms computed styles and meta tags produce:
// "rgb(r, g, b)" / "rgba(r, g, b, a)" and "#rgb" / "#rrggbb".
func parseColor(v string) (rgb, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" {
		return rgb{}, false
	}
	if v == "transparent" {
		return rgb{transparent: true}, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHex(v)
	}
	m := rgbRe.FindStringSubmatch(v)
	if m == nil {
		return rgb{}, false
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	if r > 255 || g > 255 || b > 255 {
		return rgb{}, false
	}
	if m[4] != "" {
		if a, err := strconv.ParseFloat(m[4], 64); err == nil && a == 0 {
			return rgb{transparent: true}, true
		}
	}
	return rgb{r: r, g: g, b: b}, true
}

func parseHex(v string) (rgb, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	if !strings.HasPrefix(v, "#") {
		return rgb{}, false
	}
	h := v[1:]
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return rgb{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{r: int(n >> 16 & 0xff), g: int(n >> 8 & 0xff), b: int(n & 0xff)}, true
}

func (c rgb) hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.r, c.g, c.b)
}

// neutral reports whether the color is a gray: max-min channel spread
// under the neutrality threshold.
func (c rgb) neutral() bool {
	return c.max()-c.min() < neutralDelta
}

// saturation is HSV saturation: channel spread relative to the brightest
// channel, in [0,1].
func (c rgb) saturation() float64 {
	max := c.max()
	if max == 0 {
		return 0
	}
	return float64(max-c.min()) / float64(max)
}

func (c rgb) max() int {
	m := c.r
	if c.g > m {
		m = c.g
	}
	if c.b > m {
		m = c.b
	}
	return m
}

func (c rgb) min() int {
	m := c.r
	if c.g < m {
		m = c.g
	}
	if c.b < m {
		m = c.b
	}
	return m
}
