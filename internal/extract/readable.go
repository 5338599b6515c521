package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

const maxExcerpt = 2000

// Preferred content containers, most specific first.
var containerSelectors = []string{
	"main", "article", ".content", "#main", "#content", ".main-content",
}

// Structural and non-content tags removed outright from the excerpt copy.
const strippedTags = "style,script,noscript,svg,iframe,img,video,audio,canvas,form,input,button,nav,header,footer,aside"

// Tags allowed to survive into the excerpt. Anything else is unwrapped:
// the tag goes, its inner text stays.
var allowedExcerptTags = map[string]struct{}{
	"p": {}, "div": {}, "span": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"ul": {}, "ol": {}, "li": {},
	"strong": {}, "em": {}, "b": {}, "i": {}, "br": {},
}

var emptyTagRes = buildEmptyTagRes()

func buildEmptyTagRes() []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(allowedExcerptTags))
	for tag := range allowedExcerptTags {
		if tag == "br" {
			continue
		}
		res = append(res, regexp.MustCompile(`<`+tag+`>\s*</`+tag+`>`))
	}
	return res
}

// readableExcerpt produces a safe, structurally minimal excerpt of the
// page's main content, suitable for later untrusted display, plus the raw
// length of that content before sanitization.
func readableExcerpt(doc *goquery.Document) (string, int) {
	container := findContainer(doc)
	if container == nil || container.Length() == 0 {
		return "", 0
	}

	rawLen := len([]rune(container.Text()))

	inner, err := container.Html()
	if err != nil {
		return "", rawLen
	}

	// Work on a detached copy so the census and link passes never see a
	// mutated document.
	copyDoc, err := goquery.NewDocumentFromReader(strings.NewReader(inner))
	if err != nil {
		return "", rawLen
	}

	copyDoc.Find(strippedTags).Remove()
	copyDoc.Find("*").Each(func(_ int, s *goquery.Selection) {
		for _, n := range s.Nodes {
			n.Attr = nil
		}
	})

	serialized, err := copyDoc.Find("body").Html()
	if err != nil {
		return "", rawLen
	}

	excerpt := unwrapDisallowedTags(serialized)
	excerpt = strings.TrimSpace(wsRe.ReplaceAllString(excerpt, " "))
	excerpt = dropEmptyTags(excerpt)
	excerpt = strings.TrimSpace(excerpt)

	if r := []rune(excerpt); len(r) > maxExcerpt {
		excerpt = string(r[:maxExcerpt])
	}
	return excerpt, rawLen
}

func findContainer(doc *goquery.Document) *goquery.Selection {
	for _, sel := range containerSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			return s.First()
		}
	}
	return doc.Find("body").First()
}

// unwrapDisallowedTags re-serializes the fragment keeping only allowed
// tags (bare, attribute-free) while preserving every tag's inner text.
func unwrapDisallowedTags(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.WriteString(html.EscapeString(string(z.Text())))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, ok := allowedExcerptTags[tag]; ok {
				b.WriteString("<" + tag + ">")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if _, ok := allowedExcerptTags[tag]; ok && tag != "br" {
				b.WriteString("</" + tag + ">")
			}
		}
	}
}

// dropEmptyTags removes allowed tags whose content collapsed to nothing,
// repeating until stable so nested empties unwind.
func dropEmptyTags(s string) string {
	for {
		before := s
		for _, re := range emptyTagRes {
			s = re.ReplaceAllString(s, "")
		}
		if s == before {
			return s
		}
	}
}
