package extract

import (
	"net/url"
	"strings"
	"testing"
)

func extractContent(t *testing.T, page string) (string, int) {
	t.Helper()
	u, _ := url.Parse("https://example.com")
	ex, err := FromHTML(page, u)
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}
	return ex.Content, ex.ContentLength
}

func TestExcerptPrefersMainOverBody(t *testing.T) {
	page := `<html><body><p>sidebar filler</p><main><p>Main content here.</p></main></body></html>`
	content, length := extractContent(t, page)

	if content != "<p>Main content here.</p>" {
		t.Errorf("content = %q", content)
	}
	if length != len([]rune("Main content here.")) {
		t.Errorf("contentLength = %d", length)
	}
	if strings.Contains(content, "sidebar") {
		t.Error("body content leaked into excerpt despite main being present")
	}
}

func TestExcerptFallsBackToBody(t *testing.T) {
	page := `<html><body><p>Only the body.</p></body></html>`
	content, _ := extractContent(t, page)
	if content != "<p>Only the body.</p>" {
		t.Errorf("content = %q", content)
	}
}

func TestExcerptStripsStructuralTags(t *testing.T) {
	page := `<html><body><main>
		<script>track()</script>
		<nav><a href="/x">menu</a></nav>
		<img src="/photo.jpg">
		<p>Keep me.</p>
	</main></body></html>`
	content, length := extractContent(t, page)

	if content != "<p>Keep me.</p>" {
		t.Errorf("content = %q, want just the paragraph", content)
	}
	if length == 0 {
		t.Error("contentLength should reflect the pre-sanitization text")
	}
}

func TestExcerptUnwrapsDisallowedTags(t *testing.T) {
	page := `<html><body><main><p>See <a href="/docs">the docs</a> now.</p></main></body></html>`
	content, _ := extractContent(t, page)
	if content != "<p>See the docs now.</p>" {
		t.Errorf("content = %q, anchor should unwrap to its text", content)
	}
}

func TestExcerptDropsAttributes(t *testing.T) {
	page := `<html><body><main><p class="lead" onclick="evil()">Hello world.</p></main></body></html>`
	content, _ := extractContent(t, page)
	if content != "<p>Hello world.</p>" {
		t.Errorf("content = %q, attributes must not survive", content)
	}
}

func TestExcerptRemovesEmptiedTags(t *testing.T) {
	page := `<html><body><main><div><img src="/decor.png"></div><p>Text stays.</p></main></body></html>`
	content, _ := extractContent(t, page)
	if content != "<p>Text stays.</p>" {
		t.Errorf("content = %q, div emptied by stripping should vanish", content)
	}
}

func TestExcerptEscapesText(t *testing.T) {
	page := `<html><body><main><p>Fish &amp; Chips &lt;fresh&gt;</p></main></body></html>`
	content, _ := extractContent(t, page)
	if content != "<p>Fish &amp; Chips &lt;fresh&gt;</p>" {
		t.Errorf("content = %q, text must stay escaped", content)
	}
}

func TestExcerptTruncatesAt2000Runes(t *testing.T) {
	body := strings.Repeat("a", 2500)
	page := `<html><body><main><p>` + body + `</p></main></body></html>`
	content, length := extractContent(t, page)

	if got := len([]rune(content)); got != maxExcerpt {
		t.Errorf("excerpt length = %d, want %d", got, maxExcerpt)
	}
	// The raw length is measured before truncation.
	if length != 2500 {
		t.Errorf("contentLength = %d, want 2500", length)
	}
}

func TestExcerptEmptyContainer(t *testing.T) {
	page := `<html><body><main><script>only()</script></main></body></html>`
	content, _ := extractContent(t, page)
	if content != "" {
		t.Errorf("content = %q, want empty excerpt", content)
	}
}
