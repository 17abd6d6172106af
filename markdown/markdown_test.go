package markdown

import (
	"strings"
	"testing"
)

func TestInlineEmphasis(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineEscapes(t *testing.T) {
	got := Inline(`<script>alert("x")</script> & more`)
	if strings.Contains(got, "<script>") {
		t.Errorf("script tag not escaped: %q", got)
	}
	if !strings.Contains(got, "&amp; more") {
		t.Errorf("ampersand not escaped: %q", got)
	}
}

func TestInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[Give](/giving/)", `<a href="/giving/">Give</a>`},
		{"[Stream](https://example.org/live)", `<a href="https://example.org/live" target="_blank" rel="noopener noreferrer">Stream</a>`},
		{"[Call](tel:+15550100)", `<a href="tel:+15550100" target="_blank" rel="noopener noreferrer">Call</a>`},
		{"[bad](javascript:void)", "bad"},
	}
	for _, tt := range tests {
		if got := Inline(tt.input); got != tt.expected {
			t.Errorf("Inline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestInlineKeepsUnderscoresInHref(t *testing.T) {
	got := Inline("[notes](/files/week_one_notes.pdf)")
	want := `<a href="/files/week_one_notes.pdf">notes</a>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"/sermons/", "/sermons/"},
		{"#top", "#top"},
		{"https://example.org", "https://example.org"},
		{"mailto:office@example.org", "mailto:office@example.org"},
		{"javascript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"relative/path", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestRenderParagraphs(t *testing.T) {
	got := Render("First line\nsame paragraph\n\nSecond")
	want := "<p>First line<br>same paragraph</p><p>Second</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderHeadingsStartAtH3(t *testing.T) {
	got := Render("# Main point\n## Sub point\n### Detail")
	want := "<h3>Main point</h3><h4>Sub point</h4><h4>Detail</h4>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderLists(t *testing.T) {
	got := Render("- Faith\n- Hope\n\n1. Read\n2) Pray")
	want := "<ul><li>Faith</li><li>Hope</li></ul><ol><li>Read</li><li>Pray</li></ol>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderScriptureQuote(t *testing.T) {
	got := Render("> For God so loved the world\n> John 3:16\nAmen")
	want := "<blockquote>For God so loved the world<br>John 3:16</blockquote><p>Amen</p>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(""); got != "" {
		t.Errorf("Render(\"\") = %q, want empty", got)
	}
	if got := Render("\n\n  \n"); got != "" {
		t.Errorf("blank input rendered %q", got)
	}
}

func TestHTMLMatchesRender(t *testing.T) {
	md := "**Note:** bring a Bible"
	if string(HTML(md)) != Render(md) {
		t.Errorf("HTML and Render disagree")
	}
}
