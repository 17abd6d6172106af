// Package markdown renders the small Markdown subset admins use in sermon and
// program descriptions: paragraphs, headings, lists, scripture quotes, bold,
// italic and links. Everything else is escaped text.
package markdown

import (
	"html"
	"html/template"
	"net/url"
	"regexp"
	"strings"
)

var (
	reBold    = regexp.MustCompile(`\*\*(.+?)\*\*|__(.+?)__`)
	reItalic  = regexp.MustCompile(`\*([^*]+)\*|_([^_]+)_`)
	reLink    = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	reOrdered = regexp.MustCompile(`^\d+[.)]\s`)
)

type block int

const (
	none block = iota
	para
	bullets
	numbered
	quote
)

var closeTags = map[block]string{
	para:     "</p>",
	bullets:  "</ul>",
	numbered: "</ol>",
	quote:    "</blockquote>",
}

var openTags = map[block]string{
	para:     "<p>",
	bullets:  "<ul>",
	numbered: "<ol>",
	quote:    "<blockquote>",
}

type renderer struct {
	b   strings.Builder
	cur block
}

// enter switches to block k, closing the open one. It reports whether k was
// already open.
func (r *renderer) enter(k block) bool {
	if r.cur == k {
		return true
	}
	r.b.WriteString(closeTags[r.cur])
	r.b.WriteString(openTags[k])
	r.cur = k
	return false
}

// HTML renders md. The result is safe to embed: all text is escaped and only
// http, https, mailto, tel and site-relative links survive.
func HTML(md string) template.HTML {
	return template.HTML(Render(md))
}

// Render returns the HTML of md as a string.
func Render(md string) string {
	var r renderer
	for _, raw := range strings.Split(md, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		switch {
		case line == "":
			r.enter(none)
		case strings.HasPrefix(line, "### "), strings.HasPrefix(line, "## "), strings.HasPrefix(line, "# "):
			r.enter(none)
			// Page titles own h1 and h2, so note headings start at h3.
			level := min(strings.Index(line, " ")+2, 4)
			tag := "h" + string(rune('0'+level))
			r.b.WriteString("<" + tag + ">" + Inline(strings.TrimSpace(line[strings.Index(line, " "):])) + "</" + tag + ">")
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			r.enter(bullets)
			r.b.WriteString("<li>" + Inline(strings.TrimSpace(line[2:])) + "</li>")
		case reOrdered.MatchString(line):
			r.enter(numbered)
			r.b.WriteString("<li>" + Inline(strings.TrimSpace(reOrdered.ReplaceAllString(line, ""))) + "</li>")
		case strings.HasPrefix(line, ">"):
			if r.enter(quote) {
				r.b.WriteString("<br>")
			}
			r.b.WriteString(Inline(strings.TrimSpace(strings.TrimPrefix(line, ">"))))
		default:
			if r.enter(para) {
				r.b.WriteString("<br>")
			}
			r.b.WriteString(Inline(line))
		}
	}
	r.enter(none)
	return r.b.String()
}

// Inline escapes s and applies links, bold and italic.
func Inline(s string) string {
	out := html.EscapeString(s)
	out = reLink.ReplaceAllStringFunc(out, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if !strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "#") {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	return outsideTags(out, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1$2</strong>")
		return reItalic.ReplaceAllString(seg, "<em>$1$2</em>")
	})
}

// outsideTags applies fn to the text between tags so that emphasis never
// rewrites an href.
func outsideTags(s string, fn func(string) string) string {
	var b strings.Builder
	for s != "" {
		lt := strings.IndexByte(s, '<')
		if lt < 0 {
			b.WriteString(fn(s))
			break
		}
		b.WriteString(fn(s[:lt]))
		gt := strings.IndexByte(s[lt:], '>')
		if gt < 0 {
			b.WriteString(s[lt:])
			break
		}
		b.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return b.String()
}

// SafeURL returns raw escaped for an attribute, or "" when its scheme is not
// allowed.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	u, err := url.Parse(val)
	if err != nil || u.Scheme == "" {
		return ""
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
