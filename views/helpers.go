package views

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/markdown"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// PathEscape wraps url.PathEscape for use in templates.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// ChurchJsonLD produces a Schema.org Church JSON-LD block using cfg values.
func ChurchJsonLD(cfg SiteConfig) template.JS {
	data := map[string]interface{}{
		"@context": "https://schema.org",
		"@type":    "Church",
		"name":     cfg.Name,
		"url":      buildURL(cfg.URL),
	}
	if cfg.Description != "" {
		data["description"] = cfg.Description
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

// NavClass returns the class of a navigation link, with active variant.
func NavClass(active, name string) string {
	if active == name {
		return "nav-link active"
	}
	return "nav-link"
}

// isFileVideo reports whether a gallery video plays from an uploaded file
// rather than an embedded player.
func isFileVideo(it content.GalleryItem) bool {
	if it.IsFile {
		return true
	}
	u := strings.ToLower(it.URL)
	for _, ext := range []string{".mp4", ".webm", ".mov", ".ogg"} {
		if strings.HasSuffix(u, ext) {
			return true
		}
	}
	return false
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func formatDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("January 2, 2006")
		}
	}
	return s
}

var funcs = template.FuncMap{
	"lines":       lines,
	"nav":         NavClass,
	"jsonld":      ChurchJsonLD,
	"pathEscape":  PathEscape,
	"query":       url.QueryEscape,
	"isFileVideo": isFileVideo,
	"embed":       content.EmbedVideoURL,
	"seq":         seq,
	"date":        formatDate,
	"year":        func() int { return time.Now().Year() },
	"add":         func(a, b int) int { return a + b },
	"key":         func(prefix string, n int, suffix string) string { return prefix + strconv.Itoa(n) + suffix },
	"fill":        fillType,
	"dict":        dict,
	"markdown":    markdown.HTML,
}

// dict builds the argument map of a nested template call.
func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("views: dict wants key/value pairs")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("views: dict key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}

// fillType substitutes the chosen giving type into an admin-edited template.
func fillType(tmpl, kind string) string {
	if kind == "" {
		kind = "donation"
	}
	return strings.ReplaceAll(tmpl, "{type}", strings.ToLower(kind))
}
