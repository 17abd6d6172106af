package churchsite

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// publicPaths are the pages listed in the sitemap besides the home page.
var publicPaths = []string{"about", "sermons", "programs", "testimonies", "prayers", "contact", "membership", "giving"}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	NS      string     `xml:"xmlns,attr"`
	Entries []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
}

type feedDoc struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel feedChannel
}

type feedChannel struct {
	XMLName       xml.Name   `xml:"channel"`
	Title         string     `xml:"title"`
	Link          string     `xml:"link"`
	Description   string     `xml:"description"`
	Language      string     `xml:"language"`
	LastBuildDate string     `xml:"lastBuildDate,omitempty"`
	Items         []feedItem `xml:"item"`
}

type feedItem struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description,omitempty"`
	Author      string     `xml:"author,omitempty"`
	PubDate     string     `xml:"pubDate,omitempty"`
	GUID        string     `xml:"guid"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
}

// enclosure lets podcast readers pick up audio sermons.
type enclosure struct {
	URL  string `xml:"url,attr"`
	Type string `xml:"type,attr"`
}

// sermonTime is the preaching date, falling back to when the record was made.
func sermonTime(s api.Sermon) (time.Time, bool) {
	if t, err := time.Parse(time.DateOnly, s.Date); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s.CreatedAt); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (a *App) sermonURL(s api.Sermon) string {
	return BuildURL(a.Config.URL, "sermons", s.ID.String())
}

func (a *App) renderSitemap(c echo.Context, sermons []api.Sermon) error {
	set := urlSet{NS: sitemapNS}
	set.Entries = append(set.Entries, urlEntry{Loc: BuildURL(a.Config.URL), ChangeFreq: "weekly"})
	for _, p := range publicPaths {
		set.Entries = append(set.Entries, urlEntry{Loc: BuildURL(a.Config.URL, p), ChangeFreq: "weekly"})
	}
	for _, s := range sermons {
		e := urlEntry{Loc: a.sermonURL(s), ChangeFreq: "monthly"}
		if t, ok := sermonTime(s); ok {
			e.LastMod = t.Format(time.DateOnly)
		}
		set.Entries = append(set.Entries, e)
	}
	return writeXML(c, "application/xml; charset=utf-8", set)
}

func (a *App) renderRSS(c echo.Context, sermons []api.Sermon) error {
	ch := feedChannel{
		Title:       a.Config.Name + " Sermons",
		Link:        a.Config.URL,
		Description: a.Config.Description,
		Language:    "en",
	}
	var newest time.Time
	for _, s := range sermons {
		link := a.sermonURL(s)
		it := feedItem{
			Title:       s.DisplayTitle(),
			Link:        link,
			Description: s.Description,
			Author:      s.Speaker,
			GUID:        link,
		}
		if t, ok := sermonTime(s); ok {
			it.PubDate = t.Format(time.RFC1123Z)
			if t.After(newest) {
				newest = t
			}
		}
		if s.AudioURL != "" {
			it.Enclosure = &enclosure{URL: s.AudioURL, Type: "audio/mpeg"}
		}
		ch.Items = append(ch.Items, it)
	}
	if !newest.IsZero() {
		ch.LastBuildDate = newest.Format(time.RFC1123Z)
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", feedDoc{Version: "2.0", Channel: ch})
}

// writeXML sends v as an indented XML document.
func writeXML(c echo.Context, contentType string, v any) error {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, append([]byte(xml.Header), out...))
}
