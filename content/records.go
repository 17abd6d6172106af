package content

import (
	"net/url"
	"strings"
)

// GalleryItem is one element of the gallery "items" list.
type GalleryItem struct {
	Type    string `json:"type"`
	URL     string `json:"url"`
	Caption string `json:"caption"`
	IsFile  bool   `json:"isFile,omitempty"`
}

const (
	GalleryImage = "image"
	GalleryVideo = "video"
)

// Testimony is one element of the testimonies page list.
type Testimony struct {
	Quote  string `json:"quote"`
	Author string `json:"author"`
	Role   string `json:"role"`
}

// Valid reports whether the required quote and author are present.
func (t Testimony) Valid() bool {
	return strings.TrimSpace(t.Quote) != "" && strings.TrimSpace(t.Author) != ""
}

// EmbedVideoURL rewrites YouTube and Vimeo watch links into their embeddable
// form. Other URLs are returned unchanged.
func EmbedVideoURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	switch {
	case (host == "youtube.com" || host == "m.youtube.com") && u.Path == "/watch":
		if id := u.Query().Get("v"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case host == "youtu.be":
		if id := strings.Trim(u.Path, "/"); id != "" {
			return "https://www.youtube.com/embed/" + id
		}
	case host == "vimeo.com":
		if id := strings.Trim(u.Path, "/"); id != "" && !strings.Contains(id, "/") {
			return "https://player.vimeo.com/video/" + id
		}
	}
	return raw
}
