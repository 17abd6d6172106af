package churchsite

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func isHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// toast asks the page to show n once the htmx swap is done.
func toast(c echo.Context, n content.Notice) {
	if n.IsZero() {
		return
	}
	raw, err := json.Marshal(map[string]content.Notice{"toast": n})
	if err != nil {
		return
	}
	c.Response().Header().Set("HX-Trigger", string(raw))
}

// redirectNotice sends a full-page request back to target, carrying n as a
// flash for the next render.
func redirectNotice(c echo.Context, target string, n content.Notice) error {
	if !n.IsZero() {
		q := url.Values{"msg": {n.Message}, "tone": {string(n.Tone)}}
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + q.Encode()
	}
	return c.Redirect(http.StatusSeeOther, target)
}

// flash reads the notice left by redirectNotice.
func flash(c echo.Context) content.Notice {
	msg := c.QueryParam("msg")
	if msg == "" {
		return content.Notice{}
	}
	tone := content.Tone(c.QueryParam("tone"))
	switch tone {
	case content.ToneSuccess, content.ToneError, content.ToneWarning:
	default:
		tone = content.ToneInfo
	}
	return content.Notice{Message: msg, Tone: tone}
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
	}
}

// layout fills the shared page chrome. store may be nil on pages that do not
// load content.
func (a *App) layout(c echo.Context, nav, title string, store *content.Store) views.Layout {
	l := views.Layout{
		Site: a.site(),
		Meta: views.PageMeta{
			Title:       title,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL, c.Request().URL.Path),
		},
		CSRF:  CsrfToken(c),
		Nav:   nav,
		Flash: flash(c),
	}
	if c.Request().URL.Path == "/" {
		l.Meta.URL = BuildURL(a.Config.URL)
	}
	if store != nil {
		l.Logo = store.Get("site", "logo", "")
	}
	return l
}

// adminLayout is the chrome of admin pages. The nav renders only for a
// signed-in admin.
func (a *App) adminLayout(c echo.Context, nav, title string) views.Layout {
	l := a.layout(c, nav, title, nil)
	l.Admin = true
	l.Meta.URL = ""
	if !IsAdmin(c) {
		l.Nav = ""
	}
	return l
}
