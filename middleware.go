package churchsite

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/towngreen/churchsite/content"
)

// Scripts come from the site and the htmx CDN; embeds only from the two video
// hosts the gallery accepts.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self' https://unpkg.com",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' https: data:",
	"media-src 'self' https: data:",
	"frame-src https://www.youtube.com https://player.vimeo.com",
	"font-src 'self'",
	"connect-src 'self'",
}, "; ")

// unslashed paths are served as-is; everything else gets a trailing slash.
var unslashed = map[string]bool{
	"/sitemap.xml": true,
	"/feed.xml":    true,
	"/robots.txt":  true,
	"/favicon.svg": true,
}

type cacheRule struct {
	match  func(path string) bool
	header string
}

// cacheRules are tried in order; pages fall through to no-cache because they
// embed a CSRF token and freshly loaded content.
var cacheRules = []cacheRule{
	{func(p string) bool { return strings.HasPrefix(p, "/public/") }, "public, max-age=86400"},
	{func(p string) bool { return unslashed[p] && p != "/favicon.svg" }, "public, max-age=3600"},
	{func(p string) bool { return p == "/favicon.svg" }, "public, max-age=86400"},
	{func(p string) bool { return strings.HasPrefix(p, "/admin") }, "no-store"},
}

func (a *App) setupMiddleware() {
	e := a.Echo
	e.HTTPErrorHandler = a.httpErrorHandler
	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.Pre(middleware.NonWWWRedirect())
	e.Use(
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:     true,
			LogURI:        true,
			LogStatus:     true,
			LogLatency:    true,
			LogRemoteIP:   true,
			LogError:      true,
			LogValuesFunc: a.logRequest,
		}),
		middleware.Recover(),
		middleware.GzipWithConfig(middleware.GzipConfig{
			Level:   5,
			Skipper: func(c echo.Context) bool { return strings.HasPrefix(c.Request().URL.Path, "/public/") },
		}),
		middleware.BodyLimit(bodyLimit(a.Config.UploadLimit)),
		middleware.SecureWithConfig(a.secureConfig()),
		session.Middleware(a.newSessionStore()),
		middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "header:X-CSRF-Token,form:_csrf",
			CookieName:     "_csrf",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   a.Config.CookieSecure,
			CookieSameSite: http.SameSiteLaxMode,
			ErrorHandler:   csrfFailed,
		}),
		middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
			RedirectCode: http.StatusMovedPermanently,
			Skipper: func(c echo.Context) bool {
				p := c.Request().URL.Path
				return unslashed[p] || strings.HasPrefix(p, "/public")
			},
		}),
		cacheControl,
	)
}

func (a *App) secureConfig() middleware.SecureConfig {
	cfg := middleware.DefaultSecureConfig
	cfg.XFrameOptions = "DENY"
	cfg.ReferrerPolicy = "strict-origin-when-cross-origin"
	cfg.ContentSecurityPolicy = contentSecurityPolicy
	if a.Config.CookieSecure {
		cfg.HSTSMaxAge = 365 * 24 * 60 * 60
	}
	return cfg
}

func (a *App) logRequest(c echo.Context, v middleware.RequestLoggerValues) error {
	attrs := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "ip", v.RemoteIP}
	switch {
	case v.Error != nil:
		a.logger.Warn("request", append(attrs, "err", v.Error)...)
	case v.Status >= http.StatusInternalServerError:
		a.logger.Warn("request", attrs...)
	default:
		a.logger.Info("request", attrs...)
	}
	return nil
}

// csrfFailed answers a missing or stale token. htmx callers get a toast
// since their swap target would otherwise stay blank.
func csrfFailed(err error, c echo.Context) error {
	const msg = "This form has expired. Please reload the page and try again."
	if isHTMX(c) {
		toast(c, content.Warning(msg))
		return c.NoContent(http.StatusForbidden)
	}
	return c.String(http.StatusForbidden, msg)
}

func cacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := "no-cache"
		path := c.Request().URL.Path
		for _, r := range cacheRules {
			if r.match(path) {
				header = r.header
				break
			}
		}
		c.Response().Header().Set("Cache-Control", header)
		return next(c)
	}
}

// bodyLimit formats n bytes for middleware.BodyLimit, rounding down to whole
// megabytes with a floor of one.
func bodyLimit(n int64) string {
	return strconv.FormatInt(max(n>>20, 1), 10) + "M"
}
