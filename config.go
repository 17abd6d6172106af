package churchsite

import (
	"log/slog"
	"time"

	"github.com/towngreen/churchsite/api"
)

// BuildAPIURL is the API root baked in at build time with
// -ldflags "-X github.com/towngreen/churchsite.BuildAPIURL=https://...".
var BuildAPIURL string

// SiteConfig holds all configuration for the church site.
type SiteConfig struct {
	Name        string // Site name (default "Town Green Assembly")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr string // Listen address (default ":3000")

	// APIURL is the runtime API root. When empty, BuildAPIURL and then the
	// host of URL decide.
	APIURL     string
	APITimeout time.Duration // Per-request timeout (default 30s)

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	ListCacheTTL  time.Duration // Sermon, program and testimony list cache TTL (default 1min)
	ListCacheSize int           // Cached listings (default 64)

	LoginAttempts int           // Failed logins allowed per window (default 5)
	LoginWindow   time.Duration // Login limiter window (default 1min)

	SubmitAttempts int           // Visitor form posts allowed per IP and window (default 10)
	SubmitWindow   time.Duration // Form limiter window (default 10min)

	UploadLimit  int64 // Multipart upload cap in bytes (default 110MB)
	MaxImageSide int   // Images wider than this are scaled down before upload (default 1600)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Town Green Assembly"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Description == "" {
		c.Description = "A community of faith, hope, and love"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.APITimeout == 0 {
		c.APITimeout = api.DefaultTimeout
	}
	if c.ListCacheTTL == 0 {
		c.ListCacheTTL = time.Minute
	}
	if c.ListCacheSize == 0 {
		c.ListCacheSize = 64
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.SubmitAttempts == 0 {
		c.SubmitAttempts = 10
	}
	if c.SubmitWindow == 0 {
		c.SubmitWindow = 10 * time.Minute
	}
	if c.UploadLimit == 0 {
		c.UploadLimit = 110 << 20
	}
	if c.MaxImageSide == 0 {
		c.MaxImageSide = 1600
	}
}

// ResolveAPIURL reports the API root the site talks to and which rule chose it.
func (c SiteConfig) ResolveAPIURL() (string, api.BaseURLSource) {
	return api.ResolveBaseURL(c.APIURL, BuildAPIURL, c.URL)
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App after the built-in routes are set up.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets a directory of site-owned static assets served under
// /public, ahead of the embedded ones (default none).
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithHTTPClient sets the transport used to reach the API.
func WithHTTPClient(hc api.HTTPClient) Option {
	return func(a *App) {
		a.httpClient = hc
	}
}

// WithLogger sets the logger of the app and its API client.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}
