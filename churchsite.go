// Package churchsite is the church website: public pages rendered from the
// content service with built-in defaults, and an admin that edits that
// content field by field, manages sermons and programs, and reads what
// visitors submit.
package churchsite

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
)

// App is the central application. It wires together the API client, the
// listing cache, handlers, middleware and views.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	API    *api.Client
	Cache  *ListCache

	loginLimiter  *LoginLimiter
	submitLimiter *LoginLimiter
	validate      *validator.Validate
	customRoutes  []func(*App)
	staticDir     string
	httpClient    api.HTTPClient
	logger        *slog.Logger
	ready         bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Setup validates the configuration, builds the API client and registers
// middleware and routes. Start calls it; tests call it to use Echo as an
// http.Handler.
func (a *App) Setup() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return fmt.Errorf("churchsite: SessionSecret is required")
	}
	if err := ValidateManifests(); err != nil {
		return fmt.Errorf("churchsite: %w", err)
	}

	base, source := a.Config.ResolveAPIURL()
	client, err := api.New(api.Config{
		BaseURL:    base,
		HTTPClient: a.httpClient,
		Timeout:    a.Config.APITimeout,
		Logger:     a.logger,
	})
	if err != nil {
		return fmt.Errorf("churchsite: init api client: %w", err)
	}
	a.API = client
	a.logger.Info("api configured", "url", base, "source", source)

	a.Cache = NewListCache(a.Config.ListCacheSize, a.Config.ListCacheTTL)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)
	// Visitor forms share one budget per IP.
	a.submitLimiter = NewLoginLimiter(a.Config.SubmitAttempts, a.Config.SubmitWindow)
	a.validate = newFormValidator()

	a.Echo.HideBanner = true
	a.setupMiddleware()
	a.setupRoutes()

	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.ready = true
	return nil
}

// Start sets the app up and serves until the server is closed.
func (a *App) Start() error {
	if err := a.Setup(); err != nil {
		return err
	}
	a.logger.Info("site listening", "addr", a.Config.Addr, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	// Embedded site assets are served under /public/ and fall through to the
	// site's own static dir for anything else.
	embeddedFS, _ := fs.Sub(EmbeddedAssets, "embedded")
	embeddedHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(embeddedFS))))
	e.GET("/public/site.css", embeddedHandler)
	e.GET("/public/site.js", embeddedHandler)
	if a.staticDir != "" {
		e.Static("/public", a.staticDir)
	}
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Public pages
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handleAbout)
	e.GET("/sermons/", a.handleSermons)
	e.GET("/sermons/:id/", a.handleSermon)
	e.GET("/programs/", a.handlePrograms)
	e.GET("/testimonies/", a.handleTestimonies)
	e.GET("/prayers/", a.handlePrayers)
	e.GET("/contact/", a.handleContact)
	e.GET("/membership/", a.handleMembership)
	e.GET("/giving/", a.handleGiving)

	// Public submissions
	e.POST("/prayers/", a.handlePrayerSubmit)
	e.POST("/contact/", a.handleContactSubmit)
	e.POST("/membership/", a.handleMembershipSubmit)
	e.POST("/testimonies/", a.handleTestimonySubmit)

	// Reactions and comments
	a.engagementRoutes("/sermons/:id/", sermonEngagement)
	a.engagementRoutes("/programs/:id/", programEngagement)
	a.engagementRoutes("/gallery/", galleryEngagement)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", a.handleAdminLogout)

	adm := e.Group("/admin", a.requireAdmin)

	adm.GET("/content/:page/", a.handleEditor)
	field := adm.Group("/content/:page/field/:section/:key")
	field.GET("/", a.handleFieldView)
	field.GET("/edit/", a.handleFieldEdit)
	field.POST("/", a.handleFieldSave)
	field.POST("/delete/", a.handleFieldDelete)
	field.POST("/upload/", a.handleFieldUpload)
	field.POST("/gallery/", a.handleGalleryAdd)
	field.POST("/gallery/:index/caption/", a.handleGalleryCaption)
	field.POST("/slides/", a.handleSlideAdd)
	field.POST("/testimonies/", a.handleTestimonyPut)
	field.POST("/items/:index/delete/", a.handleItemRemove)

	a.recordRoutes(adm, sermonRecords)
	a.recordRoutes(adm, programRecords)

	adm.GET("/prayers/", a.handleAdminPrayers)
	adm.POST("/prayers/:id/answered/", a.handleAdminPrayerAnswered)
	adm.POST("/prayers/:id/delete/", a.handleAdminPrayerDelete)

	adm.GET("/contact/", a.handleAdminMessages)
	adm.POST("/contact/:id/read/", a.handleAdminMessageRead)
	adm.POST("/contact/:id/delete/", a.handleAdminMessageDelete)

	adm.GET("/membership/", a.handleAdminMembership)
	adm.POST("/membership/:id/status/", a.handleAdminMembershipStatus)
	adm.POST("/membership/:id/delete/", a.handleAdminMembershipDelete)

	adm.GET("/testimonies/", a.handleAdminTestimonies)
	adm.POST("/testimonies/:id/publish/", a.handleAdminTestimonyPublish)
	adm.POST("/testimonies/:id/delete/", a.handleAdminTestimonyDelete)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Purge()
	}
	if a.submitLimiter != nil {
		a.submitLimiter.Purge()
	}
	if a.Cache != nil {
		a.Cache.Invalidate()
	}
	return a.Echo.Close()
}
