package churchsite

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

// newStore returns the content store of one page view.
func (a *App) newStore(c echo.Context) *content.Store {
	return content.NewStore(a.client(c), content.WithLogger(a.logger))
}

// publicPage loads the content of m next to any extra reads, then fills the
// page chrome. A failed content load leaves the manifest defaults in place.
func (a *App) publicPage(c echo.Context, nav, title string, m content.Manifest, extra ...func(context.Context, *views.Public)) views.Public {
	store := a.newStore(c)
	d := views.Public{Page: content.Page{Store: store, Manifest: m}}

	g, ctx := errgroup.WithContext(c.Request().Context())
	g.Go(func() error {
		if err := store.Load(ctx); err != nil {
			a.logger.Warn("content unavailable, rendering defaults", "path", c.Request().URL.Path, "err", err)
		}
		return nil
	})
	for _, fn := range extra {
		g.Go(func() error {
			fn(ctx, &d)
			return nil
		})
	}
	_ = g.Wait()

	d.Layout = a.layout(c, nav, title, store)
	return d
}

func (a *App) handleHome(c echo.Context) error {
	d := a.publicPage(c, "home", "", HomeManifest)
	return Render(c, views.Home(d))
}

func (a *App) handleAbout(c echo.Context) error {
	d := a.publicPage(c, "about", "About", AboutManifest)
	return Render(c, views.About(d))
}

func (a *App) loadSermons(ctx context.Context, d *views.Public) {
	sermons, err := cachedList(ctx, a.Cache, cacheSermons, a.API.Sermons().List)
	if err != nil {
		d.Banner = content.Failure("Failed to load sermons", err)
		return
	}
	d.Sermons = sermons
}

func (a *App) handleSermons(c echo.Context) error {
	d := a.publicPage(c, "sermons", "Sermons", HomeManifest, a.loadSermons)
	return Render(c, views.Sermons(d))
}

func (a *App) handleSermon(c echo.Context) error {
	id := content.ID(c.Param("id"))
	var notFound bool
	d := a.publicPage(c, "sermons", "Sermon", HomeManifest,
		func(ctx context.Context, d *views.Public) {
			sermons := a.API.Sermons()
			s, err := sermons.Get(ctx, id)
			if err != nil {
				if api.IsNotFound(err) {
					notFound = true
					return
				}
				d.Banner = content.Failure("Failed to load sermon", err)
				return
			}
			if n, err := sermons.TrackView(ctx, id); err == nil {
				s.ViewCount = n
			}
			d.Sermon = s
		},
		func(ctx context.Context, d *views.Public) {
			d.Engagement = a.loadEngagement(ctx, sermonEngagement.target(a.API), string(id))
		},
	)
	if notFound {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	d.Meta.Title = d.Sermon.DisplayTitle()
	d.Meta.Description = d.Sermon.Description
	d.Meta.OGType = "article"
	d.Engagement.CSRF = d.CSRF
	d.Engagement.Base = sermonEngagement.base(string(id))
	return Render(c, views.Sermon(d))
}

func (a *App) handlePrograms(c echo.Context) error {
	d := a.publicPage(c, "programs", "Programs", HomeManifest, func(ctx context.Context, d *views.Public) {
		programs, err := cachedList(ctx, a.Cache, cachePrograms, a.API.Programs().List)
		if err != nil {
			// The page still lists the programs declared in content.
			a.logger.Warn("programs unavailable", "err", err)
			return
		}
		d.Programs = programs
	})
	return Render(c, views.Programs(d))
}

func (a *App) handleTestimonies(c echo.Context) error {
	d := a.publicPage(c, "testimonies", "Testimonies", TestimoniesManifest)
	return Render(c, views.Testimonies(d))
}

func (a *App) handlePrayers(c echo.Context) error {
	d := a.publicPage(c, "prayers", "Prayer Requests", PrayersManifest)
	d.Form.Sent = c.QueryParam("sent") != ""
	return Render(c, views.Prayers(d))
}

func (a *App) handleContact(c echo.Context) error {
	d := a.publicPage(c, "contact", "Contact", ContactManifest)
	d.Form.Sent = c.QueryParam("sent") != ""
	return Render(c, views.Contact(d))
}

func (a *App) handleMembership(c echo.Context) error {
	d := a.publicPage(c, "membership", "Membership", HomeManifest)
	d.Form.Sent = c.QueryParam("sent") != ""
	return Render(c, views.Membership(d))
}

// givingTypesOf reads the configured giving types, skipping unnamed ones.
func givingTypesOf(p content.Page) []views.GivingType {
	var out []views.GivingType
	for n := 1; n <= givingTypeCount; n++ {
		name := strings.TrimSpace(p.Text("giving_page", fmt.Sprintf("giving_type%d_name", n)))
		if name == "" {
			continue
		}
		out = append(out, views.GivingType{
			ID:          strings.ToLower(name),
			Name:        name,
			Description: p.Text("giving_page", fmt.Sprintf("giving_type%d_description", n)),
		})
	}
	return out
}

func (a *App) handleGiving(c echo.Context) error {
	d := a.publicPage(c, "giving", "Giving", GivingManifest)
	d.GivingTypes = givingTypesOf(d.Page)
	chosen := strings.ToLower(strings.TrimSpace(c.QueryParam("type")))
	for _, t := range d.GivingTypes {
		if t.ID == chosen {
			d.GivingType = t
		}
	}
	return Render(c, views.Giving(d))
}

func (a *App) handleSitemap(c echo.Context) error {
	sermons, err := cachedList(c.Request().Context(), a.Cache, cacheSermons, a.API.Sermons().List)
	if err != nil {
		// Pages are still worth listing without the sermons.
		a.logger.Warn("sitemap without sermons", "err", err)
	}
	return a.renderSitemap(c, sermons)
}

func (a *App) handleFeed(c echo.Context) error {
	sermons, err := cachedList(c.Request().Context(), a.Cache, cacheSermons, a.API.Sermons().List)
	if err != nil {
		return err
	}
	return a.renderRSS(c, sermons)
}

func (a *App) handleFavicon(c echo.Context) error {
	store := a.newStore(c)
	if err := store.Load(c.Request().Context()); err == nil {
		if icon := store.Get("site", "favicon", ""); icon != "" {
			return c.Redirect(http.StatusFound, icon)
		}
	}
	return c.(interface {
		FileFS(string, fs.FS) error
	}).FileFS("embedded/favicon.svg", EmbeddedAssets)
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nDisallow: /admin/\nSitemap: " + strings.TrimRight(a.Config.URL, "/") + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	l := a.layout(c, "", "", nil)
	l.Admin = strings.HasPrefix(c.Request().URL.Path, "/admin")

	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound || api.IsNotFound(err) {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(l))
		return
	}
	if api.IsUnauthorized(err) && l.Admin {
		_ = clearAdminSession(c)
		if isHTMX(c) {
			c.Response().Header().Set("HX-Redirect", "/admin/")
			_ = c.NoContent(http.StatusOK)
			return
		}
		_ = redirectNotice(c, "/admin/", content.Warning("Your session has expired. Please sign in again."))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	} else if api.KindOf(err) != "" {
		code = http.StatusBadGateway
	}
	if code >= 500 {
		a.logger.Error("server error", "path", c.Request().URL.Path, "err", err)
		_ = RenderStatus(c, code, views.ServerError(l))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
