package churchsite

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

// engageable is anything visitors can react to and comment on, addressed by
// a string key: a record ID or a gallery item URL.
type engageable interface {
	Reactions(ctx context.Context, key string) (api.Reactions, error)
	Like(ctx context.Context, key string) (api.Reactions, error)
	Love(ctx context.Context, key string) (api.Reactions, error)
	Comments(ctx context.Context, key string) ([]api.Comment, error)
	AddComment(ctx context.Context, key, text, author string) error
}

// recordEngagement keys an ID-addressed collection by string.
type recordEngagement[T any] struct{ e api.Engageable[T] }

func (r recordEngagement[T]) Reactions(ctx context.Context, key string) (api.Reactions, error) {
	return r.e.Reactions(ctx, content.ID(key))
}

func (r recordEngagement[T]) Like(ctx context.Context, key string) (api.Reactions, error) {
	return r.e.Like(ctx, content.ID(key))
}

func (r recordEngagement[T]) Love(ctx context.Context, key string) (api.Reactions, error) {
	return r.e.Love(ctx, content.ID(key))
}

func (r recordEngagement[T]) Comments(ctx context.Context, key string) ([]api.Comment, error) {
	return r.e.Comments(ctx, content.ID(key))
}

func (r recordEngagement[T]) AddComment(ctx context.Context, key, text, author string) error {
	return r.e.AddComment(ctx, content.ID(key), text, author)
}

// engagementKind binds one engageable surface to its routes.
type engagementKind struct {
	target func(*api.Client) engageable
	// key reads the item key from the request.
	key func(echo.Context) string
	// base is the route prefix of the item's engagement endpoints.
	base func(key string) string
	// back is where plain form posts return to.
	back func(key string) string
	// byURL marks surfaces keyed by item URL instead of a path ID.
	byURL bool
}

var sermonEngagement = engagementKind{
	target: func(c *api.Client) engageable { return recordEngagement[api.Sermon]{c.Sermons()} },
	key:    func(c echo.Context) string { return c.Param("id") },
	base:   func(key string) string { return "/sermons/" + url.PathEscape(key) + "/" },
	back:   func(key string) string { return "/sermons/" + url.PathEscape(key) + "/" },
}

var programEngagement = engagementKind{
	target: func(c *api.Client) engageable { return recordEngagement[api.Program]{c.Programs()} },
	key:    func(c echo.Context) string { return c.Param("id") },
	base:   func(key string) string { return "/programs/" + url.PathEscape(key) + "/" },
	back:   func(string) string { return "/programs/" },
}

var galleryEngagement = engagementKind{
	target: func(c *api.Client) engageable { return c.Gallery() },
	key:    func(c echo.Context) string { return strings.TrimSpace(c.FormValue("item_url")) },
	base:   func(string) string { return "/gallery/" },
	back:   func(string) string { return "/" },
	byURL:  true,
}

type commentForm struct {
	CommentText string `form:"comment_text" validate:"required,max=2000"`
	AuthorName  string `form:"author_name" validate:"max=120"`
}

func (a *App) engagementRoutes(base string, k engagementKind) {
	e := a.Echo
	e.GET(base+"engagement/", func(c echo.Context) error {
		key, err := engagementKey(c, k)
		if err != nil {
			return err
		}
		return a.renderEngagement(c, k, key, a.loadEngagement(c.Request().Context(), k.target(a.API), key))
	})
	e.POST(base+"like/", a.handleReact(k, engageable.Like))
	e.POST(base+"love/", a.handleReact(k, engageable.Love))
	e.POST(base+"comments/", a.handleComment(k))
}

func engagementKey(c echo.Context, k engagementKind) (string, error) {
	key := k.key(c)
	if key == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing item")
	}
	return key, nil
}

// loadEngagement reads reactions and comments side by side. Failures leave
// zero counters and an error notice in the block.
func (a *App) loadEngagement(ctx context.Context, t engageable, key string) views.Engagement {
	var d views.Engagement
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := t.Reactions(ctx, key)
		d.Reactions = r
		return err
	})
	g.Go(func() error {
		cs, err := t.Comments(ctx, key)
		d.Comments = cs
		return err
	})
	if err := g.Wait(); err != nil {
		a.logger.Warn("engagement unavailable", "key", key, "err", err)
		d.Notice = content.Failure("Failed to load reactions", err)
	}
	return d
}

func (a *App) renderEngagement(c echo.Context, k engagementKind, key string, d views.Engagement) error {
	d.CSRF = CsrfToken(c)
	d.Base = k.base(key)
	if k.byURL {
		d.ItemURL = key
	}
	return Render(c, views.EngagementBlock(d))
}

// finishEngagement answers a reaction or comment post: the refreshed block
// for htmx, a redirect back to the page otherwise.
func (a *App) finishEngagement(c echo.Context, k engagementKind, key string, d views.Engagement) error {
	if !isHTMX(c) {
		return redirectNotice(c, k.back(key), d.Notice)
	}
	return a.renderEngagement(c, k, key, d)
}

func (a *App) handleReact(k engagementKind, react func(engageable, context.Context, string) (api.Reactions, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		key, err := engagementKey(c, k)
		if err != nil {
			return err
		}
		ctx := c.Request().Context()
		t := k.target(a.API)
		r, err := react(t, ctx, key)
		if err != nil {
			a.logger.Warn("reaction failed", "key", key, "err", err)
			d := a.loadEngagement(ctx, t, key)
			d.Notice = content.Failure("Failed to react", err)
			return a.finishEngagement(c, k, key, d)
		}
		d := a.loadEngagement(ctx, t, key)
		d.Reactions = r
		return a.finishEngagement(c, k, key, d)
	}
}

func (a *App) handleComment(k engagementKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		key, err := engagementKey(c, k)
		if err != nil {
			return err
		}
		var f commentForm
		if err := c.Bind(&f); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
		}
		trimAll(&f.CommentText, &f.AuthorName)

		ctx := c.Request().Context()
		t := k.target(a.API)
		var n content.Notice
		if errs := a.formErrors(&f); len(errs) > 0 {
			n = content.Warning("Please write a comment of up to 2000 characters.")
		} else if err := t.AddComment(ctx, key, f.CommentText, f.AuthorName); err != nil {
			a.logger.Warn("comment failed", "key", key, "err", err)
			n = content.Failure("Failed to post comment", err)
		} else {
			n = content.Success("Comment posted!")
		}
		d := a.loadEngagement(ctx, t, key)
		if d.Notice.IsZero() {
			d.Notice = n
		}
		return a.finishEngagement(c, k, key, d)
	}
}
