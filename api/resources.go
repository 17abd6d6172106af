package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/towngreen/churchsite/content"
)

// Sermons is the sermons collection.
func (c *Client) Sermons() Engageable[Sermon] {
	return Engageable[Sermon]{Resource: NewResource[Sermon](c, "sermons")}
}

// Programs is the church programs collection.
func (c *Client) Programs() Engageable[Program] {
	return Engageable[Program]{Resource: NewResource[Program](c, "programs")}
}

// Prayers is the prayer requests collection.
func (c *Client) Prayers() Prayers { return Prayers{NewResource[PrayerRequest](c, "prayers")} }

// Contact is the contact messages collection.
func (c *Client) Contact() Contact { return Contact{NewResource[ContactMessage](c, "contact")} }

// Memberships is the membership applications collection.
func (c *Client) Memberships() Memberships {
	return Memberships{Resource: NewResource[Membership](c, "membership")}
}

// Testimonies is the submitted testimonies collection.
func (c *Client) Testimonies() Resource[TestimonyRecord] {
	return NewResource[TestimonyRecord](c, "testimonies")
}

// Engageable is a collection whose records collect reactions and comments.
type Engageable[T any] struct {
	Resource[T]
}

// Like records a like of id and returns the new counters.
func (e Engageable[T]) Like(ctx context.Context, id content.ID) (Reactions, error) {
	return e.react(ctx, id, "like")
}

// Love records a love of id and returns the new counters.
func (e Engageable[T]) Love(ctx context.Context, id content.ID) (Reactions, error) {
	return e.react(ctx, id, "love")
}

func (e Engageable[T]) react(ctx context.Context, id content.ID, action string) (Reactions, error) {
	env, err := e.Action(ctx, http.MethodPost, id, action, nil)
	if err != nil {
		return Reactions{}, err
	}
	return decodeData[Reactions](action+" "+e.name, env)
}

// Reactions returns the counters of id.
func (e Engageable[T]) Reactions(ctx context.Context, id content.ID) (Reactions, error) {
	env, err := e.Action(ctx, http.MethodGet, id, "reactions", nil)
	if err != nil {
		return Reactions{}, err
	}
	return decodeData[Reactions]("reactions "+e.name, env)
}

// Comments returns the comments on id.
func (e Engageable[T]) Comments(ctx context.Context, id content.ID) ([]Comment, error) {
	env, err := e.Action(ctx, http.MethodGet, id, "comments", nil)
	if err != nil {
		return nil, err
	}
	out, err := decodeData[[]Comment]("comments "+e.name, env)
	if out == nil && err == nil {
		out = []Comment{}
	}
	return out, err
}

// AddComment posts a comment on id. A blank author is sent as Anonymous.
func (e Engageable[T]) AddComment(ctx context.Context, id content.ID, text, author string) error {
	_, err := e.Action(ctx, http.MethodPost, id, "comments", NewComment{
		CommentText: strings.TrimSpace(text),
		AuthorName:  orAnonymous(author),
	})
	return err
}

// TrackView counts one view of id and returns the new total.
func (e Engageable[T]) TrackView(ctx context.Context, id content.ID) (int, error) {
	env, err := e.Action(ctx, http.MethodPost, id, "view", nil)
	if err != nil {
		return 0, err
	}
	v, err := decodeData[ViewCount]("view "+e.name, env)
	return v.ViewCount, err
}

// Prayers adds the answered marker to the prayer collection.
type Prayers struct{ Resource[PrayerRequest] }

// MarkAnswered flags request id as answered.
func (p Prayers) MarkAnswered(ctx context.Context, id content.ID) error {
	_, err := p.Action(ctx, http.MethodPut, id, "answered", nil)
	return err
}

// Contact adds the read marker to the contact collection.
type Contact struct{ Resource[ContactMessage] }

// MarkRead flags message id as read.
func (c Contact) MarkRead(ctx context.Context, id content.ID) error {
	_, err := c.Action(ctx, http.MethodPut, id, "read", nil)
	return err
}

// Memberships submits applications and lists stored ones page by page.
type Memberships struct {
	Resource[Membership]
}

// Submit posts a new application.
func (m Memberships) Submit(ctx context.Context, a MembershipApplication) error {
	_, err := m.Action(ctx, http.MethodPost, "", "", a)
	return err
}

// Gallery is the reactions and comments surface of home gallery items,
// keyed by item URL.
type Gallery struct{ c *Client }

// Gallery returns the gallery engagement endpoints.
func (c *Client) Gallery() Gallery { return Gallery{c: c} }

func (g Gallery) query(action, itemURL string) string {
	return "/home/gallery/" + action + "?" + url.Values{"item_url": {itemURL}}.Encode()
}

// Reactions returns the counters of one item.
func (g Gallery) Reactions(ctx context.Context, itemURL string) (Reactions, error) {
	env, err := g.c.do(ctx, call{op: "gallery reactions", method: http.MethodGet, path: g.query("reactions", itemURL)})
	if err != nil {
		return Reactions{}, err
	}
	return decodeData[Reactions]("gallery reactions", env)
}

// Like records a like of one item.
func (g Gallery) Like(ctx context.Context, itemURL string) (Reactions, error) {
	return g.react(ctx, "like", itemURL)
}

// Love records a love of one item.
func (g Gallery) Love(ctx context.Context, itemURL string) (Reactions, error) {
	return g.react(ctx, "love", itemURL)
}

func (g Gallery) react(ctx context.Context, action, itemURL string) (Reactions, error) {
	env, err := g.c.do(ctx, call{op: "gallery " + action, method: http.MethodPost, path: "/home/gallery/" + action,
		body: map[string]string{"item_url": itemURL}})
	if err != nil {
		return Reactions{}, err
	}
	return decodeData[Reactions]("gallery "+action, env)
}

// Comments returns the comments on one item.
func (g Gallery) Comments(ctx context.Context, itemURL string) ([]Comment, error) {
	env, err := g.c.do(ctx, call{op: "gallery comments", method: http.MethodGet, path: g.query("comments", itemURL)})
	if err != nil {
		return nil, err
	}
	out, err := decodeData[[]Comment]("gallery comments", env)
	if out == nil && err == nil {
		out = []Comment{}
	}
	return out, err
}

// AddComment posts a comment on one item.
func (g Gallery) AddComment(ctx context.Context, itemURL, text, author string) error {
	_, err := g.c.do(ctx, call{op: "gallery comment", method: http.MethodPost, path: "/home/gallery/comments",
		body: NewComment{ItemURL: itemURL, CommentText: strings.TrimSpace(text), AuthorName: orAnonymous(author)}})
	return err
}

// Health checks that the service is up.
func (c *Client) Health(ctx context.Context) (string, error) {
	env, err := c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"})
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Message, "ok"), nil
}

// TestDB checks that the service can reach its database.
func (c *Client) TestDB(ctx context.Context) (string, error) {
	env, err := c.do(ctx, call{op: "test db", method: http.MethodGet, path: "/test-db"})
	if err != nil {
		return "", err
	}
	return firstNonEmpty(env.Message, "ok"), nil
}

func orAnonymous(author string) string {
	if a := strings.TrimSpace(author); a != "" {
		return a
	}
	return "Anonymous"
}
