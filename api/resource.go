package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/towngreen/churchsite/content"
)

// Resource is a REST collection under /<name>[/:id][/:action].
type Resource[T any] struct {
	c    *Client
	name string
}

// NewResource binds a collection name to c.
func NewResource[T any](c *Client, name string) Resource[T] {
	return Resource[T]{c: c, name: name}
}

func (r Resource[T]) path(id content.ID, action string) string {
	p := "/" + r.name
	if id != "" {
		p += "/" + url.PathEscape(string(id))
	}
	if action != "" {
		p += "/" + action
	}
	return p
}

// List returns every record.
func (r Resource[T]) List(ctx context.Context) ([]T, error) {
	op := "list " + r.name
	env, err := r.c.do(ctx, call{op: op, method: http.MethodGet, path: r.path("", "")})
	if err != nil {
		return nil, err
	}
	items, err := decodeData[[]T](op, env)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Page returns one page of records with the service's pagination.
func (r Resource[T]) Page(ctx context.Context, page, limit int) ([]T, Pagination, error) {
	op := "list " + r.name
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	q := url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
	env, err := r.c.do(ctx, call{op: op, method: http.MethodGet, path: r.path("", "") + "?" + q.Encode()})
	if err != nil {
		return nil, Pagination{}, err
	}
	items, err := decodeData[[]T](op, env)
	if err != nil {
		return nil, Pagination{}, err
	}
	if items == nil {
		items = []T{}
	}
	p := Pagination{Page: page, Limit: limit, Total: len(items), TotalPages: 1}
	if env.Pagination != nil {
		p = *env.Pagination
		if p.TotalPages < 1 {
			p.TotalPages = 1
		}
	}
	return items, p, nil
}

// Get returns one record.
func (r Resource[T]) Get(ctx context.Context, id content.ID) (T, error) {
	op := "get " + r.name
	env, err := r.c.do(ctx, call{op: op, method: http.MethodGet, path: r.path(id, "")})
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeData[T](op, env)
}

// Create posts v and returns the stored record when the service echoes it,
// otherwise v itself.
func (r Resource[T]) Create(ctx context.Context, v T) (T, error) {
	op := "create " + r.name
	env, err := r.c.do(ctx, call{op: op, method: http.MethodPost, path: r.path("", ""), body: v})
	if err != nil {
		return v, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return v, nil
	}
	out, err := decodeData[T](op, env)
	if err != nil {
		// Some endpoints answer with {id} only; the submission stands.
		return v, nil
	}
	return out, nil
}

// Update replaces record id with v.
func (r Resource[T]) Update(ctx context.Context, id content.ID, v T) error {
	_, err := r.c.do(ctx, call{op: "update " + r.name, method: http.MethodPut, path: r.path(id, ""), body: v})
	return err
}

// Delete removes record id.
func (r Resource[T]) Delete(ctx context.Context, id content.ID) error {
	_, err := r.c.do(ctx, call{op: "delete " + r.name, method: http.MethodDelete, path: r.path(id, "")})
	return err
}

// Action invokes a sub-resource such as /prayers/:id/answered.
func (r Resource[T]) Action(ctx context.Context, method string, id content.ID, action string, body any) (*Envelope, error) {
	return r.c.do(ctx, call{op: action + " " + r.name, method: method, path: r.path(id, action), body: body})
}
