package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
)

// resource declares one REST collection of the service and who may do what.
type resource struct {
	name  string
	label string
	// publicRead allows listing and fetching without a token.
	publicRead bool
	// publicCreate allows visitors to submit new records.
	publicCreate bool
	// engage enables reactions, comments and view counting.
	engage bool
	// flags are PUT /:id/<action> markers mapped to the boolean they set.
	flags map[string]string
	// check validates a create or update body.
	check func(echo.Context, []byte) error
	// normalize rewrites a submitted body into its stored shape.
	normalize func(map[string]any)
}

var resources = []resource{
	{name: "sermons", label: "Sermon", publicRead: true, engage: true, check: checkAs[api.Sermon]},
	{name: "programs", label: "Program", publicRead: true, engage: true, check: checkAs[api.Program]},
	{name: "prayers", label: "Prayer request", publicCreate: true, flags: map[string]string{"answered": "is_answered"}, check: checkAs[api.PrayerRequest]},
	{name: "contact", label: "Message", publicCreate: true, flags: map[string]string{"read": "is_read"}, check: checkAs[api.ContactMessage]},
	{name: "membership", label: "Membership", publicCreate: true, normalize: normalizeMembership},
	{name: "testimonies", label: "Testimony", publicRead: true, publicCreate: true, check: checkAs[api.TestimonyRecord]},
}

var (
	errInvalidBody   = errors.New("Invalid request body")
	errMissingFields = errors.New("Please fill in all required fields correctly")
)

func checkAs[T any](c echo.Context, body []byte) error {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return err
	}
	return c.Validate(&v)
}

// normalizeMembership accepts the public form's camelCase fields and stores
// the snake_case shape listed to admins.
func normalizeMembership(m map[string]any) {
	if v, found := m["fullName"]; found {
		m["full_name"] = v
		delete(m, "fullName")
	}
	if s, _ := m["status"].(string); s == "" {
		m["status"] = api.MembershipPending
	}
}

func (s *Server) registerResource(g *echo.Group, r resource) {
	auth := s.requireAuth
	readMW := []echo.MiddlewareFunc{}
	if !r.publicRead {
		readMW = append(readMW, auth)
	}
	createMW := []echo.MiddlewareFunc{}
	if !r.publicCreate {
		createMW = append(createMW, auth)
	}
	base := "/" + r.name

	g.GET(base, s.handleList(r), readMW...)
	g.GET(base+"/:id", s.handleGet(r), readMW...)
	g.POST(base, s.handleCreate(r), createMW...)
	g.PUT(base+"/:id", s.handleUpdate(r), auth)
	g.DELETE(base+"/:id", s.handleDelete(r), auth)

	for action, field := range r.flags {
		g.PUT(base+"/:id/"+action, s.handleFlag(r, field), auth)
	}
	if r.engage {
		g.GET(base+"/:id/reactions", s.handleReactions(r))
		g.POST(base+"/:id/like", s.handleReact(r, "like"))
		g.POST(base+"/:id/love", s.handleReact(r, "love"))
		g.GET(base+"/:id/comments", s.handleComments(r))
		g.POST(base+"/:id/comments", s.handleAddComment(r))
		g.POST(base+"/:id/view", s.handleView(r))
	}
}

func (s *Server) handleList(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if c.QueryParam("page") == "" && c.QueryParam("limit") == "" {
			recs, err := s.Store.Records(ctx, r.name)
			if err != nil {
				return err
			}
			return ok(c, recs)
		}
		page := atoiOr(c.QueryParam("page"), 1)
		limit := atoiOr(c.QueryParam("limit"), 10)
		if limit > 100 {
			limit = 100
		}
		recs, total, err := s.Store.PageRecords(ctx, r.name, page, limit)
		if err != nil {
			return err
		}
		pages := (total + limit - 1) / limit
		if pages < 1 {
			pages = 1
		}
		return c.JSON(http.StatusOK, reply{
			Success:    true,
			Data:       recs,
			Pagination: api.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages},
		})
	}
}

func (s *Server) handleGet(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := s.Store.Record(c.Request().Context(), r.name, c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		if err != nil {
			return err
		}
		return ok(c, rec)
	}
}

func (s *Server) readBody(c echo.Context, r resource, partial bool) (map[string]any, error) {
	var fields map[string]any
	dec := json.NewDecoder(c.Request().Body)
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return nil, errInvalidBody
	}
	if r.normalize != nil {
		r.normalize(fields)
	}
	if r.check != nil && !partial {
		raw, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		if err := r.check(c, raw); err != nil {
			return nil, errMissingFields
		}
	}
	return fields, nil
}

func (s *Server) handleCreate(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		fields, err := s.readBody(c, r, false)
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		rec, err := s.Store.CreateRecord(c.Request().Context(), r.name, fields)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, reply{Success: true, Data: rec})
	}
}

func (s *Server) handleUpdate(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		fields, err := s.readBody(c, r, r.name == "membership")
		if err != nil {
			return fail(c, http.StatusBadRequest, err.Error())
		}
		rec, err := s.Store.UpdateRecord(c.Request().Context(), r.name, c.Param("id"), fields)
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		if err != nil {
			return err
		}
		return ok(c, rec)
	}
}

func (s *Server) handleDelete(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := s.Store.DeleteRecord(c.Request().Context(), r.name, c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, reply{Success: true, Message: "Deleted"})
	}
}

func (s *Server) handleFlag(r resource, field string) echo.HandlerFunc {
	return func(c echo.Context) error {
		rec, err := s.Store.UpdateRecord(c.Request().Context(), r.name, c.Param("id"), map[string]any{field: true})
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		if err != nil {
			return err
		}
		return ok(c, rec)
	}
}

func target(r resource, id string) string { return r.name + ":" + id }

func (s *Server) exists(c echo.Context, r resource) (bool, error) {
	_, err := s.Store.Record(c.Request().Context(), r.name, c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Server) handleReactions(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		re, err := s.Store.Reactions(c.Request().Context(), target(r, c.Param("id")))
		if err != nil {
			return err
		}
		return ok(c, re)
	}
}

func (s *Server) handleReact(r resource, kind string) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := s.exists(c, r)
		if err != nil {
			return err
		}
		if !found {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		re, err := s.Store.React(c.Request().Context(), target(r, c.Param("id")), kind)
		if err != nil {
			return err
		}
		return ok(c, re)
	}
}

func (s *Server) handleComments(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := s.Store.Comments(c.Request().Context(), target(r, c.Param("id")))
		if err != nil {
			return err
		}
		return ok(c, list)
	}
}

func (s *Server) handleAddComment(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.NewComment
		if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
			return fail(c, http.StatusBadRequest, "comment_text is required")
		}
		found, err := s.exists(c, r)
		if err != nil {
			return err
		}
		if !found {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		cm, err := s.Store.AddComment(c.Request().Context(), target(r, c.Param("id")), authorOr(req.AuthorName), strings.TrimSpace(req.CommentText))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, reply{Success: true, Data: cm})
	}
}

func (s *Server) handleView(r resource) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		rec, err := s.Store.Record(ctx, r.name, c.Param("id"))
		if errors.Is(err, ErrNotFound) {
			return fail(c, http.StatusNotFound, notFound(r))
		}
		if err != nil {
			return err
		}
		views := 1
		if n, isNum := rec["view_count"].(float64); isNum {
			views = int(n) + 1
		}
		if _, err := s.Store.UpdateRecord(ctx, r.name, c.Param("id"), map[string]any{"view_count": views}); err != nil {
			return err
		}
		return ok(c, api.ViewCount{ViewCount: views})
	}
}

func notFound(r resource) string {
	return r.label + " not found"
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
