package churchsite

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

const membershipPageSize = 20

// recordRouter registers the admin routes of one collection.
type recordRouter interface {
	register(a *App, g *echo.Group)
}

func (a *App) recordRoutes(g *echo.Group, r recordRouter) {
	r.register(a, g)
}

// recordKind is a collection the admin creates, edits and deletes through a
// plain form. Public listings of it are cached under cacheKey.
type recordKind[T any] struct {
	name     string
	title    string
	singular string
	cacheKey string
	columns  []string
	resource func(*api.Client) api.Resource[T]
	id       func(T) content.ID
	cells    func(T) []string
	fields   func(T) []views.FormField
}

var sermonRecords = recordKind[api.Sermon]{
	name:     "sermons",
	title:    "Sermons",
	singular: "Sermon",
	cacheKey: cacheSermons,
	columns:  []string{"Title", "Speaker", "Date", "Type", "Views"},
	resource: func(c *api.Client) api.Resource[api.Sermon] { return c.Sermons().Resource },
	id:       func(s api.Sermon) content.ID { return s.ID },
	cells: func(s api.Sermon) []string {
		return []string{s.DisplayTitle(), s.Speaker, s.Date, s.Kind(), strconv.Itoa(s.ViewCount)}
	},
	fields: func(s api.Sermon) []views.FormField {
		kind := s.SermonType
		if kind == "" {
			kind = s.Kind()
		}
		return []views.FormField{
			{Name: "title", Label: "Title", Value: s.Title, Required: true},
			{Name: "speaker", Label: "Speaker", Value: s.Speaker},
			{Name: "date", Label: "Date", Type: "date", Value: s.Date},
			{Name: "sermon_type", Label: "Type", Type: "select", Value: kind, Options: []string{"text", "audio", "video"}},
			{Name: "description", Label: "Description", Type: "textarea", Value: s.Description},
			{Name: "audio_url", Label: "Audio link", Type: "url", Value: s.AudioURL},
			{Name: "video_url", Label: "Video link", Type: "url", Value: s.VideoURL},
			{Name: "thumbnail_url", Label: "Thumbnail link", Value: s.ThumbnailURL},
		}
	},
}

var programRecords = recordKind[api.Program]{
	name:     "programs",
	title:    "Programs",
	singular: "Program",
	cacheKey: cachePrograms,
	columns:  []string{"Title", "Day", "Time", "Location"},
	resource: func(c *api.Client) api.Resource[api.Program] { return c.Programs().Resource },
	id:       func(p api.Program) content.ID { return p.ID },
	cells: func(p api.Program) []string {
		return []string{p.Title, p.DayOfWeek, p.Time, p.Location}
	},
	fields: func(p api.Program) []views.FormField {
		return []views.FormField{
			{Name: "title", Label: "Title", Value: p.Title, Required: true},
			{Name: "day_of_week", Label: "Day", Type: "select", Value: p.DayOfWeek,
				Options: []string{"", "Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}},
			{Name: "time", Label: "Time", Value: p.Time},
			{Name: "location", Label: "Location", Value: p.Location},
			{Name: "description", Label: "Description", Type: "textarea", Value: p.Description},
			{Name: "image_url", Label: "Image link", Value: p.ImageURL},
		}
	},
}

func (k recordKind[T]) base() string { return "/admin/" + k.name + "/" }

func (k recordKind[T]) register(a *App, g *echo.Group) {
	p := "/" + k.name
	g.GET(p+"/", func(c echo.Context) error { return k.list(a, c) })
	g.GET(p+"/new/", func(c echo.Context) error { return k.form(a, c, *new(T), k.base(), http.StatusOK, content.Notice{}) })
	g.POST(p+"/", func(c echo.Context) error { return k.save(a, c, "") })
	g.GET(p+"/:id/edit/", func(c echo.Context) error { return k.edit(a, c) })
	g.POST(p+"/:id/", func(c echo.Context) error { return k.save(a, c, content.ID(c.Param("id"))) })
	g.POST(p+"/:id/delete/", func(c echo.Context) error { return k.remove(a, c) })
}

func (k recordKind[T]) list(a *App, c echo.Context) error {
	d := views.Records{
		Layout:   a.adminLayout(c, k.name, k.title),
		Title:    k.title,
		Columns:  k.columns,
		NewURL:   k.base() + "new/",
		RetryURL: k.base(),
		Banner:   flash(c),
	}
	items, err := k.resource(a.client(c)).List(c.Request().Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		d.Banner = content.Failure("Failed to load "+strings.ToLower(k.title), err)
	}
	for _, it := range items {
		id := k.id(it)
		d.Rows = append(d.Rows, views.Row{
			ID:    id,
			Cells: k.cells(it),
			Actions: []views.Action{
				{Label: "Edit", URL: k.base() + string(id) + "/edit/", Method: "get"},
				{Label: "Delete", URL: k.base() + string(id) + "/delete/", Method: "post",
					Confirm: "Delete this " + strings.ToLower(k.singular) + "?", Danger: true},
			},
		})
	}
	return Render(c, views.AdminRecords(d))
}

func (k recordKind[T]) form(a *App, c echo.Context, v T, action string, code int, banner content.Notice) error {
	title := "New " + strings.ToLower(k.singular)
	if action != k.base() {
		title = "Edit " + strings.ToLower(k.singular)
	}
	return RenderStatus(c, code, views.AdminRecordForm(views.RecordForm{
		Layout: a.adminLayout(c, k.name, title),
		Title:  title,
		Action: action,
		Back:   k.base(),
		Fields: k.fields(v),
		Banner: banner,
	}))
}

func (k recordKind[T]) edit(a *App, c echo.Context) error {
	id := content.ID(c.Param("id"))
	v, err := k.resource(a.client(c)).Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return k.form(a, c, v, k.base()+string(id)+"/", http.StatusOK, content.Notice{})
}

// save creates a record when id is empty and replaces record id otherwise.
func (k recordKind[T]) save(a *App, c echo.Context, id content.ID) error {
	action := k.base()
	if id != "" {
		action += string(id) + "/"
	}
	ctx := c.Request().Context()
	r := k.resource(a.client(c))

	// Updates bind over the stored record so fields the form does not carry,
	// like view counts, survive the full replace.
	var v T
	if id != "" {
		cur, err := r.Get(ctx, id)
		if err != nil {
			return err
		}
		v = cur
	}
	if err := c.Bind(&v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if errs := a.formErrors(&v); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for name, msg := range errs {
			msgs = append(msgs, name+": "+msg)
		}
		sort.Strings(msgs)
		return k.form(a, c, v, action, http.StatusUnprocessableEntity, content.Warning(strings.Join(msgs, " ")))
	}

	var err error
	if id == "" {
		_, err = r.Create(ctx, v)
	} else {
		err = r.Update(ctx, id, v)
	}
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		a.logger.Warn("record save failed", "collection", k.name, "id", id, "err", err)
		return k.form(a, c, v, action, http.StatusOK, content.Failure("Failed to save", err))
	}
	a.Cache.Invalidate(k.cacheKey)
	return redirectNotice(c, k.base(), content.Success(k.singular+" saved."))
}

func (k recordKind[T]) remove(a *App, c echo.Context) error {
	id := content.ID(c.Param("id"))
	n := content.Success(k.singular + " deleted.")
	if err := k.resource(a.client(c)).Delete(c.Request().Context(), id); err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		n = content.Failure("Failed to delete", err)
	} else {
		a.Cache.Invalidate(k.cacheKey)
	}
	return redirectNotice(c, k.base(), n)
}

// recordAction runs op on the :id of the request and returns to back.
func (a *App) recordAction(c echo.Context, back, done, failed string, op func(context.Context, *api.Client, content.ID) error) error {
	id := content.ID(c.Param("id"))
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id")
	}
	if err := op(c.Request().Context(), a.client(c), id); err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		a.logger.Warn("admin action failed", "path", c.Path(), "id", id, "err", err)
		return redirectNotice(c, back, content.Failure(failed, err))
	}
	return redirectNotice(c, back, content.Success(done))
}

func (a *App) recordsPage(c echo.Context, nav, title string, columns []string) views.Records {
	return views.Records{
		Layout:   a.adminLayout(c, nav, title),
		Title:    title,
		Columns:  columns,
		RetryURL: "/admin/" + nav + "/",
		Banner:   flash(c),
	}
}

func (a *App) handleAdminPrayers(c echo.Context) error {
	d := a.recordsPage(c, "prayers", "Prayer requests", []string{"From", "Request", "Email", "Phone", "Received", "Status"})
	items, err := a.client(c).Prayers().List(c.Request().Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		d.Banner = content.Failure("Failed to load prayer requests", err)
	}
	for _, p := range items {
		base := "/admin/prayers/" + string(p.ID) + "/"
		status := "Open"
		var actions []views.Action
		if p.IsAnswered {
			status = "Answered"
		} else {
			actions = append(actions, views.Action{Label: "Mark answered", URL: base + "answered/", Method: "post"})
		}
		actions = append(actions, views.Action{Label: "Delete", URL: base + "delete/", Method: "post",
			Confirm: "Delete this prayer request?", Danger: true})
		d.Rows = append(d.Rows, views.Row{
			ID:      p.ID,
			Cells:   []string{p.DisplayName(), p.RequestText, p.Email, p.Phone, p.CreatedAt, status},
			Muted:   p.IsAnswered,
			Actions: actions,
		})
	}
	return Render(c, views.AdminRecords(d))
}

func (a *App) handleAdminPrayerAnswered(c echo.Context) error {
	return a.recordAction(c, "/admin/prayers/", "Prayer request marked as answered.", "Failed to update",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Prayers().MarkAnswered(ctx, id) })
}

func (a *App) handleAdminPrayerDelete(c echo.Context) error {
	return a.recordAction(c, "/admin/prayers/", "Prayer request deleted.", "Failed to delete",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Prayers().Delete(ctx, id) })
}

func (a *App) handleAdminMessages(c echo.Context) error {
	d := a.recordsPage(c, "contact", "Messages", []string{"From", "Email", "Subject", "Message", "Received"})
	items, err := a.client(c).Contact().List(c.Request().Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		d.Banner = content.Failure("Failed to load messages", err)
	}
	for _, m := range items {
		base := "/admin/contact/" + string(m.ID) + "/"
		var actions []views.Action
		if !m.IsRead {
			actions = append(actions, views.Action{Label: "Mark read", URL: base + "read/", Method: "post"})
		}
		actions = append(actions, views.Action{Label: "Delete", URL: base + "delete/", Method: "post",
			Confirm: "Delete this message?", Danger: true})
		d.Rows = append(d.Rows, views.Row{
			ID:      m.ID,
			Cells:   []string{m.Name, m.Email, m.Subject, m.Message, m.CreatedAt},
			Muted:   m.IsRead,
			Actions: actions,
		})
	}
	return Render(c, views.AdminRecords(d))
}

func (a *App) handleAdminMessageRead(c echo.Context) error {
	return a.recordAction(c, "/admin/contact/", "Message marked as read.", "Failed to update",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Contact().MarkRead(ctx, id) })
}

func (a *App) handleAdminMessageDelete(c echo.Context) error {
	return a.recordAction(c, "/admin/contact/", "Message deleted.", "Failed to delete",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Contact().Delete(ctx, id) })
}

func (a *App) handleAdminMembership(c echo.Context) error {
	d := a.recordsPage(c, "membership", "Membership applications",
		[]string{"Name", "Sex", "Phone", "Email", "Address", "Applied", "Status"})
	page := pageParam(c)
	items, p, err := a.client(c).Memberships().Page(c.Request().Context(), page, membershipPageSize)
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		d.Banner = content.Failure("Failed to load applications", err)
	} else {
		d.Pagination = &p
		if p.Page > 1 {
			d.PrevURL = "/admin/membership/?page=" + strconv.Itoa(p.Page-1)
		}
		if p.Page < p.TotalPages {
			d.NextURL = "/admin/membership/?page=" + strconv.Itoa(p.Page+1)
		}
	}
	for _, m := range items {
		base := "/admin/membership/" + string(m.ID) + "/"
		status := m.StatusOrPending()
		var actions []views.Action
		if status != api.MembershipApproved {
			actions = append(actions, views.Action{Label: "Approve", URL: base + "status/", Method: "post",
				Name: "status", Value: api.MembershipApproved})
		}
		if status != api.MembershipRejected {
			actions = append(actions, views.Action{Label: "Reject", URL: base + "status/", Method: "post",
				Name: "status", Value: api.MembershipRejected})
		}
		actions = append(actions, views.Action{Label: "Delete", URL: base + "delete/", Method: "post",
			Confirm: "Delete this application?", Danger: true})
		d.Rows = append(d.Rows, views.Row{
			ID:      m.ID,
			Cells:   []string{m.FullName, m.Sex, m.Phone, m.Email, m.Address, m.CreatedAt, status},
			Muted:   status == api.MembershipRejected,
			Actions: actions,
		})
	}
	return Render(c, views.AdminRecords(d))
}

func (a *App) handleAdminMembershipStatus(c echo.Context) error {
	status := strings.ToLower(strings.TrimSpace(c.FormValue("status")))
	switch status {
	case api.MembershipPending, api.MembershipApproved, api.MembershipRejected:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	return a.recordAction(c, "/admin/membership/", "Application marked as "+status+".", "Failed to update",
		func(ctx context.Context, cl *api.Client, id content.ID) error {
			r := cl.Memberships()
			m, err := r.Get(ctx, id)
			if err != nil {
				return err
			}
			m.Status = status
			return r.Update(ctx, id, m)
		})
}

func (a *App) handleAdminMembershipDelete(c echo.Context) error {
	return a.recordAction(c, "/admin/membership/", "Application deleted.", "Failed to delete",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Memberships().Delete(ctx, id) })
}

func (a *App) handleAdminTestimonies(c echo.Context) error {
	d := a.recordsPage(c, "testimonies", "Submitted testimonies", []string{"Quote", "Author", "Role", "Received"})
	items, err := a.client(c).Testimonies().List(c.Request().Context())
	if err != nil {
		if api.IsUnauthorized(err) {
			return err
		}
		d.Banner = content.Failure("Failed to load testimonies", err)
	}
	for _, t := range items {
		base := "/admin/testimonies/" + string(t.ID) + "/"
		d.Rows = append(d.Rows, views.Row{
			ID:    t.ID,
			Cells: []string{t.Quote, t.Author, t.Role, t.CreatedAt},
			Actions: []views.Action{
				{Label: "Publish", URL: base + "publish/", Method: "post",
					Confirm: "Add this testimony to the testimonies page?"},
				{Label: "Delete", URL: base + "delete/", Method: "post",
					Confirm: "Delete this testimony?", Danger: true},
			},
		})
	}
	return Render(c, views.AdminRecords(d))
}

// handleAdminTestimonyPublish appends a submitted testimony to the
// testimonies page content and then drops the submission.
func (a *App) handleAdminTestimonyPublish(c echo.Context) error {
	const back = "/admin/testimonies/"
	ctx := c.Request().Context()
	cl := a.client(c)
	id := content.ID(c.Param("id"))

	rec, err := cl.Testimonies().Get(ctx, id)
	if err != nil {
		return err
	}
	ctrl := content.NewController(TestimoniesManifest, content.NewStore(cl, content.WithLogger(a.logger)), cl)
	if n := ctrl.Load(ctx); !n.IsZero() {
		return redirectNotice(c, back, n)
	}
	t := content.Testimony{Quote: rec.Quote, Author: rec.Author, Role: rec.Role}
	if n := ctrl.PutTestimony(ctx, "testimonies_page", "testimonies_list", -1, t); n.Tone != content.ToneSuccess {
		return redirectNotice(c, back, n)
	}
	if err := cl.Testimonies().Delete(ctx, id); err != nil {
		a.logger.Warn("published testimony not removed", "id", id, "err", err)
		return redirectNotice(c, back, content.Warning("Testimony published, but the submission could not be removed."))
	}
	return redirectNotice(c, back, content.Success("Testimony published."))
}

func (a *App) handleAdminTestimonyDelete(c echo.Context) error {
	return a.recordAction(c, "/admin/testimonies/", "Testimony deleted.", "Failed to delete",
		func(ctx context.Context, cl *api.Client, id content.ID) error { return cl.Testimonies().Delete(ctx, id) })
}
