package churchsite

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
	"github.com/towngreen/churchsite/views"
)

// editor is the content controller of one admin request.
type editor struct {
	page   string
	ctrl   *content.Controller
	loaded bool
	banner content.Notice
}

// newEditor resolves the :page manifest and loads its content with the
// admin's token. An expired token is returned as an error so the error
// handler can end the session.
func (a *App) newEditor(c echo.Context) (*editor, error) {
	name := c.Param("page")
	m, ok := Manifests[name]
	if !ok {
		return nil, echo.NewHTTPError(http.StatusNotFound)
	}
	cl := a.client(c)
	ctrl := content.NewController(m, content.NewStore(cl, content.WithLogger(a.logger)), cl)
	e := &editor{page: name, ctrl: ctrl}
	if err := ctrl.Store.Load(c.Request().Context()); err != nil {
		if api.IsUnauthorized(err) {
			return nil, err
		}
		e.banner = content.Notice{Message: "Failed to load content. Please refresh the page.", Tone: content.ToneError}
		return e, nil
	}
	e.loaded = true
	return e, nil
}

// field resolves the :section and :key of the request.
func (e *editor) field(c echo.Context) (content.FieldSpec, error) {
	f, err := e.ctrl.Field(c.Param("section"), c.Param("key"))
	if errors.Is(err, content.ErrUnknownField) {
		return f, echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return f, err
}

func (a *App) fieldData(c echo.Context, e *editor, f content.FieldSpec, st *content.FieldState, editIndex int) views.Field {
	v := views.Field{
		FieldView: e.ctrl.ViewWith(f, st),
		Page:      e.page,
		CSRF:      CsrfToken(c),
		EditIndex: editIndex,
	}
	switch f.Kind {
	case content.KindGallery:
		v.Gallery = e.ctrl.Gallery(f.Section, f.Key)
	case content.KindSlides:
		v.Slides = e.ctrl.Slides(f.Section, f.Key)
	case content.KindTestimonies:
		v.Testimonies = e.ctrl.Testimonies(f.Section, f.Key)
		if editIndex >= len(v.Testimonies) {
			v.EditIndex = -1
		}
	}
	return v
}

// renderEditor renders the whole editor page. focus, when set, replaces the
// field it addresses so a failed save keeps its draft.
func (a *App) renderEditor(c echo.Context, e *editor, banner content.Notice, focus *views.Field) error {
	m := e.ctrl.Manifest
	d := views.Editor{
		Layout:   a.adminLayout(c, "content", m.Title),
		Manifest: m,
		Banner:   e.banner,
	}
	if d.Banner.IsZero() {
		d.Banner = banner
	}
	for _, g := range m.Groups {
		eg := views.EditorGroup{Title: g.Title}
		for _, f := range g.Fields {
			if focus != nil && focus.Spec.Address() == f.Address() {
				eg.Fields = append(eg.Fields, *focus)
				continue
			}
			eg.Fields = append(eg.Fields, a.fieldData(c, e, f, nil, -1))
		}
		d.Groups = append(d.Groups, eg)
	}
	return Render(c, views.AdminEditor(d))
}

// respondField answers a field request: the field fragment and a toast for
// htmx, otherwise the editor page.
func (a *App) respondField(c echo.Context, e *editor, v views.Field, n content.Notice) error {
	if isHTMX(c) {
		toast(c, n)
		return Render(c, views.EditableField(v))
	}
	if n.Tone == content.ToneSuccess {
		return redirectNotice(c, "/admin/content/"+e.page+"/", n)
	}
	return a.renderEditor(c, e, n, &v)
}

// mutate runs op on the addressed field once the content is known to be
// loaded, and answers with the field in the returned state.
func (a *App) mutate(c echo.Context, op func(*editor, content.FieldSpec) (*content.FieldState, content.Notice)) error {
	e, err := a.newEditor(c)
	if err != nil {
		return err
	}
	f, err := e.field(c)
	if err != nil {
		return err
	}
	if !e.loaded {
		// Writing over content that was never read could drop list items.
		return a.respondField(c, e, a.fieldData(c, e, f, nil, -1), e.banner)
	}
	st, n := op(e, f)
	if !n.IsZero() && n.Tone != content.ToneSuccess {
		a.logger.Warn("content change failed", "page", e.page, "field", f.Address().String(), "msg", n.Message)
	}
	return a.respondField(c, e, a.fieldData(c, e, f, st, -1), n)
}

func (a *App) handleEditor(c echo.Context) error {
	e, err := a.newEditor(c)
	if err != nil {
		return err
	}
	return a.renderEditor(c, e, flash(c), nil)
}

func (a *App) handleFieldView(c echo.Context) error {
	e, err := a.newEditor(c)
	if err != nil {
		return err
	}
	f, err := e.field(c)
	if err != nil {
		return err
	}
	editIndex := -1
	if raw := c.QueryParam("edit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			editIndex = n
		}
	}
	v := a.fieldData(c, e, f, nil, editIndex)
	if isHTMX(c) {
		return Render(c, views.EditableField(v))
	}
	return a.renderEditor(c, e, content.Notice{}, &v)
}

func (a *App) handleFieldEdit(c echo.Context) error {
	e, err := a.newEditor(c)
	if err != nil {
		return err
	}
	f, err := e.field(c)
	if err != nil {
		return err
	}
	st, err := e.ctrl.Edit(f.Section, f.Key)
	if err != nil {
		return err
	}
	v := a.fieldData(c, e, f, st, -1)
	if isHTMX(c) {
		return Render(c, views.EditableField(v))
	}
	return a.renderEditor(c, e, content.Notice{}, &v)
}

func (a *App) handleFieldSave(c echo.Context) error {
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		value := c.FormValue("value")
		if f.Required && strings.TrimSpace(value) == "" {
			st, _ := e.ctrl.Edit(f.Section, f.Key)
			st.SetDraft(value)
			return st, content.Warning(f.Label + " cannot be empty.")
		}
		return e.ctrl.Save(c.Request().Context(), f.Section, f.Key, value)
	})
}

func (a *App) handleFieldDelete(c echo.Context) error {
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		return nil, e.ctrl.Delete(c.Request().Context(), f.Section, f.Key)
	})
}

// formFile reads the "file" part of a multipart post.
func (a *App) formFile(c echo.Context) (content.File, content.Notice) {
	fh, err := c.FormFile("file")
	if err != nil {
		return content.File{}, content.Warning("Please choose a file to upload.")
	}
	f, err := readUpload(fh, a.Config.MaxImageSide)
	if err != nil {
		return content.File{}, content.Failure("Upload failed", err)
	}
	return f, content.Notice{}
}

func (a *App) handleFieldUpload(c echo.Context) error {
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		file, n := a.formFile(c)
		if !n.IsZero() {
			return nil, n
		}
		return e.ctrl.Upload(c.Request().Context(), f.Section, f.Key, file)
	})
}

func (a *App) handleGalleryAdd(c echo.Context) error {
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		ctx := c.Request().Context()
		if raw := strings.TrimSpace(c.FormValue("video_url")); raw != "" {
			return nil, e.ctrl.AddGalleryVideoURL(ctx, f.Section, f.Key, raw)
		}
		file, n := a.formFile(c)
		if !n.IsZero() {
			return nil, n
		}
		return nil, e.ctrl.AddGalleryFile(ctx, f.Section, f.Key, file)
	})
}

func (a *App) handleGalleryCaption(c echo.Context) error {
	i, err := intParam(c, "index")
	if err != nil {
		return err
	}
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		caption := strings.TrimSpace(c.FormValue("caption"))
		return nil, e.ctrl.SetGalleryCaption(c.Request().Context(), f.Section, f.Key, i, caption)
	})
}

func (a *App) handleSlideAdd(c echo.Context) error {
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		file, n := a.formFile(c)
		if !n.IsZero() {
			return nil, n
		}
		return nil, e.ctrl.AddSlide(c.Request().Context(), f.Section, f.Key, file)
	})
}

func (a *App) handleTestimonyPut(c echo.Context) error {
	i := -1
	if n, err := strconv.Atoi(c.FormValue("index")); err == nil {
		i = n
	}
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		t := content.Testimony{
			Quote:  strings.TrimSpace(c.FormValue("quote")),
			Author: strings.TrimSpace(c.FormValue("author")),
			Role:   strings.TrimSpace(c.FormValue("role")),
		}
		return nil, e.ctrl.PutTestimony(c.Request().Context(), f.Section, f.Key, i, t)
	})
}

func (a *App) handleItemRemove(c echo.Context) error {
	i, err := intParam(c, "index")
	if err != nil {
		return err
	}
	return a.mutate(c, func(e *editor, f content.FieldSpec) (*content.FieldState, content.Notice) {
		return nil, e.ctrl.RemoveItem(c.Request().Context(), f.Section, f.Key, i)
	})
}
