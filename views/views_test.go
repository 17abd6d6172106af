package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towngreen/churchsite/content"
)

type snapshotBackend struct{ snap content.Snapshot }

func (b snapshotBackend) FetchContent(context.Context) (content.Snapshot, error) {
	return b.snap, nil
}

func (snapshotBackend) UpsertContent(context.Context, content.Upsert) (content.ID, error) {
	return "", nil
}

func (snapshotBackend) DeleteContent(context.Context, content.ID, string) error { return nil }

var heroManifest = content.Manifest{
	Name:  "home",
	Title: "Home Page",
	Groups: []content.Group{{Title: "Hero", Fields: []content.FieldSpec{
		{Section: "hero", Key: "title", Label: "Hero Title", Kind: content.KindText, Default: "Welcome"},
		{Section: "hero", Key: "subtitle", Label: "Hero Subtitle", Kind: content.KindText, Default: "A community of faith"},
		{Section: "gallery", Key: "items", Label: "Gallery Items", Kind: content.KindGallery},
	}}},
}

func loadedPage(t *testing.T, snap content.Snapshot) content.Page {
	t.Helper()
	store := content.NewStore(snapshotBackend{snap})
	require.NoError(t, store.Load(context.Background()))
	return content.Page{Store: store, Manifest: heroManifest}
}

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	d, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return d
}

func TestEveryPageParses(t *testing.T) {
	for _, name := range []string{
		"home", "about", "sermons", "sermon", "programs", "testimonies", "prayers",
		"contact", "membership", "giving", "notfound", "servererror",
		"admin_login", "admin_dashboard", "admin_editor", "admin_records", "admin_record_form",
	} {
		_, ok := pages[name]
		assert.True(t, ok, name)
	}
	for _, name := range []string{"field", "form-result", "engagement", "banner", "csrf"} {
		assert.NotNil(t, partials.Lookup(name), name)
	}
}

func TestHomePrefersStoredValues(t *testing.T) {
	p := loadedPage(t, content.Snapshot{
		"hero": {"title": {ID: "1", Value: "Harvest Sunday", Type: content.TypeText}},
	})
	d := render(t, Home(Public{
		Layout: Layout{Site: SiteConfig{Name: "Town Green"}, CSRF: "tok"},
		Page:   p,
	}))

	body := d.Find("main").Text()
	assert.Contains(t, body, "Harvest Sunday")
	assert.Contains(t, body, "A community of faith")
	assert.NotContains(t, body, "Welcome")
	assert.Equal(t, "tok", d.Find(`meta[name="csrf-token"]`).AttrOr("content", ""))
	assert.Equal(t, 0, d.Find(".gallery-section").Length())
}

func TestHomeGallery(t *testing.T) {
	p := loadedPage(t, content.Snapshot{
		"gallery": {"items": {ID: "2", Type: content.TypeJSON, Value: `[
			{"type":"image","url":"/uploads/images/choir.jpg","caption":"Choir"},
			{"type":"video","url":"https://www.youtube.com/embed/abc"}
		]`}},
	})
	d := render(t, Home(Public{Page: p}))

	items := d.Find(".gallery-item")
	require.Equal(t, 2, items.Length())
	assert.Equal(t, "/uploads/images/choir.jpg", items.Eq(0).Find("img").AttrOr("src", ""))
	assert.Equal(t, "https://www.youtube.com/embed/abc", items.Eq(1).Find("iframe").AttrOr("src", ""))
}

func TestEditableFieldModes(t *testing.T) {
	spec := heroManifest.Groups[0].Fields[0]
	v := Field{
		FieldView: content.FieldView{Spec: spec, Value: "Harvest", State: content.NewFieldState(spec)},
		Page:      "home",
		CSRF:      "tok",
		EditIndex: -1,
	}
	d := render(t, EditableField(v))
	root := d.Find("#field-hero-title")
	require.Equal(t, 1, root.Length())
	assert.Equal(t, "display", root.AttrOr("data-mode", ""))
	assert.Contains(t, d.Find(".field-value").Text(), "Harvest")

	st := content.NewFieldState(spec)
	st.Mode = content.Editing
	v.State = st
	d = render(t, EditableField(v))
	assert.Equal(t, "editing", d.Find("#field-hero-title").AttrOr("data-mode", ""))
	assert.Equal(t, "/admin/content/home/field/hero/title/", d.Find("form.field-editor").AttrOr("action", ""))
}

func TestFormResult(t *testing.T) {
	d := render(t, FormResult(Public{
		Form:   Form{Errors: map[string]string{"email": "Please enter a valid email address."}},
		Banner: content.Warning("Please correct the highlighted fields."),
	}))
	assert.Contains(t, d.Find(".form-errors").Text(), "Please enter a valid email address.")

	d = render(t, FormResult(Public{Form: Form{Sent: true}, Banner: content.Success("Thank you!")}))
	assert.Equal(t, "Thank you!", strings.TrimSpace(d.Find(".banner-success").Text()))
	assert.Equal(t, 0, d.Find(".form-errors").Length())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "October 11, 2026", formatDate("2026-10-11"))
	assert.Equal(t, "October 11, 2026", formatDate("2026-10-11T09:30:00Z"))
	assert.Equal(t, "next week", formatDate("next week"))
}

func TestFillType(t *testing.T) {
	assert.Equal(t, "Give your tithe today", fillType("Give your {type} today", "Tithe"))
	assert.Equal(t, "Give your donation today", fillType("Give your {type} today", ""))
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)
	_, err = dict(1, 2)
	assert.Error(t, err)
}
