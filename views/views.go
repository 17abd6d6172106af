// Package views holds the site's HTML templates. Pages are html/template
// files embedded in the binary and exposed as templ components, so handlers
// render them the same way as any other component.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"

	"github.com/a-h/templ"
)

//go:embed templates
var templateFS embed.FS

var (
	pages    map[string]*template.Template
	partials *template.Template
)

func init() {
	var err error
	pages, partials, err = parseTemplates(templateFS)
	if err != nil {
		panic(err)
	}
}

// parseTemplates parses the layout and partials once, then clones them for
// every page so each page can define its own "content" block.
func parseTemplates(fsys fs.FS) (map[string]*template.Template, *template.Template, error) {
	base, err := template.New("_root").Funcs(funcs).ParseFS(fsys, "templates/layout.html", "templates/partials/*.html")
	if err != nil {
		return nil, nil, err
	}
	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("views: no page templates found")
	}
	out := make(map[string]*template.Template, len(files))
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, nil, err
		}
		if _, err := t.ParseFS(fsys, f); err != nil {
			return nil, nil, err
		}
		out[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return out, base, nil
}

func page(name string, data any) templ.Component {
	t, ok := pages[name]
	if !ok {
		panic("views: unknown page " + name)
	}
	return templ.FromGoHTML(t.Lookup("layout"), data)
}

func partial(name string, data any) templ.Component {
	return templ.FromGoHTML(partials.Lookup(name), data)
}

// Public pages.

func Home(d Public) templ.Component { return page("home", d) }
func About(d Public) templ.Component { return page("about", d) }
func Sermons(d Public) templ.Component { return page("sermons", d) }
func Sermon(d Public) templ.Component { return page("sermon", d) }
func Programs(d Public) templ.Component { return page("programs", d) }
func Testimonies(d Public) templ.Component { return page("testimonies", d) }
func Prayers(d Public) templ.Component { return page("prayers", d) }
func Contact(d Public) templ.Component { return page("contact", d) }
func Membership(d Public) templ.Component { return page("membership", d) }
func Giving(d Public) templ.Component { return page("giving", d) }
func NotFound(l Layout) templ.Component { return page("notfound", l) }
func ServerError(l Layout) templ.Component { return page("servererror", l) }

// EngagementBlock is the htmx fragment swapped after a reaction or comment.
func EngagementBlock(d Engagement) templ.Component { return partial("engagement", d) }

// FormResult is the htmx fragment swapped after a public form submission.
func FormResult(d Public) templ.Component { return partial("form-result", d) }

// Admin pages.

func AdminLogin(d Login) templ.Component { return page("admin_login", d) }
func AdminDashboard(d Dashboard) templ.Component { return page("admin_dashboard", d) }
func AdminEditor(d Editor) templ.Component { return page("admin_editor", d) }
func AdminRecords(d Records) templ.Component { return page("admin_records", d) }
func AdminRecordForm(d RecordForm) templ.Component { return page("admin_record_form", d) }

// EditableField is the htmx fragment of one field in Display or Editing mode.
func EditableField(d Field) templ.Component { return partial("field", d) }
