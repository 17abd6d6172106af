package views

import (
	"github.com/towngreen/churchsite/api"
	"github.com/towngreen/churchsite/content"
)

// SiteConfig holds site-wide settings every template can read.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
}

// Layout is embedded by every full page.
type Layout struct {
	Site  SiteConfig
	Meta  PageMeta
	CSRF  string
	Nav   string
	Admin bool
	Logo  string
	// Flash is shown once as a toast after a full-page redirect.
	Flash content.Notice
}

// Form echoes a public submission back after validation.
type Form struct {
	Values map[string]string
	Errors map[string]string
	Sent   bool
}

// Value returns the submitted value of name.
func (f Form) Value(name string) string { return f.Values[name] }

// Error returns the validation message of name.
func (f Form) Error(name string) string { return f.Errors[name] }

// Public is the data of a public page.
type Public struct {
	Layout
	Page content.Page
	// Banner reports a failed read; the page still renders with defaults.
	Banner      content.Notice
	Sermons     []api.Sermon
	Sermon      api.Sermon
	Programs    []api.Program
	Engagement  Engagement
	Form        Form
	GivingType  GivingType
	GivingTypes []GivingType
}

// GivingType is one option of the giving page.
type GivingType struct {
	ID          string
	Name        string
	Description string
}

// Engagement is the reactions and comments block of a sermon, program or
// gallery item.
type Engagement struct {
	CSRF      string
	Base      string
	ItemURL   string
	Reactions api.Reactions
	Comments  []api.Comment
	Notice    content.Notice
}

// Login is the admin login page.
type Login struct {
	Layout
	Username string
	Message  string
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Layout
	User    api.User
	Editors []content.Manifest
	Counts  []Count
}

// Count is one tile of the dashboard.
type Count struct {
	Label string
	URL   string
	N     int
	Err   bool
}

// Editor is the content editor of one manifest.
type Editor struct {
	Layout
	Manifest content.Manifest
	Groups   []EditorGroup
	Banner   content.Notice
}

// EditorGroup is a titled run of editable fields.
type EditorGroup struct {
	Title  string
	Fields []Field
}

// Field is one editable field with the data its editor needs.
type Field struct {
	content.FieldView
	Page        string
	CSRF        string
	Gallery     []content.GalleryItem
	Slides      []string
	Testimonies []content.Testimony
	// EditIndex is the testimony being edited, or -1.
	EditIndex int
}

// Base is the URL prefix of the field's routes.
func (f Field) Base() string {
	return "/admin/content/" + f.Page + "/field/" + f.Spec.Section + "/" + f.Spec.Key + "/"
}

// EditingTestimony is the testimony loaded into the form, or a blank one.
func (f Field) EditingTestimony() content.Testimony {
	if f.EditIndex >= 0 && f.EditIndex < len(f.Testimonies) {
		return f.Testimonies[f.EditIndex]
	}
	return content.Testimony{}
}

// DOMID is the id of the element the field swaps into.
func (f Field) DOMID() string {
	return "field-" + f.Spec.Section + "-" + f.Spec.Key
}

// Records is a table of service records in the admin.
type Records struct {
	Layout
	Title      string
	Columns    []string
	Rows       []Row
	Banner     content.Notice
	RetryURL   string
	NewURL     string
	Pagination *api.Pagination
	PrevURL    string
	NextURL    string
}

// Row is one record of a Records table.
type Row struct {
	ID      content.ID
	Cells   []string
	Muted   bool
	Actions []Action
}

// Action is a form button on a record row.
type Action struct {
	Label   string
	URL     string
	Method  string
	Name    string
	Value   string
	Confirm string
	Danger  bool
}

// RecordForm creates or edits one record.
type RecordForm struct {
	Layout
	Title  string
	Action string
	Back   string
	Fields []FormField
	Banner content.Notice
}

// FormField is one input of a RecordForm.
type FormField struct {
	Name     string
	Label    string
	Type     string
	Value    string
	Options  []string
	Required bool
}
