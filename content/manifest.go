package content

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Kind is the editor archetype of a field.
type Kind string

const (
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindGallery     Kind = "gallery"
	KindSlides      Kind = "slides"
	KindTestimonies Kind = "testimonies"
)

// IsList reports whether the field stores a JSON-encoded sequence.
func (k Kind) IsList() bool {
	return k == KindGallery || k == KindSlides || k == KindTestimonies
}

// FieldSpec declares one editable field of a page.
type FieldSpec struct {
	Section   string `validate:"required"`
	Key       string `validate:"required"`
	Label     string `validate:"required"`
	Kind      Kind   `validate:"required,oneof=text image gallery slides testimonies"`
	Multiline bool
	Default   string
	Order     int `validate:"gte=0"`
	Required  bool
	// SubDir overrides the upload destination of image fields.
	SubDir SubDir `validate:"omitempty,oneof=images videos audio logos"`
}

// Address returns the field's (section, key).
func (f FieldSpec) Address() Address {
	return Address{Section: f.Section, Key: f.Key}
}

// ContentType is the entry type the field is saved with.
func (f FieldSpec) ContentType() Type {
	switch {
	case f.Kind == KindImage:
		return TypeImage
	case f.Kind.IsList():
		return TypeJSON
	default:
		return TypeText
	}
}

// UploadDir is where files chosen for this field are sent.
func (f FieldSpec) UploadDir() SubDir {
	if f.SubDir != "" {
		return f.SubDir
	}
	return SubDirImages
}

// Group is a titled run of fields rendered together.
type Group struct {
	Title  string      `validate:"required"`
	Fields []FieldSpec `validate:"dive"`
}

// Manifest declares every editable field of one page.
type Manifest struct {
	Name   string  `validate:"required"`
	Title  string  `validate:"required"`
	Groups []Group `validate:"required,dive"`
}

var validate = validator.New()

// Validate checks the manifest declaration and rejects duplicate addresses.
func (m Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		return fmt.Errorf("content: manifest %q: %w", m.Name, err)
	}
	seen := make(map[Address]struct{})
	for _, f := range m.Fields() {
		if _, dup := seen[f.Address()]; dup {
			return fmt.Errorf("content: manifest %q declares %s twice", m.Name, f.Address())
		}
		seen[f.Address()] = struct{}{}
	}
	return nil
}

// Fields returns every field in declaration order.
func (m Manifest) Fields() []FieldSpec {
	var out []FieldSpec
	for _, g := range m.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

// Field looks up the field stored at (section, key).
func (m Manifest) Field(section, key string) (FieldSpec, bool) {
	for _, g := range m.Groups {
		for _, f := range g.Fields {
			if f.Section == section && f.Key == key {
				return f, true
			}
		}
	}
	return FieldSpec{}, false
}

// Default returns the declared fallback of (section, key), or "".
func (m Manifest) Default(section, key string) string {
	f, _ := m.Field(section, key)
	return f.Default
}
