package content

// Page is the read side of a page view: values from the store, falling back
// to the defaults declared by the manifest.
type Page struct {
	Store    *Store
	Manifest Manifest
}

// Text returns the value of (section, key) or its declared default.
func (p Page) Text(section, key string) string {
	return p.Store.Get(section, key, p.Manifest.Default(section, key))
}

// Has reports whether (section, key) holds a non-empty value or default.
func (p Page) Has(section, key string) bool {
	return p.Text(section, key) != ""
}

// Gallery decodes a gallery list field.
func (p Page) Gallery(section, key string) []GalleryItem {
	return Decode[GalleryItem](p.Store.Get(section, key, "[]"))
}

// Slides decodes a slideshow list field.
func (p Page) Slides(section, key string) []string {
	return Decode[string](p.Store.Get(section, key, "[]"))
}

// Testimonies decodes a testimonies list field.
func (p Page) Testimonies(section, key string) []Testimony {
	return Decode[Testimony](p.Store.Get(section, key, "[]"))
}
