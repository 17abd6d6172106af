package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned for an address the manifest does not declare,
// or for a list operation on a field of another kind.
var ErrUnknownField = errors.New("unknown field")

// Controller is the generic content editor: one manifest, one store, one
// page view. Every operation reports its outcome as a Notice.
type Controller struct {
	Manifest Manifest
	Store    *Store
	uploader Uploader
}

// NewController binds m to store. up may be nil when the page has no uploads.
func NewController(m Manifest, store *Store, up Uploader) *Controller {
	return &Controller{Manifest: m, Store: store, uploader: up}
}

// Load hydrates the store. A failure is reported, and the page renders with
// defaults.
func (c *Controller) Load(ctx context.Context) Notice {
	if err := c.Store.Load(ctx); err != nil {
		return Notice{Message: "Failed to load content. Please refresh the page.", Tone: ToneError}
	}
	return Notice{}
}

// FieldView is what a field renders in Display mode.
type FieldView struct {
	Spec   FieldSpec
	Value  string
	Stored bool
	ID     ID
	State  *FieldState
}

// Empty reports whether there is nothing to show for the field.
func (v FieldView) Empty() bool { return v.Value == "" }

// Deletable reports whether a delete control should be offered.
func (v FieldView) Deletable() bool { return v.ID != "" }

// Editing reports whether the field renders its editor.
func (v FieldView) Editing() bool { return v.State != nil && v.State.Mode == Editing }

// Draft is the value shown in the editor.
func (v FieldView) Draft() string {
	if v.State != nil && v.State.Session != nil {
		return v.State.Session.Draft
	}
	return v.Value
}

// View returns the Display view of f. The value falls back to the declared
// default, which is also what an edit session starts from.
func (c *Controller) View(f FieldSpec) FieldView {
	e, ok := c.Store.Entry(f.Section, f.Key)
	v := FieldView{Spec: f, Value: f.Default, Stored: ok, State: NewFieldState(f)}
	if ok {
		v.Value = e.Value
		v.ID = e.ID
	}
	return v
}

// ViewWith returns the view of f carrying st, typically a field left in
// Editing after a failed save.
func (c *Controller) ViewWith(f FieldSpec, st *FieldState) FieldView {
	v := c.View(f)
	if st != nil {
		v.State = st
	}
	return v
}

// Field resolves (section, key) against the manifest.
func (c *Controller) Field(section, key string) (FieldSpec, error) {
	f, ok := c.Manifest.Field(section, key)
	if !ok {
		return FieldSpec{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, section, key)
	}
	return f, nil
}

// Edit returns the field in Editing mode, seeded from the current value.
func (c *Controller) Edit(section, key string) (*FieldState, error) {
	f, err := c.Field(section, key)
	if err != nil {
		return nil, err
	}
	st := NewFieldState(f)
	st.Edit(c.Store)
	return st, nil
}

// Save commits draft for (section, key). The returned state is in Display on
// success and still in Editing, with the draft, on failure.
func (c *Controller) Save(ctx context.Context, section, key, draft string) (*FieldState, Notice) {
	st, err := c.Edit(section, key)
	if err != nil {
		return nil, Failure("Failed to save", err)
	}
	st.SetDraft(draft)
	if _, err := st.Save(ctx, c.Store); err != nil {
		return st, Failure("Failed to save", err)
	}
	return st, Success("Content saved successfully! Changes are now live.")
}

// Delete removes the stored entry of (section, key).
func (c *Controller) Delete(ctx context.Context, section, key string) Notice {
	if _, err := c.Field(section, key); err != nil {
		return Failure("Failed to delete", err)
	}
	if err := c.Store.Delete(ctx, section, key); err != nil {
		return Failure("Failed to delete", err)
	}
	return Success("Content deleted successfully!")
}

// Upload sends f for an image field and saves the returned URL.
func (c *Controller) Upload(ctx context.Context, section, key string, f File) (*FieldState, Notice) {
	spec, err := c.Field(section, key)
	if err != nil {
		return nil, Failure("Failed to upload", err)
	}
	if c.uploader == nil {
		return nil, Failure("Failed to upload", errors.New("uploads are not configured"))
	}
	st := NewFieldState(spec)
	if _, err := st.SaveImage(ctx, c.Store, c.uploader, f); err != nil {
		return st, Failure("Failed to upload", err)
	}
	return st, Success("Image uploaded successfully!")
}

func (c *Controller) listField(section, key string, kind Kind) (FieldSpec, error) {
	f, err := c.Field(section, key)
	if err != nil {
		return FieldSpec{}, err
	}
	if f.Kind != kind {
		return FieldSpec{}, fmt.Errorf("%w: %s is not a %s list", ErrUnknownField, f.Address(), kind)
	}
	return f, nil
}

// Gallery returns the decoded items of a gallery field.
func (c *Controller) Gallery(section, key string) []GalleryItem {
	return NewList[GalleryItem](c.Store, section, key).Items()
}

// Slides returns the decoded URLs of a slideshow field.
func (c *Controller) Slides(section, key string) []string {
	return NewList[string](c.Store, section, key).Items()
}

// Testimonies returns the decoded records of a testimonies field.
func (c *Controller) Testimonies(section, key string) []Testimony {
	return NewList[Testimony](c.Store, section, key).Items()
}

// AddGalleryFile uploads an image or video and appends it to the gallery.
func (c *Controller) AddGalleryFile(ctx context.Context, section, key string, f File) Notice {
	if _, err := c.listField(section, key, KindGallery); err != nil {
		return Failure("Failed to add item", err)
	}
	if !f.IsImage() && !f.IsVideo() {
		return Warning("Please select an image or video file")
	}
	if c.uploader == nil {
		return Failure("Failed to add item", errors.New("uploads are not configured"))
	}
	url, err := UploadFile(ctx, c.uploader, f, ClassifySubDir(f.MIME))
	if err != nil {
		return Failure("Upload failed", err)
	}
	item := GalleryItem{Type: GalleryImage, URL: url}
	msg := "Image added to gallery!"
	if f.IsVideo() {
		item = GalleryItem{Type: GalleryVideo, URL: url, IsFile: true}
		msg = "Video uploaded and added to gallery!"
	}
	if _, err := NewList[GalleryItem](c.Store, section, key).Append(ctx, item); err != nil {
		return Failure("Failed to add item", err)
	}
	return Success(msg)
}

// AddGalleryVideoURL appends a hosted video, converting watch links to embeds.
func (c *Controller) AddGalleryVideoURL(ctx context.Context, section, key, rawURL string) Notice {
	if _, err := c.listField(section, key, KindGallery); err != nil {
		return Failure("Failed to add video", err)
	}
	if strings.TrimSpace(rawURL) == "" {
		return Warning("Please enter a video URL")
	}
	item := GalleryItem{Type: GalleryVideo, URL: EmbedVideoURL(rawURL)}
	if _, err := NewList[GalleryItem](c.Store, section, key).Append(ctx, item); err != nil {
		return Failure("Failed to add video", err)
	}
	return Success("Video added to gallery!")
}

// SetGalleryCaption updates the caption of item i.
func (c *Controller) SetGalleryCaption(ctx context.Context, section, key string, i int, caption string) Notice {
	if _, err := c.listField(section, key, KindGallery); err != nil {
		return Failure("Failed to update caption", err)
	}
	_, err := NewList[GalleryItem](c.Store, section, key).UpdateAt(ctx, i, func(it *GalleryItem) {
		it.Caption = caption
	})
	if err != nil {
		return Failure("Failed to update caption", err)
	}
	return Success("Caption updated!")
}

// AddSlide uploads an image and appends its URL to a slideshow field.
func (c *Controller) AddSlide(ctx context.Context, section, key string, f File) Notice {
	if _, err := c.listField(section, key, KindSlides); err != nil {
		return Failure("Failed to add image", err)
	}
	if !f.IsImage() {
		return Warning("Please select an image file")
	}
	if c.uploader == nil {
		return Failure("Failed to add image", errors.New("uploads are not configured"))
	}
	url, err := UploadFile(ctx, c.uploader, f, SubDirImages)
	if err != nil {
		return Failure("Upload failed", err)
	}
	if _, err := NewList[string](c.Store, section, key).Append(ctx, url); err != nil {
		return Failure("Failed to add image", err)
	}
	return Success("Background image added successfully!")
}

// PutTestimony appends t when i is negative, otherwise replaces item i.
func (c *Controller) PutTestimony(ctx context.Context, section, key string, i int, t Testimony) Notice {
	if _, err := c.listField(section, key, KindTestimonies); err != nil {
		return Failure("Failed to save testimony", err)
	}
	if !t.Valid() {
		return Failure("Please fill in both Quote and Author Name fields", nil)
	}
	list := NewList[Testimony](c.Store, section, key)
	if i < 0 {
		if _, err := list.Append(ctx, t); err != nil {
			return Failure("Failed to save testimony", err)
		}
		return Success("Testimony added successfully!")
	}
	if _, err := list.UpdateAt(ctx, i, func(cur *Testimony) { *cur = t }); err != nil {
		return Failure("Failed to save testimony", err)
	}
	return Success("Testimony updated successfully!")
}

// RemoveItem drops element i from any list field.
func (c *Controller) RemoveItem(ctx context.Context, section, key string, i int) Notice {
	f, err := c.Field(section, key)
	if err != nil {
		return Failure("Failed to remove item", err)
	}
	if !f.Kind.IsList() {
		return Failure("Failed to remove item", fmt.Errorf("%w: %s is not a list", ErrUnknownField, f.Address()))
	}
	if _, err := NewList[json.RawMessage](c.Store, section, key).RemoveAt(ctx, i); err != nil {
		return Failure("Failed to remove item", err)
	}
	return Success("Item removed!")
}
