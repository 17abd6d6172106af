package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/towngreen/churchsite/content"
)

func testManifest() content.Manifest {
	return content.Manifest{
		Name:  "home",
		Title: "Home Page",
		Groups: []content.Group{
			{Title: "Hero", Fields: []content.FieldSpec{
				{Section: "hero", Key: "title", Label: "Title", Kind: content.KindText, Default: "Welcome"},
				{Section: "hero", Key: "background_images", Label: "Background", Kind: content.KindSlides},
			}},
			{Title: "Gallery", Fields: []content.FieldSpec{
				{Section: "gallery", Key: "items", Label: "Items", Kind: content.KindGallery},
				{Section: "gallery", Key: "cover", Label: "Cover", Kind: content.KindImage},
			}},
			{Title: "Voices", Fields: []content.FieldSpec{
				{Section: "testimonies_page", Key: "testimonies_list", Label: "Testimonies", Kind: content.KindTestimonies},
			}},
		},
	}
}

func newController(t *testing.T, b *fakeBackend) *content.Controller {
	t.Helper()
	m := testManifest()
	require.NoError(t, m.Validate())
	c := content.NewController(m, content.NewStore(b), b)
	require.True(t, c.Load(context.Background()).IsZero())
	return c
}

func TestManifestValidate(t *testing.T) {
	m := testManifest()
	require.NoError(t, m.Validate())
	require.Len(t, m.Fields(), 5)
	require.Equal(t, "Welcome", m.Default("hero", "title"))
	require.Equal(t, "", m.Default("hero", "nope"))

	dup := testManifest()
	dup.Groups[1].Fields = append(dup.Groups[1].Fields, dup.Groups[0].Fields[0])
	require.ErrorContains(t, dup.Validate(), "twice")

	bad := testManifest()
	bad.Groups[0].Fields[0].Kind = "carousel"
	require.Error(t, bad.Validate())

	bad = testManifest()
	bad.Groups[0].Fields[0].Key = ""
	require.Error(t, bad.Validate())
}

func TestControllerLoadFailureNotice(t *testing.T) {
	b := &fakeBackend{fetchErr: errors.New("down")}
	c := content.NewController(testManifest(), content.NewStore(b), b)

	n := c.Load(context.Background())
	require.Equal(t, content.ToneError, n.Tone)
	require.Equal(t, "Failed to load content. Please refresh the page.", n.Message)

	v := c.View(c.Manifest.Fields()[0])
	require.Equal(t, "Welcome", v.Value)
	require.False(t, v.Stored)
	require.False(t, v.Deletable())
}

func TestControllerSaveAndDelete(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, nextID: "21"}
	c := newController(t, b)

	st, n := c.Save(context.Background(), "hero", "title", "Welcome Home")
	require.Equal(t, content.ToneSuccess, n.Tone)
	require.Equal(t, "Content saved successfully! Changes are now live.", n.Message)
	require.Equal(t, content.Display, st.Mode)

	f, err := c.Field("hero", "title")
	require.NoError(t, err)
	v := c.View(f)
	require.Equal(t, "Welcome Home", v.Value)
	require.True(t, v.Deletable())

	n = c.Delete(context.Background(), "hero", "title")
	require.Equal(t, content.ToneSuccess, n.Tone)
	require.Equal(t, "Welcome", c.View(f).Value)

	n = c.Delete(context.Background(), "hero", "title")
	require.Equal(t, content.ToneError, n.Tone)
	require.Contains(t, n.Message, "content not found")
	require.Equal(t, []content.ID{"21"}, b.deletes)
}

func TestControllerSaveFailureKeepsEditor(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, saveErr: errors.New("HTTP error! status: 500")}
	c := newController(t, b)

	st, n := c.Save(context.Background(), "hero", "title", "Draft")
	require.Equal(t, content.ToneError, n.Tone)
	require.Equal(t, "Failed to save: HTTP error! status: 500", n.Message)
	require.Equal(t, content.Editing, st.Mode)

	f, _ := c.Field("hero", "title")
	v := c.ViewWith(f, st)
	require.True(t, v.Editing())
	require.Equal(t, "Draft", v.Draft())
	require.Equal(t, "Welcome", v.Value)
}

func TestControllerUnknownField(t *testing.T) {
	c := newController(t, &fakeBackend{snap: content.Snapshot{}})

	_, err := c.Edit("hero", "missing")
	require.ErrorIs(t, err, content.ErrUnknownField)

	_, n := c.Save(context.Background(), "nowhere", "x", "v")
	require.Equal(t, content.ToneError, n.Tone)

	n = c.AddGalleryVideoURL(context.Background(), "hero", "title", "https://youtu.be/x")
	require.Equal(t, content.ToneError, n.Tone)

	n = c.RemoveItem(context.Background(), "hero", "title", 0)
	require.Equal(t, content.ToneError, n.Tone)
}

func TestControllerGallery(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}}
	c := newController(t, b)
	ctx := context.Background()

	n := c.AddGalleryFile(ctx, "gallery", "items", content.File{Name: "a.png", MIME: "image/png", Data: []byte("x")})
	require.Equal(t, "Image added to gallery!", n.Message)

	n = c.AddGalleryFile(ctx, "gallery", "items", content.File{Name: "b.mp4", MIME: "video/mp4", Data: []byte("x")})
	require.Equal(t, "Video uploaded and added to gallery!", n.Message)

	n = c.AddGalleryFile(ctx, "gallery", "items", content.File{Name: "c.txt", MIME: "text/plain", Data: []byte("x")})
	require.Equal(t, content.ToneWarning, n.Tone)

	n = c.AddGalleryVideoURL(ctx, "gallery", "items", " ")
	require.Equal(t, content.ToneWarning, n.Tone)

	n = c.AddGalleryVideoURL(ctx, "gallery", "items", "https://www.youtube.com/watch?v=abc")
	require.Equal(t, content.ToneSuccess, n.Tone)

	n = c.SetGalleryCaption(ctx, "gallery", "items", 0, "Easter")
	require.Equal(t, content.ToneSuccess, n.Tone)

	require.Equal(t, []content.GalleryItem{
		{Type: content.GalleryImage, URL: "/uploads/images/a.png", Caption: "Easter"},
		{Type: content.GalleryVideo, URL: "/uploads/videos/b.mp4", IsFile: true},
		{Type: content.GalleryVideo, URL: "https://www.youtube.com/embed/abc"},
	}, c.Gallery("gallery", "items"))

	n = c.RemoveItem(ctx, "gallery", "items", 1)
	require.Equal(t, content.ToneSuccess, n.Tone)
	items := c.Gallery("gallery", "items")
	require.Len(t, items, 2)
	require.Equal(t, "Easter", items[0].Caption)
	require.Equal(t, content.GalleryVideo, items[1].Type)
}

func TestControllerSlidesAndTestimonies(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}}
	c := newController(t, b)
	ctx := context.Background()

	n := c.AddSlide(ctx, "hero", "background_images", content.File{Name: "v.mp4", MIME: "video/mp4", Data: []byte("x")})
	require.Equal(t, content.ToneWarning, n.Tone)
	n = c.AddSlide(ctx, "hero", "background_images", content.File{Name: "s.jpg", MIME: "image/jpeg", Data: []byte("x")})
	require.Equal(t, content.ToneSuccess, n.Tone)
	require.Equal(t, []string{"/uploads/images/s.jpg"}, c.Slides("hero", "background_images"))

	n = c.PutTestimony(ctx, "testimonies_page", "testimonies_list", -1, content.Testimony{Quote: "q"})
	require.Equal(t, "Please fill in both Quote and Author Name fields", n.Message)

	n = c.PutTestimony(ctx, "testimonies_page", "testimonies_list", -1, content.Testimony{Quote: "Grace", Author: "Ama"})
	require.Equal(t, "Testimony added successfully!", n.Message)
	n = c.PutTestimony(ctx, "testimonies_page", "testimonies_list", 0, content.Testimony{Quote: "Grace", Author: "Ama", Role: "Elder"})
	require.Equal(t, "Testimony updated successfully!", n.Message)

	require.Equal(t, []content.Testimony{{Quote: "Grace", Author: "Ama", Role: "Elder"}},
		c.Testimonies("testimonies_page", "testimonies_list"))

	page := content.Page{Store: c.Store, Manifest: c.Manifest}
	require.Equal(t, "Welcome", page.Text("hero", "title"))
	require.True(t, page.Has("hero", "title"))
	require.Len(t, page.Testimonies("testimonies_page", "testimonies_list"), 1)
	require.Len(t, page.Slides("hero", "background_images"), 1)
	require.Empty(t, page.Gallery("gallery", "items"))
}

func TestControllerUploadImageField(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}}
	c := newController(t, b)

	st, n := c.Upload(context.Background(), "gallery", "cover", content.File{Name: "c.png", MIME: "image/png", Data: []byte("x")})
	require.Equal(t, "Image uploaded successfully!", n.Message)
	require.Equal(t, content.Display, st.Mode)
	require.Equal(t, "/uploads/images/c.png", c.Store.Get("gallery", "cover", ""))
	require.Equal(t, content.TypeImage, b.upserts[0].Type)

	noUp := content.NewController(testManifest(), c.Store, nil)
	_, n = noUp.Upload(context.Background(), "gallery", "cover", content.File{Name: "c.png", MIME: "image/png", Data: []byte("x")})
	require.Equal(t, content.ToneError, n.Tone)
}
