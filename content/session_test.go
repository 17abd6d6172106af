package content_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/towngreen/churchsite/content"
)

var titleField = content.FieldSpec{
	Section: "hero", Key: "title", Label: "Title", Kind: content.KindText, Default: "Welcome", Order: 1,
}

var logoField = content.FieldSpec{
	Section: "site", Key: "logo", Label: "Logo", Kind: content.KindImage, SubDir: content.SubDirLogos,
}

func TestFieldStateEditSeedsFromDefault(t *testing.T) {
	s := loadedStore(t, &fakeBackend{snap: content.Snapshot{}})
	st := content.NewFieldState(titleField)
	require.Equal(t, content.Display, st.Mode)

	st.Edit(s)
	require.Equal(t, content.Editing, st.Mode)
	require.Equal(t, "Welcome", st.Session.Draft)
	require.False(t, st.Session.Dirty())

	st.SetDraft("Hello")
	require.True(t, st.Session.Dirty())

	// Re-entering edit keeps the draft.
	st.Edit(s)
	require.Equal(t, "Hello", st.Session.Draft)
}

func TestFieldStateCancelDoesNotSave(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{"hero": {"title": {ID: "1", Value: "Stored"}}}}
	s := loadedStore(t, b)
	st := content.NewFieldState(titleField)

	st.Edit(s)
	require.Equal(t, "Stored", st.Session.Draft)
	st.SetDraft("Discard me")
	st.Cancel()

	require.Equal(t, content.Display, st.Mode)
	require.Nil(t, st.Session)
	require.Empty(t, b.upserts)
	require.Equal(t, "Stored", s.Get("hero", "title", ""))
}

func TestFieldStateSaveSuccessReturnsToDisplay(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, nextID: "3"}
	s := loadedStore(t, b)
	st := content.NewFieldState(titleField)

	st.Edit(s)
	st.SetDraft("Welcome Home")
	e, err := st.Save(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, content.ID("3"), e.ID)
	require.Equal(t, content.Display, st.Mode)
	require.False(t, st.Saving())
	require.Equal(t, content.Upsert{Section: "hero", Key: "title", Value: "Welcome Home", Type: content.TypeText, Order: 1}, b.upserts[0])
}

func TestFieldStateSaveFailureKeepsDraft(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, saveErr: errors.New("offline")}
	s := loadedStore(t, b)
	st := content.NewFieldState(titleField)

	st.Edit(s)
	st.SetDraft("Try again")
	_, err := st.Save(context.Background(), s)
	require.Error(t, err)
	require.Equal(t, content.Editing, st.Mode)
	require.Equal(t, "Try again", st.Session.Draft)
	require.False(t, st.Saving())
	require.Equal(t, "Welcome", s.Get("hero", "title", "Welcome"))
}

func TestRequiredFieldRejectsBlankDraft(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}}
	s := loadedStore(t, b)
	f := titleField
	f.Required = true
	st := content.NewFieldState(f)

	st.Edit(s)
	st.SetDraft("   ")
	_, err := st.Save(context.Background(), s)
	require.ErrorIs(t, err, content.ErrRequired)
	require.Empty(t, b.upserts)
	require.Equal(t, content.Editing, st.Mode)
}

// reentrantUploader tries to save the same field while its upload is in flight.
type reentrantUploader struct {
	*fakeBackend
	st      *content.FieldState
	s       *content.Store
	inner   error
	sawBusy bool
}

func (u *reentrantUploader) Upload(ctx context.Context, dataURL, name string, dir content.SubDir) (string, error) {
	u.sawBusy = u.st.Saving()
	_, u.inner = u.st.SaveImage(ctx, u.s, u.fakeBackend, content.File{Name: "x.png", MIME: "image/png", Data: []byte{1}})
	return u.fakeBackend.Upload(ctx, dataURL, name, dir)
}

func TestFieldStateRejectsConcurrentSave(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}}
	s := loadedStore(t, b)
	st := content.NewFieldState(logoField)
	up := &reentrantUploader{fakeBackend: b, st: st, s: s}

	_, err := st.SaveImage(context.Background(), s, up, content.File{Name: "logo.png", MIME: "image/png", Data: []byte{1, 2}})
	require.NoError(t, err)
	require.True(t, up.sawBusy)
	require.ErrorIs(t, up.inner, content.ErrSaveInProgress)
	require.Len(t, b.upserts, 1)
	require.Equal(t, "/uploads/logos/logo.png", s.Get("site", "logo", ""))
}

func TestSaveImageUploadsThenSaves(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, nextID: "12"}
	s := loadedStore(t, b)
	st := content.NewFieldState(logoField)
	f := content.File{Name: "logo.png", MIME: "image/png", Data: []byte("png")}

	e, err := st.SaveImage(context.Background(), s, b, f)
	require.NoError(t, err)
	require.Equal(t, content.TypeImage, e.Type)
	require.Equal(t, "/uploads/logos/logo.png", e.Value)
	require.Equal(t, []string{f.DataURL()}, b.uploads)
	require.Equal(t, []content.SubDir{content.SubDirLogos}, b.uploadTo)
	require.Equal(t, content.Display, st.Mode)
	require.Empty(t, st.Preview)
}

func TestSaveImageUploadFailureKeepsPreview(t *testing.T) {
	b := &fakeBackend{snap: content.Snapshot{}, saveErr: errors.New("too big")}
	s := loadedStore(t, b)
	st := content.NewFieldState(logoField)
	f := content.File{Name: "logo.png", MIME: "image/png", Data: []byte("png")}

	_, err := st.SaveImage(context.Background(), s, b, f)
	require.Error(t, err)
	require.Equal(t, content.Editing, st.Mode)
	require.Equal(t, f.DataURL(), st.Preview)
	require.Empty(t, b.upserts)
}

func TestUploadFileValidation(t *testing.T) {
	b := &fakeBackend{}
	ctx := context.Background()

	_, err := content.UploadFile(ctx, b, content.File{Name: "a.png", MIME: "image/png"}, content.SubDirImages)
	require.ErrorIs(t, err, content.ErrEmptyFile)

	_, err = content.UploadFile(ctx, b, content.File{Name: "a.txt", MIME: "text/plain", Data: []byte("x")}, content.SubDirImages)
	require.ErrorIs(t, err, content.ErrUnsupportedFile)
	require.True(t, content.IsValidation(err))

	_, err = content.UploadFile(ctx, b, content.File{Name: "a.png", MIME: "image/png", Data: []byte("x")}, content.SubDirVideos)
	require.ErrorIs(t, err, content.ErrUnsupportedFile)

	big := content.File{Name: "v.mp4", MIME: "video/mp4", Data: make([]byte, content.MaxVideoSize+1)}
	_, err = content.UploadFile(ctx, b, big, content.SubDirVideos)
	require.ErrorIs(t, err, content.ErrFileTooLarge)
	require.Empty(t, b.uploads)

	url, err := content.UploadFile(ctx, b, content.File{Name: "s.mp3", MIME: "audio/mpeg", Data: []byte("x")}, "")
	require.NoError(t, err)
	require.Equal(t, "/uploads/audio/s.mp3", url)
}

func TestDataURLAndClassify(t *testing.T) {
	f := content.File{MIME: "image/png", Data: []byte("hi")}
	require.Equal(t, "data:image/png;base64,aGk=", f.DataURL())
	require.Equal(t, "data:application/octet-stream;base64,", content.File{}.DataURL())

	require.Equal(t, content.SubDirVideos, content.ClassifySubDir("video/mp4"))
	require.Equal(t, content.SubDirAudio, content.ClassifySubDir("audio/ogg"))
	require.Equal(t, content.SubDirImages, content.ClassifySubDir("image/jpeg"))
	require.Equal(t, content.SubDirImages, content.ClassifySubDir(""))
}
