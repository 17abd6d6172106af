package content

import (
	"context"
	"strings"
)

// EditSession is the state of one field while it is being edited. It is
// created on entering edit mode and discarded when the field leaves it.
type EditSession struct {
	Field FieldSpec
	Draft string
	Base  string
}

// BeginEdit seeds a session from the value currently shown for f.
func BeginEdit(store *Store, f FieldSpec) *EditSession {
	v := store.Get(f.Section, f.Key, f.Default)
	return &EditSession{Field: f, Draft: v, Base: v}
}

// Dirty reports whether the draft differs from the value editing started from.
func (e *EditSession) Dirty() bool { return e.Draft != e.Base }

// Commit saves the draft under the field's type and order.
func (e *EditSession) Commit(ctx context.Context, store *Store) (Entry, error) {
	if e.Field.Required && strings.TrimSpace(e.Draft) == "" {
		return Entry{}, ErrRequired
	}
	return store.Save(ctx, e.Field.Section, e.Field.Key, e.Draft, e.Field.ContentType(), e.Field.Order)
}

// Mode is the view state of an editable field.
type Mode int

const (
	Display Mode = iota
	Editing
)

func (m Mode) String() string {
	if m == Editing {
		return "editing"
	}
	return "display"
}

// FieldState drives one editable field through Display and Editing.
type FieldState struct {
	Spec    FieldSpec
	Mode    Mode
	Session *EditSession
	// Preview holds the locally encoded image chosen while editing an image field.
	Preview string

	saving bool
}

// NewFieldState returns a field in Display mode.
func NewFieldState(f FieldSpec) *FieldState {
	return &FieldState{Spec: f, Mode: Display}
}

// Saving reports whether a save of this field is in flight.
func (s *FieldState) Saving() bool { return s.saving }

// Edit enters Editing with a fresh session. Editing an already editing field
// keeps the current draft.
func (s *FieldState) Edit(store *Store) {
	if s.Mode == Editing {
		return
	}
	s.Mode = Editing
	s.Session = BeginEdit(store, s.Spec)
	s.Preview = ""
}

// Cancel discards the draft and returns to Display without touching the store.
func (s *FieldState) Cancel() {
	s.Mode = Display
	s.Session = nil
	s.Preview = ""
}

// SetDraft updates the draft of an editing field.
func (s *FieldState) SetDraft(v string) {
	if s.Session != nil {
		s.Session.Draft = v
	}
}

// Save commits the draft. On success the field returns to Display; on failure
// it stays in Editing with the draft intact so the admin can retry.
func (s *FieldState) Save(ctx context.Context, store *Store) (Entry, error) {
	if s.Mode != Editing || s.Session == nil {
		s.Edit(store)
	}
	if s.saving {
		return Entry{}, ErrSaveInProgress
	}
	s.saving = true
	defer func() { s.saving = false }()

	e, err := s.Session.Commit(ctx, store)
	if err != nil {
		return Entry{}, err
	}
	s.Cancel()
	return e, nil
}

// Choose records the file picked for an image field and shows it as a preview.
func (s *FieldState) Choose(store *Store, f File) {
	s.Edit(store)
	s.Preview = f.DataURL()
}

// SaveImage uploads f and saves the returned URL. The field leaves Editing
// only once both steps succeed.
func (s *FieldState) SaveImage(ctx context.Context, store *Store, up Uploader, f File) (Entry, error) {
	s.Choose(store, f)
	if s.saving {
		return Entry{}, ErrSaveInProgress
	}
	s.saving = true
	defer func() { s.saving = false }()

	url, err := UploadFile(ctx, up, f, s.Spec.UploadDir())
	if err != nil {
		return Entry{}, err
	}
	s.Session.Draft = url
	e, err := s.Session.Commit(ctx, store)
	if err != nil {
		return Entry{}, err
	}
	s.Cancel()
	return e, nil
}
