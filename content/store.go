package content

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrMissingID is returned by Delete when the entry has never been saved.
	ErrMissingID = errors.New("content not found")
	// ErrInvalidAddress is returned when a section or key is blank.
	ErrInvalidAddress = errors.New("section and key are required")
	// ErrRequired is returned when a required field is saved empty.
	ErrRequired = errors.New("a value is required")
	// ErrSaveInProgress rejects a second submission of a field that is still saving.
	ErrSaveInProgress = errors.New("save already in progress")
)

// IsValidation reports whether err was raised locally, before any network call.
func IsValidation(err error) bool {
	return errors.Is(err, ErrMissingID) ||
		errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrRequired) ||
		errors.Is(err, ErrSaveInProgress) ||
		errors.Is(err, ErrEmptyFile) ||
		errors.Is(err, ErrUnsupportedFile) ||
		errors.Is(err, ErrFileTooLarge)
}

// Upsert is the payload of a save.
type Upsert struct {
	Section string
	Key     string
	Value   string
	Type    Type
	Order   int
}

// Backend is the remote content service.
type Backend interface {
	FetchContent(ctx context.Context) (Snapshot, error)
	// UpsertContent returns the id the service assigned, which may be empty.
	UpsertContent(ctx context.Context, u Upsert) (ID, error)
	DeleteContent(ctx context.Context, id ID, value string) error
}

// Store is an in-memory copy of the content dictionary owned by one page view.
type Store struct {
	backend Backend
	logger  *slog.Logger
	newID   func() ID

	mu   sync.RWMutex
	data Snapshot
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for failed remote calls.
func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the placeholder id generator.
func WithIDGenerator(fn func() ID) StoreOption {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store synchronized with b.
func NewStore(b Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: b,
		logger:  slog.Default(),
		newID:   func() ID { return ID("local-" + uuid.NewString()) },
		data:    Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the cached dictionary with a full fetch. On failure the cache
// is left as it was and the error is returned for the caller to surface.
func (s *Store) Load(ctx context.Context) error {
	snap, err := s.backend.FetchContent(ctx)
	if err != nil {
		s.logger.Warn("content load failed", "err", err)
		return err
	}
	if snap == nil {
		snap = Snapshot{}
	}
	s.mu.Lock()
	s.data = snap
	s.mu.Unlock()
	return nil
}

// Get returns the stored value for (section, key), or def when no entry exists.
func (s *Store) Get(section, key, def string) string {
	if e, ok := s.Entry(section, key); ok {
		return e.Value
	}
	return def
}

// GetID returns the backend id of (section, key). Entries without an id
// cannot be deleted.
func (s *Store) GetID(section, key string) (ID, bool) {
	e, ok := s.Entry(section, key)
	if !ok || e.ID == "" {
		return "", false
	}
	return e.ID, true
}

// Entry returns the cached entry at (section, key).
func (s *Store) Entry(section, key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[section][key]
	return e, ok
}

// Section returns a copy of one section.
func (s *Store) Section(name string) Section {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(Section, len(s.data[name]))
	for k, e := range s.data[name] {
		out[k] = e
	}
	return out
}

// Sections lists the cached section names in order.
func (s *Store) Sections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns a deep copy of the cached dictionary.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

// Save upserts (section, key) remotely and, on success, replaces the local
// entry with the request parameters and the best id available: the one the
// service returned, else the cached one, else a local placeholder.
func (s *Store) Save(ctx context.Context, section, key, value string, typ Type, order int) (Entry, error) {
	if strings.TrimSpace(section) == "" || strings.TrimSpace(key) == "" {
		return Entry{}, ErrInvalidAddress
	}
	if typ == "" {
		typ = TypeText
	}
	id, err := s.backend.UpsertContent(ctx, Upsert{
		Section: section,
		Key:     key,
		Value:   value,
		Type:    typ,
		Order:   order,
	})
	if err != nil {
		s.logger.Warn("content save failed", "section", section, "key", key, "err", err)
		return Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = s.data[section][key].ID
	}
	if id == "" {
		id = s.newID()
	}
	e := Entry{ID: id, Value: value, Type: typ, Order: order}
	if s.data[section] == nil {
		s.data[section] = Section{}
	}
	s.data[section][key] = e
	return e, nil
}

// Delete removes (section, key) remotely and then drops it from the cache so
// reads fall back to their defaults again.
func (s *Store) Delete(ctx context.Context, section, key string) error {
	e, ok := s.Entry(section, key)
	if !ok || e.ID == "" {
		return ErrMissingID
	}
	if err := s.backend.DeleteContent(ctx, e.ID, e.Value); err != nil {
		s.logger.Warn("content delete failed", "section", section, "key", key, "err", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sec, ok := s.data[section]; ok {
		delete(sec, key)
	}
	return nil
}
