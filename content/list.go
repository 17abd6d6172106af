package content

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
)

// Decode parses raw as a JSON array of T. Anything that is not a well-formed
// array (empty input, null, an object, a syntax error) yields an empty slice.
func Decode[T any](raw string) []T {
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil || items == nil {
		return []T{}
	}
	return items
}

// Encode serializes items as a JSON array; a nil slice encodes as "[]".
func Encode[T any](items []T) (string, error) {
	if items == nil {
		items = []T{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("content: encode list: %w", err)
	}
	return string(b), nil
}

// List treats the value of one entry as an ordered sequence of T. Every
// mutation rewrites the whole entry, so two editors of the same list race and
// the later save wins.
type List[T any] struct {
	store   *Store
	section string
	key     string
}

// NewList binds a list to (section, key) of store.
func NewList[T any](store *Store, section, key string) *List[T] {
	return &List[T]{store: store, section: section, key: key}
}

// Address returns the entry the list is stored in.
func (l *List[T]) Address() Address {
	return Address{Section: l.section, Key: l.key}
}

// Items decodes the current value.
func (l *List[T]) Items() []T {
	return Decode[T](l.store.Get(l.section, l.key, "[]"))
}

// Append adds item to the end and persists the sequence.
func (l *List[T]) Append(ctx context.Context, item T) ([]T, error) {
	items := append(l.Items(), item)
	return l.persist(ctx, items)
}

// RemoveAt drops the element at i and persists the sequence. An index out of
// range leaves the list untouched.
func (l *List[T]) RemoveAt(ctx context.Context, i int) ([]T, error) {
	items := l.Items()
	if i < 0 || i >= len(items) {
		return items, nil
	}
	return l.persist(ctx, slices.Delete(items, i, i+1))
}

// UpdateAt applies patch to the element at i and persists the sequence. An
// index out of range leaves the list untouched.
func (l *List[T]) UpdateAt(ctx context.Context, i int, patch func(*T)) ([]T, error) {
	items := l.Items()
	if i < 0 || i >= len(items) {
		return items, nil
	}
	patch(&items[i])
	return l.persist(ctx, items)
}

// Replace overwrites the whole sequence.
func (l *List[T]) Replace(ctx context.Context, items []T) ([]T, error) {
	return l.persist(ctx, items)
}

func (l *List[T]) persist(ctx context.Context, items []T) ([]T, error) {
	raw, err := Encode(items)
	if err != nil {
		return nil, err
	}
	if _, err := l.store.Save(ctx, l.section, l.key, raw, TypeJSON, 0); err != nil {
		return nil, err
	}
	return Decode[T](raw), nil
}
