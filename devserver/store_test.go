package devserver

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/towngreen/churchsite/content"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}

func TestUpsertContentKeepsID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertContent(ctx, content.Upsert{Section: "hero", Key: "title", Value: "Hello"})
	if err != nil {
		t.Fatalf("UpsertContent failed: %v", err)
	}
	again, err := s.UpsertContent(ctx, content.Upsert{Section: "hero", Key: "title", Value: "Hi", Type: content.TypeText, Order: 2})
	if err != nil {
		t.Fatalf("UpsertContent failed: %v", err)
	}
	if again != id {
		t.Errorf("id = %q, want %q", again, id)
	}

	snap, err := s.Content(ctx)
	if err != nil {
		t.Fatalf("Content failed: %v", err)
	}
	got := snap["hero"]["title"]
	if got.Value != "Hi" {
		t.Errorf("Value = %q, want %q", got.Value, "Hi")
	}
	if got.Order != 2 {
		t.Errorf("Order = %d, want 2", got.Order)
	}
	if got.Type != content.TypeText {
		t.Errorf("Type = %q, want %q", got.Type, content.TypeText)
	}
}

func TestDeleteContent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.UpsertContent(ctx, content.Upsert{Section: "a", Key: "b", Value: "c"})
	if err != nil {
		t.Fatalf("UpsertContent failed: %v", err)
	}
	if err := s.DeleteContent(ctx, id); err != nil {
		t.Fatalf("DeleteContent failed: %v", err)
	}
	if err := s.DeleteContent(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
	snap, _ := s.Content(ctx)
	if len(snap) != 0 {
		t.Errorf("expected empty content, got %v", snap)
	}
}

func TestRecordsLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first, err := s.CreateRecord(ctx, "sermons", map[string]any{"title": "One", "id": 99})
	if err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if first.ID() == "99" {
		t.Error("client supplied id should be ignored")
	}
	if _, err := s.CreateRecord(ctx, "sermons", map[string]any{"title": "Two"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}
	if _, err := s.CreateRecord(ctx, "programs", map[string]any{"title": "Other"}); err != nil {
		t.Fatalf("CreateRecord failed: %v", err)
	}

	list, err := s.Records(ctx, "sermons")
	if err != nil {
		t.Fatalf("Records failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 sermons, got %d", len(list))
	}
	if list[0]["title"] != "Two" {
		t.Errorf("newest first: got %v", list[0]["title"])
	}

	updated, err := s.UpdateRecord(ctx, "sermons", first.ID(), map[string]any{"speaker": "Pastor"})
	if err != nil {
		t.Fatalf("UpdateRecord failed: %v", err)
	}
	if updated["title"] != "One" || updated["speaker"] != "Pastor" {
		t.Errorf("update should merge, got %v", updated)
	}

	if err := s.DeleteRecord(ctx, "programs", first.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete across resources err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteRecord(ctx, "sermons", first.ID()); err != nil {
		t.Fatalf("DeleteRecord failed: %v", err)
	}
	if _, err := s.Record(ctx, "sermons", first.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Record after delete err = %v, want ErrNotFound", err)
	}
	if _, err := s.UpdateRecord(ctx, "sermons", first.ID(), map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateRecord after delete err = %v, want ErrNotFound", err)
	}
}

func TestPageRecords(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := s.CreateRecord(ctx, "membership", map[string]any{"n": i}); err != nil {
			t.Fatalf("CreateRecord failed: %v", err)
		}
	}

	page, total, err := s.PageRecords(ctx, "membership", 3, 2)
	if err != nil {
		t.Fatalf("PageRecords failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(page) != 1 {
		t.Fatalf("last page len = %d, want 1", len(page))
	}
	if page[0]["n"] != float64(0) {
		t.Errorf("last page should hold the oldest record, got %v", page[0]["n"])
	}
}

func TestReactionsAndComments(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.React(ctx, "sermons:1", "like"); err != nil {
		t.Fatalf("React failed: %v", err)
	}
	r, err := s.React(ctx, "sermons:1", "like")
	if err != nil {
		t.Fatalf("React failed: %v", err)
	}
	if r.Likes != 2 || r.Loves != 0 {
		t.Errorf("reactions = %+v, want 2 likes", r)
	}
	other, _ := s.Reactions(ctx, "sermons:2")
	if other.Likes != 0 {
		t.Errorf("targets should be independent, got %+v", other)
	}

	if _, err := s.AddComment(ctx, "gallery:/a.png", "Esi", "Lovely"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	if _, err := s.AddComment(ctx, "gallery:/a.png", "Kwame", "Amen"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	cs, err := s.Comments(ctx, "gallery:/a.png")
	if err != nil {
		t.Fatalf("Comments failed: %v", err)
	}
	if len(cs) != 2 || cs[0].Author != "Esi" {
		t.Errorf("comments = %+v, want oldest first", cs)
	}
}

func TestTokens(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	tok, err := s.CreateToken(ctx, "admin", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	user, err := s.TokenUser(ctx, tok)
	if err != nil || user != "admin" {
		t.Fatalf("TokenUser = %q, %v", user, err)
	}

	expired, err := s.CreateToken(ctx, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("CreateToken failed: %v", err)
	}
	if _, err := s.TokenUser(ctx, expired); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired token err = %v, want ErrNotFound", err)
	}

	if err := s.DeleteToken(ctx, tok); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}
	if _, err := s.TokenUser(ctx, tok); !errors.Is(err, ErrNotFound) {
		t.Errorf("revoked token err = %v, want ErrNotFound", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	mime, data, err := decodeDataURL("data:image/png;base64,aGk=")
	if err != nil {
		t.Fatalf("decodeDataURL failed: %v", err)
	}
	if mime != "image/png" || string(data) != "hi" {
		t.Errorf("got %q %q", mime, data)
	}
	for _, bad := range []string{"hi", "data:image/png,aGk=", "data:image/png;base64", "data:image/png;base64,!!", "data:image/png;base64,"} {
		if _, _, err := decodeDataURL(bad); err == nil {
			t.Errorf("decodeDataURL(%q) should fail", bad)
		}
	}
}
