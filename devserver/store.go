package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/towngreen/churchsite/content"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("devserver: not found")

// Store persists everything the reference backend serves in one SQLite file.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("devserver: create data dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("devserver: open db: %w", err)
	}
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("devserver: pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("devserver: ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS content (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    section_name TEXT NOT NULL,
    content_key TEXT NOT NULL,
    content_value TEXT NOT NULL,
    content_type TEXT NOT NULL DEFAULT 'text',
    display_order INTEGER NOT NULL DEFAULT 0,
    updated_at TEXT NOT NULL,
    UNIQUE(section_name, content_key)
);

CREATE TABLE IF NOT EXISTS records (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    resource TEXT NOT NULL,
    body TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_resource ON records(resource);

CREATE TABLE IF NOT EXISTS reactions (
    target TEXT NOT NULL,
    kind TEXT NOT NULL,
    count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (target, kind)
);

CREATE TABLE IF NOT EXISTS comments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    target TEXT NOT NULL,
    author TEXT NOT NULL,
    text TEXT NOT NULL,
    created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_comments_target ON comments(target);

CREATE TABLE IF NOT EXISTS tokens (
    token TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    expires_at TEXT NOT NULL
);
`)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Content returns the whole content dictionary.
func (s *Store) Content(ctx context.Context) (content.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, section_name, content_key, content_value, content_type, display_order FROM content ORDER BY section_name, display_order, content_key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := content.Snapshot{}
	for rows.Next() {
		var id int64
		var section, key, value, typ string
		var order int
		if err := rows.Scan(&id, &section, &key, &value, &typ, &order); err != nil {
			return nil, err
		}
		if snap[section] == nil {
			snap[section] = content.Section{}
		}
		snap[section][key] = content.Entry{
			ID:    content.ID(strconv.FormatInt(id, 10)),
			Value: value,
			Type:  content.Type(typ),
			Order: order,
		}
	}
	return snap, rows.Err()
}

// UpsertContent creates or replaces the entry at (section, key) and returns
// its row id, which is stable across updates.
func (s *Store) UpsertContent(ctx context.Context, u content.Upsert) (content.ID, error) {
	typ := u.Type
	if typ == "" {
		typ = content.TypeText
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
INSERT INTO content (section_name, content_key, content_value, content_type, display_order, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(section_name, content_key) DO UPDATE SET
    content_value = excluded.content_value,
    content_type = excluded.content_type,
    display_order = excluded.display_order,
    updated_at = excluded.updated_at
RETURNING id`, u.Section, u.Key, u.Value, string(typ), u.Order, now()).Scan(&id)
	if err != nil {
		return "", err
	}
	return content.ID(strconv.FormatInt(id, 10)), nil
}

// DeleteContent removes the entry with id.
func (s *Store) DeleteContent(ctx context.Context, id content.ID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM content WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	return expectOne(res)
}

// Record is one row of a generic resource: the stored JSON object with its
// id and creation time merged in.
type Record map[string]any

// ID returns the record id as sent to clients.
func (r Record) ID() string {
	switch v := r["id"].(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case string:
		return v
	}
	return ""
}

func scanRecord(id int64, body, createdAt string) (Record, error) {
	rec := Record{}
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("devserver: corrupt record %d: %w", id, err)
	}
	rec["id"] = id
	rec["created_at"] = createdAt
	return rec, nil
}

// Records lists a resource, newest first.
func (s *Store) Records(ctx context.Context, resource string) ([]Record, error) {
	return s.queryRecords(ctx,
		`SELECT id, body, created_at FROM records WHERE resource = ? ORDER BY id DESC`, resource)
}

// PageRecords lists one page of a resource, newest first, with the total count.
func (s *Store) PageRecords(ctx context.Context, resource string, page, limit int) ([]Record, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE resource = ?`, resource).Scan(&total); err != nil {
		return nil, 0, err
	}
	recs, err := s.queryRecords(ctx,
		`SELECT id, body, created_at FROM records WHERE resource = ? ORDER BY id DESC LIMIT ? OFFSET ?`,
		resource, limit, (page-1)*limit)
	return recs, total, err
}

func (s *Store) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var id int64
		var body, createdAt string
		if err := rows.Scan(&id, &body, &createdAt); err != nil {
			return nil, err
		}
		rec, err := scanRecord(id, body, createdAt)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Record returns one row of a resource.
func (s *Store) Record(ctx context.Context, resource, id string) (Record, error) {
	var rid int64
	var body, createdAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, body, created_at FROM records WHERE resource = ? AND id = ?`, resource, id).
		Scan(&rid, &body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return scanRecord(rid, body, createdAt)
}

// CreateRecord stores fields under resource and returns the new row.
func (s *Store) CreateRecord(ctx context.Context, resource string, fields map[string]any) (Record, error) {
	clean := withoutMeta(fields)
	body, err := json.Marshal(clean)
	if err != nil {
		return nil, err
	}
	createdAt := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (resource, body, created_at) VALUES (?, ?, ?)`, resource, string(body), createdAt)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return scanRecord(id, string(body), createdAt)
}

// UpdateRecord merges fields into an existing row.
func (s *Store) UpdateRecord(ctx context.Context, resource, id string, fields map[string]any) (Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var body, createdAt string
	err = tx.QueryRowContext(ctx,
		`SELECT body, created_at FROM records WHERE resource = ? AND id = ?`, resource, id).Scan(&body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	merged := map[string]any{}
	if err := json.Unmarshal([]byte(body), &merged); err != nil {
		return nil, err
	}
	for k, v := range withoutMeta(fields) {
		merged[k] = v
	}
	nb, err := json.Marshal(merged)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET body = ? WHERE resource = ? AND id = ?`, string(nb), resource, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	rid, _ := strconv.ParseInt(id, 10, 64)
	return scanRecord(rid, string(nb), createdAt)
}

// DeleteRecord removes one row of a resource.
func (s *Store) DeleteRecord(ctx context.Context, resource, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE resource = ? AND id = ?`, resource, id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func withoutMeta(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == "id" || k == "created_at" {
			continue
		}
		out[k] = v
	}
	return out
}

// Reactions holds the like and love counters of a target.
type Reactions struct {
	Likes int `json:"likes"`
	Loves int `json:"loves"`
}

// React increments kind ("like" or "love") for target and returns the counters.
func (s *Store) React(ctx context.Context, target, kind string) (Reactions, error) {
	if _, err := s.db.ExecContext(ctx, `
INSERT INTO reactions (target, kind, count) VALUES (?, ?, 1)
ON CONFLICT(target, kind) DO UPDATE SET count = count + 1`, target, kind); err != nil {
		return Reactions{}, err
	}
	return s.Reactions(ctx, target)
}

// Reactions returns the counters of target.
func (s *Store) Reactions(ctx context.Context, target string) (Reactions, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, count FROM reactions WHERE target = ?`, target)
	if err != nil {
		return Reactions{}, err
	}
	defer rows.Close()

	var r Reactions
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return Reactions{}, err
		}
		switch kind {
		case "like":
			r.Likes = n
		case "love":
			r.Loves = n
		}
	}
	return r, rows.Err()
}

// Comment is a stored comment.
type Comment struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
}

// Comments returns the comments on target, oldest first.
func (s *Store) Comments(ctx context.Context, target string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, text, created_at FROM comments WHERE target = ? ORDER BY id`, target)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Author, &c.Text, &c.Date); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddComment stores a comment on target.
func (s *Store) AddComment(ctx context.Context, target, author, text string) (Comment, error) {
	c := Comment{Author: author, Text: text, Date: now()}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (target, author, text, created_at) VALUES (?, ?, ?, ?)`, target, author, text, c.Date)
	if err != nil {
		return Comment{}, err
	}
	c.ID, err = res.LastInsertId()
	return c, err
}

// CreateToken issues a bearer token for username valid for ttl.
func (s *Store) CreateToken(ctx context.Context, username string, ttl time.Duration) (string, error) {
	tok := uuid.NewString()
	exp := time.Now().Add(ttl).UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tokens (token, username, expires_at) VALUES (?, ?, ?)`, tok, username, exp); err != nil {
		return "", err
	}
	return tok, nil
}

// TokenUser returns the owner of an unexpired token.
func (s *Store) TokenUser(ctx context.Context, token string) (string, error) {
	var username, exp string
	err := s.db.QueryRowContext(ctx,
		`SELECT username, expires_at FROM tokens WHERE token = ?`, token).Scan(&username, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	t, err := time.Parse(time.RFC3339, exp)
	if err != nil || time.Now().After(t) {
		return "", ErrNotFound
	}
	return username, nil
}

// DeleteToken revokes a token.
func (s *Store) DeleteToken(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tokens WHERE token = ?`, token)
	return err
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
