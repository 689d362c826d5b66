// Package archive keeps a history of generated reports in SQLite.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scrumtool/internal/logging"
	"scrumtool/internal/report"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ArchiveError is a sentinel error type for the archive.
type ArchiveError string

func (e ArchiveError) Error() string { return string(e) }

// ErrNotFound is returned by Get for an unknown report ID.
const ErrNotFound ArchiveError = "report not found"

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry summarises one archived report.
type Entry struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generated_at"`
	Board       string    `json:"board,omitempty"`
	Source      string    `json:"source"`
	Points      float64   `json:"points"`
	Cards       int       `json:"cards"`
	Diagnostics int       `json:"diagnostics"`
}

// Store is a report history database.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the archive at path. ":memory:" gives a private
// in-memory archive.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serialises writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}
	logging.Get(logging.CategoryArchive).Debugf("archive opened at %s", path)
	return s, nil
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS reports (
		id TEXT PRIMARY KEY,
		generated_at TEXT NOT NULL,
		board TEXT NOT NULL DEFAULT '',
		source TEXT NOT NULL DEFAULT '',
		points REAL NOT NULL,
		cards INTEGER NOT NULL,
		diagnostics INTEGER NOT NULL,
		body TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_generated_at ON reports(generated_at);
	`)
	return err
}

// Save stores rep, assigning an ID when it has none. source records where
// the snapshot came from (a file path or URL). Saving an existing ID
// replaces it.
func (s *Store) Save(ctx context.Context, rep *report.Report, source string) (string, error) {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now()
	}

	body, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("failed to encode report %s: %w", rep.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports (id, generated_at, board, source, points, cards, diagnostics, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.GeneratedAt.UTC().Format(timeLayout), rep.Board, source,
		rep.Points, rep.Cards, len(rep.Diagnostics), string(body))
	if err != nil {
		return "", fmt.Errorf("failed to save report %s: %w", rep.ID, err)
	}
	logging.Get(logging.CategoryArchive).Infof("archived report %s (%s)", rep.ID, source)
	return rep.ID, nil
}

// List returns the newest reports first. A limit of zero or less lists all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, generated_at, board, source, points, cards, diagnostics
		FROM reports ORDER BY generated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Board, &e.Source, &e.Points, &e.Cards, &e.Diagnostics); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		if e.GeneratedAt, err = time.Parse(timeLayout, at); err != nil {
			return nil, fmt.Errorf("report %s: bad timestamp %q: %w", e.ID, at, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get loads a full report by ID. A unique ID prefix is accepted.
func (s *Store) Get(ctx context.Context, id string) (*report.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM reports WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id = ? DESC LIMIT 2`,
		id, escapeLike(id)+"%", id)
	if err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	defer rows.Close()

	var bodies []string
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan report %s: %w", id, err)
		}
		bodies = append(bodies, body)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load report %s: %w", id, err)
	}

	switch {
	case len(bodies) == 0:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	case len(bodies) > 1 && !s.exact(ctx, id):
		return nil, fmt.Errorf("report id prefix %q is ambiguous", id)
	}

	var rep report.Report
	if err := json.Unmarshal([]byte(bodies[0]), &rep); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", id, err)
	}
	return &rep, nil
}

func (s *Store) exact(ctx context.Context, id string) bool {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports WHERE id = ?`, id).Scan(&n)
	return err == nil && n == 1
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
