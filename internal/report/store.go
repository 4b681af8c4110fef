// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report records the outcome of each render run in a SQLite
// database: which documents were written, the status of every page, and
// whether each link matched vector paths or fell back to a drawn box.
package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf2html/pkg/types"
)

const dbFile = "pdf2html.db"

// Store manages the report database.
type Store struct {
	db  *sql.DB
	dir string
	now func() time.Time
}

// NewStore opens or creates the report database at cfg.Dir/pdf2html.db and
// creates the schema if it does not exist.
func NewStore(cfg types.ReportConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Dir returns the directory holding the database and its exports.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			name TEXT PRIMARY KEY,
			html_path TEXT,
			status TEXT NOT NULL,
			rendered_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			document TEXT NOT NULL,
			page INTEGER NOT NULL,
			svg_file TEXT NOT NULL,
			status TEXT NOT NULL,
			PRIMARY KEY (document, page)
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			document TEXT NOT NULL,
			page INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			uri TEXT NOT NULL,
			matched_paths INTEGER NOT NULL,
			fallback INTEGER NOT NULL,
			FOREIGN KEY (document, page) REFERENCES pages(document, page) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_links_page ON links(document, page)`,
		`CREATE INDEX IF NOT EXISTS idx_links_uri ON links(uri)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordPage stores rec, replacing any earlier record of the same page.
func (s *Store) RecordPage(ctx context.Context, rec types.PageRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM links WHERE document = ? AND page = ?`, rec.Document, rec.Page,
	); err != nil {
		return fmt.Errorf("clearing links of %s page %d: %w", rec.Document, rec.Page, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO pages (document, page, svg_file, status) VALUES (?, ?, ?, ?)
		ON CONFLICT(document, page) DO UPDATE SET svg_file = excluded.svg_file, status = excluded.status`,
		rec.Document, rec.Page, rec.SVGFile, string(rec.Status()),
	); err != nil {
		return fmt.Errorf("storing %s page %d: %w", rec.Document, rec.Page, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO links (document, page, seq, uri, matched_paths, fallback) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing link insert: %w", err)
	}
	defer stmt.Close()

	for i, l := range rec.Links {
		if _, err := stmt.ExecContext(ctx, rec.Document, rec.Page, i, l.URI, l.MatchedPaths, l.Fallback); err != nil {
			return fmt.Errorf("storing link %s: %w", l.URI, err)
		}
	}
	return tx.Commit()
}

// RecordDocument stores the outcome of rendering doc.
func (s *Store) RecordDocument(ctx context.Context, doc, htmlPath string, status types.ConversionStatus) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (name, html_path, status, rendered_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			html_path = excluded.html_path,
			status = excluded.status,
			rendered_at = excluded.rendered_at`,
		doc, htmlPath, string(status), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storing document %s: %w", doc, err)
	}
	return nil
}

// Summary holds aggregate counts over the report.
type Summary struct {
	Documents int
	Pages     int
	Links     int
	Matched   int
	Fallback  int

	// ByStatus counts documents per conversion status.
	ByStatus map[types.ConversionStatus]int
}

// Summary returns aggregate counts over every recorded document.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{ByStatus: make(map[types.ConversionStatus]int)}

	rows, err := s.db.QueryContext(ctx, `SELECT status, count(*) FROM documents GROUP BY status`)
	if err != nil {
		return sum, fmt.Errorf("counting documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return sum, fmt.Errorf("scanning document counts: %w", err)
		}
		sum.ByStatus[types.ConversionStatus(status)] = n
		sum.Documents += n
	}
	if err := rows.Err(); err != nil {
		return sum, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM pages`).Scan(&sum.Pages); err != nil {
		return sum, fmt.Errorf("counting pages: %w", err)
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*), coalesce(sum(fallback = 0), 0), coalesce(sum(fallback), 0) FROM links`,
	).Scan(&sum.Links, &sum.Matched, &sum.Fallback); err != nil {
		return sum, fmt.Errorf("counting links: %w", err)
	}
	return sum, nil
}
