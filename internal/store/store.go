// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists completed research runs and serves the history
// surface: listing, retrieval by id, and full-text search over compiled
// content.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/company-researcher/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "company-research.db"
)

// Store manages the research history SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// New opens or creates the history database at dataDir/index/ and ensures
// the schema exists.
func New(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dataDir: cfg.DataDir, maxResults: maxResults}
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

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			subject TEXT NOT NULL,
			mode TEXT NOT NULL,
			content TEXT NOT NULL,
			images TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_subject ON runs(subject)`,
		`CREATE TABLE IF NOT EXISTS sources (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			url TEXT NOT NULL,
			title TEXT,
			relevance INTEGER,
			reliability INTEGER,
			extracted_info TEXT,
			source_evaluation TEXT,
			is_official INTEGER,
			images TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sources_run_id ON sources(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='runs_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE runs_fts USING fts5(subject, content, content=runs, content_rowid=rowid)`,
			`CREATE TRIGGER runs_ai AFTER INSERT ON runs BEGIN
				INSERT INTO runs_fts(rowid, subject, content) VALUES (new.rowid, new.subject, new.content);
			END`,
			`CREATE TRIGGER runs_ad AFTER DELETE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, subject, content) VALUES('delete', old.rowid, old.subject, old.content);
			END`,
			`CREATE TRIGGER runs_au AFTER UPDATE ON runs BEGIN
				INSERT INTO runs_fts(runs_fts, rowid, subject, content) VALUES('delete', old.rowid, old.subject, old.content);
				INSERT INTO runs_fts(rowid, subject, content) VALUES (new.rowid, new.subject, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// SaveRun persists one completed run and its sources. A zero ID is
// assigned; a zero CreatedAt is stamped with the current time. Returns the
// run id.
func (s *Store) SaveRun(ctx context.Context, run types.ResearchRun) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	imagesJSON, err := json.Marshal(run.Images)
	if err != nil {
		return "", fmt.Errorf("marshaling images: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, subject, mode, content, images, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Subject, run.Mode, run.Content, string(imagesJSON),
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, src := range run.Sources {
		infoJSON, err := json.Marshal(src.ExtractedInfo)
		if err != nil {
			return "", fmt.Errorf("marshaling source info: %w", err)
		}
		srcImagesJSON, err := json.Marshal(src.Images)
		if err != nil {
			return "", fmt.Errorf("marshaling source images: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO sources (run_id, url, title, relevance, reliability, extracted_info, source_evaluation, is_official, images)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, src.URL, src.Title, src.Relevance, src.Reliability,
			string(infoJSON), src.SourceEvaluation, boolToInt(src.IsOfficial), string(srcImagesJSON),
		)
		if err != nil {
			return "", fmt.Errorf("inserting source: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return run.ID, nil
}

// GetRun returns one run with its sources, or sql.ErrNoRows wrapped if the
// id is unknown.
func (s *Store) GetRun(ctx context.Context, id string) (types.ResearchRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, subject, mode, content, images, created_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err != nil {
		return types.ResearchRun{}, fmt.Errorf("reading run %s: %w", id, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT url, title, relevance, reliability, extracted_info, source_evaluation, is_official, images
		 FROM sources WHERE run_id = ?`, id)
	if err != nil {
		return types.ResearchRun{}, fmt.Errorf("reading sources for %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			src        types.AnalyzedSource
			infoJSON   string
			imagesJSON string
			official   int
		)
		if err := rows.Scan(&src.URL, &src.Title, &src.Relevance, &src.Reliability,
			&infoJSON, &src.SourceEvaluation, &official, &imagesJSON); err != nil {
			return types.ResearchRun{}, fmt.Errorf("scanning source: %w", err)
		}
		src.IsOfficial = official != 0
		if infoJSON != "" {
			if err := json.Unmarshal([]byte(infoJSON), &src.ExtractedInfo); err != nil {
				return types.ResearchRun{}, fmt.Errorf("parsing source info: %w", err)
			}
		}
		if imagesJSON != "" {
			if err := json.Unmarshal([]byte(imagesJSON), &src.Images); err != nil {
				return types.ResearchRun{}, fmt.Errorf("parsing source images: %w", err)
			}
		}
		run.Sources = append(run.Sources, src)
	}
	if err := rows.Err(); err != nil {
		return types.ResearchRun{}, fmt.Errorf("iterating sources: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first, without sources.
// A zero limit uses the store default; a negative limit returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.ResearchRun, error) {
	if limit == 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, subject, mode, content, images, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// SearchRuns performs an FTS5 match over subject and compiled content,
// ranked by relevance.
func (s *Store) SearchRuns(ctx context.Context, query string, limit int) ([]types.ResearchRun, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.subject, r.mode, r.content, r.images, r.created_at
		 FROM runs_fts
		 JOIN runs r ON r.rowid = runs_fts.rowid
		 WHERE runs_fts MATCH ?
		 ORDER BY runs_fts.rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching runs: %w", err)
	}
	defer rows.Close()
	return collectRuns(rows)
}

// ExportYAML writes every run, sources included, to dataDir/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	summaries, err := s.ListRuns(ctx, -1)
	if err != nil {
		return err
	}

	runs := make([]types.ResearchRun, 0, len(summaries))
	for _, summary := range summaries {
		full, err := s.GetRun(ctx, summary.ID)
		if err != nil {
			return err
		}
		runs = append(runs, full)
	}

	data, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}

	exportPath := filepath.Join(s.dataDir, "export.yaml")
	if err := os.WriteFile(exportPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", exportPath, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (types.ResearchRun, error) {
	var (
		run        types.ResearchRun
		imagesJSON sql.NullString
		createdAt  string
	)
	if err := row.Scan(&run.ID, &run.Subject, &run.Mode, &run.Content, &imagesJSON, &createdAt); err != nil {
		return types.ResearchRun{}, err
	}
	if imagesJSON.Valid && imagesJSON.String != "" {
		if err := json.Unmarshal([]byte(imagesJSON.String), &run.Images); err != nil {
			return types.ResearchRun{}, fmt.Errorf("parsing images: %w", err)
		}
	}
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.ResearchRun{}, fmt.Errorf("parsing created_at: %w", err)
	}
	run.CreatedAt = t
	return run, nil
}

func collectRuns(rows *sql.Rows) ([]types.ResearchRun, error) {
	var runs []types.ResearchRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
