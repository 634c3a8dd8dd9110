// Package store is the sqlite ledger of dispatcher runs.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/footprint-tools/storyteller/internal/domain"
	"github.com/footprint-tools/storyteller/internal/store/migrations"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store wraps a SQLite connection holding the runs table.
// It implements domain.RunLedger.
type Store struct {
	db   *sql.DB
	path string
}

// New opens the database at path and runs pending migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err = configure(db, path); err != nil {
		_ = db.Close()
		return nil, err
	}

	setDBPermissions(path)

	if err = migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// NewWithDB wraps an existing connection. Migrations are not run.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

func configure(db *sql.DB, path string) error {
	pragmas := []string{"PRAGMA busy_timeout = 5000"}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("configure database (%s): %w", p, err)
		}
	}
	return nil
}

// setDBPermissions restricts the database and its WAL/SHM files to the owner.
func setDBPermissions(path string) {
	if path == ":memory:" {
		return
	}
	_ = os.Chmod(path, 0600)
	_ = os.Chmod(path+"-wal", 0600)
	_ = os.Chmod(path+"-shm", 0600)
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InsertRun appends a run and returns its id.
func (s *Store) InsertRun(rec domain.RunRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs
		 (repo_name, target, mode, state, commit_hash, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RepoName,
		rec.Target,
		string(rec.Mode),
		rec.State,
		rec.CommitHash,
		rec.Error,
		rec.StartedAt.UTC().Format(timeLayout),
		rec.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(filter domain.RunFilter) ([]domain.RunRecord, error) {
	query := `
		SELECT id, repo_name, target, mode, state, commit_hash, error, started_at, finished_at
		FROM runs
	`

	var (
		clauses []string
		args    []any
	)
	if filter.RepoName != "" {
		clauses = append(clauses, "repo_name = ?")
		args = append(args, filter.RepoName)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	query += " ORDER BY started_at DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRun(rows *sql.Rows) (domain.RunRecord, error) {
	var (
		rec      domain.RunRecord
		mode     string
		started  string
		finished string
	)
	if err := rows.Scan(
		&rec.ID,
		&rec.RepoName,
		&rec.Target,
		&mode,
		&rec.State,
		&rec.CommitHash,
		&rec.Error,
		&started,
		&finished,
	); err != nil {
		return domain.RunRecord{}, fmt.Errorf("scan run: %w", err)
	}

	var err error
	if rec.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse started_at: %w", err)
	}
	if rec.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse finished_at: %w", err)
	}
	rec.Mode = domain.Mode(mode)
	return rec, nil
}

var _ domain.RunLedger = (*Store)(nil)
