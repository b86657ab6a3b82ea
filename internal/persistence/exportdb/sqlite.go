// Package exportdb is the history of exports: one row per successful export
// with the output written, the archived program and a digest of its text.
package exportdb

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

type Export struct {
	ID          string
	Project     string
	Mode        string
	OutputPath  string
	ArchivePath string
	Digest      string
	Bones       int
	Variants    int
	Distance    float64
	CreatedAt   time.Time
}

type SQLiteIndex struct {
	db *sql.DB

	once sync.Once
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS exports (
			id TEXT PRIMARY KEY,
			project TEXT NOT NULL,
			mode TEXT NOT NULL,
			output_path TEXT NOT NULL,
			archive_path TEXT NOT NULL,
			digest TEXT NOT NULL,
			bones INTEGER NOT NULL,
			variants INTEGER NOT NULL,
			distance REAL NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_exports_project_id ON exports(project, id);`,
		`INSERT OR IGNORE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		err = s.db.Close()
	})
	return err
}

// Record stores e. A zero CreatedAt is taken from the id when it is a ULID and
// from the clock otherwise.
func (s *SQLiteIndex) Record(ctx context.Context, e Export) error {
	if s == nil {
		return nil
	}
	if e.ID == "" || e.Project == "" {
		return fmt.Errorf("exportdb: missing id or project")
	}
	if e.CreatedAt.IsZero() {
		if id, err := ulid.ParseStrict(e.ID); err == nil {
			e.CreatedAt = ulid.Time(id.Time())
		} else {
			e.CreatedAt = time.Now()
		}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO exports(id,project,mode,output_path,archive_path,digest,bones,variants,distance,created_at) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		e.ID, e.Project, e.Mode, e.OutputPath, e.ArchivePath, e.Digest,
		e.Bones, e.Variants, e.Distance,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("exportdb: record %s: %w", e.ID, err)
	}
	return nil
}

// List returns the newest exports first. An empty project lists every
// project; limit <= 0 means 50.
func (s *SQLiteIndex) List(ctx context.Context, project string, limit int) ([]Export, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT id,project,mode,output_path,archive_path,digest,bones,variants,distance,created_at FROM exports`
	args := []any{}
	if project != "" {
		q += ` WHERE project=?`
		args = append(args, project)
	}
	// ULIDs sort by creation time.
	q += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Latest returns the newest export of project, or sql.ErrNoRows.
func (s *SQLiteIndex) Latest(ctx context.Context, project string) (Export, error) {
	list, err := s.List(ctx, project, 1)
	if err != nil {
		return Export{}, err
	}
	if len(list) == 0 {
		return Export{}, sql.ErrNoRows
	}
	return list[0], nil
}

// Get returns one export by id, or sql.ErrNoRows.
func (s *SQLiteIndex) Get(ctx context.Context, id string) (Export, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,project,mode,output_path,archive_path,digest,bones,variants,distance,created_at FROM exports WHERE id=?`, id)
	return scanExport(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(r scanner) (Export, error) {
	var (
		e       Export
		created string
	)
	if err := r.Scan(&e.ID, &e.Project, &e.Mode, &e.OutputPath, &e.ArchivePath, &e.Digest,
		&e.Bones, &e.Variants, &e.Distance, &created); err != nil {
		return e, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return e, fmt.Errorf("exportdb: created_at %q: %w", created, err)
	}
	e.CreatedAt = t
	return e, nil
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a ULID for an export created at t. IDs from one process are
// strictly increasing within the same millisecond.
func NewID(t time.Time) string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Digest is the sha256 hex of the program text.
func Digest(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
