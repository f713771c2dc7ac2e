package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DefaultMaxBackups is how many backups are kept when no limit is configured.
const DefaultMaxBackups = 10

// migrations upgrade a database created by an older release. Entry i moves
// user_version from i to i+1; schema.sql always holds the latest tables.
var migrations = []string{
	`CREATE INDEX IF NOT EXISTS idx_backups_created_at ON backups(created_at);
	 CREATE INDEX IF NOT EXISTS idx_revisions_saved_at ON revisions(saved_at);`,
}

var connPragmas = []string{
	"journal_mode = WAL",
	"synchronous = NORMAL",
	"busy_timeout = 5000",
	"foreign_keys = ON",
}

// Store keeps the current snapshot, its revision log and backups in a
// single SQLite file.
type Store struct {
	db         *sql.DB
	now        func() time.Time
	maxBackups int
	version    string
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for saved_at and created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxBackups sets how many backups are kept. Older ones are pruned.
func WithMaxBackups(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxBackups = n
		}
	}
}

// WithAppVersion sets the version recorded on backups.
func WithAppVersion(v string) Option {
	return func(s *Store) { s.version = v }
}

// Open opens the database at path, creating it when needed, and brings the
// schema up to date. Opening the same file again is harmless.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// One connection: SQLite allows a single writer and the pragmas are
	// per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	return NewWithDB(db, opts...), nil
}

// NewWithDB wraps an already prepared database.
func NewWithDB(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:         db,
		now:        time.Now,
		maxBackups: DefaultMaxBackups,
		version:    "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for _, p := range connPragmas {
		if _, err := db.Exec("PRAGMA " + p); err != nil {
			return fmt.Errorf("pragma %s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return migrate(db)
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for v := version; v < len(migrations); v++ {
		if _, err := db.Exec(migrations[v]); err != nil {
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
	}
	if version < len(migrations) {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", len(migrations))); err != nil {
			return fmt.Errorf("write user_version: %w", err)
		}
	}
	return nil
}

// pragma reads the current value of a pragma.
func (s *Store) pragma(name string) (string, error) {
	var value string
	err := s.db.QueryRow("PRAGMA " + name).Scan(&value)
	return value, err
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
