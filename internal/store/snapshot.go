package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kbvlyon/visitsync/internal/model"
)

// Revision describes one save.
type Revision struct {
	Revision int64        `json:"revision"`
	Checksum string       `json:"checksum"`
	Counts   model.Counts `json:"counts"`
	SavedAt  time.Time    `json:"savedAt"`
}

// Load returns the current snapshot, or nil if nothing has been saved yet.
func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	var data, checksum string
	err := s.db.QueryRowContext(ctx, `SELECT data, checksum FROM snapshot WHERE id = 1`).Scan(&data, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if err := Verify(data, checksum); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Save replaces the current snapshot and records a revision, in one
// transaction.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	checksum := Checksum(data)
	counts := snap.Counts()
	now := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var rev int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(revision), 0) + 1 FROM revisions`).Scan(&rev); err != nil {
		return fmt.Errorf("save snapshot: next revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO revisions (revision, checksum, speakers, hosts, visits, archived, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rev, checksum, counts.Speakers, counts.Hosts, counts.Visits, counts.Archived, now); err != nil {
		return fmt.Errorf("save snapshot: insert revision: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshot (id, revision, data, checksum, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			revision = excluded.revision,
			data = excluded.data,
			checksum = excluded.checksum,
			saved_at = excluded.saved_at
	`, rev, data, checksum, now); err != nil {
		return fmt.Errorf("save snapshot: write snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}

// Revisions returns the most recent saves, newest first. limit <= 0 means all.
func (s *Store) Revisions(ctx context.Context, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT revision, checksum, speakers, hosts, visits, archived, saved_at
		FROM revisions
		ORDER BY revision DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var r Revision
		var savedAt string
		if err := rows.Scan(&r.Revision, &r.Checksum, &r.Counts.Speakers, &r.Counts.Hosts, &r.Counts.Visits, &r.Counts.Archived, &savedAt); err != nil {
			return nil, fmt.Errorf("list revisions: %w", err)
		}
		r.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
		if err != nil {
			return nil, fmt.Errorf("list revisions: revision %d: %w", r.Revision, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return out, nil
}
