package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kbvlyon/visitsync/internal/model"
)

// ErrBackupNotFound is returned by RestoreBackup for an unknown id.
var ErrBackupNotFound = errors.New("backup not found")

// Backup describes a stored backup. The snapshot itself is only read by
// RestoreBackup.
type Backup struct {
	ID        int64        `json:"id"`
	Version   string       `json:"version"`
	CreatedAt time.Time    `json:"createdAt"`
	Manual    bool         `json:"manual"`
	Checksum  string       `json:"checksum"`
	Counts    model.Counts `json:"counts"`
}

// CreateBackup stores a copy of snap and prunes the oldest backups beyond
// the configured limit.
func (s *Store) CreateBackup(ctx context.Context, snap *model.Snapshot, manual bool) (Backup, error) {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return Backup{}, fmt.Errorf("create backup: %w", err)
	}
	b := Backup{
		Version:  s.version,
		Manual:   manual,
		Checksum: Checksum(data),
		Counts:   snap.Counts(),
	}
	createdAt := s.timestamp()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Backup{}, fmt.Errorf("create backup: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	res, err := tx.ExecContext(ctx, `
		INSERT INTO backups (version, created_at, manual, checksum, speakers, hosts, visits, archived, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, b.Version, createdAt, b.Manual, b.Checksum, b.Counts.Speakers, b.Counts.Hosts, b.Counts.Visits, b.Counts.Archived, data)
	if err != nil {
		return Backup{}, fmt.Errorf("create backup: insert: %w", err)
	}
	if b.ID, err = res.LastInsertId(); err != nil {
		return Backup{}, fmt.Errorf("create backup: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM backups
		WHERE id NOT IN (SELECT id FROM backups ORDER BY id DESC LIMIT ?)
	`, s.maxBackups); err != nil {
		return Backup{}, fmt.Errorf("create backup: prune: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Backup{}, fmt.Errorf("create backup: commit: %w", err)
	}

	b.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return b, nil
}

// ListBackups returns every stored backup, newest first.
func (s *Store) ListBackups(ctx context.Context) ([]Backup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, version, created_at, manual, checksum, speakers, hosts, visits, archived
		FROM backups
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	defer rows.Close()

	var out []Backup
	for rows.Next() {
		var b Backup
		var createdAt string
		if err := rows.Scan(&b.ID, &b.Version, &createdAt, &b.Manual, &b.Checksum,
			&b.Counts.Speakers, &b.Counts.Hosts, &b.Counts.Visits, &b.Counts.Archived); err != nil {
			return nil, fmt.Errorf("list backups: %w", err)
		}
		if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("list backups: backup %d: %w", b.ID, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return out, nil
}

// RestoreBackup reads a backup back after verifying its checksum. The
// current snapshot is not touched: saving the result is up to the caller.
func (s *Store) RestoreBackup(ctx context.Context, id int64) (*model.Snapshot, error) {
	var data, checksum string
	err := s.db.QueryRowContext(ctx, `SELECT data, checksum FROM backups WHERE id = ?`, id).Scan(&data, &checksum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("restore backup %d: %w", id, ErrBackupNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("restore backup %d: %w", id, err)
	}
	if err := Verify(data, checksum); err != nil {
		return nil, fmt.Errorf("restore backup %d: %w", id, err)
	}
	snap, err := DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("restore backup %d: %w", id, err)
	}
	return snap, nil
}
