// Package kvstore persists snapshots in Redis, for installations that
// already run one.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/store"
)

// DefaultPrefix namespaces every key written by the adapter.
const DefaultPrefix = "visitsync:"

// Store keeps the snapshot JSON, its checksum and a revision counter under
// three keys that are always written together.
type Store struct {
	client redis.Cmdable
	prefix string
}

// New wraps a Redis client. An empty prefix means DefaultPrefix.
func New(client redis.Cmdable, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(name string) string { return s.prefix + name }

// Load returns the stored snapshot, or nil when the key does not exist.
func (s *Store) Load(ctx context.Context) (*model.Snapshot, error) {
	vals, err := s.client.MGet(ctx, s.key("snapshot"), s.key("checksum")).Result()
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if vals[0] == nil {
		return nil, nil
	}
	data, ok := vals[0].(string)
	if !ok {
		return nil, fmt.Errorf("load snapshot: unexpected value type %T", vals[0])
	}
	checksum, _ := vals[1].(string)
	if err := store.Verify(data, checksum); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	snap, err := store.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot and bumps the revision in one MULTI/EXEC.
func (s *Store) Save(ctx context.Context, snap *model.Snapshot) error {
	data, err := store.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key("snapshot"), data, 0)
		pipe.Set(ctx, s.key("checksum"), store.Checksum(data), 0)
		pipe.Incr(ctx, s.key("revision"))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Revision returns how many times a snapshot has been saved.
func (s *Store) Revision(ctx context.Context) (int64, error) {
	v, err := s.client.Get(ctx, s.key("revision")).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return n, nil
}
