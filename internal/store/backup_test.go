package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBackup_ListAndRestore(t *testing.T) {
	s := createTestStore(t, WithAppVersion("1.4.0"))
	ctx := context.Background()
	snap := sampleSnapshot()

	b, err := s.CreateBackup(ctx, snap, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.ID)
	assert.Equal(t, "1.4.0", b.Version)
	assert.True(t, b.Manual)
	assert.Equal(t, snap.Counts(), b.Counts)
	assert.False(t, b.CreatedAt.IsZero())

	list, err := s.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b, list[0])

	restored, err := s.RestoreBackup(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, snap, restored)

	current, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, current, "restore does not save")
}

func TestCreateBackup_PrunesOldest(t *testing.T) {
	s := createTestStore(t, WithMaxBackups(3))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := s.CreateBackup(ctx, sampleSnapshot(), false)
		require.NoError(t, err)
	}

	list, err := s.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{5, 4, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
	assert.False(t, list[0].Manual)
}

func TestRestoreBackup_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.RestoreBackup(ctx, 42)
	assert.ErrorIs(t, err, ErrBackupNotFound)

	b, err := s.CreateBackup(ctx, sampleSnapshot(), false)
	require.NoError(t, err)
	_, err = s.db.Exec(`UPDATE backups SET checksum = 'bad' WHERE id = ?`, b.ID)
	require.NoError(t, err)

	_, err = s.RestoreBackup(ctx, b.ID)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}
