package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/notify"
	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/schema"
	"github.com/kbvlyon/visitsync/internal/store"
	tu "github.com/kbvlyon/visitsync/internal/testutil"
)

type memPersister struct {
	mu    sync.Mutex
	snap  *model.Snapshot
	saves int
	fail  error
}

func (m *memPersister) Load(context.Context) (*model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, nil
}

func (m *memPersister) Save(_ context.Context, s *model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.snap = s
	m.saves++
	return nil
}

func (m *memPersister) setFail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

// gateBackuper blocks CreateBackup until release is closed.
type gateBackuper struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gateBackuper) CreateBackup(context.Context, *model.Snapshot, bool) (store.Backup, error) {
	close(g.entered)
	<-g.release
	return store.Backup{ID: 1}, nil
}

type failingBackuper struct{}

func (failingBackuper) CreateBackup(context.Context, *model.Snapshot, bool) (store.Backup, error) {
	return store.Backup{}, errors.New("disk full")
}

func newSession(t *testing.T, p Persister, b Backuper) (*Session, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	s, err := New(Options{
		Persister: p,
		Backups:   b,
		Assembler: &reconcile.Assembler{IDs: ids.NewSequence("gen")},
		Repair:    schema.RepairOptions{IDs: ids.NewSequence("id")},
		Notifier:  rec,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	return s, rec
}

const importJSON = `{
  "speakers": [{"id": "s1", "nom": "Jean Dupont", "congregation": "Lyon"}],
  "hosts": [{"id": "h1", "nom": "Marie"}],
  "visits": [{"id": "s1", "nom": "Jean Dupont", "visitId": "v1", "visitDate": "2025-03-01", "host": "Marie"}]
}`

func TestNew_RequiresPersister(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestOpen_EmptyStoreKeepsEmptySnapshot(t *testing.T) {
	s, _ := newSession(t, &memPersister{}, nil)

	require.NoError(t, s.Open(context.Background()))
	assert.Equal(t, model.Counts{}, s.Current().Counts())
	assert.NotNil(t, s.Current().Visits)
}

func TestOpen_LoadsStoredSnapshot(t *testing.T) {
	stored := tu.Snapshot([]model.Speaker{tu.Speaker("s1", "Paul", "Lyon")}, nil, nil, nil)
	s, _ := newSession(t, &memPersister{snap: stored}, nil)

	require.NoError(t, s.Open(context.Background()))
	assert.Same(t, stored, s.Current())
}

func TestImport_MergesAndSaves(t *testing.T) {
	p := &memPersister{}
	s, rec := newSession(t, p, nil)

	report, err := s.Import(context.Background(), []byte(importJSON))
	require.NoError(t, err)

	cur := s.Current()
	require.Len(t, cur.Visits, 1)
	assert.Equal(t, "Marie", cur.Visits[0].Host)
	assert.Equal(t, "h1", cur.Visits[0].HostID)
	assert.Equal(t, "14:30", cur.Visits[0].VisitTime)
	assert.Equal(t, 1, report.Stats.Counts.Visits)
	assert.Nil(t, report.Backup)

	assert.Same(t, cur, p.snap)
	assert.False(t, s.Dirty())

	msgs := rec.Messages()
	require.NotEmpty(t, msgs)
	assert.Equal(t, "1 orateurs, 1 contacts, 1 visites, 0 doublons fusionnés", msgs[len(msgs)-1].Text)
}

func TestImport_SelfImportIsStable(t *testing.T) {
	s, _ := newSession(t, &memPersister{}, nil)
	ctx := context.Background()

	_, err := s.Import(ctx, []byte(importJSON))
	require.NoError(t, err)
	first := s.Current()

	_, err = s.Import(ctx, []byte(importJSON))
	require.NoError(t, err)
	assert.Equal(t, first.Visits, s.Current().Visits)
	assert.Equal(t, first.Speakers, s.Current().Speakers)
}

func TestImport_MalformedLeavesStateUnchanged(t *testing.T) {
	p := &memPersister{}
	s, rec := newSession(t, p, nil)
	before := s.Current()

	_, err := s.Import(context.Background(), []byte(`{"speakers": [], "hosts": []}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, reconcile.ErrMalformedImport)

	assert.Same(t, before, s.Current())
	assert.Equal(t, 0, p.saves)
	msgs := rec.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, notify.KindError, msgs[0].Kind)
}

func TestImport_WarningsAreReported(t *testing.T) {
	s, rec := newSession(t, &memPersister{}, nil)

	report, err := s.Import(context.Background(), []byte(`{
	  "speakers": [{"nom": ""}],
	  "hosts": [],
	  "visits": []
	}`))
	require.NoError(t, err)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, schema.WarnDroppedSpeaker, report.Warnings[0].Code)
	assert.Equal(t, notify.KindWarning, rec.Messages()[0].Kind)
}

func TestImport_PersistenceFailureKeepsMemoryAndFlushRetries(t *testing.T) {
	p := &memPersister{fail: errors.New("database is locked")}
	s, rec := newSession(t, p, nil)
	ctx := context.Background()

	report, err := s.Import(ctx, []byte(importJSON))
	require.Error(t, err)
	require.NotNil(t, report)
	assert.True(t, IsPersistenceFailure(err))
	assert.Contains(t, err.Error(), "database is locked")

	assert.Len(t, s.Current().Visits, 1, "new snapshot stays in memory")
	assert.True(t, s.Dirty())

	msgs := rec.Messages()
	last := msgs[len(msgs)-1]
	assert.Equal(t, notify.KindCritical, last.Kind)
	assert.True(t, last.Kind.Sticky())

	p.setFail(nil)
	require.NoError(t, s.Flush(ctx))
	assert.False(t, s.Dirty())
	assert.Same(t, s.Current(), p.snap)
}

func TestImport_SecondImportWhileBusyIsRejected(t *testing.T) {
	gate := &gateBackuper{entered: make(chan struct{}), release: make(chan struct{})}
	p := &memPersister{}
	s, _ := newSession(t, p, gate)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := s.Import(ctx, []byte(importJSON))
		done <- err
	}()
	<-gate.entered

	before := s.Current()
	_, err := s.Import(ctx, []byte(importJSON))
	assert.ErrorIs(t, err, ErrImportInProgress)
	assert.Same(t, before, s.Current())

	close(gate.release)
	require.NoError(t, <-done)
	assert.Len(t, s.Current().Visits, 1)
	assert.Equal(t, 1, p.saves)
}

func TestImport_BackupFailureDoesNotBlock(t *testing.T) {
	s, rec := newSession(t, &memPersister{}, failingBackuper{})

	report, err := s.Import(context.Background(), []byte(importJSON))
	require.NoError(t, err)
	assert.Nil(t, report.Backup)
	assert.Equal(t, notify.KindWarning, rec.Messages()[0].Kind)
}

func TestImportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(importJSON), 0o600))
	s, _ := newSession(t, &memPersister{}, nil)

	_, err := s.ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, s.Current().Visits, 1)
}

func TestImportFile_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(path, []byte(importJSON), 0o600))
	s, _ := newSession(t, &memPersister{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ImportFile(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, s.Current().Visits)
}

func TestImportSnapshot_RejectsMissingCollections(t *testing.T) {
	s, _ := newSession(t, &memPersister{}, nil)

	_, err := s.ImportSnapshot(context.Background(), &model.Snapshot{Speakers: []model.Speaker{}})
	assert.ErrorIs(t, err, reconcile.ErrMalformedImport)
}

func TestApply_SwapsAndSaves(t *testing.T) {
	p := &memPersister{}
	s, _ := newSession(t, p, nil)
	ctx := context.Background()
	_, err := s.Import(ctx, []byte(importJSON))
	require.NoError(t, err)

	require.NoError(t, s.Apply(ctx, reconcile.RenameHost("Marie", "Marie Curie")))
	assert.Equal(t, "Marie Curie", s.Current().Visits[0].Host)
	assert.Same(t, s.Current(), p.snap)
}

func TestApply_ReducerErrorLeavesStateUnchanged(t *testing.T) {
	p := &memPersister{}
	s, _ := newSession(t, p, nil)
	before := s.Current()

	err := s.Apply(context.Background(), reconcile.CompleteVisit("missing"))
	assert.ErrorIs(t, err, reconcile.ErrNotFound)
	assert.Same(t, before, s.Current())
	assert.Equal(t, 0, p.saves)
}

func TestApply_ConcurrentReducersAreSerialized(t *testing.T) {
	s, _ := newSession(t, &memPersister{}, nil)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Apply(ctx, func(cur *model.Snapshot) (*model.Snapshot, error) {
				next := cur.Copy()
				next.Hosts = append(append([]model.Host{}, cur.Hosts...), model.Host{Nom: string(rune('A' + i))})
				return next, nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Current().Hosts, n)
}
