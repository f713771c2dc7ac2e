// Package session holds the application's single snapshot reference and runs
// every change to it: imports through the reconcile pipeline and edits
// through reducers.
//
// Readers call Current and get an immutable snapshot. Writers never modify a
// snapshot in place; they build a new one and swap the reference.
package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/kbvlyon/visitsync/internal/model"
	"github.com/kbvlyon/visitsync/internal/notify"
	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/schema"
	"github.com/kbvlyon/visitsync/internal/store"
)

// Persister loads and saves the snapshot. Load returns (nil, nil) when
// nothing has been saved yet.
type Persister interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, s *model.Snapshot) error
}

// Backuper takes point-in-time copies of a snapshot.
type Backuper interface {
	CreateBackup(ctx context.Context, s *model.Snapshot, manual bool) (store.Backup, error)
}

// Options configures a Session. Persister is required.
type Options struct {
	Persister Persister
	Backups   Backuper
	Assembler *reconcile.Assembler
	Validator *schema.Validator
	Repair    schema.RepairOptions
	Notifier  notify.Notifier
	Logger    zerolog.Logger
}

// Session owns the current snapshot.
//
// Thread-safety: All methods are safe for concurrent use. Imports are
// rejected while another import runs; Apply calls are serialized.
type Session struct {
	current atomic.Pointer[model.Snapshot]
	busy    atomic.Bool
	dirty   atomic.Bool
	mu      sync.Mutex

	persister Persister
	backups   Backuper
	assembler *reconcile.Assembler
	validator *schema.Validator
	repair    schema.RepairOptions
	notifier  notify.Notifier
	log       zerolog.Logger
}

// ImportReport describes a completed import.
type ImportReport struct {
	Stats    reconcile.Stats  `json:"stats"`
	Warnings []schema.Warning `json:"warnings,omitempty"`
	Backup   *store.Backup    `json:"backup,omitempty"`
}

// New creates a session holding an empty snapshot. Call Open to load the
// stored one.
func New(opts Options) (*Session, error) {
	if opts.Persister == nil {
		return nil, fmt.Errorf("session: persister is required")
	}
	if opts.Validator == nil {
		v, err := schema.NewValidator()
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
		opts.Validator = v
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Assembler == nil {
		opts.Assembler = &reconcile.Assembler{}
	}
	if opts.Assembler.Notifier == nil {
		opts.Assembler.Notifier = opts.Notifier
	}

	s := &Session{
		persister: opts.Persister,
		backups:   opts.Backups,
		assembler: opts.Assembler,
		validator: opts.Validator,
		repair:    opts.Repair,
		notifier:  opts.Notifier,
		log:       opts.Logger.With().Str("component", "session").Logger(),
	}
	s.current.Store(model.Empty())
	return s, nil
}

// Open loads the stored snapshot. An empty store leaves the empty snapshot.
func (s *Session) Open(ctx context.Context) error {
	snap, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	if snap != nil {
		s.current.Store(snap)
	}
	counts := s.Current().Counts()
	s.log.Debug().
		Int("speakers", counts.Speakers).
		Int("hosts", counts.Hosts).
		Int("visits", counts.Visits).
		Int("archived", counts.Archived).
		Msg("snapshot loaded")
	return nil
}

// Current returns the current snapshot. It must not be modified.
func (s *Session) Current() *model.Snapshot {
	return s.current.Load()
}

// Dirty reports whether the last save failed and the stored snapshot is
// behind the one in memory.
func (s *Session) Dirty() bool {
	return s.dirty.Load()
}

// ImportFile reads path and imports it. Cancelling ctx aborts the read; the
// merge itself is not interruptible.
func (s *Session) ImportFile(ctx context.Context, path string) (*ImportReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(ctxReader{ctx: ctx, r: f})
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return s.Import(ctx, data)
}

// Import validates a snapshot file and merges it into the current snapshot.
//
// When the merge succeeds but saving fails, the new snapshot stays in memory
// and both the report and a *PersistenceError are returned.
func (s *Session) Import(ctx context.Context, data []byte) (*ImportReport, error) {
	return s.runImport(ctx, func() (*model.Snapshot, []schema.Warning, error) {
		snap, warnings, err := schema.Resolve(s.validator.Decode(data, s.repair))
		if err != nil {
			s.notifier.Notify(fmt.Sprintf("Fichier d'import invalide : %v", err), notify.KindError)
		}
		return snap, warnings, err
	})
}

// ImportSnapshot merges an already decoded snapshot, for example one built
// from a spreadsheet. It is subject to the same one-import-at-a-time rule.
func (s *Session) ImportSnapshot(ctx context.Context, imported *model.Snapshot) (*ImportReport, error) {
	return s.runImport(ctx, func() (*model.Snapshot, []schema.Warning, error) {
		if err := reconcile.CheckImport(imported); err != nil {
			return nil, nil, err
		}
		snap, warnings := schema.Repair(imported, s.repair)
		return snap, warnings, nil
	})
}

func (s *Session) runImport(ctx context.Context, decode func() (*model.Snapshot, []schema.Warning, error)) (*ImportReport, error) {
	if !s.busy.CompareAndSwap(false, true) {
		s.notifier.Notify("Un import est déjà en cours, réessayez dans un instant.", notify.KindWarning)
		return nil, ErrImportInProgress
	}
	defer s.busy.Store(false)

	imported, warnings, err := decode()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.log.Warn().Str("code", w.Code).Msg(w.Message)
	}
	if len(warnings) > 0 {
		s.notifier.Notify(fmt.Sprintf("%d avertissement(s) lors de l'import", len(warnings)), notify.KindWarning)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Current()
	report := &ImportReport{Warnings: warnings}
	if s.backups != nil {
		b, err := s.backups.CreateBackup(ctx, current, false)
		if err != nil {
			s.log.Warn().Err(err).Msg("backup before import failed")
			s.notifier.Notify("Sauvegarde avant import impossible, import poursuivi.", notify.KindWarning)
		} else {
			report.Backup = &b
		}
	}

	res, err := s.assembler.Assemble(current, imported)
	if err != nil {
		return nil, err
	}
	report.Stats = res.Stats

	s.current.Store(res.Snapshot)
	s.log.Info().
		Int("duplicates", res.Stats.Duplicates).
		Int("cross_partition", res.Stats.CrossPartition).
		Int("visits", res.Stats.Counts.Visits).
		Msg("import merged")

	if err := s.save(ctx, "import", res.Snapshot); err != nil {
		return report, err
	}
	return report, nil
}

// Apply runs a reducer on the current snapshot, swaps in the result and
// saves it. A reducer error leaves everything unchanged.
func (s *Session) Apply(ctx context.Context, r reconcile.Reducer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := r(s.Current())
	if err != nil {
		return err
	}
	s.current.Store(next)
	return s.save(ctx, "apply", next)
}

// Replace swaps in a whole snapshot, e.g. one restored from a backup.
func (s *Session) Replace(ctx context.Context, snap *model.Snapshot) error {
	return s.Apply(ctx, func(*model.Snapshot) (*model.Snapshot, error) { return snap, nil })
}

// Flush saves the current snapshot again, typically after a
// PersistenceError.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, "flush", s.Current())
}

func (s *Session) save(ctx context.Context, op string, snap *model.Snapshot) error {
	if err := s.persister.Save(ctx, snap); err != nil {
		s.dirty.Store(true)
		s.log.Error().Err(err).Str("op", op).Msg("save failed")
		s.notifier.Notify("Échec de l'enregistrement : les modifications ne sont pas sauvegardées.", notify.KindCritical)
		return &PersistenceError{Op: op, Err: err}
	}
	s.dirty.Store(false)
	return nil
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
