package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kbvlyon/visitsync/internal/config"
	"github.com/kbvlyon/visitsync/internal/ids"
	"github.com/kbvlyon/visitsync/internal/kvstore"
	"github.com/kbvlyon/visitsync/internal/logging"
	"github.com/kbvlyon/visitsync/internal/notify"
	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/schema"
	"github.com/kbvlyon/visitsync/internal/session"
	"github.com/kbvlyon/visitsync/internal/store"
)

// Version is written into backups. Set at build time with -ldflags.
var Version = "dev"

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	notifier notify.Notifier
	ids      ids.Generator

	store   *store.Store  // nil with the redis backend
	redis   *redis.Client // nil with the sqlite backend
	session *session.Session
}

// loadConfig reads the config file and applies the --db flag.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, withCode(ErrCodeConfig, ExitCommandError, err)
	}
	if opts.Database != "" {
		cfg.DB.Path = opts.Database
	}
	return cfg, nil
}

func newLogger(opts *RootOptions, cfg *config.Config, cmd *cobra.Command) (zerolog.Logger, error) {
	l, err := logging.New(cmd.ErrOrStderr(), logging.Options{
		Level:   cfg.Log.Level,
		Console: opts.Format == "text" && cfg.Log.Format != "json",
		Verbose: opts.Verbose,
	})
	if err != nil {
		return l, withCode(ErrCodeConfig, ExitCommandError, err)
	}
	return l, nil
}

// openApp loads configuration, opens the configured storage and loads the
// stored snapshot into a new session.
func openApp(ctx context.Context, opts *RootOptions, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(opts, cfg, cmd)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, ids: opts.IDs}
	if a.ids == nil {
		a.ids = ids.UUIDv7{}
	}
	a.notifier = notify.Log{Logger: logging.Component(logger, "notify")}
	if opts.Format == "text" {
		a.notifier = notify.Fanout{a.notifier, &notify.Writer{W: cmd.ErrOrStderr()}}
	}

	var persister session.Persister
	var backups session.Backuper
	switch cfg.Store {
	case config.BackendRedis:
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		persister = kvstore.New(a.redis, cfg.Redis.Prefix)
	default:
		st, err := store.Open(cfg.DB.Path,
			store.WithMaxBackups(cfg.Backups.Max),
			store.WithAppVersion(Version),
			store.WithClock(opts.now),
		)
		if err != nil {
			return nil, withCode(ErrCodeStorage, ExitCommandError, err)
		}
		a.store = st
		persister, backups = st, st
	}

	sess, err := session.New(session.Options{
		Persister: persister,
		Backups:   backups,
		Assembler: &reconcile.Assembler{
			IDs:            a.ids,
			CrossPartition: cfg.Import.CrossPartition,
			DefaultTime:    cfg.Import.DefaultTime,
		},
		Repair:   schema.RepairOptions{IDs: a.ids},
		Notifier: a.notifier,
		Logger:   logger,
	})
	if err != nil {
		a.Close()
		return nil, withCode(ErrCodeGeneric, ExitCommandError, err)
	}
	if err := sess.Open(ctx); err != nil {
		a.Close()
		return nil, withCode(ErrCodeStorage, ExitCommandError, err)
	}
	a.session = sess
	return a, nil
}

// Close releases the storage connections.
func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

// requireStore returns the SQLite store or an error for the redis backend.
func (a *app) requireStore() (*store.Store, error) {
	if a.store == nil {
		return nil, withCode(ErrCodeUnsupported, ExitCommandError,
			fmt.Errorf("backups and history need the %s store", config.BackendSQLite))
	}
	return a.store, nil
}

// withApp opens the app, runs fn and closes the app. Errors from fn are
// reported through the formatter.
func withApp(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, a *app, f *OutputFormatter) error) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := openApp(ctx, opts, cmd)
	if err != nil {
		return f.Fail(err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.log.Error().Err(closeErr).Msg("error closing storage")
		}
	}()

	if err := fn(ctx, a, f); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		return f.Fail(err)
	}
	return nil
}

// apply runs a reducer through the session and prints message on success.
func apply(opts *RootOptions, cmd *cobra.Command, r reconcile.Reducer, message string) error {
	return withApp(opts, cmd, func(ctx context.Context, a *app, f *OutputFormatter) error {
		if err := a.session.Apply(ctx, r); err != nil {
			return err
		}
		return f.Render(map[string]any{"message": message, "counts": a.session.Current().Counts()}, okLine("%s", message))
	})
}

// okLine prints a single confirmation line in text mode.
func okLine(format string, args ...any) func(w io.Writer) error {
	return func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ "+format+"\n", args...)
		return err
	}
}
