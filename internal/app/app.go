// package app is the main entrypoint into the application, responsible for
// configuring and starting the application, and wiring its components
// together.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/leg100/rtable/internal/sched"
	"github.com/leg100/rtable/internal/storage"
	"github.com/leg100/rtable/internal/tabledef"
	"github.com/leg100/rtable/internal/tui/top"
	"github.com/leg100/rtable/internal/version"
	"github.com/peterbourgon/ff/v4"
)

// App is the application's components, wired together.
type App struct {
	Table  *resizable.Table
	Store  storage.Store
	Logger *logging.Logger
	Frames *sched.FrameQueue
	Idle   *sched.IdleQueue
	// Changes notifies of changes to the widths file, if watched.
	Changes <-chan struct{}

	cleanups []func()
}

// Start the app.
func Start(stdout, stderr io.Writer, args []string) error {
	// Parse configuration from env vars and flags
	cfg, err := Parse(stderr, args)
	if errors.Is(err, ff.ErrHelp) {
		// help has been printed
		return nil
	} else if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Version {
		fmt.Fprintln(stdout, "rtable", version.Version)
		return nil
	}

	app, err := New(cfg)
	if err != nil {
		return err
	}
	defer app.Cleanup()

	return top.Start(top.Options{
		Table:   app.Table,
		Frames:  app.Frames,
		Idle:    app.Idle,
		Logger:  app.Logger,
		Changes: app.Changes,
		Debug:   cfg.Debug,
	})
}

// New constructs the app from config. The caller should call Cleanup once
// finished with the app.
func New(cfg Config) (*App, error) {
	app := &App{
		Frames: &sched.FrameQueue{},
		Idle:   &sched.IdleQueue{},
	}
	if err := app.setup(cfg); err != nil {
		app.Cleanup()
		return nil, err
	}
	return app, nil
}

func (a *App) setup(cfg Config) error {
	// Setup logging
	opts := cfg.Logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { f.Close() })
		opts.AdditionalWriters = append(opts.AdditionalWriters, f)
	}
	a.Logger = logging.NewLogger(opts)

	def := tabledef.Demo()
	if cfg.TableFile != "" {
		var err error
		def, err = tabledef.Load(cfg.TableFile)
		if err != nil {
			return fmt.Errorf("loading table: %w", err)
		}
	}
	a.Logger.Info("loaded table", "id", def.ID, "columns", def.ColumnCount(), "rows", len(def.Rows))

	store, err := storage.Open(cfg.Store, cfg.DataDir, a.Logger)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}
	a.Store = store
	a.cleanups = append(a.cleanups, func() {
		if err := store.Close(); err != nil {
			a.Logger.Error("closing store", "error", err)
		}
	})
	a.Logger.Info("opened store", "kind", cfg.Store, "path", storage.Path(cfg.Store, cfg.DataDir))

	a.Table, err = resizable.New(def.Document(), cfg.TableConfig(),
		resizable.WithLogger(a.Logger),
		resizable.WithPersister(store),
		resizable.WithFrameScheduler(a.Frames),
		resizable.WithIdleWriter(a.Idle),
	)
	if err != nil {
		return err
	}

	if cfg.Watch {
		if cfg.Store != storage.File {
			a.Logger.Warn("ignoring watch: only the file store can be watched", "store", cfg.Store)
			return nil
		}
		ctx, cancel := context.WithCancel(context.Background())
		a.cleanups = append(a.cleanups, cancel)
		a.Changes, err = storage.Watch(ctx, storage.Path(storage.File, cfg.DataDir), a.Logger)
		if err != nil {
			return err
		}
	}
	return nil
}

// Cleanup releases the app's resources, in reverse order of acquisition.
func (a *App) Cleanup() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}
