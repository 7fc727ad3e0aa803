package app

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leg100/rtable/internal/logging"
	"github.com/leg100/rtable/internal/resizable"
	"github.com/leg100/rtable/internal/storage"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/peterbourgon/ff/v4/ffyaml"
)

const (
	defaultMinWidth    = 4
	defaultHandleWidth = 1
)

type Config struct {
	// TableFile is the path to a table definition. If empty the demo table is
	// shown.
	TableFile      string
	Store          storage.Kind
	DataDir        string
	MinWidth       int
	MaxWidth       int
	HandleWidth    int
	Placeholders   bool
	NoResize       bool
	NoCollapse     bool
	UpdateInterval time.Duration
	DeferWrites    bool
	Watch          bool
	Debug          bool
	LogFile        string
	Logging        logging.Options

	Version bool
}

// set config in order of precedence:
// 1. flags > 2. env vars > 3. config file
func Parse(stderr io.Writer, args []string) (Config, error) {
	var cfg Config

	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("retrieving user's home directory: %w", err)
	}
	defaultDataDir := filepath.Join(home, ".rtable")
	defaultConfigFile := filepath.Join(home, ".rtable.yaml")

	fs := ff.NewFlagSet("rtable")
	fs.StringVar(&cfg.TableFile, 't', "table", "", "Path to a YAML table definition. Shows a demo table if unset.")
	fs.StringVar(&cfg.DataDir, 0, "data-dir", defaultDataDir, "Directory in which to store column widths.")
	fs.IntVar(&cfg.MinWidth, 0, "min-width", defaultMinWidth, "Minimum column width.")
	fs.IntVar(&cfg.MaxWidth, 0, "max-width", 0, "Maximum column width. Zero is unbounded.")
	fs.IntVar(&cfg.HandleWidth, 0, "handle-width", defaultHandleWidth, "Width of resize handles.")
	fs.BoolVar(&cfg.Placeholders, 'p', "placeholders", "Show placeholders in place of collapsed columns.")
	fs.BoolVar(&cfg.NoResize, 0, "no-resize", "Disable resizing columns.")
	fs.BoolVar(&cfg.NoCollapse, 0, "no-collapse", "Disable collapsing columns.")
	fs.DurationVar(&cfg.UpdateInterval, 0, "update-interval", 0, "Minimum interval between width updates while resizing.")
	fs.BoolVar(&cfg.DeferWrites, 0, "defer-writes", "Defer width updates until the terminal is idle.")
	fs.BoolVar(&cfg.Watch, 'w', "watch", "Reload widths when the widths file changes. File store only.")
	fs.BoolVar(&cfg.Debug, 'd', "debug", "Log bubbletea messages to messages.log")
	fs.StringVar(&cfg.LogFile, 0, "log-file", "", "Write logs to file.")
	fs.BoolVar(&cfg.Version, 'v', "version", "Print version.")
	_ = fs.String('c', "config", defaultConfigFile, "Path to config file.")

	var store string
	{
		kinds := []string{string(storage.File)}
		for _, k := range storage.Kinds() {
			if k != storage.File {
				kinds = append(kinds, string(k))
			}
		}
		usage := fmt.Sprintf("Where to store column widths (valid: %s).", strings.Join(kinds, ","))
		fs.StringEnumVar(&store, 's', "store", usage, kinds...)
	}
	{
		usage := fmt.Sprintf("Logging level (valid: %s).", strings.Join(logging.ValidLevels(), ","))
		fs.StringEnumVar(&cfg.Logging.Level, 'l', "log-level", usage, logging.ValidLevels()...)
	}

	err = ff.Parse(fs, args,
		ff.WithEnvVarPrefix("RTABLE"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ffyaml.Parse),
		ff.WithConfigAllowMissingFile(),
	)
	if err != nil {
		// ff.Parse returns an error if there is an error or if -h/--help is
		// passed; in either case print flag usage in addition to error message.
		fmt.Fprintln(stderr, ffhelp.Flags(fs))
		return Config{}, err
	}

	// Perform any conversions from the flag parsed primitive types to rtable
	// defined types.
	cfg.Store, err = storage.ParseKind(store)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TableConfig converts the config into the table's configuration.
func (cfg Config) TableConfig() resizable.Config {
	tcfg := resizable.DefaultConfig()
	tcfg.EnableResizing = !cfg.NoResize
	tcfg.EnableCollapsing = !cfg.NoCollapse
	tcfg.MinColumnWidth = float64(cfg.MinWidth)
	tcfg.MaxColumnWidth = math.Inf(1)
	if cfg.MaxWidth > 0 {
		tcfg.MaxColumnWidth = float64(cfg.MaxWidth)
	}
	tcfg.ResizeHandleWidth = cfg.HandleWidth
	tcfg.UsePlaceholdersForCollapse = cfg.Placeholders
	tcfg.ResizeUpdateInterval = cfg.UpdateInterval
	tcfg.DeferDOMWrites = cfg.DeferWrites
	return tcfg
}
