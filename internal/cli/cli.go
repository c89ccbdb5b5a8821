// Package cli implements the reftext command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reftext/pkg/buildinfo"
	"github.com/matzehuels/reftext/pkg/cache"
	"github.com/matzehuels/reftext/pkg/errors"
	"github.com/matzehuels/reftext/pkg/observability"
	"github.com/matzehuels/reftext/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "reftext"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// status receives spinners and status lines; stdout carries documents.
	status io.Writer

	configPath string
	config     Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		status: w,
		config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "reftext serializes values with shared and cyclic references",
		Long: `reftext reads and writes a JSON-like text format that keeps the identity of
shared arrays and objects. A value reached a second time is written as a
reference path such as /["0"]/{"name"}/ pointing at its first location, so
cycles and shared structure survive a round trip.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/reftext/config.toml)")

	// Codec commands
	root.AddCommand(c.fmtCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.fromJSONCommand())
	root.AddCommand(c.toJSONCommand())

	// Analysis commands
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.inspectCommand())

	// Storage commands
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	path, required := c.configPath, true
	if path == "" {
		required = false
		if p, err := configPath(); err == nil {
			path = p
		}
	}
	cfg, err := loadConfig(path, required)
	if err != nil {
		return err
	}
	c.config = cfg
	c.status = cmd.ErrOrStderr()
	c.Logger.Debug("starting", buildinfo.Fields()...)
	c.Logger.Debug("config loaded", "path", path, "backend", cfg.Store.Backend)

	hooks := logHooks{logger: c.Logger}
	observability.SetCodecHooks(hooks)
	observability.SetCacheHooks(hooks)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Store Factory
// =============================================================================

// openStore builds the document store selected by the config file.
func (c *CLI) openStore(ctx context.Context) (*store.Store, error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	cfg := c.config.Store
	var keyer cache.Keyer
	if cfg.Namespace != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Namespace)
	}
	return store.New(backend, store.Options{
		TTL:    cfg.TTL.Duration,
		Keyer:  keyer,
		Indent: c.config.Indent,
		Logger: c.Logger,
	}), nil
}

func (c *CLI) openBackend(ctx context.Context) (cache.Cache, error) {
	cfg := c.config.Store
	switch cfg.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return c.connect(ctx, backendRedis, cfg.Redis.Address(), func() (cache.Cache, error) {
			return cache.NewRedisCache(ctx, cfg.Redis)
		})
	case backendMongo:
		return c.connect(ctx, backendMongo, cfg.Mongo.Target(), func() (cache.Cache, error) {
			return cache.NewMongoCache(ctx, cfg.Mongo)
		})
	default:
		return c.openFileCache()
	}
}

// connect opens a remote backend under a spinner naming its target, and
// logs how long the connection took.
func (c *CLI) connect(ctx context.Context, backend, target string, open func() (cache.Cache, error)) (cache.Cache, error) {
	prog := newProgress(c.Logger)
	var opened cache.Cache
	err := spin(ctx, c.status,
		fmt.Sprintf("Connecting to %s store at %s...", backend, target),
		fmt.Sprintf("%s store at %s unavailable", backend, target),
		func() error {
			var err error
			opened, err = open()
			return err
		})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "open %s store at %s", backend, target)
	}
	prog.done(fmt.Sprintf("Connected to %s store at %s", backend, target))
	return opened, nil
}

func (c *CLI) openFileCache() (*cache.FileCache, error) {
	dir, err := c.storeDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}

// storeDir returns the file backend directory: the configured one, or the
// XDG cache directory.
func (c *CLI) storeDir() (string, error) {
	if c.config.Store.Dir != "" {
		return c.config.Store.Dir, nil
	}
	return cacheDir()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/reftext/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
