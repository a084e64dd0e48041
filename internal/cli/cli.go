// Package cli implements the depcollect command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/depcollect/pkg/buildinfo"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/config"
	derrors "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/repository/local"
	"github.com/matzehuels/depcollect/pkg/repository/remote"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depcollect"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// flagKeys maps command-line flags to config keys. Flags override the
// config file and the environment when set.
var flagKeys = map[string]string{
	"repository":    "repositories",
	"local":         "local",
	"cache-backend": "cache.backend",
	"max-depth":     "max_depth",
	"concurrency":   "concurrency",
	"exclude-scope": "excluded_scopes",
	"addr":          "serve.addr",
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	errOut    io.Writer
	v         *viper.Viper
	cfgFile   string
	verbose   bool
	logFormat string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		errOut: w,
		v:      config.New(),
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
		Short: "depcollect resolves the transitive dependencies of Maven artifacts",
		Long: `depcollect walks the dependency graph of a Maven artifact and flattens it the
way Maven does: the nearest declaration of an artifact wins, ties go to the
first declaration, and scopes, optionals and exclusions are honoured.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			f, err := parseLogFormat(c.logFormat)
			if err != nil {
				return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid --log-format")
			}
			c.Logger.SetFormatter(f)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&c.logFormat, "log-format", "text", "log output format: text, logfmt or json")
	pf.StringVar(&c.cfgFile, "config", "", "config file (default ./depcollect.yaml or $XDG_CONFIG_HOME/depcollect/depcollect.yaml)")
	pf.StringSlice("repository", nil, "remote repository URL, repeatable (overrides config)")
	pf.String("local", "", `local repository directory, or "none" (default ~/.m2/repository)`)
	pf.String("cache-backend", "", "cache backend: file, redis, mongo or none")

	root.AddCommand(c.collectCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the command line with args and returns the process exit
// code. Failures are classified and printed as a single line.
func (c *CLI) Execute(ctx context.Context, args []string) int {
	root := c.RootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	err = derrors.Classify(err)
	fmt.Fprintln(c.errOut, "Error:", derrors.UserMessage(err))
	return derrors.ExitCode(derrors.GetCode(err))
}

// addWalkFlags registers the flags that tune a collection.
func addWalkFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("max-depth", collect.DefaultMaxDepth, "maximum dependency depth")
	f.Int("concurrency", collect.DefaultConcurrency, "parallel repository lookups per layer")
	f.StringSlice("exclude-scope", nil, "drop direct dependencies with this scope, repeatable")
}

// =============================================================================
// Config & Wiring
// =============================================================================

// loadConfig binds the flags present on cmd and loads the configuration.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("config loaded", "file", c.v.ConfigFileUsed(), "repositories", cfg.Repositories, "cache", cfg.Cache.Backend)
	return cfg, nil
}

// newCache opens the configured cache backend.
func newCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	store, err := cfg.Cache.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", cfg.Cache.Backend, err)
	}
	return store, nil
}

// stack is the repository setup shared by every command.
type stack struct {
	chain repository.Chain   // raw repositories, also used as POM loader
	repo  collect.Repository // chain behind the node cache
}

// newStack builds the local repository (when present) followed by each
// remote in configured order. refresh bypasses cached nodes and POMs.
func (c *CLI) newStack(cfg *config.Config, store cache.Cache, refresh bool) (*stack, error) {
	warn := c.Logger.Warnf
	keyer := cfg.Cache.Keyer()

	var chain repository.Chain
	dir, err := cfg.LocalDir()
	if err != nil {
		return nil, err
	}
	if dir != "" {
		if _, err := os.Stat(dir); err == nil {
			chain = append(chain, local.NewRepository(dir, warn))
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	for _, url := range cfg.Repositories {
		mc := maven.NewClient(store, url, cfg.Cache.TTL)
		mc = mc.WithHTTP(mc.Client.WithKeyer(keyer))
		chain = append(chain, remote.NewRepository(mc, refresh, warn))
	}
	if len(chain) == 0 {
		return nil, errors.New("no repositories available")
	}

	var repo collect.Repository = chain
	if !refresh {
		repo = repository.NewCached(chain, store, keyer, cfg.Cache.TTL)
	}
	return &stack{chain: chain, repo: repo}, nil
}
