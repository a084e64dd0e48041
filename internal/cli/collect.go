package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/artifact"
	"github.com/matzehuels/depcollect/pkg/cache"
	"github.com/matzehuels/depcollect/pkg/collect"
	"github.com/matzehuels/depcollect/pkg/config"
	derrors "github.com/matzehuels/depcollect/pkg/errors"
	"github.com/matzehuels/depcollect/pkg/integrations/maven"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/pom"
	"github.com/matzehuels/depcollect/pkg/repository"
	"github.com/matzehuels/depcollect/pkg/repository/memory"
)

// sourceFlags select where artifacts come from.
type sourceFlags struct {
	fixture string
	refresh bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fixture, "fixture", "", "resolve from a TOML fixture instead of Maven repositories")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass cached POMs and nodes")
}

// collectCommand creates the collect command.
func (c *CLI) collectCommand() *cobra.Command {
	var (
		src         sourceFlags
		format      string
		output      string
		graphOut    string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "collect <coordinate|pom.xml>",
		Short: "Print the effective dependencies of an artifact",
		Long: `Collect resolves an artifact and its transitive dependencies.

The argument is a coordinate (groupId:artifactId[:type[:classifier]]:version)
or a path to a pom.xml. When the version is omitted (groupId:artifactId) the
latest release is looked up in the first remote repository.`,
		Example: `  depcollect collect org.apache.commons:commons-text:1.12.0
  depcollect collect ./pom.xml --format tree
  depcollect collect com.google.guava:guava --exclude-scope test -o deps.json --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := c.runCollect(cmd, args[0], src)
			if err != nil {
				return err
			}

			if graphOut != "" {
				if err := pkgio.ExportJSON(res.Graph, graphOut); err != nil {
					return err
				}
				printFile(graphOut)
			}
			printSummary(res)
			if interactive {
				_, err := tea.NewProgram(newBrowserModel(res), tea.WithAltScreen()).Run()
				return err
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				return pkgio.WriteReport(w, res, format)
			})
		},
	}

	src.register(cmd)
	addWalkFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", pkgio.FormatText, "output format: "+strings.Join(pkgio.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().StringVar(&graphOut, "graph", "", "also write the resolved graph as JSON to this file")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse the result in a terminal UI")

	return cmd
}

// runCollect loads the configuration, resolves the argument to a root and
// runs the collector.
func (c *CLI) runCollect(cmd *cobra.Command, arg string, src sourceFlags) (*collect.Result, error) {
	ctx := cmd.Context()
	cfg, err := c.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	var (
		store cache.Cache = cache.NewNullCache()
		st    *stack
	)
	if src.fixture != "" {
		mem, err := memory.LoadTOML(src.fixture)
		if err != nil {
			return nil, derrors.Wrap(derrors.ErrCodeInvalidInput, err, "load fixture")
		}
		c.Logger.Debug("fixture loaded", "path", src.fixture, "artifacts", mem.Len())
		st = &stack{chain: repository.Chain{mem}, repo: mem}
	} else {
		if store, err = newCache(ctx, cfg); err != nil {
			return nil, err
		}
		if st, err = c.newStack(cfg, store, src.refresh); err != nil {
			return nil, err
		}
	}
	defer store.Close()

	root, repo, err := c.resolveTarget(ctx, arg, cfg, st, store)
	if err != nil {
		return nil, derrors.Classify(err)
	}

	opts := cfg.CollectOptions(c.Logger.Debugf)
	var spinner *Spinner
	if c.Logger.GetLevel() > log.DebugLevel {
		spinner = newSpinner(ctx, "Collecting "+root.String())
		opts.Progress = func(depth, recorded int) {
			spinner.SetMessage("Collecting %s: depth %d, %d dependencies", root, depth, recorded)
		}
		spinner.Start()
	}
	prog := newProgress(c.Logger)
	res, err := collect.New(repo, opts).Collect(ctx, root)
	if err != nil {
		if spinner != nil {
			spinner.StopWithError("Collecting " + root.String() + " failed")
		}
		return nil, derrors.Classify(err)
	}
	if spinner != nil {
		spinner.Stop()
	}

	prog.done("Collected", "root", root, "dependencies", len(res.Dependencies), "conflicts", len(res.Conflicts))
	for _, cf := range res.Conflicts {
		c.Logger.Debug("omitted", "artifact", cf.Loser, "for", cf.Winner.Version, "kind", cf.Kind)
	}
	return res, nil
}

// resolveTarget turns a command argument into a root coordinate and the
// repository to collect it from.
func (c *CLI) resolveTarget(ctx context.Context, arg string, cfg *config.Config, st *stack, store cache.Cache) (artifact.Coordinate, collect.Repository, error) {
	if isPOMFile(arg) {
		if err := derrors.ValidatePOMFilename(arg); err != nil {
			return artifact.Coordinate{}, nil, err
		}
		p, err := pom.ParseFile(arg)
		if err != nil {
			return artifact.Coordinate{}, nil, derrors.Wrap(derrors.ErrCodeInvalidPOM, err, "parse %s", arg)
		}
		eff, err := p.Effective(ctx, st.chain)
		if err != nil {
			return artifact.Coordinate{}, nil, derrors.Wrap(derrors.ErrCodeInvalidPOM, err, "build effective model of %s", arg)
		}
		node, skipped := eff.Node()
		for _, s := range skipped {
			c.Logger.Warn("skipped dependency", "groupId", s.Dependency.GroupID, "artifactId", s.Dependency.ArtifactID, "reason", s.Reason)
		}
		c.Logger.Debug("project file", "path", arg, "coordinate", node.Coordinate())
		return node.Coordinate(), repository.Chain{memory.New(node), st.repo}, nil
	}

	if strings.Count(arg, ":") == 1 {
		v, err := latestVersion(ctx, cfg, store, arg)
		if err != nil {
			return artifact.Coordinate{}, nil, err
		}
		c.Logger.Info("Using latest release", "artifact", arg, "version", v)
		arg += ":" + v
	}

	root, err := derrors.ValidateCoordinate(arg)
	if err != nil {
		return artifact.Coordinate{}, nil, err
	}
	return root, st.repo, nil
}

// latestVersion asks the first remote repository for the newest release of
// groupId:artifactId.
func latestVersion(ctx context.Context, cfg *config.Config, store cache.Cache, ga string) (string, error) {
	if len(cfg.Repositories) == 0 {
		return "", derrors.New(derrors.ErrCodeInvalidCoordinate, "%s has no version and no remote repository is configured", ga)
	}
	g, a, _ := strings.Cut(ga, ":")
	mc := maven.NewClient(store, cfg.Repositories[0], cfg.Cache.TTL)
	return mc.LatestVersion(ctx, g, a, false)
}

// isPOMFile reports whether arg names a project file rather than a
// coordinate.
func isPOMFile(arg string) bool {
	if strings.HasSuffix(arg, ".xml") || strings.HasSuffix(arg, ".pom") {
		return true
	}
	if strings.Contains(arg, ":") {
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// writeOutput runs write against path, or against stdout when path is empty.
func writeOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printFile(path)
	return nil
}
