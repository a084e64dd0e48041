package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/depcollect/pkg/dag"
	derrors "github.com/matzehuels/depcollect/pkg/errors"
	pkgio "github.com/matzehuels/depcollect/pkg/io"
	"github.com/matzehuels/depcollect/pkg/render/nodelink"
)

// Tree output formats.
const (
	treeFormatDOT = "dot"
	treeFormatSVG = "svg"
	treeFormatPNG = "png"
)

// treeCommand creates the tree command, which draws the resolved graph.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		src       sourceFlags
		format    string
		output    string
		opts      nodelink.Options
		conflicts bool
		from      string
	)

	cmd := &cobra.Command{
		Use:   "tree [coordinate|pom.xml]",
		Short: "Draw the resolved dependency tree with Graphviz",
		Example: `  depcollect tree org.apache.commons:commons-text:1.12.0 -o deps.svg
  depcollect tree ./pom.xml --format dot --conflicts | dot -Tpdf > deps.pdf
  depcollect tree --from graph.json -o deps.svg`,
		Args: func(cmd *cobra.Command, args []string) error {
			if from != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != treeFormatDOT && format != treeFormatSVG && format != treeFormatPNG {
				return derrors.New(derrors.ErrCodeInvalidFormat, "unknown tree format %q (want dot, svg or png)", format)
			}
			if format == treeFormatPNG && output == "" {
				return derrors.New(derrors.ErrCodeInvalidInput, "png output needs --output")
			}

			var g *dag.DAG
			if from != "" {
				imported, err := pkgio.ImportJSON(from)
				if err != nil {
					return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "read graph")
				}
				g = imported
			} else {
				res, err := c.runCollect(cmd, args[0], src)
				if err != nil {
					return err
				}
				if conflicts {
					opts.Conflicts = res.Conflicts
				}
				g = res.Graph
			}
			dot := nodelink.ToDOT(g, opts)

			var (
				data []byte
				err  error
			)
			switch format {
			case treeFormatDOT:
				data = []byte(dot)
			case treeFormatSVG:
				data, err = nodelink.RenderSVG(cmd.Context(), dot)
			case treeFormatPNG:
				data, err = nodelink.RenderPNG(cmd.Context(), dot)
			}
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			return writeOutput(cmd.OutOrStdout(), output, func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			})
		},
	}

	src.register(cmd)
	addWalkFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", treeFormatSVG, "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include depth and metadata in node labels")
	cmd.Flags().BoolVar(&opts.EdgeScopes, "edge-scopes", false, "label edges with the dependency scope")
	cmd.Flags().BoolVar(&conflicts, "conflicts", false, "show omitted conflicting versions")
	cmd.Flags().StringVar(&from, "from", "", "draw a graph saved with collect --graph instead of collecting")

	return cmd
}
