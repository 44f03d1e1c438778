package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qmetal/pkg/dag"
	"github.com/matzehuels/qmetal/pkg/errors"
	graphio "github.com/matzehuels/qmetal/pkg/io"
)

// Output formats of the deps command.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// depsCommand creates the deps command.
func (c *CLI) depsCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "deps [design.toml]",
		Short: "Export the component dependency graph",
		Long: `Deps builds a design file and exports the dependency graph between its
components as Graphviz DOT, rendered SVG or JSON. An edge points from a parent to
the component derived from it.`,
		Example: `  # Print DOT to stdout
  qmetal deps examples/demo.toml

  # Render SVG with component ids and types
  qmetal deps examples/demo.toml --format svg --detailed -o deps.svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatDOT, formatSVG, formatJSON:
			default:
				return errors.New(errors.ErrCodeUnsupported, "unknown format %q (want %s, %s or %s)",
					format, formatDOT, formatSVG, formatJSON)
			}

			prog := newProgress(loggerFromContext(cmd.Context()))
			d, res, err := c.loadDesign(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if n := len(res.BuildErrors); n > 0 {
				printWarning(cmd.ErrOrStderr(), "%d components failed to build", n)
			}

			g := d.Dependencies()
			var data []byte
			switch format {
			case formatJSON:
				var buf bytes.Buffer
				if err := graphio.WriteJSON(g, &buf); err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "encode dependency graph")
				}
				data = buf.Bytes()
			default:
				data = []byte(dag.ToDOT(g, dag.DOTOptions{Title: d.Name(), Detailed: detailed}))
			}
			if format == formatSVG {
				spin := newSpinner(cmd.Context(), cmd.ErrOrStderr(), "Rendering SVG...")
				spin.Start()
				data, err = dag.RenderSVG(cmd.Context(), string(data))
				spin.Stop()
				if err != nil {
					return errors.Wrap(errors.ErrCodeInternal, err, "render dependency graph")
				}
			}

			prog.done("exported dependency graph", "format", format, "nodes", g.NodeCount(), "edges", g.EdgeCount())

			if output == "" {
				_, err := w.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			printSuccess(w, "Wrote %d components, %d dependencies", g.NodeCount(), g.EdgeCount())
			printFile(w, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatDOT, fmt.Sprintf("output format (%s, %s, %s)", formatDOT, formatSVG, formatJSON))
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include component ids and types in node labels")
	return cmd
}
