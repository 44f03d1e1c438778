package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var show []string

	cmd := &cobra.Command{
		Use:   "build [design.toml]",
		Short: "Build every component of a design file",
		Long: `Build loads a design file, creates and builds its components in file order
and prints one row per component with its status, pin count and element count.

Components that fail to build are listed with their error; the command then
exits non-zero.`,
		Example: `  # Build a design
  qmetal build examples/demo.toml

  # Also print the resolved options of two components
  qmetal build examples/demo.toml --show feed --show launch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog := newProgress(loggerFromContext(cmd.Context()))
			d, res, err := c.loadDesign(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			prog.done("built design", "components", len(res.Components), "failed", len(res.BuildErrors))

			w := cmd.OutOrStdout()
			printDesignSummary(w, d)
			fmt.Fprintln(w, componentTable(d))

			for _, name := range show {
				comp, err := component.Lookup(d, name)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, StyleTitle.Render(name))
				fmt.Fprint(w, comp.String())
				for _, pin := range comp.PinNames() {
					p, _ := comp.Pin(pin)
					printDetail(w, "pin %s: middle (%g, %g) normal (%g, %g) width %g",
						pin, p.Middle.X, p.Middle.Y, p.Normal.X, p.Normal.Y, p.Width)
				}
			}

			if len(res.BuildErrors) > 0 {
				for _, err := range res.BuildErrors {
					printError(w, "%v", err)
				}
				return errors.New(errors.ErrCodeBuildFailed, "%d of %d components failed to build",
					len(res.BuildErrors), len(res.Components))
			}
			printSuccess(w, "All components built")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&show, "show", nil, "print the options and pins of a component (repeatable)")
	return cmd
}

// printDesignSummary prints the design header lines.
func printDesignSummary(w io.Writer, d *design.Design) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name()))
	printKeyValue(w, "id", d.ID().String())
	printKeyValue(w, "units", d.Units())
	printKeyValue(w, "chip", d.Chip())
	printKeyValue(w, "components", strconv.Itoa(d.Len()))
	if tables, ok := d.Geometry().(*qgeometry.Tables); ok {
		printKeyValue(w, "elements", strconv.Itoa(tables.Len()))
	}
}

// componentTable renders one row per component in id order.
func componentTable(d *design.Design) string {
	t := newTable("ID", "NAME", "TYPE", "STATUS", "PINS", "ELEMENTS")
	for _, m := range d.Components() {
		row := []string{strconv.Itoa(m.ID()), m.Name(), m.TypeKey(), "", "", ""}
		if comp, ok := m.(*component.Component); ok {
			row[3] = renderStatus(comp.Status())
			row[4] = strconv.Itoa(len(comp.PinNames()))
			row[5] = strconv.Itoa(len(comp.ElementsList(qgeometry.KindAll)))
		}
		t.Row(row...)
	}
	return t.String()
}
