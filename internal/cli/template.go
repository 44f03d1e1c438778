package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/qmetal/pkg/library"
	"github.com/matzehuels/qmetal/pkg/options"
)

// templateCommand creates the template command.
func (c *CLI) templateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template [type]",
		Short: "Show a component type's ancestry and default options",
		Long: `Template resolves a component type of the built-in library and prints its
ancestry, base first, followed by the default options merged along that chain.
The short name after the last dot is accepted.`,
		Example: `  qmetal template RectangleHollow
  qmetal template qmetal.library.OpenToGround`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := library.Catalog()
			key := qualifyType(reg, args[0])

			chain, err := reg.Ancestry(key)
			if err != nil {
				return err
			}
			opts, err := reg.Resolve(key)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, StyleTitle.Render(key))
			printInfo(w, "%s", strings.Join(chain, " "+iconArrow+" "))
			printOptions(w, opts, "  ")
			return nil
		},
	}
}

// typesCommand creates the types command.
func (c *CLI) typesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the component types of the built-in library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := library.Catalog()
			buildable := make(map[string]bool)
			for _, key := range library.Variants() {
				buildable[key] = true
			}

			t := newTable("TYPE", "PARENT", "BUILDABLE", "DESCRIPTION")
			for _, key := range reg.Keys() {
				typ, _ := reg.Lookup(key)
				mark := StyleDim.Render("-")
				if buildable[key] {
					mark = StyleSuccess.Render(iconSuccess)
				}
				t.Row(key, typ.Parent, mark, typ.Doc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
}

// qualifyType expands a short library type name to its full key when the
// registry does not know name itself.
func qualifyType(reg *options.Registry, name string) string {
	if _, ok := reg.Lookup(name); ok || strings.Contains(name, ".") {
		return name
	}
	return "qmetal.library." + name
}

// printOptions prints nested options sorted by key.
func printOptions(w io.Writer, o options.Options, indent string) {
	for _, k := range o.Keys() {
		if sub := o.Sub(k); sub != nil {
			fmt.Fprintln(w, indent+StyleHighlight.Render(k))
			printOptions(w, sub, indent+"  ")
			continue
		}
		fmt.Fprintf(w, "%s%s %s\n", indent, StyleHighlight.Render(k), StyleValue.Render(fmt.Sprint(o[k])))
	}
}
