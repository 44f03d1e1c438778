package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/qmetal/pkg/buildinfo"
	"github.com/matzehuels/qmetal/pkg/config"
	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/library"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "qmetal"

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
}

// New creates a new CLI instance logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: design.NewLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "qmetal builds chip component geometry from design files",
		Long:         `qmetal loads a TOML design file, resolves each component's options through its type ancestry, builds the component geometry and reports pins, element tables and dependencies.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger.With("cmd", cmd.Name())))
		return nil
	}

	root.AddCommand(c.buildCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.typesCommand())
	root.AddCommand(c.depsCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Design Loading
// =============================================================================

// loadDesign reads a design file and applies it to a new design backed by
// the built-in library. The design logs through the logger in ctx. Component
// build failures are reported in the result, not as an error.
func (c *CLI) loadDesign(ctx context.Context, path string) (*design.Design, *config.Result, error) {
	f, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	opts := append(f.DesignOptions(),
		design.WithTypes(library.Catalog()),
		design.WithLogger(loggerFromContext(ctx)))
	d, err := design.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	res, err := f.Apply(d, library.New)
	if err != nil {
		return nil, nil, err
	}
	return d, res, nil
}
