// Package cli implements the qmetal command-line interface.
//
// The commands load a TOML design file through pkg/config, build its
// components with the built-in library and print what was produced. The CLI
// is built using cobra and logs with charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - build: Build every component of a design file and list the results
//   - template: Show a component type's ancestry and resolved defaults
//   - types: List the component types of the built-in library
//   - deps: Export the dependency graph as DOT or SVG
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Before a
// command runs, the CLI's logger is scoped to the command name and stored in
// the command context; designs loaded by the command log through that
// logger, so every line carries cmd= and design= fields.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qmetal/pkg/design"
)

// progress times one step of a command, such as loading and building a
// design, and logs its completion with the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with keyvals and an elapsed field rounded to
// the millisecond, e.g. `built design components=3 failed=0 elapsed=4ms`.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or a
// stderr logger in the qmetal format when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return design.NewLogger(os.Stderr, log.InfoLevel)
}
