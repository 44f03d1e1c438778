package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qmetal/pkg/design"
)

// logLine returns the first line of logs containing msg.
func logLine(t *testing.T, logs, msg string) string {
	t.Helper()
	for _, line := range strings.Split(logs, "\n") {
		if strings.Contains(line, msg) {
			return line
		}
	}
	t.Fatalf("no %q line in logs:\n%s", msg, logs)
	return ""
}

func TestProgressDoneLogsFieldsAndElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(design.NewLogger(&buf, log.InfoLevel))
	prog.done("built design", "components", 3, "failed", 1)

	line := logLine(t, buf.String(), "built design")
	require.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{2} INFO`), line)
	require.Contains(t, line, "components=3")
	require.Contains(t, line, "failed=1")
	require.Contains(t, line, "elapsed=")
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	l := design.NewLogger(&buf, log.InfoLevel)
	require.Same(t, l, loggerFromContext(withLogger(context.Background(), l)))
	require.NotNil(t, loggerFromContext(context.Background()))
}

func TestBuildLogsThroughCommandLogger(t *testing.T) {
	_, logs, err := run(t, "build", writeDesign(t, demoDesign))
	require.NoError(t, err)

	loaded := logLine(t, logs, "design loaded")
	require.Contains(t, loaded, "cmd=build")
	require.Contains(t, loaded, "design=demo")
	require.Contains(t, loaded, "components=3")

	built := logLine(t, logs, "built design")
	require.Contains(t, built, "cmd=build")
	require.Contains(t, built, "components=3")
	require.Contains(t, built, "failed=0")
	require.Contains(t, built, "elapsed=")
	require.NotContains(t, logs, "component registered")
}

func TestDepsLogsExport(t *testing.T) {
	_, logs, err := run(t, "deps", writeDesign(t, demoDesign), "--format", "json")
	require.NoError(t, err)

	line := logLine(t, logs, "exported dependency graph")
	require.Contains(t, line, "cmd=deps")
	require.Contains(t, line, "format=json")
	require.Contains(t, line, "nodes=3")
	require.Contains(t, line, "edges=2")
}

func TestDebugLevelLogsRegistrations(t *testing.T) {
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	c.SetLogLevel(LogDebug)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs([]string{"build", writeDesign(t, demoDesign)})
	require.NoError(t, root.Execute())

	line := logLine(t, logs.String(), "component registered")
	require.Contains(t, line, "DEBU")
	require.Contains(t, line, "design=demo")
	require.Contains(t, logs.String(), "name=feed")
}
