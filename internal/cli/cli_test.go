package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/qmetal/pkg/errors"
)

const demoDesign = `
[design]
name  = "demo"
units = "um"

[variables]
cpw_width = "10um"

[[components]]
name = "launch"
type = "OpenToGround"
[components.options]
orientation = "180"
width       = "cpw_width"

[[components]]
name = "end"
type = "OpenToGround"
[components.options]
pos_x = "1mm"

[[components]]
name = "feed"
type = "RouteStraight"
[components.options.pin_inputs.start_pin]
component = "launch"
pin       = "open"
[components.options.pin_inputs.end_pin]
component = "end"
pin       = "open"
`

func writeDesign(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "design.toml")
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

// run executes the root command and returns stdout and the logger output.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), logs.String(), err
}

func TestBuildCommand(t *testing.T) {
	out, logs, err := run(t, "build", writeDesign(t, demoDesign), "--show", "feed")
	require.NoError(t, err)

	for _, want := range []string{"demo", "launch", "end", "feed", "qmetal.library.RouteStraight", "good", "All components built"} {
		require.Contains(t, out, want)
	}
	require.Contains(t, out, "pin start:")
	require.Contains(t, out, "pin_inputs")
	require.Contains(t, logs, "built design")
	require.Contains(t, logs, "components=3")
}

func TestBuildCommandReportsFailures(t *testing.T) {
	path := writeDesign(t, `
[[components]]
name = "bad"
type = "Rectangle"
[components.options]
height = "-1mm"
`)
	out, _, err := run(t, "build", path)
	require.True(t, errors.Is(err, errors.ErrCodeBuildFailed), "err = %v", err)
	require.Contains(t, out, "failed")
	require.Contains(t, out, "bad")
}

func TestBuildCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"build", filepath.Join(t.TempDir(), "none.toml")}, errors.ErrCodeInvalidConfig},
		{"unknown type", []string{"build", writeDesign(t, "[[components]]\nname = \"x\"\ntype = \"Teapot\"")}, errors.ErrCodeUnknownType},
		{"unknown component", []string{"build", writeDesign(t, demoDesign), "--show", "ghost"}, errors.ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			require.True(t, errors.Is(err, tt.code), "err = %v", err)
		})
	}
}

func TestTemplateCommand(t *testing.T) {
	out, _, err := run(t, "template", "RectangleHollow")
	require.NoError(t, err)
	require.Contains(t, out, "qmetal.library.RectangleHollow")
	require.Contains(t, out, "qmetal.Component")
	require.Contains(t, out, "offset_x")
	require.Contains(t, out, "500um")

	_, _, err = run(t, "template", "Teapot")
	require.True(t, errors.Is(err, errors.ErrCodeUnknownType))
}

func TestTypesCommand(t *testing.T) {
	out, _, err := run(t, "types")
	require.NoError(t, err)
	require.Contains(t, out, "qmetal.library.Placed")
	require.Contains(t, out, "qmetal.library.ShortToGround")
	require.Contains(t, out, "Straight trace between two pins")
}

func TestDepsCommandDOT(t *testing.T) {
	out, _, err := run(t, "deps", writeDesign(t, demoDesign))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "digraph G {"))
	require.Contains(t, out, `"launch" -> "feed";`)
	require.Contains(t, out, `"end" -> "feed";`)
}

func TestDepsCommandWritesFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "deps.dot")
	out, _, err := run(t, "deps", writeDesign(t, demoDesign), "--detailed", "-o", dst)
	require.NoError(t, err)
	require.Contains(t, out, "3 components, 2 dependencies")

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Contains(t, string(data), "type: qmetal.library.RouteStraight")
}

func TestDepsCommandSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz render in short mode")
	}
	out, _, err := run(t, "deps", writeDesign(t, demoDesign), "--format", "svg")
	require.NoError(t, err)
	require.Contains(t, out, "<svg")
}

func TestDepsCommandJSON(t *testing.T) {
	out, _, err := run(t, "deps", writeDesign(t, demoDesign), "--format", "json")
	require.NoError(t, err)

	var g struct {
		Nodes []struct{ ID string }
		Edges []struct{ From, To string }
	}
	require.NoError(t, json.Unmarshal([]byte(out), &g))
	require.Len(t, g.Nodes, 3)
	require.Len(t, g.Edges, 2)
	require.Equal(t, "end", g.Edges[0].From)
}

func TestDepsCommandRejectsFormat(t *testing.T) {
	_, _, err := run(t, "deps", writeDesign(t, demoDesign), "--format", "png")
	require.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	require.Contains(t, info, "version")
	require.Contains(t, info, "go_version")

	out, _, err = run(t, "version")
	require.NoError(t, err)
	require.Contains(t, out, "qmetal")
}
