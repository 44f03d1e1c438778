// Package config loads TOML design descriptions.
//
// A design file names the design, sets its default units and chip, defines
// variables, lists components with their option overrides and records
// dependencies between them:
//
//	[design]
//	name  = "demo"
//	units = "mm"
//
//	[variables]
//	cpw_width = "10um"
//
//	[[components]]
//	name = "Q1"
//	type = "qmetal.library.Rectangle"
//	[components.options]
//	width = "500um"
//
//	[[dependencies]]
//	parent = "Q1"
//	child  = "R1"
//
// [File.Apply] instantiates the components into a design in file order, so
// a component that reads another's pins must come after it.
package config

import (
	stderrors "errors"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/qmetal/pkg/component"
	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/options"
)

// File is a decoded design file.
type File struct {
	Design       DesignSection  `toml:"design"`
	Variables    map[string]any `toml:"variables"`
	Components   []Component    `toml:"components"`
	Dependencies []Dependency   `toml:"dependencies"`
}

// DesignSection holds design-level settings. Empty fields keep the design
// defaults.
type DesignSection struct {
	Name  string `toml:"name"`
	Units string `toml:"units"`
	Chip  string `toml:"chip"`
}

// Component declares one component instance.
type Component struct {
	Name    string         `toml:"name"`
	Type    string         `toml:"type"`
	Make    *bool          `toml:"make"`
	Options map[string]any `toml:"options"`
}

// ShouldMake reports whether the component is built on creation. It
// defaults to true.
func (c Component) ShouldMake() bool { return c.Make == nil || *c.Make }

// Dependency records that Child is derived from Parent.
type Dependency struct {
	Parent string `toml:"parent"`
	Child  string `toml:"child"`
}

// Factory creates the variant for a type key.
type Factory func(typeKey string) (component.Buildable, error)

// Load reads and parses the design file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", path)
	}
	return f, nil
}

// Parse decodes and validates a design file. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode design file")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks names and references without touching a design.
func (f *File) Validate() error {
	for _, name := range slices.Sorted(maps.Keys(f.Variables)) {
		if err := errors.ValidateVariableName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "variables")
		}
	}

	seen := make(map[string]bool, len(f.Components))
	for i, c := range f.Components {
		if err := errors.ValidateComponentName(c.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "components[%d]", i)
		}
		if seen[c.Name] {
			return errors.New(errors.ErrCodeInvalidConfig, "components[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true
		if c.Type == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "components[%d] (%s): type is required", i, c.Name)
		}
	}

	for i, dep := range f.Dependencies {
		for _, name := range []string{dep.Parent, dep.Child} {
			if !seen[name] {
				return errors.New(errors.ErrCodeInvalidConfig, "dependencies[%d]: unknown component %q", i, name)
			}
		}
		if dep.Parent == dep.Child {
			return errors.New(errors.ErrCodeInvalidConfig, "dependencies[%d]: %q depends on itself", i, dep.Parent)
		}
	}
	return nil
}

// DesignOptions returns the design constructor options the file sets.
func (f *File) DesignOptions() []design.Option {
	var opts []design.Option
	if f.Design.Name != "" {
		opts = append(opts, design.WithName(f.Design.Name))
	}
	if f.Design.Units != "" {
		opts = append(opts, design.WithUnits(f.Design.Units))
	}
	if f.Design.Chip != "" {
		opts = append(opts, design.WithChip(f.Design.Chip))
	}
	return opts
}

// Result reports what Apply created.
type Result struct {
	Components  []*component.Component
	BuildErrors []error
}

// Err joins the build errors, or returns nil when every build succeeded.
func (r *Result) Err() error { return stderrors.Join(r.BuildErrors...) }

// Apply sets the file's variables on d, creates its components in order
// and records its dependencies. A component whose build fails stays in the
// design and its error is collected in the result; any other failure stops
// Apply and is returned.
func (f *File) Apply(d *design.Design, factory Factory) (*Result, error) {
	for _, name := range slices.Sorted(maps.Keys(f.Variables)) {
		if err := d.SetVariable(name, f.Variables[name]); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for _, decl := range f.Components {
		variant, err := factory(decl.Type)
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeInvalidConfig
			}
			return res, errors.Wrap(code, err, "component %s", decl.Name)
		}
		opts := []component.Option{component.WithOptions(options.DeepCopy(decl.Options))}
		if !decl.ShouldMake() {
			opts = append(opts, component.WithoutMake())
		}

		c, err := component.New(d, decl.Name, variant, opts...)
		if c == nil {
			return res, err
		}
		res.Components = append(res.Components, c)
		if err != nil {
			res.BuildErrors = append(res.BuildErrors, err)
		}
	}

	for _, dep := range f.Dependencies {
		if err := d.AddDependency(dep.Parent, dep.Child); err != nil {
			return res, err
		}
	}

	d.Logger().Info("design loaded", "components", len(res.Components), "failed", len(res.BuildErrors))
	return res, nil
}
