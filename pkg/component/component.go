// Package component implements the lifecycle of a design component.
//
// A [Component] pairs a variant (anything implementing [Buildable]) with the
// per-instance state the design tracks: a stable id, a unique name, resolved
// options, a build status, pins and a free metadata bag. The variant only
// decides what geometry to emit; creating, registering, rebuilding and
// deleting are handled here.
//
// # Lifecycle
//
//	c, err := component.New(d, "pad", library.Rectangle{}, component.WithOptions(opts))
//	// registered, built, status "good" (or "failed" with err set)
//	c.Options["width"] = "2mm"
//	err = c.Rebuild() // purge this id's geometry, make again
//	err = c.Delete()  // purge geometry and pins, leave the design
//
// Options start from the type's template, resolved once per design from
// the type catalog and cached (see [TemplateOptions]), then caller values
// replace top-level keys.
package component

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/qmetal/pkg/design"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/observability"
	"github.com/matzehuels/qmetal/pkg/options"
)

// Buildable is a component variant. Make reads c's options (usually through
// c.ParseOptions) and emits geometry and pins through c.
type Buildable interface {
	TypeKey() string
	Make(c *Component) error
}

// Deleter is implemented by variants that hold resources outside the
// design tables. Delete runs before the component's geometry is purged.
type Deleter interface {
	Delete(c *Component) error
}

// Status is the build status of a component.
type Status string

// Build statuses.
const (
	StatusNotBuilt Status = "not built"
	StatusFailed   Status = "failed"
	StatusGood     Status = "good"
)

// Component is one instance of a variant in a design. It is not safe for
// concurrent mutation.
type Component struct {
	// Options are the instance's raw option values. Edit them and call
	// Rebuild to apply.
	Options options.Options
	// Metadata is free storage for analysis results and annotations.
	Metadata options.Options

	design  *design.Design
	variant Buildable
	id      int
	name    string
	status  Status
	made    bool
	pins    map[string]Pin
}

type config struct {
	overrides options.Options
	template  options.Options
	noMake    bool
}

// Option configures New.
type Option func(*config)

// WithOptions sets instance values that replace template keys.
func WithOptions(o options.Options) Option { return func(c *config) { c.overrides = o } }

// WithTemplate supplies the template used for the variant's type if the
// design has none yet. It is ignored once a template is cached.
func WithTemplate(o options.Options) Option { return func(c *config) { c.template = o } }

// WithoutMake registers the component without building it.
func WithoutMake() Option { return func(c *config) { c.noMake = true } }

// New creates a component named name in d and, unless WithoutMake is given,
// builds it. The component is registered (and visible by id) before any
// geometry exists. When the build fails, the registered component is
// returned together with the error.
func New(d *design.Design, name string, variant Buildable, opts ...Option) (*Component, error) {
	if !design.IsValid(d) {
		return nil, errors.New(errors.ErrCodeInvalidDesign, "component %q: design is not valid", name)
	}
	if variant == nil {
		return nil, errors.New(errors.ErrCodeInvalidType, "component %q: no variant", name)
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	c := &Component{
		Options:  TemplateOptions(d, variant.TypeKey(), cfg.template),
		Metadata: options.Options{},
		design:   d,
		variant:  variant,
		name:     name,
		status:   StatusNotBuilt,
		pins:     make(map[string]Pin),
	}
	c.Options.Update(cfg.overrides)

	id, err := d.Register(name, c)
	if err != nil {
		return nil, err
	}
	c.id = id

	if cfg.noMake {
		return c, nil
	}
	return c, c.Rebuild()
}

// Rebuild runs the build transition: status becomes failed, the geometry
// previously made for this id is purged, Make runs, and status becomes good
// on success. Geometry added before a failing Make returns is kept.
func (c *Component) Rebuild() error {
	hooks := observability.Build()
	key := c.variant.TypeKey()
	hooks.OnBuildStart(key, c.name, c.id)
	start := time.Now()

	c.status = StatusFailed
	if c.made {
		removed := c.design.Geometry().DeleteComponent(c.id)
		hooks.OnGeometryPurged(c.id, removed)
	}

	err := c.variant.Make(c)
	hooks.OnBuildComplete(key, c.name, c.id, time.Since(start), err)
	if err != nil {
		c.Logger().Error("build failed", "err", err)
		return errors.Wrap(errors.ErrCodeBuildFailed, err, "make %s (%s)", c.name, key)
	}

	c.made = true
	c.status = StatusGood
	c.Logger().Debug("built", "elapsed", time.Since(start))
	return nil
}

// Delete removes the component from its design: the variant's Deleter hook
// runs, then geometry and pins are purged and the id and name are released.
func (c *Component) Delete() error {
	if d, ok := c.variant.(Deleter); ok {
		if err := d.Delete(c); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "delete %s", c.name)
		}
	}
	removed := c.design.Geometry().DeleteComponent(c.id)
	observability.Build().OnGeometryPurged(c.id, removed)
	c.pins = make(map[string]Pin)
	c.made = false
	c.status = StatusNotBuilt
	if err := c.design.RemoveComponent(c.id); err != nil {
		return err
	}
	c.Logger().Debug("deleted", "rows", removed)
	return nil
}

// Rename rebinds the component to newName in its design.
func (c *Component) Rename(newName string) error {
	if err := c.design.RenameComponent(c.id, newName); err != nil {
		return err
	}
	c.name = newName
	return nil
}

// ParseValue parses v with the design's units and variables.
func (c *Component) ParseValue(v any) (any, error) { return c.design.ParseValue(v) }

// ParseOptions parses o, or the component's own options when o is nil.
func (c *Component) ParseOptions(o options.Options) (options.Options, error) {
	if o == nil {
		o = c.Options
	}
	return c.design.ParseOptions(o)
}

// AddDependency records in the design that child is derived from parent.
func (c *Component) AddDependency(parent, child string) error {
	return c.design.AddDependency(parent, child)
}

// ID returns the design-scoped id, or 0 before registration.
func (c *Component) ID() int { return c.id }

// Name returns the component's current name.
func (c *Component) Name() string { return c.name }

// TypeKey returns the variant's type key.
func (c *Component) TypeKey() string { return c.variant.TypeKey() }

// Variant returns the component's variant.
func (c *Component) Variant() Buildable { return c.variant }

// Design returns the design the component belongs to.
func (c *Component) Design() *design.Design { return c.design }

// Status returns the build status.
func (c *Component) Status() Status { return c.status }

// Made reports whether Make has completed successfully at least once since
// creation or the last Delete.
func (c *Component) Made() bool { return c.made }

// Logger returns the design logger tagged with the component name.
func (c *Component) Logger() *log.Logger {
	return c.design.Logger().With("component", c.name)
}

// String summarizes the component and its options.
func (c *Component) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "name:    %s\n", c.name)
	fmt.Fprintf(&b, "type:    %s\n", c.variant.TypeKey())
	fmt.Fprintf(&b, "id:      %d\n", c.id)
	fmt.Fprintf(&b, "status:  %s\n", c.status)
	b.WriteString("options:\n")
	writeOptions(&b, c.Options, "  ")
	return b.String()
}

func writeOptions(b *strings.Builder, o options.Options, indent string) {
	for _, k := range o.Keys() {
		if sub := o.Sub(k); sub != nil {
			fmt.Fprintf(b, "%s%s:\n", indent, k)
			writeOptions(b, sub, indent+"  ")
			continue
		}
		fmt.Fprintf(b, "%s%s: %v\n", indent, k, o[k])
	}
}

// Lookup returns the component registered under name in d.
func Lookup(d *design.Design, name string) (*Component, error) {
	m, ok := d.ComponentByName(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no component named %q", name)
	}
	c, ok := m.(*Component)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidType, "%q is a %T, not a component", name, m)
	}
	return c, nil
}

var _ design.Member = (*Component)(nil)
