// Package design provides the container every component lives in.
//
// A [Design] owns the per-design state that components share: the id
// counter and component registry, the name index, the per-type template
// cache, the value parser with its variables and default units, the
// dependency graph, the logger and the geometry table service. Components
// receive the design at construction and reach all of it through this
// package's methods; nothing is stored at package level.
//
// # Identifiers
//
// Component ids are allocated by [Design.Register], start at 1, increase
// strictly and are never reused while the design lives, even after removal.
// Names are unique within a design and can be rebound with
// [Design.RenameComponent].
//
// # Concurrency
//
// Registry state is guarded by a mutex so components may be created from
// several goroutines against one design. Building a single component is
// not safe for concurrent use.
package design

import (
	stderrors "errors"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/qmetal/pkg/dag"
	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/options"
	"github.com/matzehuels/qmetal/pkg/parse"
	"github.com/matzehuels/qmetal/pkg/qgeometry"
)

// Defaults applied by New.
const (
	DefaultName = "design"
	DefaultChip = "main"
)

// Member is what the design needs from a registered component.
type Member interface {
	ID() int
	Name() string
	TypeKey() string
	Rebuild() error
	Delete() error
}

// Design is the per-design registry. Use New; the zero value is not valid.
type Design struct {
	id     uuid.UUID
	name   string
	chip   string
	logger *log.Logger
	types  *options.Registry
	parser *parse.Parser
	geom   qgeometry.Service

	mu         sync.Mutex
	lastID     int
	components map[int]Member
	names      map[string]int
	templates  map[string]options.Options
	deps       *dag.DAG
}

type config struct {
	name   string
	units  string
	chip   string
	logger *log.Logger
	types  *options.Registry
	geom   qgeometry.Service
}

// Option configures New.
type Option func(*config)

// WithName sets the design name.
func WithName(name string) Option { return func(c *config) { c.name = name } }

// WithUnits sets the default units parsed lengths are expressed in.
func WithUnits(units string) Option { return func(c *config) { c.units = units } }

// WithChip sets the chip elements and pins default to.
func WithChip(chip string) Option { return func(c *config) { c.chip = chip } }

// WithLogger sets the logger components log through.
func WithLogger(l *log.Logger) Option { return func(c *config) { c.logger = l } }

// WithTypes sets the component type catalog templates are resolved from.
func WithTypes(r *options.Registry) Option { return func(c *config) { c.types = r } }

// WithGeometry replaces the geometry table service.
func WithGeometry(s qgeometry.Service) Option { return func(c *config) { c.geom = s } }

// New creates an empty design. Unknown units are rejected with PARSE_ERROR.
func New(opts ...Option) (*Design, error) {
	cfg := config{name: DefaultName, units: parse.DefaultUnits, chip: DefaultChip}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = NewLogger(os.Stderr, log.InfoLevel)
	}
	if cfg.types == nil {
		cfg.types = options.NewRegistry()
	}
	if cfg.geom == nil {
		cfg.geom = qgeometry.NewTables(cfg.logger)
	}

	p, err := parse.New(cfg.units)
	if err != nil {
		return nil, err
	}

	d := &Design{
		id:         uuid.New(),
		name:       cfg.name,
		chip:       cfg.chip,
		logger:     cfg.logger.With("design", cfg.name),
		types:      cfg.types,
		parser:     p,
		geom:       cfg.geom,
		components: make(map[int]Member),
		names:      make(map[string]int),
		templates:  make(map[string]options.Options),
		deps:       dag.New(dag.Metadata{"design": cfg.name}),
	}
	d.logger.Debug("design created", "id", d.id, "units", cfg.units)
	return d, nil
}

// NewLogger returns a logger writing to w in the format used across qmetal:
// timestamps as "HH:MM:SS.ms" followed by the message and its key/value
// pairs. New uses it on stderr at info level when no logger is given.
func NewLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// IsValid reports whether d is a design created by New.
func IsValid(d *Design) bool {
	return d != nil && d.parser != nil && d.geom != nil && d.components != nil
}

// ID returns the design's instance identifier.
func (d *Design) ID() uuid.UUID { return d.id }

// Name returns the design name.
func (d *Design) Name() string { return d.name }

// Chip returns the default chip name.
func (d *Design) Chip() string { return d.chip }

// Logger returns the design logger.
func (d *Design) Logger() *log.Logger { return d.logger }

// Geometry returns the geometry table service.
func (d *Design) Geometry() qgeometry.Service { return d.geom }

// Types returns the component type catalog.
func (d *Design) Types() *options.Registry { return d.types }

// Register allocates the next id and records m under name in one step.
// The name must be valid and unused; on failure no id is consumed.
func (d *Design) Register(name string, m Member) (int, error) {
	if err := errors.ValidateComponentName(name); err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if owner, taken := d.names[name]; taken {
		return 0, errors.New(errors.ErrCodeDuplicateName, "component name %q already used by id %d", name, owner)
	}
	if err := d.deps.EnsureNode(name); err != nil {
		return 0, errors.Wrap(errors.ErrCodeInternal, err, "add dependency node %q", name)
	}
	d.lastID++
	id := d.lastID
	d.components[id] = m
	d.names[name] = id

	d.logger.Debug("component registered", "name", name, "id", id)
	return id, nil
}

// Component returns the member registered under id.
func (d *Design) Component(id int) (Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m, ok := d.components[id]
	return m, ok
}

// ComponentByName returns the member registered under name.
func (d *Design) ComponentByName(name string) (Member, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.names[name]
	if !ok {
		return nil, false
	}
	return d.components[id], true
}

// ComponentID returns the id registered under name.
func (d *Design) ComponentID(name string) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id, ok := d.names[name]
	return id, ok
}

// Components returns all members ordered by id.
func (d *Design) Components() []Member {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Member, 0, len(d.components))
	for _, id := range slices.Sorted(maps.Keys(d.components)) {
		out = append(out, d.components[id])
	}
	return out
}

// Len returns the number of registered components.
func (d *Design) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.components)
}

// LastID returns the most recently allocated id, or 0 if none was.
func (d *Design) LastID() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastID
}

// RemoveComponent forgets the component with the given id: its name is
// released and its dependency node and edges are dropped. The id is not
// reused. Geometry is the caller's to purge.
func (d *Design) RemoveComponent(id int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.components[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "no component with id %d", id)
	}
	delete(d.components, id)
	for name, owner := range d.names {
		if owner == id {
			delete(d.names, name)
			d.deps.RemoveNode(name)
		}
	}
	d.logger.Debug("component removed", "id", id)
	return nil
}

// RenameComponent rebinds the component with the given id to newName,
// keeping the name index and dependency graph consistent.
func (d *Design) RenameComponent(id int, newName string) error {
	if err := errors.ValidateComponentName(newName); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.components[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "no component with id %d", id)
	}
	if owner, taken := d.names[newName]; taken {
		if owner == id {
			return nil
		}
		return errors.New(errors.ErrCodeDuplicateName, "component name %q already used by id %d", newName, owner)
	}

	var oldName string
	for name, owner := range d.names {
		if owner == id {
			oldName = name
			break
		}
	}
	if err := d.deps.RenameNode(oldName, newName); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rename dependency node %q", oldName)
	}
	delete(d.names, oldName)
	d.names[newName] = id
	d.logger.Debug("component renamed", "id", id, "from", oldName, "to", newName)
	return nil
}

// Template returns a copy of the stored template for typeKey.
func (d *Design) Template(typeKey string) (options.Options, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.templates[typeKey]
	if !ok {
		return nil, false
	}
	return options.DeepCopy(t), true
}

// SetTemplateIfAbsent stores a copy of opts as the template for typeKey
// unless one is already stored. It reports whether opts was stored.
func (d *Design) SetTemplateIfAbsent(typeKey string, opts options.Options) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.templates[typeKey]; ok {
		return false
	}
	d.templates[typeKey] = options.DeepCopy(opts)
	return true
}

// Templates returns the type keys that have a stored template, sorted.
func (d *Design) Templates() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Sorted(maps.Keys(d.templates))
}

// ParseValue parses a single option value with the design's variables and
// units.
func (d *Design) ParseValue(v any) (any, error) { return d.parser.Value(v) }

// ParseOptions parses every value of o, keeping its structure.
func (d *Design) ParseOptions(o options.Options) (options.Options, error) {
	return d.parser.Options(o)
}

// SetVariable defines or replaces a design variable.
func (d *Design) SetVariable(name string, value any) error {
	return d.parser.SetVariable(name, value)
}

// DeleteVariable removes a design variable.
func (d *Design) DeleteVariable(name string) { d.parser.DeleteVariable(name) }

// Variables returns a copy of the design variables.
func (d *Design) Variables() options.Options { return d.parser.Variables() }

// Units returns the default units.
func (d *Design) Units() string { return d.parser.Units() }

// SetUnits changes the default units. Existing geometry is not rescaled.
func (d *Design) SetUnits(units string) error { return d.parser.SetUnits(units) }

// AddDependency records that child is derived from parent. Both names must
// be registered. An edge that would close a cycle is rejected with
// DEPENDENCY_CYCLE and not kept.
func (d *Design) AddDependency(parent, child string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, name := range []string{parent, child} {
		if _, ok := d.names[name]; !ok {
			return errors.New(errors.ErrCodeNotFound, "no component named %q", name)
		}
	}
	if parent == child {
		return errors.New(errors.ErrCodeDependencyCycle, "component %q cannot depend on itself", parent)
	}
	if d.deps.HasEdge(parent, child) {
		return nil
	}
	if err := d.deps.AddEdge(dag.Edge{From: parent, To: child}); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "add dependency %s -> %s", parent, child)
	}
	if err := d.deps.Validate(); err != nil {
		d.deps.RemoveEdge(parent, child)
		return errors.Wrap(errors.ErrCodeDependencyCycle, err, "dependency %s -> %s", parent, child)
	}
	d.logger.Debug("dependency added", "parent", parent, "child", child)
	return nil
}

// Dependencies returns a snapshot of the dependency graph. Node IDs are
// component names; each node carries its component id and type as
// metadata.
func (d *Design) Dependencies() *dag.DAG {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := dag.New(dag.Metadata{"design": d.name})
	for _, n := range d.deps.Nodes() {
		meta := dag.Metadata{}
		if id, ok := d.names[n.ID]; ok {
			meta["id"] = id
			meta["type"] = d.components[id].TypeKey()
		}
		_ = g.AddNode(dag.Node{ID: n.ID, Meta: meta})
	}
	for _, e := range d.deps.Edges() {
		_ = g.AddEdge(dag.Edge{From: e.From, To: e.To})
	}
	return g
}

// Dependents returns the names of every component derived, directly or
// transitively, from name.
func (d *Design) Dependents(name string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deps.Descendants(name)
}

// RebuildAll rebuilds every component, parents before the components that
// depend on them. A failing component does not stop the others; all
// failures are returned joined.
func (d *Design) RebuildAll() error {
	d.mu.Lock()
	order, err := d.deps.TopoSort()
	if err != nil {
		d.mu.Unlock()
		return errors.Wrap(errors.ErrCodeDependencyCycle, err, "order components")
	}
	members := make([]Member, 0, len(order))
	for _, name := range order {
		if id, ok := d.names[name]; ok {
			members = append(members, d.components[id])
		}
	}
	d.mu.Unlock()

	var errs []error
	for _, m := range members {
		if err := m.Rebuild(); err != nil {
			d.logger.Error("rebuild failed", "component", m.Name(), "err", err)
			errs = append(errs, err)
		}
	}
	d.logger.Info("design rebuilt", "components", len(members), "failed", len(errs))
	return stderrors.Join(errs...)
}

// DeleteAll deletes every component, most recently created first.
func (d *Design) DeleteAll() error {
	members := d.Components()
	slices.Reverse(members)

	var errs []error
	for _, m := range members {
		if err := m.Delete(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
