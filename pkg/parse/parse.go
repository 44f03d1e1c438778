// Package parse interprets component option values.
//
// Options are stored as strings such as "10um", "-2 * 1e5 nm" or "cpw_width"
// and only become numbers when a component builds. A [Parser] converts them:
//
//   - Numbers, optionally followed by a length unit (nm, um, mm, cm, m, ...),
//     converted to the parser's default unit
//   - Design variables, referenced by identifier and parsed recursively
//   - Arithmetic with + - * / and parentheses over the above
//   - "true"/"false" (any case) as booleans
//   - Mappings and sequences, parsed element by element with structure kept
//
// Strings that are none of the above (a chip name, free text) are returned
// unchanged. Arithmetic is carried out in decimal so unit conversions such as
// 1e5 nm → 0.1 mm are exact before the final float64 conversion.
//
// Parsed strings are memoized; changing a variable or the default unit
// flushes the memo before the change becomes visible to readers.
package parse

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/matzehuels/qmetal/pkg/errors"
	"github.com/matzehuels/qmetal/pkg/options"
)

// DefaultUnits is the unit parsed lengths are expressed in unless configured.
const DefaultUnits = "mm"

// maxDepth bounds variable indirection so self-referencing variables fail
// instead of recursing forever.
const maxDepth = 32

// unitScale maps unit suffixes to their size in meters.
var unitScale = map[string]decimal.Decimal{
	"pm":  decimal.New(1, -12),
	"nm":  decimal.New(1, -9),
	"um":  decimal.New(1, -6),
	"mm":  decimal.New(1, -3),
	"cm":  decimal.New(1, -2),
	"m":   decimal.New(1, 0),
	"km":  decimal.New(1, 3),
	"mil": decimal.New(254, -7),
	"in":  decimal.New(254, -4),
}

// Units returns the supported unit suffixes in sorted order.
func Units() []string {
	return slices.Sorted(maps.Keys(unitScale))
}

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Parser converts option values using a default unit and a variable table.
// It is safe for concurrent use.
type Parser struct {
	mu    sync.RWMutex
	units string
	vars  map[string]any
	memo  *cache.Cache
}

// New creates a parser that expresses lengths in units.
// An empty units string selects [DefaultUnits].
func New(units string) (*Parser, error) {
	if units == "" {
		units = DefaultUnits
	}
	if _, ok := unitScale[units]; !ok {
		return nil, errors.New(errors.ErrCodeParse, "unsupported unit %q (supported: %s)", units, strings.Join(Units(), ", "))
	}
	return &Parser{
		units: units,
		vars:  make(map[string]any),
		memo:  cache.New(cache.NoExpiration, 0),
	}, nil
}

// Units returns the parser's default unit.
func (p *Parser) Units() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.units
}

// SetUnits changes the default unit and flushes memoized results.
func (p *Parser) SetUnits(units string) error {
	if _, ok := unitScale[units]; !ok {
		return errors.New(errors.ErrCodeParse, "unsupported unit %q", units)
	}
	p.mu.Lock()
	p.units = units
	p.memo.Flush()
	p.mu.Unlock()
	return nil
}

// SetVariable defines or replaces a variable. Values are stored raw (for
// example "10um") and parsed each time they are referenced.
func (p *Parser) SetVariable(name string, value any) error {
	if err := errors.ValidateVariableName(name); err != nil {
		return err
	}
	p.mu.Lock()
	p.vars[name] = value
	p.memo.Flush()
	p.mu.Unlock()
	return nil
}

// DeleteVariable removes a variable if present.
func (p *Parser) DeleteVariable(name string) {
	p.mu.Lock()
	delete(p.vars, name)
	p.memo.Flush()
	p.mu.Unlock()
}

// Variables returns a copy of the raw variable table.
func (p *Parser) Variables() options.Options {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return options.DeepCopy(p.vars)
}

// Value parses a single value. See the package documentation for the
// accepted forms. Errors are reserved for inputs that look numeric but
// cannot be evaluated, such as division by zero or runaway variable nesting.
func (p *Parser) Value(v any) (any, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.value(v, 0)
}

// Options parses every value of o and returns a new mapping; o is not
// modified. A nil input yields an empty mapping.
func (p *Parser) Options(o options.Options) (options.Options, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapping(o, 0)
}

func (p *Parser) value(v any, depth int) (any, error) {
	if depth > maxDepth {
		return nil, errors.New(errors.ErrCodeParse, "variable nesting deeper than %d", maxDepth)
	}
	switch t := v.(type) {
	case string:
		if depth == 0 {
			return p.memoString(t)
		}
		return p.parseString(t, depth)
	case options.Options:
		return p.mapping(t, depth)
	case map[string]any:
		return p.mapping(t, depth)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			parsed, err := p.value(e, depth)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = parsed
		}
		return out, nil
	case []string:
		out := make([]any, len(t))
		for i, e := range t {
			parsed, err := p.value(e, depth)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = parsed
		}
		return out, nil
	default:
		return v, nil
	}
}

func (p *Parser) mapping(o options.Options, depth int) (options.Options, error) {
	out := make(options.Options, len(o))
	for k, v := range o {
		parsed, err := p.value(v, depth)
		if err != nil {
			return nil, fmt.Errorf("option %q: %w", k, err)
		}
		out[k] = parsed
	}
	return out, nil
}

func (p *Parser) memoString(s string) (any, error) {
	if v, ok := p.memo.Get(s); ok {
		return v, nil
	}
	v, err := p.parseString(s, 0)
	if err != nil {
		return nil, err
	}
	p.memo.Set(s, v, cache.NoExpiration)
	return v, nil
}

func (p *Parser) parseString(s string, depth int) (any, error) {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "":
		return s, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}

	if identifierRe.MatchString(t) {
		if raw, ok := p.vars[t]; ok {
			return p.value(raw, depth+1)
		}
		return s, nil
	}

	d, err := p.eval(t, depth)
	if err != nil {
		if isPassthrough(err) {
			return s, nil
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "parse %q", s)
	}
	return d.InexactFloat64(), nil
}

// convert expresses d, measured in unit, in the parser's default unit.
func (p *Parser) convert(d decimal.Decimal, unit string) decimal.Decimal {
	if unit == p.units {
		return d
	}
	return d.Mul(unitScale[unit]).Div(unitScale[p.units])
}
