// Package options holds component option mappings and resolves per-type
// option templates.
//
// An [Options] value is a string-keyed mapping whose values are strings (such
// as "10um" or "cpw_width"), nested mappings, sequences or plain Go scalars.
// Option strings stay unparsed until a component's make step hands them to a
// parser; this package only copies, merges and reads them.
//
// # Templates
//
// Every component type owns a set of default options. A [Registry] stores each
// type's own defaults together with a parent link, and [Registry.Resolve]
// folds the defaults over the ancestry chain from the most-base type to the
// type itself, so a derived type always overrides its ancestors:
//
//	reg := options.NewRegistry()
//	_ = reg.Register(options.Type{Key: "lib.Base", Root: true})
//	_ = reg.Register(options.Type{Key: "lib.Rect", Parent: "lib.Base",
//	    Defaults: options.Options{"width": "500um", "height": "300um"}})
//	_ = reg.Register(options.Type{Key: "lib.Square", Parent: "lib.Rect",
//	    Defaults: options.Options{"height": "500um"}})
//
//	opts, _ := reg.Resolve("lib.Square")
//	// opts == {"width": "500um", "height": "500um"}
package options

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Options is a mapping of option names to raw or parsed option values.
// Nested mappings are themselves Options (or map[string]any, which every
// function in this package treats identically).
type Options map[string]any

// DeepCopy returns a copy of o that shares no mutable state with it.
// Nested mappings are returned as Options and sequences as fresh slices.
// A nil input yields an empty, non-nil mapping.
func DeepCopy(o Options) Options {
	out := make(Options, len(o))
	for k, v := range o {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case Options:
		return DeepCopy(t)
	case map[string]any:
		return DeepCopy(Options(t))
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = copyValue(e)
		}
		return s
	case []string:
		return slices.Clone(t)
	case []float64:
		return slices.Clone(t)
	case []int:
		return slices.Clone(t)
	default:
		return v
	}
}

// Merge returns a new mapping containing every layer applied in order.
// Later layers replace earlier keys wholesale; nested mappings are not merged
// recursively. The result is a deep copy and never aliases a layer.
func Merge(layers ...Options) Options {
	out := Options{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = copyValue(v)
		}
	}
	return out
}

// Update applies override to o in place. When both sides hold a mapping
// under the same key the mappings are merged recursively, so an override of
// one nested key keeps its siblings; any other value replaces the key with a
// deep copy. Merge, by contrast, replaces nested mappings whole.
func (o Options) Update(override Options) {
	for k, v := range override {
		if dst := o.Sub(k); dst != nil {
			if src := override.Sub(k); src != nil {
				dst.Update(src)
				continue
			}
		}
		o[k] = copyValue(v)
	}
}

// Keys returns the top-level keys in sorted order.
func (o Options) Keys() []string {
	return slices.Sorted(maps.Keys(o))
}

// Sub returns the nested mapping stored under key, or nil if the key is
// absent or not a mapping.
func (o Options) Sub(key string) Options {
	switch t := o[key].(type) {
	case Options:
		return t
	case map[string]any:
		return Options(t)
	}
	return nil
}

// String returns the value under key formatted as a string.
// The second result is false when the key is absent.
func (o Options) String(key string) (string, bool) {
	v, ok := o[key]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprint(v), true
}

// Float returns the numeric value under key. Values must already be parsed;
// a raw option string such as "10um" is an error here.
func (o Options) Float(key string) (float64, error) {
	v, ok := o[key]
	if !ok {
		return 0, fmt.Errorf("option %q not set", key)
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("option %q: %q is not a number", key, t)
		}
		return f, nil
	}
	return 0, fmt.Errorf("option %q: unexpected %T", key, v)
}

// Int returns the value under key as an int, truncating floats.
func (o Options) Int(key string) (int, error) {
	if v, ok := o[key].(int); ok {
		return v, nil
	}
	f, err := o.Float(key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Bool returns the boolean value under key. Strings accepted by
// strconv.ParseBool (and "True"/"False") are converted; a missing key is false.
func (o Options) Bool(key string) (bool, error) {
	v, ok := o[key]
	if !ok {
		return false, nil
	}
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		if err != nil {
			return false, fmt.Errorf("option %q: %q is not a boolean", key, t)
		}
		return b, nil
	}
	return false, fmt.Errorf("option %q: unexpected %T", key, v)
}
