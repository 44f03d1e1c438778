package options

import (
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/matzehuels/qmetal/pkg/errors"
)

func chainRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	reg.MustRegister(
		Type{Key: "lib.Base", Root: true, Defaults: Options{"pos_x": "ignored"}},
		Type{Key: "lib.Shape", Parent: "lib.Base", Defaults: Options{"chip": "main", "layer": "1", "width": "1um"}},
		Type{Key: "lib.Marker", Parent: "lib.Shape"},
		Type{Key: "lib.Rect", Parent: "lib.Marker", Defaults: Options{"width": "500um", "height": "300um"}},
	)
	return reg
}

func TestAncestryBaseFirst(t *testing.T) {
	reg := chainRegistry(t)

	got, err := reg.Ancestry("lib.Rect")
	if err != nil {
		t.Fatalf("Ancestry() error: %v", err)
	}
	want := []string{"lib.Base", "lib.Shape", "lib.Marker", "lib.Rect"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Ancestry() = %v, want %v", got, want)
	}
}

func TestResolveDerivedWins(t *testing.T) {
	reg := chainRegistry(t)

	got, err := reg.Resolve("lib.Rect")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	want := Options{"chip": "main", "layer": "1", "width": "500um", "height": "300um"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resolve() = %#v, want %#v", got, want)
	}
	if _, ok := got["pos_x"]; ok {
		t.Error("root type defaults must not contribute")
	}
}

func TestResolveReturnsCopy(t *testing.T) {
	reg := chainRegistry(t)

	first, _ := reg.Resolve("lib.Rect")
	first["width"] = "mutated"

	second, _ := reg.Resolve("lib.Rect")
	if second["width"] != "500um" {
		t.Errorf("Resolve() width = %v after mutating a previous result", second["width"])
	}
}

func TestRegisterCopiesDefaults(t *testing.T) {
	reg := NewRegistry()
	defaults := Options{"width": "1um"}
	reg.MustRegister(Type{Key: "lib.A", Defaults: defaults})
	defaults["width"] = "mutated"

	got, _ := reg.Resolve("lib.A")
	if got["width"] != "1um" {
		t.Errorf("width = %v, want 1um", got["width"])
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister(
		Type{Key: "lib.Orphan", Parent: "lib.Missing"},
		Type{Key: "lib.A", Parent: "lib.B"},
		Type{Key: "lib.B", Parent: "lib.A"},
	)

	tests := []struct {
		name string
		err  error
		code errors.Code
	}{
		{"duplicate", reg.Register(Type{Key: "lib.A"}), errors.ErrCodeInvalidType},
		{"bad key", reg.Register(Type{Key: "lib..bad"}), errors.ErrCodeInvalidType},
		{"unknown", func() error { _, err := reg.Resolve("lib.Nope"); return err }(), errors.ErrCodeUnknownType},
		{"dangling parent", func() error { _, err := reg.Resolve("lib.Orphan"); return err }(), errors.ErrCodeUnknownType},
		{"cycle", func() error { _, err := reg.Ancestry("lib.A"); return err }(), errors.ErrCodeInvalidType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.code) {
				t.Errorf("error = %v, want code %v", tt.err, tt.code)
			}
		})
	}
}

func TestKeys(t *testing.T) {
	reg := chainRegistry(t)
	want := []string{"lib.Base", "lib.Marker", "lib.Rect", "lib.Shape"}
	if got := reg.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
}

// For any linear chain, Resolve equals applying every non-root level's
// defaults in base-to-derived order.
func TestResolveIsBaseToDerivedFold(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		depth := rapid.IntRange(1, 6).Draw(rt, "depth")
		keyGen := rapid.SampledFrom([]string{"width", "height", "gap", "chip", "layer"})

		reg := NewRegistry()
		want := Options{}
		parent := ""
		for i := 0; i < depth; i++ {
			key := fmt.Sprintf("lib.T%d", i)
			root := i == 0 && rapid.Bool().Draw(rt, "root")
			defaults := Options{}
			for _, k := range rapid.SliceOfN(keyGen, 0, 4).Draw(rt, "keys") {
				defaults[k] = fmt.Sprintf("%s@%d", k, i)
			}
			if err := reg.Register(Type{Key: key, Parent: parent, Root: root, Defaults: defaults}); err != nil {
				rt.Fatalf("Register: %v", err)
			}
			if !root {
				for k, v := range defaults {
					want[k] = v
				}
			}
			parent = key
		}

		got, err := reg.Resolve(parent)
		if err != nil {
			rt.Fatalf("Resolve: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			rt.Fatalf("Resolve() = %v, want %v", got, want)
		}
	})
}
