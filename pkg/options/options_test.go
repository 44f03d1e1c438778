package options

import (
	"reflect"
	"testing"
)

func TestDeepCopyIsolatesNestedValues(t *testing.T) {
	src := Options{
		"width": "10um",
		"inner": Options{"gap": "6um"},
		"raw":   map[string]any{"layer": 1},
		"list":  []any{"a", Options{"b": "c"}},
	}

	dst := DeepCopy(src)
	dst.Sub("inner")["gap"] = "changed"
	dst.Sub("raw")["layer"] = 2
	dst["list"].([]any)[1].(Options)["b"] = "changed"

	if got := src.Sub("inner")["gap"]; got != "6um" {
		t.Errorf("src inner gap = %v, want 6um", got)
	}
	if got := src.Sub("raw")["layer"]; got != 1 {
		t.Errorf("src raw layer = %v, want 1", got)
	}
	if got := src["list"].([]any)[1].(Options)["b"]; got != "c" {
		t.Errorf("src list entry = %v, want c", got)
	}
}

func TestDeepCopyNil(t *testing.T) {
	got := DeepCopy(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("DeepCopy(nil) = %#v, want empty non-nil", got)
	}
}

func TestMergeLaterLayerWins(t *testing.T) {
	base := Options{"width": "1", "inner": Options{"a": "1", "b": "1"}}
	derived := Options{"inner": Options{"a": "2"}, "height": "3"}

	got := Merge(base, derived)
	want := Options{"width": "1", "height": "3", "inner": Options{"a": "2"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() = %#v, want %#v", got, want)
	}

	got.Sub("inner")["a"] = "x"
	if derived.Sub("inner")["a"] != "2" {
		t.Error("Merge result aliases an input layer")
	}
}

func TestUpdate(t *testing.T) {
	o := Options{"width": "1", "height": "2"}
	override := Options{"height": "5", "chip": "main"}
	o.Update(override)

	want := Options{"width": "1", "height": "5", "chip": "main"}
	if !reflect.DeepEqual(o, want) {
		t.Errorf("Update() = %#v, want %#v", o, want)
	}
}

func TestUpdateMergesNestedMappings(t *testing.T) {
	o := Options{
		"inner": Options{"width": "250um", "height": "100um"},
		"pins":  map[string]any{"start": Options{"component": "a", "pin": "x"}},
		"layer": "1",
	}
	o.Update(Options{
		"inner": map[string]any{"width": "200um"},
		"pins":  Options{"start": Options{"pin": "y"}},
		"layer": Options{"n": "2"},
	})

	want := Options{
		"inner": Options{"width": "200um", "height": "100um"},
		"pins":  map[string]any{"start": Options{"component": "a", "pin": "y"}},
		"layer": Options{"n": "2"},
	}
	if !reflect.DeepEqual(o, want) {
		t.Errorf("Update() = %#v, want %#v", o, want)
	}
}

func TestTypedAccessors(t *testing.T) {
	o := Options{
		"f":     0.5,
		"i":     3,
		"s":     "2.5",
		"bad":   "10um",
		"flag":  "True",
		"on":    true,
		"chip":  "main",
		"inner": map[string]any{"x": 1.0},
	}

	tests := []struct {
		name string
		got  func() (any, error)
		want any
	}{
		{"float", func() (any, error) { return o.Float("f") }, 0.5},
		{"int as float", func() (any, error) { return o.Float("i") }, 3.0},
		{"numeric string", func() (any, error) { return o.Float("s") }, 2.5},
		{"int", func() (any, error) { return o.Int("i") }, 3},
		{"int from float", func() (any, error) { return o.Int("f") }, 0},
		{"bool string", func() (any, error) { return o.Bool("flag") }, true},
		{"bool", func() (any, error) { return o.Bool("on") }, true},
		{"missing bool", func() (any, error) { return o.Bool("nope") }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := o.Float("bad"); err == nil {
		t.Error("Float(unparsed unit string) should fail")
	}
	if _, err := o.Float("missing"); err == nil {
		t.Error("Float(missing) should fail")
	}
	if s, ok := o.String("chip"); !ok || s != "main" {
		t.Errorf("String(chip) = %q, %v", s, ok)
	}
	if s, _ := o.String("i"); s != "3" {
		t.Errorf("String(i) = %q, want 3", s)
	}
	if o.Sub("inner") == nil {
		t.Error("Sub(inner) should accept map[string]any")
	}
	if o.Sub("chip") != nil {
		t.Error("Sub(chip) should be nil for a string value")
	}
}

func TestKeysSorted(t *testing.T) {
	o := Options{"b": 1, "a": 2, "c": 3}
	if got := o.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("Keys() = %v", got)
	}
}
