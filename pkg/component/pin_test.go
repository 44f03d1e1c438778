package component

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
	"pgregory.net/rapid"

	"github.com/matzehuels/qmetal/pkg/errors"
)

func TestMakePin(t *testing.T) {
	p, err := MakePin([]r2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}}, "Q1", false, "main")
	require.NoError(t, err)

	require.InDelta(t, 2.0, p.Width, 1e-12)
	require.Equal(t, r2.Vec{X: 1, Y: 0}, p.Tangent)
	require.Equal(t, r2.Vec{X: 1, Y: 0}, p.Middle)
	require.InDelta(t, 0.0, r2.Dot(p.Normal, p.Tangent), 1e-12)
	require.InDelta(t, 1.0, r2.Norm(p.Normal), 1e-12)
	require.InDelta(t, 1.0, p.Normal.Y, 1e-12)
	require.Equal(t, "Q1", p.Parent)
	require.Equal(t, "main", p.Chip)
	require.Zero(t, p.NetID)

	flipped, err := MakePin([]r2.Vec{{X: 0, Y: 0}, {X: 2, Y: 0}}, "Q1", true, "main")
	require.NoError(t, err)
	require.InDelta(t, -1.0, flipped.Normal.Y, 1e-12)
}

func TestMakePinRejects(t *testing.T) {
	tests := []struct {
		name   string
		points []r2.Vec
	}{
		{"none", nil},
		{"one", []r2.Vec{{X: 1}}},
		{"three", []r2.Vec{{}, {X: 1}, {X: 2}}},
		{"coincident", []r2.Vec{{X: 1, Y: 1}, {X: 1, Y: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MakePin(tt.points, "", false, "main")
			require.True(t, errors.Is(err, errors.ErrCodeInvalidPin), "err = %v", err)
		})
	}
}

func TestMakePinProperties(t *testing.T) {
	coord := rapid.Float64Range(-1e3, 1e3)
	rapid.Check(t, func(rt *rapid.T) {
		a := r2.Vec{X: coord.Draw(rt, "ax"), Y: coord.Draw(rt, "ay")}
		b := r2.Vec{X: coord.Draw(rt, "bx"), Y: coord.Draw(rt, "by")}
		if r2.Norm(r2.Sub(b, a)) < 1e-6 {
			rt.Skip("points too close")
		}
		flip := rapid.Bool().Draw(rt, "flip")

		p, err := MakePin([]r2.Vec{a, b}, "", flip, "main")
		if err != nil {
			rt.Fatal(err)
		}
		if d := math.Abs(r2.Dot(p.Normal, p.Tangent)); d > 1e-9 {
			rt.Fatalf("normal not orthogonal to tangent: dot=%v", d)
		}
		if n := r2.Norm(p.Normal); math.Abs(n-1) > 1e-9 {
			rt.Fatalf("|normal| = %v", n)
		}
		// Counter-clockwise quarter turn has cross(tangent, normal) = +1.
		want := 1.0
		if flip {
			want = -1
		}
		if c := r2.Cross(p.Tangent, p.Normal); math.Abs(c-want) > 1e-9 {
			rt.Fatalf("cross(tangent, normal) = %v, want %v", c, want)
		}
		if math.Abs(p.Width-r2.Norm(r2.Sub(b, a))) > 1e-9 {
			rt.Fatalf("width = %v", p.Width)
		}
	})
}

func TestAddPinAndLookup(t *testing.T) {
	f := newFixture(t)
	c, err := New(f.d, "P1", &pad{})
	require.NoError(t, err)

	require.Equal(t, []string{"right"}, c.PinNames())
	right, err := c.Pin("right")
	require.NoError(t, err)
	require.InDelta(t, 1.0, right.Normal.X, 1e-12, "WithFlip turns the normal outward")

	require.NoError(t, c.AddPin("left", []r2.Vec{{X: 0, Y: 1}, {X: 0, Y: 0}}, "P1", OnChip("flip_chip")))
	left, _ := c.Pin("left")
	require.Equal(t, "flip_chip", left.Chip)

	require.NoError(t, c.AddPin("left", []r2.Vec{{X: 0, Y: 0}, {X: 0, Y: 3}}, "P1"))
	left, _ = c.Pin("left")
	require.InDelta(t, 3.0, left.Width, 1e-12, "last write wins")
	require.Equal(t, "main", left.Chip)

	err = c.AddPin("bad", []r2.Vec{{}}, "P1")
	require.True(t, errors.Is(err, errors.ErrCodeInvalidPin))

	_, err = c.Pin("nope")
	require.True(t, errors.Is(err, errors.ErrCodeMissingPin))

	pins := c.Pins()
	delete(pins, "left")
	require.Len(t, c.Pins(), 2)
}
