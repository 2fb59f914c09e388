package l1paths

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestHorner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		p    Polynomial
		s    float64
		want float64
	}{
		{"empty", Polynomial{}, 3, 0},
		{"constant", Polynomial{4}, 10, 4},
		{"linear", Polynomial{2, 1}, 3, 7},
		{"quadratic", Polynomial{1, -2, 1}, 3, 4},
		{"cubic", Polynomial{0.5, 0, -1, 2}, 2, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Horner(tt.p, tt.s), 1e-12)
		})
	}
}

func TestHorner_NaNPropagates(t *testing.T) {
	t.Parallel()
	assert.True(t, math.IsNaN(Horner(Polynomial{1, 0}, math.NaN())))
}

func TestDerivative(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Polynomial{3, -4, 1}, Derivative(Polynomial{1, -2, 1, 7}))
	assert.Equal(t, Polynomial{0}, Derivative(Polynomial{5}))
	assert.Equal(t, Polynomial{0}, Derivative(nil))
}

func TestDerivative_MatchesFiniteDifference(t *testing.T) {
	t.Parallel()

	p := Polynomial{0.02, -0.3, 1.5, 4}
	d := Derivative(p)
	const h = 1e-6
	for _, s := range []float64{0, 1.5, 7, 12} {
		fd := (p.Eval(s+h) - p.Eval(s-h)) / (2 * h)
		assert.InDelta(t, fd, d.Eval(s), 1e-6, "s=%v", s)
	}
}

func TestPath_EvaluateInsideDomain(t *testing.T) {
	t.Parallel()

	// Parabola y = 0.1 s², x = s.
	p := NewPath(Polynomial{1, 0}, Polynomial{0.1, 0, 0}, 10)
	pt := p.Evaluate(2)

	assert.InDelta(t, 2.0, pt.Position.X, 1e-12)
	assert.InDelta(t, 0.4, pt.Position.Y, 1e-12)
	assert.InDelta(t, 1.0, pt.Tangent.X, 1e-12)
	assert.InDelta(t, 0.4, pt.Tangent.Y, 1e-12)
	assert.InDelta(t, 0.0, pt.Curvature.X, 1e-12)
	assert.InDelta(t, 0.2, pt.Curvature.Y, 1e-12)
	assert.False(t, pt.Extrapolated)
}

func TestPath_EvaluatePastEndIsLinear(t *testing.T) {
	t.Parallel()

	p := NewPath(Polynomial{1, 0}, Polynomial{0.1, 0, 0}, 10)
	end := p.Evaluate(10)
	past := p.Evaluate(15)

	// The polynomial would give y(15) = 22.5; the straight continuation
	// from (10, 10) with tangent (1, 2) gives (15, 20).
	assert.True(t, past.Extrapolated)
	assert.InDelta(t, 15.0, past.Position.X, 1e-9)
	assert.InDelta(t, 20.0, past.Position.Y, 1e-9)
	assert.Equal(t, end.Tangent, past.Tangent)
	assert.Equal(t, r2.Vec{}, past.Curvature)
}

func TestPath_ExtrapolationContinuity(t *testing.T) {
	t.Parallel()

	p := NewPath(Polynomial{-0.001, 0.02, 1, 0}, Polynomial{0.003, -0.05, 0.2, 1}, 20)
	at := p.Evaluate(p.MaxArcLength)

	for _, eps := range []float64{1e-3, 1e-5} {
		after := p.Evaluate(p.MaxArcLength + eps)
		want := r2.Add(at.Position, r2.Scale(eps, at.Tangent))
		assert.InDelta(t, want.X, after.Position.X, 1e-12)
		assert.InDelta(t, want.Y, after.Position.Y, 1e-12)
	}
}

func TestPath_EvaluateNaN(t *testing.T) {
	t.Parallel()

	p := NewPath(Polynomial{1, 0}, Polynomial{0}, 10)
	pt := p.Evaluate(math.NaN())
	assert.True(t, math.IsNaN(pt.Position.X))
	assert.True(t, math.IsNaN(pt.Tangent.Y))
}

func TestPathSet_EvaluateAppliesBoundPerElement(t *testing.T) {
	t.Parallel()

	ps := PathSet{
		NewPath(Polynomial{1, 0}, Polynomial{0.1, 0, 0}, 5),
		NewPath(Polynomial{1, 0}, Polynomial{0.1, 0, 0}, 50),
	}
	pts := ps.Evaluate([]float64{8, 8})
	require.Len(t, pts, 2)

	assert.True(t, pts[0].Extrapolated)
	assert.InDelta(t, 2.5+3*1.0, pts[0].Position.Y, 1e-9)
	assert.False(t, pts[1].Extrapolated)
	assert.InDelta(t, 6.4, pts[1].Position.Y, 1e-9)
	assert.Equal(t, []float64{5, 50}, ps.MaxArcLengths())
}

func TestPath_Preview(t *testing.T) {
	t.Parallel()

	p := NewPath(Polynomial{1, 0}, Polynomial{0}, 100)

	t.Run("distance", func(t *testing.T) {
		pts := p.Preview(10, 3, PreviewDistance, 10, 3)
		require.Len(t, pts, 3)
		assert.InDelta(t, 20.0, pts[0].X, 1e-12)
		assert.InDelta(t, 40.0, pts[2].X, 1e-12)
	})

	t.Run("time scales by speed", func(t *testing.T) {
		pts := p.Preview(10, 3, PreviewTime, 2, 2)
		require.Len(t, pts, 2)
		assert.InDelta(t, 16.0, pts[0].X, 1e-12)
		assert.InDelta(t, 22.0, pts[1].X, 1e-12)
	})

	t.Run("to end stays on path", func(t *testing.T) {
		pts := p.Preview(20, 0, PreviewToEnd, 0, 4)
		require.Len(t, pts, 4)
		assert.Less(t, pts[3].X, 100.0)
		assert.InDelta(t, 20+80.0/4*3/4*4, pts[3].X, 1e-9)
	})

	t.Run("past end extrapolates", func(t *testing.T) {
		pts := p.Preview(95, 0, PreviewDistance, 10, 2)
		assert.InDelta(t, 115.0, pts[1].X, 1e-9)
	})

	t.Run("undefined start", func(t *testing.T) {
		assert.Nil(t, p.Preview(math.NaN(), 0, PreviewDistance, 10, 2))
	})
}
