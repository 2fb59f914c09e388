package l4collisions

import (
	"gonum.org/v1/gonum/mat"
)

// Matrix is a symmetric nv×nv collision matrix indexed by vehicle. For a
// single frame every entry is 0 or 1; summing frames with Add turns entries
// into per-pair incident counts. The diagonal is always zero.
type Matrix struct {
	n   int
	sym *mat.SymDense // nil when n == 0
}

// NewMatrix returns an all-zero n×n matrix.
func NewMatrix(n int) *Matrix {
	m := &Matrix{n: n}
	if n > 0 {
		m.sym = mat.NewSymDense(n, nil)
	}
	return m
}

// N returns the number of vehicles the matrix covers.
func (m *Matrix) N() int {
	return m.n
}

// At returns entry (i, j).
func (m *Matrix) At(i, j int) float64 {
	return m.sym.At(i, j)
}

// Colliding reports whether entry (i, j) is non-zero.
func (m *Matrix) Colliding(i, j int) bool {
	return m.n > 0 && m.sym.At(i, j) != 0
}

// mark records a collision between i and j in both (i, j) and (j, i).
func (m *Matrix) mark(i, j int) {
	m.sym.SetSym(i, j, 1)
}

// Add accumulates o into m. Both must cover the same number of vehicles.
func (m *Matrix) Add(o *Matrix) {
	if m.n != o.n {
		panic("l4collisions: matrix size mismatch")
	}
	if m.n == 0 {
		return
	}
	m.sym.AddSym(m.sym, o.sym)
}

// NonZero returns the number of non-zero entries. Each colliding pair
// contributes two.
func (m *Matrix) NonZero() int {
	count := 0
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.sym.At(i, j) != 0 {
				count++
			}
		}
	}
	return count
}

// Sum returns the sum of all entries.
func (m *Matrix) Sum() float64 {
	if m.n == 0 {
		return 0
	}
	return mat.Sum(m.sym)
}

// Pairs lists the colliding pairs as (i, j) with i < j, in row order.
func (m *Matrix) Pairs() [][2]int {
	var out [][2]int
	for i := 0; i < m.n; i++ {
		for j := i + 1; j < m.n; j++ {
			if m.sym.At(i, j) != 0 {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Symmetric exposes the matrix for gonum consumers. It is nil for an empty
// matrix.
func (m *Matrix) Symmetric() mat.Symmetric {
	if m.sym == nil {
		return nil
	}
	return m.sym
}
