// Package l1paths owns Layer 1 (Paths) of the simulation model.
//
// Responsibilities: polynomial evaluation of each vehicle's fixed reference
// path as a function of arc length, including the straight-line
// extrapolation used once a vehicle runs past the fitted end of its path.
// Key types: Polynomial, Path, PathSet, Point.
//
// Dependency rule: L1 depends on nothing else in internal/sim.
// No SQL/database code is allowed in this package.
package l1paths
