// Package l2arcs owns Layer 2 (Arc state) of the simulation model.
//
// Responsibilities: the per-vehicle one-dimensional state along the
// reference path (arc length s and arc speed ṡ), and its integration forward
// one fixed time step under a commanded acceleration.
// Key types: ArcState, Frame, Integrator, ActionBounds.
//
// A vehicle that has not spawned yet, or that has run off the end of its
// path, is Inactive. That is an explicit tag on ArcState rather than a NaN
// carried through arithmetic; FromValues and Values convert at the
// boundary for callers that store NaN-encoded arrays.
//
// Dependency rule: L2 may depend on L1, but never on L3+.
// No SQL/database code is allowed in this package.
package l2arcs
