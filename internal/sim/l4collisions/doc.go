// Package l4collisions owns Layer 4 (Collisions) of the simulation model.
//
// Responsibilities: building an oriented rectangular footprint for every
// present vehicle and testing footprints pairwise for overlap, per frame and
// across trajectories of frames.
// Key types: Footprint, Matrix, Detector.
//
// Only geometric overlap is detected; nothing here resolves a collision.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
// No SQL/database code is allowed in this package.
package l4collisions
