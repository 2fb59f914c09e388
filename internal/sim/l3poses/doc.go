// Package l3poses owns Layer 3 (Poses) of the simulation model.
//
// Responsibilities: projecting each vehicle's arc state onto its reference
// path to obtain a 2-D pose (position, speed, heading, yaw rate), and
// deriving pairwise relative poses between vehicles.
// Key types: Pose, Projector, RelativePose, RelativeFrame, Adjacency.
//
// Poses are pure functions of arc state and are never stored as ground
// truth. An Inactive arc state projects to an absent Pose.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
// No SQL/database code is allowed in this package.
package l3poses
