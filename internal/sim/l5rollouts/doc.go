// Package l5rollouts owns Layer 5 (Rollouts) of the simulation model.
//
// Responsibilities: propagating the current arc state forward through
// candidate action profiles without touching the live simulation, and
// checking the resulting trajectories for future collisions.
// Key types: Roller.
//
// Profiles are independent of each other and are evaluated concurrently.
//
// Dependency rule: L5 may depend on L1-L4.
// No SQL/database code is allowed in this package.
package l5rollouts
