// Package simulator runs an episode over a recorded track.
//
// Responsibilities: owning the per-episode state (tick, arc states and the
// exceeded mask), spawning vehicles at their recorded times, and assembling
// each tick's outcome from the L1-L5 layers: poses, relative poses, the
// interaction graph, collisions and path previews.
// Key types: Simulator, State, StepOutcome, Controller.
//
// State is an explicit value: Step takes the current State and returns the
// next one without mutating its input, so callers may branch or replay.
//
// Dependency rule: simulator may depend on every sim layer, track and config.
// No SQL/database code is allowed in this package; persistence happens
// through the Run observer.
package simulator
