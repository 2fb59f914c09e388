// Package track loads recorded vehicle tracks: per-vehicle reference paths
// fitted as polynomials in arc length, together with spawn times, initial
// arc state and footprint dimensions.
//
// A Track is the static input to a simulation; nothing in it changes while
// the simulation runs.
package track
