// Package graph holds the vehicle interaction graph.
//
// Vertices are vehicle indices; an undirected edge means two vehicles are
// allowed to observe each other. The graph is rebuilt every tick from the
// current poses and consumed by l3poses through the Adjacency interface.
// Key types: Graph, Builder, RadiusBuilder.
//
// Dependency rule: graph may depend on L1-L3, but never on L4+.
package graph
