// Package domain holds the shape-combination object graph: a Simplex root
// owning shapes, falloffs, progressions and the three controller kinds
// (sliders, combos, traversals), plus the structural clone primitive and
// the falloff-driven symmetry split engine built on top of it.
//
// The graph is single-session and single-threaded. Mutating methods wrap
// themselves in the undo stack; reads never do.
package domain
