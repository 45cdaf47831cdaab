/*
Package shaperig is a shape-combination rig engine: it models blendshape
systems as a graph of sliders, combos, traversals and progressions over
named shapes, with versioned JSON serialization, revision-keyed undo and
a falloff-driven symmetry split.

# Concept

A Simplex system owns every entity in one rig. Sliders drive
progressions of shapes across an activation range; combos fire when
several sliders align; traversals re-time one controller's progression
by another's value. The engine manages the graph, serialization and
splitting, while the host adapter (a DCC such as Maya, or the bundled
in-memory dummy) owns the actual geometry. This hexagonal split lets the
same core run inside a content application, a headless pipeline worker,
or an HTTP service.

# Usage

Create a session, build or load a system, and work with the graph:

	session, err := shaperig.New("Face")
	if err != nil {
		log.Fatal(err)
	}
	sys := session.System()

	smile, err := sys.CreateSlider("Smile_X", nil)
	if err != nil {
		log.Fatal(err)
	}
	fo, err := sys.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	if err != nil {
		log.Fatal(err)
	}
	if err := smile.Progression().AddFalloff(fo); err != nil {
		log.Fatal(err)
	}

	split, err := session.Split(nil)
	if err != nil {
		log.Fatal(err)
	}
	data, _ := split.Dump()

Definitions round-trip through three encoding versions; see pkg/schema.
The pkg/adapters tree holds the in-memory host, the redis and in-memory
definition stores, the archive file codec and the HTTP surface.
*/
package shaperig
