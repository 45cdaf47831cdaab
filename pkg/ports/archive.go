package ports

import "gonum.org/v1/gonum/spatial/r3"

// ArchiveData is the content of one rig archive. The low-level container
// format is an adapter concern; the core only ever sees this struct.
//
// Invariants the core relies on: Samples is in shape order with the rest
// shape at index 0, and Definition holds exactly one JSON definition blob.
type ArchiveData struct {
	// Definition is the embedded JSON definition text.
	Definition []byte

	// ShapeNames holds one name per vertex sample, in shape order.
	ShapeNames []string

	// Samples holds one absolute vertex-position array per shape,
	// parallel to ShapeNames.
	Samples [][]r3.Vec

	// Faces is the flattened face-vertex index list of the static topology.
	Faces []int

	// Counts holds the per-face vertex counts matching Faces.
	Counts []int

	// WeightMaps carries optional per-vertex scalar fields keyed by name,
	// one per map-type falloff.
	WeightMaps map[string][]float64

	// Legacy selects the older container encoding on write.
	Legacy bool
}

// ArchiveReader loads rig archives from a path.
type ArchiveReader interface {
	ReadArchive(path string) (*ArchiveData, error)
}

// ArchiveWriter persists rig archives to a path.
type ArchiveWriter interface {
	WriteArchive(path string, data *ArchiveData) error
}
