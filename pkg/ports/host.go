package ports

import "gonum.org/v1/gonum/spatial/r3"

// Handle identifies an object owned by the host application (a blendshape
// target, a slider channel...). Handles are opaque to the core: they are
// created by the host adapter and only ever passed back to it.
type Handle = string

// RevisionSource hands out monotonically increasing revision numbers.
// The undo stack keys its snapshots by these, so the host's native
// undo/redo can be mapped back onto stored rig states.
type RevisionSource interface {
	// CurrentRevision returns the revision the host is currently at.
	CurrentRevision() int

	// IncrementRevision bumps the revision counter and returns the new value.
	IncrementRevision() int
}

// Host is the adapter to the application that owns the actual geometry.
// All mutation methods are synchronous; the core assumes they either fully
// succeed or fully fail.
type Host interface {
	RevisionSource

	// CreateShape creates a host-side shape target and returns its handle.
	CreateShape(name string) (Handle, error)

	// FindShape looks up an existing host-side shape by name.
	// It returns an empty handle (and no error) when nothing matches.
	FindShape(name string) (Handle, error)

	// DeleteShape removes the host-side shape and any cached vertex data.
	DeleteShape(h Handle) error

	// RenameShape renames the host-side shape object.
	RenameShape(h Handle, name string) error

	// ShapeVertices returns the vertex positions of a shape as a read-only
	// snapshot. Callers must not mutate the returned slice.
	ShapeVertices(h Handle) ([]r3.Vec, error)

	// SetShapeVertices replaces the stored vertex positions of a shape.
	SetShapeVertices(h Handle, verts []r3.Vec) error

	// CreateSlider creates a host-side slider channel and returns its handle.
	CreateSlider(name string) (Handle, error)

	// FindSlider looks up an existing host-side slider by name, returning an
	// empty handle when nothing matches.
	FindSlider(name string) (Handle, error)

	// DeleteSlider removes the host-side slider channel.
	DeleteSlider(h Handle) error

	// RenameSlider renames the host-side slider channel.
	RenameSlider(h Handle, name string) error

	// RenameCombo renames whatever host-side bookkeeping object backs a combo.
	// Hosts without one should treat this as a no-op.
	RenameCombo(h Handle, name string) error

	// SetSliderWeight pushes an evaluated slider weight to the host.
	SetSliderWeight(h Handle, value float64) error

	// PersistentHandle returns a representation of h that survives structural
	// copies of the rig (a node path, a UUID...). Live handles must never be
	// carried across a deep copy.
	PersistentHandle(h Handle) (string, error)

	// LoadPersistent resolves a persistent representation back into a live
	// handle.
	LoadPersistent(repr string) (Handle, error)
}
