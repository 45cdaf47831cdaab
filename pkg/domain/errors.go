package domain

import "errors"

var (
	// ErrNoRestShape is returned when a controller is created before the
	// system has a rest shape to anchor its progression.
	ErrNoRestShape = errors.New("domain: system has no rest shape")

	// ErrGroupKindMismatch is returned when a controller is placed into a
	// group typed for a different controller kind.
	ErrGroupKindMismatch = errors.New("domain: group kind mismatch")

	// ErrRestShapeImmutable guards the rest shape against deletion and
	// renaming away from its reserved slot.
	ErrRestShapeImmutable = errors.New("domain: rest shape cannot be deleted")

	// ErrLastGroup is returned when deleting the only remaining group of a
	// controller kind; every kind keeps at least one bucket.
	ErrLastGroup = errors.New("domain: cannot delete the last group of a kind")

	// ErrNotFound is returned by lookups over the owning lists.
	ErrNotFound = errors.New("domain: item not found")

	// ErrNoHost is returned when an operation needs a live editing host
	// and the system is a detached copy.
	ErrNoHost = errors.New("domain: no host attached")

	// ErrVertsUnset is returned when vertex data is requested before it
	// was sampled from the host or seeded on a detached copy.
	ErrVertsUnset = errors.New("domain: vertex data not set")

	// ErrWeightsUnset is returned when falloff weights are requested
	// before SetVerts populated them.
	ErrWeightsUnset = errors.New("domain: falloff weights not set")

	// ErrNotSplittable is returned by the pre-split check when a
	// progression mixes side-renameable and fixed names.
	ErrNotSplittable = errors.New("domain: system is not uniformly splittable")

	// ErrCanceled is returned when a progress callback aborts a long
	// operation. The live system is left untouched.
	ErrCanceled = errors.New("domain: operation canceled")
)
