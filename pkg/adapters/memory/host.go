package memory

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig/pkg/ports"
)

// Host implements ports.Host entirely in memory: the "dummy DCC". It
// backs tests, headless pipelines, and archive import/export where no
// real content application is attached.
type Host struct {
	revision int
	nextID   int

	restVerts []r3.Vec

	shapeNames  map[ports.Handle]string
	shapeVerts  map[ports.Handle][]r3.Vec
	sliderNames map[ports.Handle]string
	weights     map[ports.Handle]float64
}

// NewHost creates a dummy host. restVerts is the neutral mesh every new
// shape starts from; it may be nil when vertex data is seeded per shape.
func NewHost(restVerts []r3.Vec) *Host {
	return &Host{
		restVerts:   restVerts,
		shapeNames:  map[ports.Handle]string{},
		shapeVerts:  map[ports.Handle][]r3.Vec{},
		sliderNames: map[ports.Handle]string{},
		weights:     map[ports.Handle]float64{},
	}
}

// CurrentRevision implements ports.RevisionSource.
func (h *Host) CurrentRevision() int { return h.revision }

// IncrementRevision implements ports.RevisionSource.
func (h *Host) IncrementRevision() int {
	h.revision++
	return h.revision
}

// SetRevision rewinds or advances the counter, standing in for the real
// application's undo queue position.
func (h *Host) SetRevision(rev int) { h.revision = rev }

func (h *Host) newHandle(kind string) ports.Handle {
	h.nextID++
	return ports.Handle(fmt.Sprintf("%s-%d", kind, h.nextID))
}

// CreateShape registers a shape target seeded with the neutral mesh.
func (h *Host) CreateShape(name string) (ports.Handle, error) {
	handle := h.newHandle("shape")
	h.shapeNames[handle] = name
	verts := make([]r3.Vec, len(h.restVerts))
	copy(verts, h.restVerts)
	h.shapeVerts[handle] = verts
	return handle, nil
}

// FindShape scans registered shapes by name.
func (h *Host) FindShape(name string) (ports.Handle, error) {
	for handle, n := range h.shapeNames {
		if n == name {
			return handle, nil
		}
	}
	return "", nil
}

// DeleteShape drops the shape and its vertex data.
func (h *Host) DeleteShape(handle ports.Handle) error {
	if _, ok := h.shapeNames[handle]; !ok {
		return fmt.Errorf("shape %s: not found", handle)
	}
	delete(h.shapeNames, handle)
	delete(h.shapeVerts, handle)
	return nil
}

// RenameShape renames the shape target.
func (h *Host) RenameShape(handle ports.Handle, name string) error {
	if _, ok := h.shapeNames[handle]; !ok {
		return fmt.Errorf("shape %s: not found", handle)
	}
	h.shapeNames[handle] = name
	return nil
}

// ShapeVertices returns the stored vertex snapshot.
func (h *Host) ShapeVertices(handle ports.Handle) ([]r3.Vec, error) {
	verts, ok := h.shapeVerts[handle]
	if !ok {
		return nil, fmt.Errorf("shape %s: not found", handle)
	}
	return verts, nil
}

// SetShapeVertices replaces the stored vertex snapshot.
func (h *Host) SetShapeVertices(handle ports.Handle, verts []r3.Vec) error {
	if _, ok := h.shapeNames[handle]; !ok {
		return fmt.Errorf("shape %s: not found", handle)
	}
	h.shapeVerts[handle] = verts
	return nil
}

// CreateSlider registers a slider channel at weight zero.
func (h *Host) CreateSlider(name string) (ports.Handle, error) {
	handle := h.newHandle("slider")
	h.sliderNames[handle] = name
	h.weights[handle] = 0
	return handle, nil
}

// FindSlider scans registered sliders by name.
func (h *Host) FindSlider(name string) (ports.Handle, error) {
	for handle, n := range h.sliderNames {
		if n == name {
			return handle, nil
		}
	}
	return "", nil
}

// DeleteSlider drops the slider channel.
func (h *Host) DeleteSlider(handle ports.Handle) error {
	if _, ok := h.sliderNames[handle]; !ok {
		return fmt.Errorf("slider %s: not found", handle)
	}
	delete(h.sliderNames, handle)
	delete(h.weights, handle)
	return nil
}

// RenameSlider renames the slider channel.
func (h *Host) RenameSlider(handle ports.Handle, name string) error {
	if _, ok := h.sliderNames[handle]; !ok {
		return fmt.Errorf("slider %s: not found", handle)
	}
	h.sliderNames[handle] = name
	return nil
}

// RenameCombo is a no-op: the dummy host keeps no combo objects.
func (h *Host) RenameCombo(handle ports.Handle, name string) error { return nil }

// SetSliderWeight stores the pushed weight.
func (h *Host) SetSliderWeight(handle ports.Handle, value float64) error {
	if _, ok := h.sliderNames[handle]; !ok {
		return fmt.Errorf("slider %s: not found", handle)
	}
	h.weights[handle] = value
	return nil
}

// SliderWeight reads back a pushed weight, for tests and inspection.
func (h *Host) SliderWeight(handle ports.Handle) float64 { return h.weights[handle] }

// PersistentHandle returns the object's current name; names survive
// structural copies where live handles must not.
func (h *Host) PersistentHandle(handle ports.Handle) (string, error) {
	if name, ok := h.shapeNames[handle]; ok {
		return name, nil
	}
	if name, ok := h.sliderNames[handle]; ok {
		return name, nil
	}
	return "", fmt.Errorf("handle %s: not found", handle)
}

// LoadPersistent resolves a name back to a live handle.
func (h *Host) LoadPersistent(repr string) (ports.Handle, error) {
	if handle, err := h.FindShape(repr); err == nil && handle != "" {
		return handle, nil
	}
	if handle, err := h.FindSlider(repr); err == nil && handle != "" {
		return handle, nil
	}
	return "", fmt.Errorf("persistent handle %q: not found", repr)
}

// ShapeCount reports registered shape targets, for tests.
func (h *Host) ShapeCount() int { return len(h.shapeNames) }

var _ ports.Host = (*Host)(nil)
