package domain

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig/pkg/ports"
)

// Shape is one pose of the mesh: a named absolute vertex snapshot owned by
// the system, referenced from progressions. Exactly one shape per system is
// the rest shape and it always serializes at index 0.
type Shape struct {
	item
	simplex *Simplex
	isRest  bool

	thing     ports.Handle
	thingRepr string
	verts     []r3.Vec // cached host sample; detached copies rely on it
}

// RestNamePrefix is prepended to the system name to form the reserved
// rest shape name.
const RestNamePrefix = "Rest"

// RestName returns the reserved rest shape name for a system.
func RestName(systemName string) string {
	return RestNamePrefix + "_" + systemName
}

func newShape(name string, simplex *Simplex) *Shape {
	return &Shape{item: newItem(name), simplex: simplex}
}

// IsRest reports whether this is the system's neutral shape.
func (sh *Shape) IsRest() bool { return sh.isRest }

// Handle returns the host-side geometry handle, reconnecting through the
// persistent representation after a structural copy.
func (sh *Shape) Handle() (ports.Handle, error) {
	if sh.thing == "" && sh.thingRepr != "" && sh.simplex.host != nil {
		h, err := sh.simplex.host.LoadPersistent(sh.thingRepr)
		if err != nil {
			return "", fmt.Errorf("reconnecting shape %q: %w", sh.name, err)
		}
		sh.thing = h
	}
	if sh.thing == "" {
		return "", ErrNoHost
	}
	return sh.thing, nil
}

func (sh *Shape) setHandle(h ports.Handle) {
	sh.thing = h
	if sh.simplex.host != nil {
		if repr, err := sh.simplex.host.PersistentHandle(h); err == nil {
			sh.thingRepr = repr
		}
	}
}

// Verts returns the vertex snapshot for this shape, sampling the host on
// first access. The returned slice is treated as read-only.
func (sh *Shape) Verts() ([]r3.Vec, error) {
	if sh.verts != nil {
		return sh.verts, nil
	}
	if sh.simplex.host == nil {
		return nil, fmt.Errorf("shape %q: %w", sh.name, ErrVertsUnset)
	}
	h, err := sh.Handle()
	if err != nil {
		return nil, err
	}
	verts, err := sh.simplex.host.ShapeVertices(h)
	if err != nil {
		return nil, fmt.Errorf("sampling shape %q: %w", sh.name, err)
	}
	sh.verts = verts
	return verts, nil
}

// SetVerts replaces the cached snapshot, pushing to the host when one is
// attached.
func (sh *Shape) SetVerts(verts []r3.Vec) error {
	sh.verts = verts
	if sh.simplex.host == nil {
		return nil
	}
	h, err := sh.Handle()
	if err != nil {
		return err
	}
	return sh.simplex.host.SetShapeVertices(h, verts)
}

func (sh *Shape) invalidateVerts() { sh.verts = nil }

// Rename changes the shape's name as one undo step.
func (sh *Shape) Rename(name string) error {
	if sh.name == name {
		return nil
	}
	return sh.simplex.store(func() error {
		sh.setName(name)
		return nil
	})
}

func (sh *Shape) setName(name string) {
	sh.name = name
	if sh.simplex.host != nil && sh.thing != "" {
		sh.simplex.host.RenameShape(sh.thing, name)
	}
	sh.simplex.notifyChanged(sh)
}

// StrippedName returns the name with a trailing progressive-number field
// removed, e.g. "Smile_50" becomes "Smile".
func (sh *Shape) StrippedName() string {
	parts := strings.Split(sh.name, "_")
	if isNumberField(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "_")
}

// isNumberField matches the progressive suffix convention: "50" or "n50"
// for negative values.
func isNumberField(field string) bool {
	if field == "" {
		return false
	}
	if field[0] == 'n' {
		field = field[1:]
	}
	if field == "" {
		return false
	}
	for _, r := range field {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
