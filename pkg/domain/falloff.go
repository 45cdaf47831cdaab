package domain

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Falloff split types.
const (
	SplitPlanar = "planar"
	SplitMap    = "map"
)

// Side tokens. A planar falloff on an axis splits names carrying the
// axis's search token into the two result tokens.
const (
	sideLeft   = "L"
	sideRight  = "R"
	sideTop    = "U"
	sideBottom = "D"
	sideFront  = "F"
	sideBack   = "B"

	searchHorizontal = "X"
	searchVertical   = "V"
	searchDepth      = "Z"

	nameSep = "_"
)

// Falloff is a smooth 0..1 weighting field over the mesh, either a planar
// ramp along an axis or an externally supplied per-vertex map. Progressions
// reference falloffs to mark themselves for symmetry splitting.
type Falloff struct {
	item
	simplex *Simplex

	splitType string
	axis      string
	maxVal    float64
	maxHandle float64
	minHandle float64
	minVal    float64
	mapName   string

	// children are the progressions using this falloff. Non-owning.
	children []*Progression

	bezier  *bezierFactors
	weights []float64
}

// bezierFactors caches the depressed-cubic factorization of the ramp so
// per-vertex inversion only costs the root solve.
type bezierFactors struct {
	qq, r, d, n float64
}

func newPlanarFalloff(name string, simplex *Simplex, axis string, maxVal, maxHandle, minHandle, minVal float64) *Falloff {
	return &Falloff{
		item:      newItem(name),
		simplex:   simplex,
		splitType: SplitPlanar,
		axis:      axis,
		maxVal:    maxVal,
		maxHandle: maxHandle,
		minHandle: minHandle,
		minVal:    minVal,
	}
}

func newMapFalloff(name string, simplex *Simplex, mapName string) *Falloff {
	return &Falloff{
		item:      newItem(name),
		simplex:   simplex,
		splitType: SplitMap,
		mapName:   mapName,
	}
}

func (fo *Falloff) Type() string       { return fo.splitType }
func (fo *Falloff) Axis() string       { return fo.axis }
func (fo *Falloff) MapName() string    { return fo.mapName }
func (fo *Falloff) MinVal() float64    { return fo.minVal }
func (fo *Falloff) MinHandle() float64 { return fo.minHandle }
func (fo *Falloff) MaxHandle() float64 { return fo.maxHandle }
func (fo *Falloff) MaxVal() float64    { return fo.maxVal }

// Children returns the progressions currently referencing this falloff.
func (fo *Falloff) Children() []*Progression {
	out := make([]*Progression, len(fo.children))
	copy(out, fo.children)
	return out
}

// Rename changes the falloff's name as one undo step.
func (fo *Falloff) Rename(name string) error {
	if fo.name == name {
		return nil
	}
	return fo.simplex.store(func() error {
		fo.name = name
		fo.simplex.notifyChanged(fo)
		return nil
	})
}

// SetPlanarData repoints the falloff at a planar ramp, dropping any map
// data and cached weights.
func (fo *Falloff) SetPlanarData(axis string, minVal, minHandle, maxHandle, maxVal float64) error {
	return fo.simplex.store(func() error {
		fo.splitType = SplitPlanar
		fo.axis = axis
		fo.minVal = minVal
		fo.minHandle = minHandle
		fo.maxHandle = maxHandle
		fo.maxVal = maxVal
		fo.mapName = ""
		fo.bezier = nil
		fo.weights = nil
		fo.simplex.notifyChanged(fo)
		return nil
	})
}

// SetMapData repoints the falloff at a named external weight map.
func (fo *Falloff) SetMapData(mapName string) error {
	return fo.simplex.store(func() error {
		fo.splitType = SplitMap
		fo.axis = ""
		fo.minVal, fo.minHandle, fo.maxHandle, fo.maxVal = 0, 0, 0, 0
		fo.mapName = mapName
		fo.bezier = nil
		fo.weights = nil
		fo.simplex.notifyChanged(fo)
		return nil
	})
}

// Duplicate makes a new falloff sharing this one's curve data under a new
// name. The copy starts with no children.
func (fo *Falloff) Duplicate(newName string) (*Falloff, error) {
	var nf *Falloff
	err := fo.simplex.store(func() error {
		nf = &Falloff{
			item:      newItem(newName),
			simplex:   fo.simplex,
			splitType: fo.splitType,
			axis:      fo.axis,
			maxVal:    fo.maxVal,
			maxHandle: fo.maxHandle,
			minHandle: fo.minHandle,
			minVal:    fo.minVal,
			mapName:   fo.mapName,
			weights:   fo.weights,
		}
		nf.color = fo.color
		fo.simplex.falloffs = append(fo.simplex.falloffs, nf)
		fo.simplex.notifyInserted(nf)
		return nil
	})
	return nf, err
}

// Delete removes the falloff; referencing progressions drop it.
func (fo *Falloff) Delete() error {
	return fo.simplex.store(func() error {
		for _, child := range fo.Children() {
			child.dropFalloff(fo)
		}
		for i, cur := range fo.simplex.falloffs {
			if cur == fo {
				fo.simplex.falloffs = append(fo.simplex.falloffs[:i], fo.simplex.falloffs[i+1:]...)
				break
			}
		}
		fo.simplex.notifyRemoved(fo)
		return nil
	})
}

// factors normalizes the handles into [0,1] and reduces the monotonic
// bezier x(t) to a depressed cubic. Endpoints are fixed at (0,0) and (1,1).
func (fo *Falloff) factors() bezierFactors {
	if fo.bezier == nil {
		span := fo.maxVal - fo.minVal
		f := (fo.minHandle - fo.minVal) / span
		g := 1 - (fo.maxHandle-fo.minVal)/span
		d := 3*f + 3*g - 2
		n := 2*f + g - 1
		var r, qq float64
		if d != 0 {
			r = (n*n - f*d) / (d * d)
			qq = (3*f*d*n - 2*n*n*n) / (d * d * d)
		}
		fo.bezier = &bezierFactors{qq: qq, r: r, d: d, n: n}
	}
	return *fo.bezier
}

// Multiplier evaluates the ramp at an axis position: 0 at or below minVal,
// 1 at or above maxVal, and the monotonic cubic-bezier inversion between.
func (fo *Falloff) Multiplier(xVal float64) float64 {
	if xVal <= fo.minVal {
		return 0
	}
	if xVal >= fo.maxVal {
		return 1
	}

	tVal := (xVal - fo.minVal) / (fo.maxVal - fo.minVal)
	b := fo.factors()
	if b.d == 0 {
		// Handles at exact thirds degenerate the cubic to x(t) = t.
		t := tVal
		return 3*(1-t)*t*t + t*t*t
	}

	q := b.qq - tVal/b.d
	disc := q*q - 4*b.r*b.r*b.r
	var u float64
	if disc >= 0 {
		pm := math.Sqrt(disc) / 2
		w := math.Cbrt(-q/2 + pm)
		if w == 0 {
			u = math.Cbrt(-q)
		} else {
			u = w + b.r/w
		}
	} else {
		theta := math.Acos(-q / (2 * math.Pow(b.r, 1.5)))
		phi := theta/3 + 4*math.Pi/3
		u = 2 * math.Sqrt(b.r) * math.Cos(phi)
	}
	t := u + b.n/b.d
	t1 := 1 - t
	return 3*t1*t*t + t*t*t
}

// axisComponent maps the falloff axis onto a vector component.
func (fo *Falloff) axisComponent() (int, bool) {
	switch strings.ToUpper(fo.axis) {
	case "X":
		return 0, true
	case "Y":
		return 1, true
	case "Z":
		return 2, true
	}
	return 0, false
}

// SetVerts computes and caches one weight per vertex by projecting onto
// the falloff axis. Map falloffs keep their externally supplied weights.
func (fo *Falloff) SetVerts(verts []r3.Vec) error {
	comp, ok := fo.axisComponent()
	if !ok {
		if fo.weights == nil {
			return fmt.Errorf("falloff %q: non-planar falloff has no weights", fo.name)
		}
		return nil
	}
	weights := make([]float64, len(verts))
	for i, v := range verts {
		x := v.X
		switch comp {
		case 1:
			x = v.Y
		case 2:
			x = v.Z
		}
		weights[i] = fo.Multiplier(x)
	}
	fo.weights = weights
	return nil
}

// Weights returns the cached per-vertex weights. SetVerts (or an external
// map load) must have run first.
func (fo *Falloff) Weights() ([]float64, error) {
	if fo.weights == nil {
		return nil, fmt.Errorf("falloff %q: %w", fo.name, ErrWeightsUnset)
	}
	return fo.weights, nil
}

// SetWeights installs externally supplied weights, as read from an archive
// weight map.
func (fo *Falloff) SetWeights(weights []float64) { fo.weights = weights }

// searchRep returns the search token and the two side result tokens for
// the falloff's axis.
func (fo *Falloff) searchRep() (search string, rep [2]string) {
	switch strings.ToUpper(fo.axis) {
	case "X":
		return searchHorizontal, [2]string{sideLeft, sideRight}
	case "Y":
		return searchVertical, [2]string{sideTop, sideBottom}
	case "Z":
		return searchDepth, [2]string{sideFront, sideBack}
	}
	return "", rep
}

// SidedName substitutes the axis search token in name with the token for
// side (0 or 1). The token is matched as a whole underscore-delimited
// segment in infix, suffix and prefix positions; names without the token
// come back unchanged.
func (fo *Falloff) SidedName(name string, side int) string {
	search, rep := fo.searchRep()
	if search == "" {
		return name
	}
	replace := rep[side]

	nn := name
	nn = strings.ReplaceAll(nn,
		nameSep+search+nameSep,
		nameSep+replace+nameSep)

	if suffix := nameSep + search; strings.HasSuffix(nn, suffix) {
		nn = nn[:len(nn)-len(suffix)] + nameSep + replace
	}
	if prefix := search + nameSep; strings.HasPrefix(nn, prefix) {
		nn = replace + nameSep + nn[len(prefix):]
	}
	return nn
}

// canRename reports whether the side-name transform actually changes the
// item's name; items it cannot touch are excluded from splitting.
func (fo *Falloff) canRename(name string) bool {
	return fo.SidedName(name, 0) != name
}

// applyFalloff reweights a shape's deltas against the rest shape:
// side 0 keeps weight, side 1 keeps 1-weight.
func (fo *Falloff) applyFalloff(shape *Shape, side int) error {
	rest := fo.simplex.restShape
	if rest == nil {
		return ErrNoRestShape
	}
	restVerts, err := rest.Verts()
	if err != nil {
		return err
	}
	weights, err := fo.Weights()
	if err != nil {
		return err
	}
	verts, err := shape.Verts()
	if err != nil {
		return err
	}
	if len(verts) != len(restVerts) || len(weights) != len(restVerts) {
		return fmt.Errorf("falloff %q: vertex count mismatch on shape %q", fo.name, shape.Name())
	}

	out := make([]r3.Vec, len(verts))
	for i := range verts {
		w := weights[i]
		if side == 1 {
			w = 1 - w
		}
		delta := r3.Scale(w, r3.Sub(verts[i], restVerts[i]))
		out[i] = r3.Add(restVerts[i], delta)
	}
	return shape.SetVerts(out)
}
