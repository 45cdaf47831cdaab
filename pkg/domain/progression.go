package domain

import (
	"fmt"
	"math"
	"sort"
)

// Interpolation modes.
const (
	InterpLinear      = "linear"
	InterpSpline      = "spline"
	InterpSplitSpline = "splitSpline"
)

// ProgPair links one shape into a progression at a given activation value.
// The back-reference to the owning progression is non-owning.
type ProgPair struct {
	Shape *Shape
	Value float64

	prog *Progression
}

// Progression returns the progression this pair belongs to.
func (pp *ProgPair) Progression() *Progression { return pp.prog }

// Progression is the value-ordered interpolation curve of one controller:
// a list of (shape, value) pairs, an interpolation mode, and zero or more
// falloffs marking it for splitting.
type Progression struct {
	item
	simplex    *Simplex
	pairs      []*ProgPair
	interp     string
	falloffs   []*Falloff
	controller Controller
}

func newProgression(name string, simplex *Simplex, interp string) *Progression {
	if interp == "" {
		interp = InterpSpline
	}
	return &Progression{item: newItem(name), simplex: simplex, interp: interp}
}

func (p *Progression) Interp() string         { return p.interp }
func (p *Progression) Controller() Controller { return p.controller }

// Pairs returns the progression's pairs ordered by value.
func (p *Progression) Pairs() []*ProgPair {
	out := make([]*ProgPair, len(p.pairs))
	copy(out, p.pairs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Falloffs returns the falloffs marking this progression for splitting.
func (p *Progression) Falloffs() []*Falloff {
	out := make([]*Falloff, len(p.falloffs))
	copy(out, p.falloffs)
	return out
}

// Shapes returns the shapes in pair order.
func (p *Progression) Shapes() []*Shape {
	out := make([]*Shape, 0, len(p.pairs))
	for _, pair := range p.Pairs() {
		out = append(out, pair.Shape)
	}
	return out
}

// ShapeAtValue returns the shape whose pair sits at value, or nil.
func (p *Progression) ShapeAtValue(value float64) *Shape {
	const eps = 1e-6
	for _, pair := range p.pairs {
		if math.Abs(pair.Value-value) < eps {
			return pair.Shape
		}
	}
	return nil
}

// SetInterp switches the interpolation mode.
func (p *Progression) SetInterp(interp string) error {
	return p.simplex.store(func() error {
		p.interp = interp
		p.simplex.notifyChanged(p)
		return nil
	})
}

// AddFalloff marks the progression for splitting by fo.
func (p *Progression) AddFalloff(fo *Falloff) error {
	for _, cur := range p.falloffs {
		if cur == fo {
			return nil
		}
	}
	return p.simplex.store(func() error {
		p.falloffs = append(p.falloffs, fo)
		fo.children = append(fo.children, p)
		p.simplex.notifyChanged(p)
		return nil
	})
}

// RemoveFalloff unmarks the progression from fo.
func (p *Progression) RemoveFalloff(fo *Falloff) error {
	return p.simplex.store(func() error {
		p.dropFalloff(fo)
		p.simplex.notifyChanged(p)
		return nil
	})
}

func (p *Progression) dropFalloff(fo *Falloff) {
	for i, cur := range p.falloffs {
		if cur == fo {
			p.falloffs = append(p.falloffs[:i], p.falloffs[i+1:]...)
			break
		}
	}
	for i, child := range fo.children {
		if child == p {
			fo.children = append(fo.children[:i], fo.children[i+1:]...)
			break
		}
	}
}

// CreateShape adds a new shape to the progression at value, creating the
// host-side target. A default name is derived from the progression name
// and the value when name is empty.
func (p *Progression) CreateShape(name string, value float64) (*Shape, error) {
	if p.ShapeAtValue(value) != nil {
		return nil, fmt.Errorf("progression %q already has a pair at %g", p.name, value)
	}
	if name == "" {
		name = progressiveShapeName(p.name, value)
	}
	var shape *Shape
	err := p.simplex.store(func() error {
		var err error
		shape, err = p.simplex.createShape(name)
		if err != nil {
			return err
		}
		p.insertPair(shape, value)
		p.simplex.notifyInserted(shape)
		return nil
	})
	return shape, err
}

func (p *Progression) insertPair(shape *Shape, value float64) *ProgPair {
	pair := &ProgPair{Shape: shape, Value: value, prog: p}
	p.pairs = append(p.pairs, pair)
	return pair
}

// DeleteShape removes the pair holding shape; non-rest shapes are deleted
// from the system and the host.
func (p *Progression) DeleteShape(shape *Shape) error {
	idx := -1
	for i, pair := range p.pairs {
		if pair.Shape == shape {
			idx = i
		}
	}
	if idx < 0 {
		return fmt.Errorf("progression %q: shape %q: %w", p.name, shape.Name(), ErrNotFound)
	}
	return p.simplex.store(func() error {
		pair := p.pairs[idx]
		p.pairs = append(p.pairs[:idx], p.pairs[idx+1:]...)
		if !shape.IsRest() {
			p.simplex.removeShape(shape)
		}
		p.simplex.notifyRemoved(pair)
		return nil
	})
}

// GuessNextValue suggests the next activation value given the pairs the
// progression already holds. Intermediate values come before negatives.
func (p *Progression) GuessNextValue() float64 {
	if len(p.pairs) == 0 {
		return 1
	}
	have := map[float64]bool{}
	mn, mx := math.Inf(1), math.Inf(-1)
	for _, pair := range p.pairs {
		have[pair.Value] = true
		mn = math.Min(mn, pair.Value)
		mx = math.Max(mx, pair.Value)
	}
	var candidates []float64
	switch {
	case mn == 0 && mx == 1:
		candidates = []float64{0.5, 0.25, 0.75, -1}
	case mn == -1 && mx == 1:
		candidates = []float64{0.5, -0.5, 0.25, -0.25, 0.75, -0.75}
	}
	for _, c := range candidates {
		if !have[c] {
			return c
		}
	}
	return 1
}

// progressiveShapeName derives a shape name for an intermediate pair:
// "Smile" at 0.5 becomes "Smile_50", at -0.5 "Smile_n50".
func progressiveShapeName(base string, value float64) string {
	if value == 1 {
		return base
	}
	pct := int(math.Abs(value) * 100)
	if value < 0 {
		return fmt.Sprintf("%s_n%d", base, pct)
	}
	return fmt.Sprintf("%s_%d", base, pct)
}
