package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Combo solve types: how constituent slider activations combine into the
// combo's own activation.
const (
	SolveMin         = "min"
	SolveMulAll      = "allMul"
	SolveMulExtremes = "extMul"
	SolveMulAvgExt   = "mulAvgExt"
	SolveMulAvgAll   = "mulAvgAll"
)

// ComboPair links one slider at a target value into a combo. The combo
// back-reference is non-owning.
type ComboPair struct {
	Slider *Slider
	Value  float64

	combo *Combo
}

// Combo returns the combo this pair belongs to.
func (cp *ComboPair) Combo() *Combo { return cp.combo }

// Combo activates when several sliders sit at specific values at once.
type Combo struct {
	item
	simplex *Simplex
	prog    *Progression
	group   *Group

	pairs     []*ComboPair
	solveType string
	enabled   bool
}

func (c *Combo) isController()             {}
func (c *Combo) Kind() ControllerKind      { return KindCombo }
func (c *Combo) Progression() *Progression { return c.prog }
func (c *Combo) Group() *Group             { return c.group }
func (c *Combo) Enabled() bool             { return c.enabled }
func (c *Combo) SolveType() string         { return c.solveType }

func (c *Combo) setGroup(g *Group) { c.group = g }

// Pairs returns the combo's slider pairs.
func (c *Combo) Pairs() []*ComboPair {
	out := make([]*ComboPair, len(c.pairs))
	copy(out, c.pairs)
	return out
}

// IsFloating reports whether any pair targets a non-extreme value. A
// floating combo activates part-way along its sliders.
func (c *Combo) IsFloating() bool {
	for _, pair := range c.pairs {
		if math.Abs(pair.Value) != 1 {
			return true
		}
	}
	return false
}

// SetEnabled toggles the combo as one undo step.
func (c *Combo) SetEnabled(enabled bool) error {
	return c.simplex.store(func() error {
		c.enabled = enabled
		c.simplex.notifyChanged(c)
		return nil
	})
}

// SetSolveType switches how the combo resolves its slider activations.
func (c *Combo) SetSolveType(solveType string) error {
	return c.simplex.store(func() error {
		c.solveType = solveType
		c.simplex.notifyChanged(c)
		return nil
	})
}

// Rename changes the combo's name as one undo step. The progression
// follows the controller's name.
func (c *Combo) Rename(name string) error {
	if c.name == name {
		return nil
	}
	return c.simplex.store(func() error {
		c.setName(name)
		return nil
	})
}

func (c *Combo) setName(name string) {
	old := c.name
	c.name = name
	c.prog.name = name
	if c.simplex.host != nil {
		// Combos have no dedicated host object; the name doubles as the
		// handle for hosts that track them.
		c.simplex.host.RenameCombo(old, name)
	}
	c.simplex.notifyChanged(c)
}

// Delete removes the combo and its progression's non-rest shapes.
// Constituent sliders are untouched.
func (c *Combo) Delete() error {
	return c.simplex.store(func() error {
		if err := c.simplex.deleteDownstream(c); err != nil {
			return err
		}
		c.group.removeItem(c)
		c.group = nil
		for i, cur := range c.simplex.combos {
			if cur == c {
				c.simplex.combos = append(c.simplex.combos[:i], c.simplex.combos[i+1:]...)
				break
			}
		}
		for _, pair := range c.prog.Pairs() {
			if !pair.Shape.IsRest() {
				c.simplex.removeShape(pair.Shape)
			}
		}
		c.simplex.notifyRemoved(c)
		return nil
	})
}

// BuildComboName derives the conventional combo name from its slider
// activations, sorted by slider name. Intermediate activations fall back
// to the extreme shape's name with a percentage field.
func BuildComboName(sliders []*Slider, values []float64) string {
	type sv struct {
		slider *Slider
		value  float64
	}
	pairs := make([]sv, 0, len(sliders))
	for i, sl := range sliders {
		pairs = append(pairs, sv{sl, values[i]})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].slider.Name() < pairs[j].slider.Name()
	})

	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if shape := p.slider.prog.ShapeAtValue(p.value); shape != nil {
			parts = append(parts, shape.Name())
			continue
		}

		extVal := 1.0
		if p.value < 0 {
			extVal = -1
		}
		valName := fmt.Sprintf("%d", int(math.Abs(p.value*100)))
		if p.value < 0 {
			valName = "n" + valName
		}

		shape := p.slider.prog.ShapeAtValue(extVal)
		if shape == nil {
			parts = append(parts, p.slider.Name())
			continue
		}
		fields := strings.Split(shape.Name(), "_")
		if isNumberField(fields[len(fields)-1]) {
			fields[len(fields)-1] = valName
		} else {
			fields = append(fields, valName)
		}
		parts = append(parts, strings.Join(fields, "_"))
	}
	return strings.Join(parts, "_")
}
