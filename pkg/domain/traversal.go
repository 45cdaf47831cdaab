package domain

import "sort"

// TravPair usage tags.
const (
	UsageProgress   = "progress"
	UsageMultiplier = "multiplier"
)

// TravPair references a controller in one of a traversal's two roles,
// with a sign flip. The traversal back-reference is non-owning.
type TravPair struct {
	Controller Controller
	Flip       bool
	Usage      string

	trav *Traversal
}

// Traversal returns the traversal this pair belongs to.
func (tp *TravPair) Traversal() *Traversal { return tp.trav }

// flipValue renders the flip flag as the ±1 the wire format carries.
func (tp *TravPair) flipValue() float64 {
	if tp.Flip {
		return -1
	}
	return 1
}

// Traversal is a sequence-sensitive combo: its progression activates when
// the multiplier controller is held non-zero while the progress controller
// grows past its threshold.
type Traversal struct {
	item
	simplex *Simplex
	prog    *Progression
	group   *Group

	multiplier *TravPair
	progress   *TravPair
	enabled    bool
}

func (t *Traversal) isController()             {}
func (t *Traversal) Kind() ControllerKind      { return KindTraversal }
func (t *Traversal) Progression() *Progression { return t.prog }
func (t *Traversal) Group() *Group             { return t.group }
func (t *Traversal) Enabled() bool             { return t.enabled }
func (t *Traversal) Multiplier() *TravPair     { return t.multiplier }
func (t *Traversal) Progress() *TravPair       { return t.progress }

func (t *Traversal) setGroup(g *Group) { t.group = g }

// SetEnabled toggles the traversal as one undo step.
func (t *Traversal) SetEnabled(enabled bool) error {
	return t.simplex.store(func() error {
		t.enabled = enabled
		t.simplex.notifyChanged(t)
		return nil
	})
}

// Rename changes the traversal's name as one undo step. The progression
// follows the controller's name.
func (t *Traversal) Rename(name string) error {
	if t.name == name {
		return nil
	}
	return t.simplex.store(func() error {
		t.setName(name)
		return nil
	})
}

func (t *Traversal) setName(name string) {
	t.name = name
	t.prog.name = name
	t.simplex.notifyChanged(t)
}

// Delete removes the traversal and its progression's non-rest shapes.
// The referenced controllers are untouched.
func (t *Traversal) Delete() error {
	return t.simplex.store(func() error {
		t.group.removeItem(t)
		t.group = nil
		for i, cur := range t.simplex.traversals {
			if cur == t {
				t.simplex.traversals = append(t.simplex.traversals[:i], t.simplex.traversals[i+1:]...)
				break
			}
		}
		for _, pair := range t.prog.Pairs() {
			if !pair.Shape.IsRest() {
				t.simplex.removeShape(pair.Shape)
			}
		}
		t.simplex.notifyRemoved(t)
		return nil
	})
}

// refSliders returns every slider the traversal depends on, through either
// role, directly or via a combo.
func (t *Traversal) refSliders() []*Slider {
	seen := map[*Slider]struct{}{}
	var out []*Slider
	add := func(sl *Slider) {
		if _, ok := seen[sl]; !ok {
			seen[sl] = struct{}{}
			out = append(out, sl)
		}
	}
	for _, tp := range []*TravPair{t.progress, t.multiplier} {
		if tp == nil {
			continue
		}
		switch ctrl := tp.Controller.(type) {
		case *Slider:
			add(ctrl)
		case *Combo:
			for _, cp := range ctrl.pairs {
				add(cp.Slider)
			}
		}
	}
	return out
}

// sliderRange is the (start, end) value span of one slider across the
// traversal's motion.
type sliderRange struct {
	slider *Slider
	start  float64
	end    float64
}

// sliderRanges flattens the two roles into per-slider value spans, sorted
// by slider name: the multiplier holds its value throughout, the progress
// side travels from zero to its target.
func (t *Traversal) sliderRanges() []sliderRange {
	ranges := map[*Slider][2]float64{}

	if t.progress != nil {
		switch ctrl := t.progress.Controller.(type) {
		case *Slider:
			ranges[ctrl] = [2]float64{0, t.progress.flipValue()}
		case *Combo:
			for _, cp := range ctrl.pairs {
				ranges[cp.Slider] = [2]float64{0, cp.Value}
			}
		}
	}
	if t.multiplier != nil {
		switch ctrl := t.multiplier.Controller.(type) {
		case *Slider:
			v := t.multiplier.flipValue()
			ranges[ctrl] = [2]float64{v, v}
		case *Combo:
			for _, cp := range ctrl.pairs {
				ranges[cp.Slider] = [2]float64{cp.Value, cp.Value}
			}
		}
	}

	out := make([]sliderRange, 0, len(ranges))
	for sl, span := range ranges {
		out = append(out, sliderRange{slider: sl, start: span[0], end: span[1]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].slider.Name() < out[j].slider.Name()
	})
	return out
}

// startDepth is the pair count used for depth bucketing.
func (t *Traversal) startDepth() int { return len(t.sliderRanges()) }
