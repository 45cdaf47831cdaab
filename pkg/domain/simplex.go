package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/shaperig/internal/logging"
	"github.com/aretw0/shaperig/pkg/ports"
	"github.com/aretw0/shaperig/pkg/undo"
)

// Default group names synthesized when a definition carries none.
var defaultGroupNames = map[ControllerKind]string{
	KindSlider:    "Group_0",
	KindCombo:     "Group_1",
	KindTraversal: "Group_2",
}

// Simplex is the root aggregate. It owns every entity in the rig, hands
// out build indices during serialization, and orchestrates splitting.
type Simplex struct {
	name        string
	clusterName string

	host  ports.Host
	log   *slog.Logger
	stack *undo.Stack

	shapes     []*Shape
	groups     []*Group
	falloffs   []*Falloff
	sliders    []*Slider
	combos     []*Combo
	traversals []*Traversal

	restShape *Shape
	legacy    bool
	extras    map[string]json.RawMessage
	observers []Observer

	// localRev backs the revision counter for detached copies that have
	// no host to ask.
	localRev int
}

// NewSimplex builds an empty system. host may be nil for a detached
// scratch system that works purely on cached vertex data.
func NewSimplex(name string, host ports.Host, log *slog.Logger) *Simplex {
	if log == nil {
		log = logging.NewNop()
	}
	s := &Simplex{
		name:        name,
		clusterName: name,
		host:        host,
		log:         log,
		extras:      map[string]json.RawMessage{},
	}
	s.stack = undo.NewStack(s)
	return s
}

// CurrentRevision implements undo.RevisionSource, delegating to the host
// when one is attached.
func (s *Simplex) CurrentRevision() int {
	if s.host != nil {
		return s.host.CurrentRevision()
	}
	return s.localRev
}

// IncrementRevision implements undo.RevisionSource.
func (s *Simplex) IncrementRevision() int {
	if s.host != nil {
		return s.host.IncrementRevision()
	}
	s.localRev++
	return s.localRev
}

func (s *Simplex) Name() string         { return s.name }
func (s *Simplex) ClusterName() string  { return s.clusterName }
func (s *Simplex) Host() ports.Host     { return s.host }
func (s *Simplex) Stack() *undo.Stack   { return s.stack }
func (s *Simplex) Logger() *slog.Logger { return s.log }

// Legacy reports whether Dump writes the version 1 encoding.
func (s *Simplex) Legacy() bool     { return s.legacy }
func (s *Simplex) SetLegacy(v bool) { s.legacy = v }

// SetClusterName sets the deformer cluster name carried in definitions.
func (s *Simplex) SetClusterName(name string) { s.clusterName = name }

// RestShape returns the system's neutral shape, or nil before one exists.
func (s *Simplex) RestShape() *Shape { return s.restShape }

func (s *Simplex) Shapes() []*Shape {
	out := make([]*Shape, len(s.shapes))
	copy(out, s.shapes)
	return out
}

func (s *Simplex) Groups() []*Group {
	out := make([]*Group, len(s.groups))
	copy(out, s.groups)
	return out
}

func (s *Simplex) Falloffs() []*Falloff {
	out := make([]*Falloff, len(s.falloffs))
	copy(out, s.falloffs)
	return out
}

func (s *Simplex) Sliders() []*Slider {
	out := make([]*Slider, len(s.sliders))
	copy(out, s.sliders)
	return out
}

func (s *Simplex) Combos() []*Combo {
	out := make([]*Combo, len(s.combos))
	copy(out, s.combos)
	return out
}

func (s *Simplex) Traversals() []*Traversal {
	out := make([]*Traversal, len(s.traversals))
	copy(out, s.traversals)
	return out
}

// Progressions collects every controller's progression in controller-list
// order: sliders, combos, traversals.
func (s *Simplex) Progressions() []*Progression {
	out := make([]*Progression, 0, len(s.sliders)+len(s.combos)+len(s.traversals))
	for _, sl := range s.sliders {
		out = append(out, sl.prog)
	}
	for _, c := range s.combos {
		out = append(out, c.prog)
	}
	for _, t := range s.traversals {
		out = append(out, t.prog)
	}
	return out
}

// Extras returns the opaque pass-through fields preserved across
// load/save.
func (s *Simplex) Extras() map[string]json.RawMessage { return s.extras }

// store wraps a mutation in one undo step: the stack snapshots a detached
// clone when the outermost scope exits cleanly.
func (s *Simplex) store(fn func() error) error {
	return s.stack.Store(func() any { return s.Clone() }, fn)
}

// Rename changes the system name; the rest shape follows.
func (s *Simplex) Rename(name string) error {
	if s.name == name {
		return nil
	}
	return s.store(func() error {
		old := s.name
		s.name = name
		if s.restShape != nil && s.restShape.Name() == RestName(old) {
			s.restShape.setName(RestName(name))
		}
		s.notifyChanged(s)
		return nil
	})
}

// EnsureRestShape returns the rest shape, creating it (and its host-side
// target) on first call.
func (s *Simplex) EnsureRestShape() (*Shape, error) {
	if s.restShape != nil {
		return s.restShape, nil
	}
	var shape *Shape
	err := s.store(func() error {
		var err error
		shape, err = s.createShape(RestName(s.name))
		if err != nil {
			return err
		}
		shape.isRest = true
		s.restShape = shape
		s.notifyInserted(shape)
		return nil
	})
	return shape, err
}

// createShape appends a shape, reusing a same-named host target when one
// already exists.
func (s *Simplex) createShape(name string) (*Shape, error) {
	shape := newShape(name, s)
	if s.host != nil {
		h, err := s.host.FindShape(name)
		if err != nil {
			return nil, fmt.Errorf("looking up shape %q: %w", name, err)
		}
		if h == "" {
			h, err = s.host.CreateShape(name)
			if err != nil {
				return nil, fmt.Errorf("creating shape %q: %w", name, err)
			}
		}
		shape.setHandle(h)
	}
	s.shapes = append(s.shapes, shape)
	return shape, nil
}

// removeShape drops a shape from the owning list and the host cache.
func (s *Simplex) removeShape(shape *Shape) {
	for i, cur := range s.shapes {
		if cur == shape {
			s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
			break
		}
	}
	if s.host != nil && shape.thing != "" {
		s.host.DeleteShape(shape.thing)
	}
	shape.invalidateVerts()
	s.notifyRemoved(shape)
}

// CreateGroup adds an empty, untyped group.
func (s *Simplex) CreateGroup(name string) (*Group, error) {
	var g *Group
	err := s.store(func() error {
		g = newGroup(name, s)
		s.groups = append(s.groups, g)
		s.notifyInserted(g)
		return nil
	})
	return g, err
}

// defaultGroup finds or creates the conventional bucket for a controller
// kind.
func (s *Simplex) defaultGroup(kind ControllerKind) *Group {
	for _, g := range s.groups {
		if g.typed && g.kind == kind {
			return g
		}
	}
	for _, g := range s.groups {
		if !g.typed {
			return g
		}
	}
	g := newGroup(defaultGroupNames[kind], s)
	s.groups = append(s.groups, g)
	s.notifyInserted(g)
	return g
}

// CreateSlider adds a slider with a fresh progression holding the rest
// shape at 0 and a new extreme shape at 1. A nil group picks (or creates)
// the default slider bucket.
func (s *Simplex) CreateSlider(name string, group *Group) (*Slider, error) {
	if s.restShape == nil {
		return nil, ErrNoRestShape
	}
	if group != nil {
		if err := group.accepts(KindSlider); err != nil {
			return nil, fmt.Errorf("slider %q into group %q: %w", name, group.Name(), err)
		}
	}
	var slider *Slider
	err := s.store(func() error {
		if group == nil {
			group = s.defaultGroup(KindSlider)
		}
		prog := newProgression(name, s, InterpSpline)
		prog.insertPair(s.restShape, 0)

		shape, err := s.createShape(name)
		if err != nil {
			return err
		}
		prog.insertPair(shape, 1)

		slider = &Slider{
			item:    newItem(name),
			simplex: s,
			prog:    prog,
			group:   group,
			enabled: true,
		}
		prog.controller = slider
		if s.host != nil {
			h, err := s.host.FindSlider(name)
			if err != nil {
				return fmt.Errorf("looking up slider %q: %w", name, err)
			}
			if h == "" {
				h, err = s.host.CreateSlider(name)
				if err != nil {
					return fmt.Errorf("creating slider %q: %w", name, err)
				}
			}
			slider.thing = h
		}
		group.addItem(slider)
		s.sliders = append(s.sliders, slider)
		s.notifyInserted(slider)
		return nil
	})
	return slider, err
}

// ComboPairSpec names one slider activation for combo creation.
type ComboPairSpec struct {
	Slider *Slider
	Value  float64
}

// CreateCombo adds a combo over the given slider activations, with a
// fresh progression holding the rest shape at 0 and a new extreme shape
// at 1.
func (s *Simplex) CreateCombo(name string, pairs []ComboPairSpec, group *Group, solveType string) (*Combo, error) {
	if s.restShape == nil {
		return nil, ErrNoRestShape
	}
	if len(pairs) < 2 {
		return nil, fmt.Errorf("combo %q: need at least two slider pairs", name)
	}
	if group != nil {
		if err := group.accepts(KindCombo); err != nil {
			return nil, fmt.Errorf("combo %q into group %q: %w", name, group.Name(), err)
		}
	}
	if solveType == "" {
		solveType = SolveMin
	}
	var combo *Combo
	err := s.store(func() error {
		if group == nil {
			group = s.defaultGroup(KindCombo)
		}
		prog := newProgression(name, s, InterpSpline)
		prog.insertPair(s.restShape, 0)

		shape, err := s.createShape(name)
		if err != nil {
			return err
		}
		prog.insertPair(shape, 1)

		combo = &Combo{
			item:      newItem(name),
			simplex:   s,
			prog:      prog,
			group:     group,
			solveType: solveType,
			enabled:   true,
		}
		prog.controller = combo
		for _, spec := range pairs {
			combo.pairs = append(combo.pairs, &ComboPair{Slider: spec.Slider, Value: spec.Value, combo: combo})
		}
		group.addItem(combo)
		s.combos = append(s.combos, combo)
		s.notifyInserted(combo)
		return nil
	})
	return combo, err
}

// CreateTraversal adds a traversal driven by a progress and a multiplier
// controller, with a fresh progression holding the rest shape at 0 and a
// new extreme shape at 1.
func (s *Simplex) CreateTraversal(name string, progress Controller, progressFlip bool, multiplier Controller, multiplierFlip bool, group *Group) (*Traversal, error) {
	if s.restShape == nil {
		return nil, ErrNoRestShape
	}
	if group != nil {
		if err := group.accepts(KindTraversal); err != nil {
			return nil, fmt.Errorf("traversal %q into group %q: %w", name, group.Name(), err)
		}
	}
	var trav *Traversal
	err := s.store(func() error {
		if group == nil {
			group = s.defaultGroup(KindTraversal)
		}
		prog := newProgression(name, s, InterpSpline)
		prog.insertPair(s.restShape, 0)

		shape, err := s.createShape(name)
		if err != nil {
			return err
		}
		prog.insertPair(shape, 1)

		trav = &Traversal{
			item:    newItem(name),
			simplex: s,
			prog:    prog,
			group:   group,
			enabled: true,
		}
		prog.controller = trav
		trav.progress = &TravPair{Controller: progress, Flip: progressFlip, Usage: UsageProgress, trav: trav}
		trav.multiplier = &TravPair{Controller: multiplier, Flip: multiplierFlip, Usage: UsageMultiplier, trav: trav}
		group.addItem(trav)
		s.traversals = append(s.traversals, trav)
		s.notifyInserted(trav)
		return nil
	})
	return trav, err
}

// CreatePlanarFalloff adds a planar ramp falloff along an axis. Handles
// are in axis units: minVal <= minHandle <= maxHandle <= maxVal.
func (s *Simplex) CreatePlanarFalloff(name, axis string, maxVal, maxHandle, minHandle, minVal float64) (*Falloff, error) {
	if !(minVal <= minHandle && minHandle <= maxHandle && maxHandle <= maxVal) {
		return nil, fmt.Errorf("falloff %q: handles out of order", name)
	}
	var fo *Falloff
	err := s.store(func() error {
		fo = newPlanarFalloff(name, s, axis, maxVal, maxHandle, minHandle, minVal)
		s.falloffs = append(s.falloffs, fo)
		s.notifyInserted(fo)
		return nil
	})
	return fo, err
}

// CreateMapFalloff adds a falloff backed by an external weight map.
func (s *Simplex) CreateMapFalloff(name, mapName string) (*Falloff, error) {
	var fo *Falloff
	err := s.store(func() error {
		fo = newMapFalloff(name, s, mapName)
		s.falloffs = append(s.falloffs, fo)
		s.notifyInserted(fo)
		return nil
	})
	return fo, err
}

// FindShape looks a shape up by name.
func (s *Simplex) FindShape(name string) *Shape {
	for _, sh := range s.shapes {
		if sh.name == name {
			return sh
		}
	}
	return nil
}

// FindSlider looks a slider up by name.
func (s *Simplex) FindSlider(name string) *Slider {
	for _, sl := range s.sliders {
		if sl.name == name {
			return sl
		}
	}
	return nil
}

// FindCombo looks a combo up by name.
func (s *Simplex) FindCombo(name string) *Combo {
	for _, c := range s.combos {
		if c.name == name {
			return c
		}
	}
	return nil
}

// FindTraversal looks a traversal up by name.
func (s *Simplex) FindTraversal(name string) *Traversal {
	for _, t := range s.traversals {
		if t.name == name {
			return t
		}
	}
	return nil
}

// FindGroup looks a group up by name.
func (s *Simplex) FindGroup(name string) *Group {
	for _, g := range s.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// FindFalloff looks a falloff up by name.
func (s *Simplex) FindFalloff(name string) *Falloff {
	for _, fo := range s.falloffs {
		if fo.name == name {
			return fo
		}
	}
	return nil
}

// ComboExists returns the combo matching these slider/value pairs in any
// order, or nil. Combo names are not reliable for this because pair order
// varies.
func (s *Simplex) ComboExists(sliders []*Slider, values []float64) *Combo {
	check := map[[2]any]struct{}{}
	for i, sl := range sliders {
		check[[2]any{sl.Name(), values[i]}] = struct{}{}
	}
	for _, c := range s.combos {
		if len(c.pairs) != len(check) {
			continue
		}
		match := true
		for _, p := range c.pairs {
			if _, ok := check[[2]any{p.Slider.Name(), p.Value}]; !ok {
				match = false
				break
			}
		}
		if match {
			return c
		}
	}
	return nil
}

// DownstreamCombos returns the combos depending on a slider.
func (s *Simplex) DownstreamCombos(slider *Slider) []*Combo {
	var out []*Combo
	for _, c := range s.combos {
		for _, pair := range c.pairs {
			if pair.Slider == slider {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// DownstreamTraversals returns the traversals depending on a slider,
// directly or through a combo.
func (s *Simplex) DownstreamTraversals(slider *Slider) []*Traversal {
	var out []*Traversal
	for _, t := range s.traversals {
		for _, sl := range t.refSliders() {
			if sl == slider {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// traversalsOnCombo returns the traversals referencing a combo in either
// role.
func (s *Simplex) traversalsOnCombo(combo *Combo) []*Traversal {
	var out []*Traversal
	for _, t := range s.traversals {
		if (t.progress != nil && t.progress.Controller == Controller(combo)) ||
			(t.multiplier != nil && t.multiplier.Controller == Controller(combo)) {
			out = append(out, t)
		}
	}
	return out
}

// deleteDownstream removes everything that depends on item. Runs inside
// the caller's undo scope.
func (s *Simplex) deleteDownstream(item Controller) error {
	switch ctrl := item.(type) {
	case *Slider:
		for _, t := range s.DownstreamTraversals(ctrl) {
			if err := t.Delete(); err != nil {
				return err
			}
		}
		for _, c := range s.DownstreamCombos(ctrl) {
			if err := c.Delete(); err != nil {
				return err
			}
		}
	case *Combo:
		for _, t := range s.traversalsOnCombo(ctrl) {
			if err := t.Delete(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ComboUpstreams returns the non-floating combos that are implied active
// whenever the given combo is active: strict subsets of its pairs with
// matching signs.
func (s *Simplex) ComboUpstreams(combo *Combo) []*Combo {
	pairValues := map[*Slider]float64{}
	for _, p := range combo.pairs {
		pairValues[p.Slider] = p.Value
	}

	var out []*Combo
	for _, c := range s.combos {
		if c == combo || c.IsFloating() {
			continue
		}
		if len(c.pairs) >= len(pairValues) {
			continue
		}
		ok := true
		for _, p := range c.pairs {
			v, found := pairValues[p.Slider]
			if !found || v*p.Value < 0 {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// FloatingShapes returns the shapes reachable from floating combos.
func (s *Simplex) FloatingShapes() []*Shape {
	var out []*Shape
	for _, c := range s.combos {
		if !c.IsFloating() {
			continue
		}
		out = append(out, c.prog.Shapes()...)
	}
	return out
}

// ControllersByDepth orders controllers for vertex computations: sliders
// first, then combos by pair count (regular before floating within a
// depth), then traversals by start pair count.
func (s *Simplex) ControllersByDepth() []Controller {
	out := make([]Controller, 0, len(s.sliders)+len(s.combos)+len(s.traversals))
	for _, sl := range s.sliders {
		out = append(out, sl)
	}

	combosByDepth := map[int][]*Combo{}
	for _, c := range s.combos {
		combosByDepth[len(c.pairs)] = append(combosByDepth[len(c.pairs)], c)
	}
	for _, depth := range sortedKeys(combosByDepth) {
		var regular, floating []*Combo
		for _, c := range combosByDepth[depth] {
			if c.IsFloating() {
				floating = append(floating, c)
			} else {
				regular = append(regular, c)
			}
		}
		for _, c := range append(regular, floating...) {
			out = append(out, c)
		}
	}

	travsByDepth := map[int][]*Traversal{}
	for _, t := range s.traversals {
		d := t.startDepth()
		travsByDepth[d] = append(travsByDepth[d], t)
	}
	for _, depth := range sortedKeys(travsByDepth) {
		for _, t := range travsByDepth[depth] {
			out = append(out, t)
		}
	}
	return out
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
