package domain

import (
	"encoding/json"

	"github.com/aretw0/shaperig/pkg/undo"
)

// cloner is the structural-clone primitive: per-type identity maps acting
// as a memo. Seeding an entry with itself aliases the object (both sides
// of a copy keep referencing the original); anything unseeded is genuinely
// duplicated, exactly once, with every internal reference resolved through
// the memo. Entries are registered before recursing so back-reference
// cycles terminate.
type cloner struct {
	simplexes  map[*Simplex]*Simplex
	shapes     map[*Shape]*Shape
	groups     map[*Group]*Group
	falloffs   map[*Falloff]*Falloff
	sliders    map[*Slider]*Slider
	combos     map[*Combo]*Combo
	traversals map[*Traversal]*Traversal
	progs      map[*Progression]*Progression
}

func newCloner() *cloner {
	return &cloner{
		simplexes:  map[*Simplex]*Simplex{},
		shapes:     map[*Shape]*Shape{},
		groups:     map[*Group]*Group{},
		falloffs:   map[*Falloff]*Falloff{},
		sliders:    map[*Slider]*Slider{},
		combos:     map[*Combo]*Combo{},
		traversals: map[*Traversal]*Traversal{},
		progs:      map[*Progression]*Progression{},
	}
}

// fork duplicates the memo so two independent copies can start from the
// same seed.
func (cl *cloner) fork() *cloner {
	out := newCloner()
	for k, v := range cl.simplexes {
		out.simplexes[k] = v
	}
	for k, v := range cl.shapes {
		out.shapes[k] = v
	}
	for k, v := range cl.groups {
		out.groups[k] = v
	}
	for k, v := range cl.falloffs {
		out.falloffs[k] = v
	}
	for k, v := range cl.sliders {
		out.sliders[k] = v
	}
	for k, v := range cl.combos {
		out.combos[k] = v
	}
	for k, v := range cl.traversals {
		out.traversals[k] = v
	}
	for k, v := range cl.progs {
		out.progs[k] = v
	}
	return out
}

// aliasGraph seeds the memo with every entity owned by s, except those in
// the exclusion set. The root itself is always aliased.
func (cl *cloner) aliasGraph(s *Simplex, except map[any]struct{}) {
	skip := func(item any) bool {
		_, ok := except[item]
		return ok
	}
	cl.simplexes[s] = s
	for _, sh := range s.shapes {
		if !skip(sh) {
			cl.shapes[sh] = sh
		}
	}
	for _, g := range s.groups {
		if !skip(g) {
			cl.groups[g] = g
		}
	}
	for _, fo := range s.falloffs {
		if !skip(fo) {
			cl.falloffs[fo] = fo
		}
	}
	for _, sl := range s.sliders {
		if !skip(sl) {
			cl.sliders[sl] = sl
		}
	}
	for _, c := range s.combos {
		if !skip(c) {
			cl.combos[c] = c
		}
	}
	for _, t := range s.traversals {
		if !skip(t) {
			cl.traversals[t] = t
		}
	}
	for _, p := range s.Progressions() {
		if !skip(p) {
			cl.progs[p] = p
		}
	}
}

// Clone returns a fully detached deep copy of the system: no host, a
// disabled undo stack, live handles dropped in favor of their persistent
// representations, and vertex data carried through the caches.
func (s *Simplex) Clone() *Simplex {
	return newCloner().cloneSimplex(s)
}

func (cl *cloner) cloneSimplex(s *Simplex) *Simplex {
	if out, ok := cl.simplexes[s]; ok {
		return out
	}
	out := &Simplex{
		name:        s.name,
		clusterName: s.clusterName,
		log:         s.log,
		restShape:   nil,
		legacy:      s.legacy,
		extras:      map[string]json.RawMessage{},
		localRev:    s.CurrentRevision(),
	}
	out.stack = undo.NewStack(out)
	out.stack.SetEnabled(false)
	cl.simplexes[s] = out

	for k, v := range s.extras {
		out.extras[k] = v
	}
	for _, sh := range s.shapes {
		out.shapes = append(out.shapes, cl.cloneShape(sh))
	}
	for _, g := range s.groups {
		out.groups = append(out.groups, cl.cloneGroup(g))
	}
	for _, fo := range s.falloffs {
		out.falloffs = append(out.falloffs, cl.cloneFalloff(fo))
	}
	for _, sl := range s.sliders {
		out.sliders = append(out.sliders, cl.cloneSlider(sl))
	}
	for _, c := range s.combos {
		out.combos = append(out.combos, cl.cloneCombo(c))
	}
	for _, t := range s.traversals {
		out.traversals = append(out.traversals, cl.cloneTraversal(t))
	}
	if s.restShape != nil {
		out.restShape = cl.cloneShape(s.restShape)
	}
	return out
}

func (cl *cloner) cloneItem(it item) item {
	out := it
	out.splitApplied = it.copySplitApplied()
	return out
}

func (cl *cloner) cloneShape(sh *Shape) *Shape {
	if out, ok := cl.shapes[sh]; ok {
		return out
	}
	out := &Shape{
		item:      cl.cloneItem(sh.item),
		isRest:    sh.isRest,
		thingRepr: sh.thingRepr,
		verts:     sh.verts,
	}
	cl.shapes[sh] = out
	out.simplex = cl.cloneSimplex(sh.simplex)
	return out
}

func (cl *cloner) cloneGroup(g *Group) *Group {
	if out, ok := cl.groups[g]; ok {
		return out
	}
	out := &Group{
		item:  cl.cloneItem(g.item),
		kind:  g.kind,
		typed: g.typed,
	}
	cl.groups[g] = out
	out.simplex = cl.cloneSimplex(g.simplex)
	for _, member := range g.members {
		out.members = append(out.members, cl.cloneController(member))
	}
	return out
}

func (cl *cloner) cloneFalloff(fo *Falloff) *Falloff {
	if out, ok := cl.falloffs[fo]; ok {
		return out
	}
	out := &Falloff{
		item:      cl.cloneItem(fo.item),
		splitType: fo.splitType,
		axis:      fo.axis,
		maxVal:    fo.maxVal,
		maxHandle: fo.maxHandle,
		minHandle: fo.minHandle,
		minVal:    fo.minVal,
		mapName:   fo.mapName,
		bezier:    fo.bezier,
		weights:   fo.weights,
	}
	cl.falloffs[fo] = out
	out.simplex = cl.cloneSimplex(fo.simplex)
	for _, child := range fo.children {
		out.children = append(out.children, cl.cloneProgression(child))
	}
	return out
}

func (cl *cloner) cloneProgression(p *Progression) *Progression {
	if out, ok := cl.progs[p]; ok {
		return out
	}
	out := &Progression{
		item:   cl.cloneItem(p.item),
		interp: p.interp,
	}
	cl.progs[p] = out
	out.simplex = cl.cloneSimplex(p.simplex)
	for _, pair := range p.pairs {
		out.pairs = append(out.pairs, &ProgPair{
			Shape: cl.cloneShape(pair.Shape),
			Value: pair.Value,
			prog:  out,
		})
	}
	for _, fo := range p.falloffs {
		out.falloffs = append(out.falloffs, cl.cloneFalloff(fo))
	}
	if p.controller != nil {
		out.controller = cl.cloneController(p.controller)
	}
	return out
}

func (cl *cloner) cloneSlider(sl *Slider) *Slider {
	if out, ok := cl.sliders[sl]; ok {
		return out
	}
	out := &Slider{
		item:      cl.cloneItem(sl.item),
		value:     sl.value,
		enabled:   sl.enabled,
		thingRepr: sl.thingRepr,
	}
	cl.sliders[sl] = out
	out.simplex = cl.cloneSimplex(sl.simplex)
	out.prog = cl.cloneProgression(sl.prog)
	out.group = cl.cloneGroup(sl.group)
	return out
}

func (cl *cloner) cloneCombo(c *Combo) *Combo {
	if out, ok := cl.combos[c]; ok {
		return out
	}
	out := &Combo{
		item:      cl.cloneItem(c.item),
		solveType: c.solveType,
		enabled:   c.enabled,
	}
	cl.combos[c] = out
	out.simplex = cl.cloneSimplex(c.simplex)
	out.prog = cl.cloneProgression(c.prog)
	out.group = cl.cloneGroup(c.group)
	for _, pair := range c.pairs {
		out.pairs = append(out.pairs, &ComboPair{
			Slider: cl.cloneSlider(pair.Slider),
			Value:  pair.Value,
			combo:  out,
		})
	}
	return out
}

func (cl *cloner) cloneTraversal(t *Traversal) *Traversal {
	if out, ok := cl.traversals[t]; ok {
		return out
	}
	out := &Traversal{
		item:    cl.cloneItem(t.item),
		enabled: t.enabled,
	}
	cl.traversals[t] = out
	out.simplex = cl.cloneSimplex(t.simplex)
	out.prog = cl.cloneProgression(t.prog)
	out.group = cl.cloneGroup(t.group)
	if t.multiplier != nil {
		out.multiplier = &TravPair{
			Controller: cl.cloneController(t.multiplier.Controller),
			Flip:       t.multiplier.Flip,
			Usage:      t.multiplier.Usage,
			trav:       out,
		}
	}
	if t.progress != nil {
		out.progress = &TravPair{
			Controller: cl.cloneController(t.progress.Controller),
			Flip:       t.progress.Flip,
			Usage:      t.progress.Usage,
			trav:       out,
		}
	}
	return out
}

// Restore swaps a stored snapshot into the live system. The snapshot is
// cloned first so the undo stack's copy stays pristine and can be
// restored again.
func (s *Simplex) Restore(snapshot *Simplex) {
	s.adopt(snapshot.Clone())
}

func (cl *cloner) cloneController(ctrl Controller) Controller {
	switch c := ctrl.(type) {
	case *Slider:
		return cl.cloneSlider(c)
	case *Combo:
		return cl.cloneCombo(c)
	case *Traversal:
		return cl.cloneTraversal(c)
	}
	return nil
}
