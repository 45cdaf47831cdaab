package domain

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/shaperig/pkg/schema"
)

// BuildDefinition emits the system as a definition record. Build indices
// are cleared and lazily reassigned on every call so each section only
// back-references indices assigned earlier in the walk: shapes, groups,
// falloffs, sliders, combos, traversals, with progressions appended the
// first time a controller references them.
func (s *Simplex) BuildDefinition() (*schema.Definition, error) {
	s.clearBuildIndexes()

	version := schema.CurrentVersion
	if s.legacy {
		version = schema.LegacyVersion
	}
	b := &defBuilder{
		def: &schema.Definition{
			EncodingVersion: version,
			SystemName:      s.name,
			ClusterName:     s.clusterName,
			Extras:          map[string]json.RawMessage{},
		},
	}
	for k, v := range s.extras {
		b.def.Extras[k] = v
	}

	// Rest shape must land at index 0; it is first in the shapes list.
	for _, sh := range s.shapes {
		b.shapeIdx(sh)
	}
	for _, g := range s.groups {
		b.groupIdx(g)
	}
	for _, fo := range s.falloffs {
		b.falloffIdx(fo)
	}
	for _, sl := range s.sliders {
		b.sliderIdx(sl)
	}
	for _, c := range s.combos {
		b.comboIdx(c)
	}
	for _, t := range s.traversals {
		b.traversalIdx(t)
	}
	return b.def, nil
}

// Dump serializes the system to a definition JSON blob.
func (s *Simplex) Dump() ([]byte, error) {
	d, err := s.BuildDefinition()
	if err != nil {
		return nil, err
	}
	return schema.Marshal(d)
}

func (s *Simplex) clearBuildIndexes() {
	for _, sh := range s.shapes {
		sh.clearBuildIndex()
	}
	for _, g := range s.groups {
		g.clearBuildIndex()
	}
	for _, fo := range s.falloffs {
		fo.clearBuildIndex()
	}
	for _, sl := range s.sliders {
		sl.clearBuildIndex()
		sl.prog.clearBuildIndex()
	}
	for _, c := range s.combos {
		c.clearBuildIndex()
		c.prog.clearBuildIndex()
	}
	for _, t := range s.traversals {
		t.clearBuildIndex()
		t.prog.clearBuildIndex()
	}
}

// defBuilder assigns build indices on first visit and appends the matching
// record.
type defBuilder struct {
	def *schema.Definition
}

func (b *defBuilder) shapeIdx(sh *Shape) int {
	if !sh.hasBuildIndex() {
		sh.buildIdx = len(b.def.Shapes)
		b.def.Shapes = append(b.def.Shapes, schema.Shape{Name: sh.name, Color: sh.color})
	}
	return sh.buildIdx
}

func (b *defBuilder) groupIdx(g *Group) int {
	if !g.hasBuildIndex() {
		g.buildIdx = len(b.def.Groups)
		rec := schema.Group{Name: g.name, Color: g.color}
		if g.typed {
			rec.Type = g.kind.String()
		}
		b.def.Groups = append(b.def.Groups, rec)
	}
	return g.buildIdx
}

func (b *defBuilder) falloffIdx(fo *Falloff) int {
	if !fo.hasBuildIndex() {
		fo.buildIdx = len(b.def.Falloffs)
		b.def.Falloffs = append(b.def.Falloffs, schema.Falloff{
			Name:      fo.name,
			Type:      fo.splitType,
			Axis:      fo.axis,
			MaxVal:    fo.maxVal,
			MaxHandle: fo.maxHandle,
			MinHandle: fo.minHandle,
			MinVal:    fo.minVal,
			MapName:   fo.mapName,
			Color:     fo.color,
		})
	}
	return fo.buildIdx
}

func (b *defBuilder) progIdx(p *Progression) int {
	if !p.hasBuildIndex() {
		rec := schema.Progression{Name: p.name, Interp: p.interp}
		for _, pair := range p.Pairs() {
			rec.Pairs = append(rec.Pairs, schema.IndexValue{
				Index: b.shapeIdx(pair.Shape),
				Value: pair.Value,
			})
		}
		for _, fo := range p.falloffs {
			rec.Falloffs = append(rec.Falloffs, b.falloffIdx(fo))
		}
		p.buildIdx = len(b.def.Progressions)
		b.def.Progressions = append(b.def.Progressions, rec)
	}
	return p.buildIdx
}

func (b *defBuilder) sliderIdx(sl *Slider) int {
	if !sl.hasBuildIndex() {
		rec := schema.Slider{
			Name:    sl.name,
			Prog:    b.progIdx(sl.prog),
			Group:   b.groupIdx(sl.group),
			Color:   sl.color,
			Enabled: sl.enabled,
		}
		sl.buildIdx = len(b.def.Sliders)
		b.def.Sliders = append(b.def.Sliders, rec)
	}
	return sl.buildIdx
}

func (b *defBuilder) comboIdx(c *Combo) int {
	if !c.hasBuildIndex() {
		rec := schema.Combo{
			Name:      c.name,
			Prog:      b.progIdx(c.prog),
			Group:     b.groupIdx(c.group),
			Color:     c.color,
			Enabled:   c.enabled,
			SolveType: c.solveType,
		}
		for _, pair := range c.pairs {
			rec.Pairs = append(rec.Pairs, schema.IndexValue{
				Index: b.sliderIdx(pair.Slider),
				Value: pair.Value,
			})
		}
		c.buildIdx = len(b.def.Combos)
		b.def.Combos = append(b.def.Combos, rec)
	}
	return c.buildIdx
}

func (b *defBuilder) traversalIdx(t *Traversal) int {
	if !t.hasBuildIndex() {
		rec := schema.Traversal{
			Name:    t.name,
			Prog:    b.progIdx(t.prog),
			Group:   b.groupIdx(t.group),
			Color:   t.color,
			Enabled: t.enabled,
		}
		for _, r := range t.sliderRanges() {
			idx := b.sliderIdx(r.slider)
			rec.Start = append(rec.Start, schema.IndexValue{Index: idx, Value: r.start})
			rec.End = append(rec.End, schema.IndexValue{Index: idx, Value: r.end})
		}
		t.buildIdx = len(b.def.Traversals)
		b.def.Traversals = append(b.def.Traversals, rec)
	}
	return t.buildIdx
}

// LoadDefinition rebuilds the system from a definition record as one undo
// step. The build happens on a scratch system first; the live one is only
// swapped on success, so a failed load leaves it untouched. When create is
// false, missing host-side shapes and sliders abort the load.
func (s *Simplex) LoadDefinition(def *schema.Definition, create bool, progress func() bool) error {
	return s.store(func() error {
		fresh := NewSimplex(def.SystemName, s.host, s.log)
		if err := fresh.loadInto(def, create, progress); err != nil {
			return err
		}
		s.adopt(fresh)
		return nil
	})
}

// LoadJSON parses a definition blob and loads it.
func (s *Simplex) LoadJSON(data []byte, create bool, progress func() bool) error {
	def, err := schema.Parse(data)
	if err != nil {
		return err
	}
	return s.LoadDefinition(def, create, progress)
}

func checkpoint(progress func() bool) error {
	if progress != nil && !progress() {
		return ErrCanceled
	}
	return nil
}

// loadInto populates an empty system from the record.
func (s *Simplex) loadInto(def *schema.Definition, create bool, progress func() bool) error {
	if def.SystemName != "" {
		s.name = def.SystemName
	}
	if def.ClusterName != "" {
		s.clusterName = def.ClusterName
	}
	s.legacy = def.EncodingVersion == schema.LegacyVersion

	for _, rec := range def.Falloffs {
		var fo *Falloff
		switch rec.Type {
		case SplitPlanar:
			fo = newPlanarFalloff(rec.Name, s, rec.Axis, rec.MaxVal, rec.MaxHandle, rec.MinHandle, rec.MinVal)
		case SplitMap:
			fo = newMapFalloff(rec.Name, s, rec.MapName)
		default:
			return fmt.Errorf("falloff %q: unknown type %q", rec.Name, rec.Type)
		}
		fo.color = rec.Color
		s.falloffs = append(s.falloffs, fo)
	}

	for i, rec := range def.Shapes {
		if err := checkpoint(progress); err != nil {
			return err
		}
		shape := newShape(rec.Name, s)
		shape.color = rec.Color
		if s.host != nil {
			h, err := s.host.FindShape(rec.Name)
			if err != nil {
				return fmt.Errorf("looking up shape %q: %w", rec.Name, err)
			}
			if h == "" {
				if !create {
					return fmt.Errorf("shape %q missing on host: %w", rec.Name, ErrNotFound)
				}
				h, err = s.host.CreateShape(rec.Name)
				if err != nil {
					return fmt.Errorf("creating shape %q: %w", rec.Name, err)
				}
			}
			shape.setHandle(h)
		}
		if i == 0 {
			shape.isRest = true
			s.restShape = shape
		}
		s.shapes = append(s.shapes, shape)
	}

	for _, rec := range def.Groups {
		g := newGroup(rec.Name, s)
		g.color = rec.Color
		switch rec.Type {
		case KindSlider.String():
			g.kind, g.typed = KindSlider, true
		case KindCombo.String():
			g.kind, g.typed = KindCombo, true
		case KindTraversal.String():
			g.kind, g.typed = KindTraversal, true
		}
		s.groups = append(s.groups, g)
	}

	progs := make([]*Progression, 0, len(def.Progressions))
	for _, rec := range def.Progressions {
		p := newProgression(rec.Name, s, rec.Interp)
		for _, pair := range rec.Pairs {
			p.insertPair(s.shapes[pair.Index], pair.Value)
		}
		for _, fi := range rec.Falloffs {
			fo := s.falloffs[fi]
			p.falloffs = append(p.falloffs, fo)
			fo.children = append(fo.children, p)
		}
		progs = append(progs, p)
	}

	claimGroup := func(idx int, kind ControllerKind, owner string) (*Group, error) {
		var g *Group
		if idx >= 0 && idx < len(s.groups) {
			g = s.groups[idx]
		} else {
			g = s.defaultGroup(kind)
		}
		if err := g.accepts(kind); err != nil {
			return nil, fmt.Errorf("%s %q into group %q: %w", kind, owner, g.Name(), err)
		}
		return g, nil
	}

	for _, rec := range def.Sliders {
		if err := checkpoint(progress); err != nil {
			return err
		}
		group, err := claimGroup(rec.Group, KindSlider, rec.Name)
		if err != nil {
			return err
		}
		sl := &Slider{
			item:    newItem(rec.Name),
			simplex: s,
			prog:    progs[rec.Prog],
			group:   group,
			enabled: rec.Enabled,
		}
		sl.color = rec.Color
		sl.prog.controller = sl
		if s.host != nil {
			h, err := s.host.FindSlider(rec.Name)
			if err != nil {
				return fmt.Errorf("looking up slider %q: %w", rec.Name, err)
			}
			if h == "" {
				if !create {
					return fmt.Errorf("slider %q missing on host: %w", rec.Name, ErrNotFound)
				}
				h, err = s.host.CreateSlider(rec.Name)
				if err != nil {
					return fmt.Errorf("creating slider %q: %w", rec.Name, err)
				}
			}
			sl.thing = h
		}
		group.addItem(sl)
		s.sliders = append(s.sliders, sl)
	}

	for _, rec := range def.Combos {
		if err := checkpoint(progress); err != nil {
			return err
		}
		c := &Combo{
			item:      newItem(rec.Name),
			simplex:   s,
			prog:      progs[rec.Prog],
			solveType: rec.SolveType,
			enabled:   rec.Enabled,
		}
		c.color = rec.Color
		c.prog.controller = c
		for _, pair := range rec.Pairs {
			c.pairs = append(c.pairs, &ComboPair{Slider: s.sliders[pair.Index], Value: pair.Value, combo: c})
		}
		var group *Group
		if rec.Group < 0 {
			group = s.depthGroup(len(c.pairs))
		} else {
			var err error
			group, err = claimGroup(rec.Group, KindCombo, rec.Name)
			if err != nil {
				return err
			}
		}
		c.group = group
		group.addItem(c)
		s.combos = append(s.combos, c)
	}

	for _, rec := range def.Traversals {
		if err := checkpoint(progress); err != nil {
			return err
		}
		t := &Traversal{
			item:    newItem(rec.Name),
			simplex: s,
			prog:    progs[rec.Prog],
			enabled: rec.Enabled,
		}
		t.color = rec.Color
		t.prog.controller = t
		if rec.HasPoints() {
			if err := s.loadTraversalPoints(t, rec); err != nil {
				return err
			}
		} else {
			if err := s.loadTraversalControls(t, rec); err != nil {
				return err
			}
		}
		group, err := claimGroup(rec.Group, KindTraversal, rec.Name)
		if err != nil {
			return err
		}
		t.group = group
		group.addItem(t)
		s.traversals = append(s.traversals, t)
	}

	s.extras = map[string]json.RawMessage{}
	for k, v := range def.Extras {
		s.extras[k] = v
	}
	return nil
}

// depthGroup finds or creates the "DEPTH_n" combo bucket.
func (s *Simplex) depthGroup(depth int) *Group {
	name := fmt.Sprintf("DEPTH_%d", depth)
	for _, g := range s.groups {
		if g.name == name {
			return g
		}
	}
	g := newGroup(name, s)
	g.kind, g.typed = KindCombo, true
	s.groups = append(s.groups, g)
	return g
}

// loadTraversalControls wires a traversal from the version 2 record shape:
// explicit progress/multiplier controller references.
func (s *Simplex) loadTraversalControls(t *Traversal, rec schema.Traversal) error {
	resolve := func(kind string, idx int) (Controller, error) {
		switch kind {
		case schema.ControlSlider:
			return s.sliders[idx], nil
		case schema.ControlCombo:
			return s.combos[idx], nil
		}
		return nil, fmt.Errorf("traversal %q: unknown controller type %q", t.name, kind)
	}
	progCtrl, err := resolve(rec.ProgressType, rec.ProgressControl)
	if err != nil {
		return err
	}
	multCtrl, err := resolve(rec.MultiplierType, rec.MultiplierControl)
	if err != nil {
		return err
	}
	t.progress = &TravPair{Controller: progCtrl, Flip: rec.ProgressFlip, Usage: UsageProgress, trav: t}
	t.multiplier = &TravPair{Controller: multCtrl, Flip: rec.MultiplierFlip, Usage: UsageMultiplier, trav: t}
	return nil
}

// loadTraversalPoints reconstructs the two roles from the version 3
// start/end span lists: sliders holding one value throughout form the
// multiplier side, sliders traveling from zero form the progress side.
// A multi-slider side must correspond to an existing combo.
func (s *Simplex) loadTraversalPoints(t *Traversal, rec schema.Traversal) error {
	startVals := map[int]float64{}
	for _, iv := range rec.Start {
		startVals[iv.Index] = iv.Value
	}
	endVals := map[int]float64{}
	for _, iv := range rec.End {
		endVals[iv.Index] = iv.Value
	}

	var progSliders, multSliders []*Slider
	var progValues, multValues []float64
	for _, iv := range rec.Start {
		start, end := iv.Value, endVals[iv.Index]
		sl := s.sliders[iv.Index]
		if start == end {
			multSliders = append(multSliders, sl)
			multValues = append(multValues, end)
		} else {
			progSliders = append(progSliders, sl)
			progValues = append(progValues, end)
		}
	}
	for _, iv := range rec.End {
		if _, seen := startVals[iv.Index]; !seen {
			progSliders = append(progSliders, s.sliders[iv.Index])
			progValues = append(progValues, iv.Value)
		}
	}

	side := func(sliders []*Slider, values []float64, usage string) (*TravPair, error) {
		switch len(sliders) {
		case 0:
			return nil, nil
		case 1:
			return &TravPair{Controller: sliders[0], Flip: values[0] < 0, Usage: usage, trav: t}, nil
		}
		combo := s.ComboExists(sliders, values)
		if combo == nil {
			return nil, fmt.Errorf("traversal %q: no combo matches its %s sliders: %w", t.name, usage, ErrNotFound)
		}
		return &TravPair{Controller: combo, Usage: usage, trav: t}, nil
	}

	var err error
	if t.progress, err = side(progSliders, progValues, UsageProgress); err != nil {
		return err
	}
	if t.multiplier, err = side(multSliders, multValues, UsageMultiplier); err != nil {
		return err
	}
	return nil
}

// adopt replaces s's graph with the one built on fresh, rebinding every
// entity's root pointer.
func (s *Simplex) adopt(fresh *Simplex) {
	s.name = fresh.name
	s.clusterName = fresh.clusterName
	s.legacy = fresh.legacy
	s.shapes = fresh.shapes
	s.groups = fresh.groups
	s.falloffs = fresh.falloffs
	s.sliders = fresh.sliders
	s.combos = fresh.combos
	s.traversals = fresh.traversals
	s.restShape = fresh.restShape
	s.extras = fresh.extras

	for _, sh := range s.shapes {
		sh.simplex = s
	}
	for _, g := range s.groups {
		g.simplex = s
	}
	for _, fo := range s.falloffs {
		fo.simplex = s
	}
	for _, sl := range s.sliders {
		sl.simplex = s
		sl.prog.simplex = s
	}
	for _, c := range s.combos {
		c.simplex = s
		c.prog.simplex = s
	}
	for _, t := range s.traversals {
		t.simplex = s
		t.prog.simplex = s
	}
	s.notifyChanged(s)
}
