package domain

import (
	"fmt"
	"sort"
	"strings"
)

// splitterItem is satisfied by every entity that can land in the
// must-split set: shapes, progressions and the three controller kinds.
type splitterItem interface {
	Name() string
	markSplit(string)
	splitOn(string) bool
}

// Split returns a new, detached system where every controller and shape
// affected by a planar falloff is replaced by two side-tagged copies,
// while everything untouched is shared by reference between both sides.
// The receiver is never mutated; a canceled split just discards the
// scratch copy.
func (s *Simplex) Split(progress func() bool) (*Simplex, error) {
	if err := s.checkSplittable(); err != nil {
		return nil, err
	}
	if err := s.primeSplitData(); err != nil {
		return nil, err
	}

	work := s.Clone()

	// Bucket planar falloffs by axis; list order within an axis is the
	// priority order for ties.
	foByAxis := map[string][]*Falloff{}
	for _, fo := range work.falloffs {
		if fo.splitType != SplitPlanar {
			continue
		}
		axis := strings.ToLower(fo.axis)
		foByAxis[axis] = append(foByAxis[axis], fo)
	}
	axes := make([]string, 0, len(foByAxis))
	for axis := range foByAxis {
		axes = append(axes, axis)
	}
	sort.Strings(axes)

	for _, axis := range axes {
		foList := foByAxis[axis]
		work.log.Info("splitting axis", "axis", axis, "falloffs", len(foList))

		toSplit, splitBy, seed := work.buildSplitterList(foList)

		sideA := seed.fork()
		sideB := seed.fork()

		for _, old := range toSplit {
			if err := checkpoint(progress); err != nil {
				return nil, err
			}
			fo := splitBy[old]
			a := cloneSplitterItem(sideA, old)
			b := cloneSplitterItem(sideB, old)

			splitRename(fo, a, 0)
			splitRename(fo, b, 1)

			if oldShape, ok := old.(*Shape); ok {
				if err := fo.applyFalloff(a.(*Shape), 0); err != nil {
					return nil, fmt.Errorf("reweighting %q: %w", a.Name(), err)
				}
				if err := fo.applyFalloff(b.(*Shape), 1); err != nil {
					return nil, fmt.Errorf("reweighting %q: %w", b.Name(), err)
				}
				oldShape.invalidateVerts()
			}

			work.replaceSplit(old, a, b)
		}
	}
	return work, nil
}

// checkSplittable verifies, per falloff, that every progression is
// uniformly splittable: the controller, the progression and all its
// non-rest shapes agree on whether the side-name transform applies.
// A mixed progression aborts before any mutation.
func (s *Simplex) checkSplittable() error {
	controllers := s.ControllersByDepth()
	for _, fo := range s.falloffs {
		if fo.splitType != SplitPlanar {
			continue
		}
		for _, ctrl := range controllers {
			prog := ctrl.Progression()

			pSplit := fo.canRename(prog.Name())
			cSplit := fo.canRename(ctrl.Name())

			shapeSplit := pSplit
			first := true
			for _, shape := range prog.Shapes() {
				if shape.IsRest() {
					continue
				}
				can := fo.canRename(shape.Name())
				if first {
					shapeSplit = can
					first = false
				} else if can != shapeSplit {
					return fmt.Errorf("progression %q mixes splittable and fixed shape names: %w",
						prog.Name(), ErrNotSplittable)
				}
			}

			if pSplit != shapeSplit {
				return fmt.Errorf("progression %q disagrees with its shapes on falloff %q: %w",
					prog.Name(), fo.Name(), ErrNotSplittable)
			}
			if pSplit != cSplit {
				return fmt.Errorf("controller %q disagrees with progression %q on falloff %q: %w",
					ctrl.Name(), prog.Name(), fo.Name(), ErrNotSplittable)
			}
		}
	}
	return nil
}

// primeSplitData caches every shape's vertex snapshot and computes planar
// falloff weights against the rest shape, so the detached scratch copy
// never needs the host.
func (s *Simplex) primeSplitData() error {
	if s.restShape == nil {
		return ErrNoRestShape
	}
	restVerts, err := s.restShape.Verts()
	if err != nil {
		return err
	}
	for _, sh := range s.shapes {
		if _, err := sh.Verts(); err != nil {
			return err
		}
	}
	for _, fo := range s.falloffs {
		if fo.splitType != SplitPlanar {
			continue
		}
		if err := fo.SetVerts(restVerts); err != nil {
			return err
		}
	}
	return nil
}

// buildSplitterList classifies the system against one axis's falloffs.
// It returns the ordered must-split set, the falloff driving each item's
// split (highest priority wins, lowest falloff-list index breaks ties),
// and a memo pre-seeded with everything else so both side copies share
// the untouched graph.
func (s *Simplex) buildSplitterList(foList []*Falloff) ([]splitterItem, map[splitterItem]*Falloff, *cloner) {
	axis := strings.ToLower(foList[0].axis)

	var toSplit []splitterItem
	seen := map[splitterItem]struct{}{}
	add := func(item splitterItem) {
		if _, ok := seen[item]; !ok {
			seen[item] = struct{}{}
			toSplit = append(toSplit, item)
		}
	}
	splitBySet := map[splitterItem]map[*Falloff]struct{}{}
	tag := func(item splitterItem, fo *Falloff) {
		if splitBySet[item] == nil {
			splitBySet[item] = map[*Falloff]struct{}{}
		}
		splitBySet[item][fo] = struct{}{}
	}

	for _, prog := range s.Progressions() {
		var splitFalloff *Falloff
		for _, fo := range foList {
			for _, pf := range prog.falloffs {
				if pf == fo {
					splitFalloff = fo
					break
				}
			}
			if splitFalloff != nil {
				break
			}
		}
		if splitFalloff == nil {
			continue
		}
		ctrl := prog.controller

		add(prog)
		tag(prog, splitFalloff)
		add(ctrl.(splitterItem))
		tag(ctrl.(splitterItem), splitFalloff)
		for _, pair := range prog.pairs {
			add(pair.Shape)
			tag(pair.Shape, splitFalloff)
		}

		// A split slider drags every downstream combo and traversal with it.
		if slider, ok := ctrl.(*Slider); ok {
			var downstream []Controller
			for _, c := range s.DownstreamCombos(slider) {
				downstream = append(downstream, c)
			}
			for _, t := range s.DownstreamTraversals(slider) {
				downstream = append(downstream, t)
			}
			for _, ds := range downstream {
				add(ds.(splitterItem))
				tag(ds.(splitterItem), splitFalloff)
				add(ds.Progression())
				tag(ds.Progression(), splitFalloff)
				for _, pair := range ds.Progression().pairs {
					add(pair.Shape)
					tag(pair.Shape, splitFalloff)
				}
			}
		}
	}

	splitBy := map[splitterItem]*Falloff{}
	for item, foSet := range splitBySet {
		best := -1
		for idx, fo := range foList {
			if _, ok := foSet[fo]; ok {
				best = idx
				break
			}
		}
		splitBy[item] = foList[best]
	}

	// Exclusions: the rest shape, anything already split on this axis,
	// and anything the side-name transform cannot touch.
	filtered := toSplit[:0]
	for _, item := range toSplit {
		if sh, ok := item.(*Shape); ok && sh.IsRest() {
			continue
		}
		if item.splitOn(axis) {
			continue
		}
		if !foList[0].canRename(item.Name()) {
			continue
		}
		filtered = append(filtered, item)
	}
	toSplit = filtered

	except := map[any]struct{}{}
	for _, item := range toSplit {
		except[any(item)] = struct{}{}
		item.markSplit(axis)
	}
	seed := newCloner()
	seed.aliasGraph(s, except)
	return toSplit, splitBy, seed
}

func cloneSplitterItem(cl *cloner, item splitterItem) splitterItem {
	switch it := item.(type) {
	case *Shape:
		return cl.cloneShape(it)
	case *Progression:
		return cl.cloneProgression(it)
	case *Slider:
		return cl.cloneSlider(it)
	case *Combo:
		return cl.cloneCombo(it)
	case *Traversal:
		return cl.cloneTraversal(it)
	}
	return nil
}

// splitRename applies the side-name transform. Controllers cascade the
// new name onto their progressions; bare progressions are covered by that
// cascade and are skipped here.
func splitRename(fo *Falloff, item splitterItem, side int) {
	switch it := item.(type) {
	case *Shape:
		it.setName(fo.SidedName(it.name, side))
	case *Slider:
		it.setName(fo.SidedName(it.name, side))
	case *Combo:
		it.setName(fo.SidedName(it.name, side))
	case *Traversal:
		it.setName(fo.SidedName(it.name, side))
	}
}

// replaceSplit detaches the original from its owning group and list, and
// appends the two side copies in its place.
func (s *Simplex) replaceSplit(old, a, b splitterItem) {
	swapCtrl := func(oldCtrl Controller, aCtrl, bCtrl Controller) {
		if g := oldCtrl.Group(); g != nil {
			g.removeItem(oldCtrl)
			oldCtrl.setGroup(nil)
		}
		// Group never splits, so both copies share it.
		aCtrl.Group().addItem(aCtrl)
		bCtrl.Group().addItem(bCtrl)
	}

	switch it := old.(type) {
	case *Slider:
		swapCtrl(it, a.(*Slider), b.(*Slider))
		for i, cur := range s.sliders {
			if cur == it {
				s.sliders = append(s.sliders[:i], s.sliders[i+1:]...)
				break
			}
		}
		s.sliders = append(s.sliders, a.(*Slider), b.(*Slider))
	case *Combo:
		swapCtrl(it, a.(*Combo), b.(*Combo))
		for i, cur := range s.combos {
			if cur == it {
				s.combos = append(s.combos[:i], s.combos[i+1:]...)
				break
			}
		}
		s.combos = append(s.combos, a.(*Combo), b.(*Combo))
	case *Traversal:
		swapCtrl(it, a.(*Traversal), b.(*Traversal))
		for i, cur := range s.traversals {
			if cur == it {
				s.traversals = append(s.traversals[:i], s.traversals[i+1:]...)
				break
			}
		}
		s.traversals = append(s.traversals, a.(*Traversal), b.(*Traversal))
	case *Shape:
		for i, cur := range s.shapes {
			if cur == it {
				s.shapes = append(s.shapes[:i], s.shapes[i+1:]...)
				break
			}
		}
		s.shapes = append(s.shapes, a.(*Shape), b.(*Shape))
	}
	// Progressions live on their controllers, not in an owned list;
	// nothing to swap for them.
	s.notifyRemoved(old)
	s.notifyInserted(a)
	s.notifyInserted(b)
}
