package domain

// Group is a typed bucket of same-kind controllers, used for organization
// and depth bucketing. The kind is fixed once the first controller lands.
type Group struct {
	item
	simplex *Simplex

	kind    ControllerKind
	typed   bool
	members []Controller
}

func newGroup(name string, simplex *Simplex) *Group {
	return &Group{item: newItem(name), simplex: simplex}
}

// Kind returns the controller kind this group holds. Meaningful only once
// Typed reports true.
func (g *Group) Kind() ControllerKind { return g.kind }

// Typed reports whether the group's kind has been fixed.
func (g *Group) Typed() bool { return g.typed }

// Members returns the controllers in the group, in insertion order.
func (g *Group) Members() []Controller {
	out := make([]Controller, len(g.members))
	copy(out, g.members)
	return out
}

// accepts checks kind compatibility, fixing the kind on first use.
func (g *Group) accepts(kind ControllerKind) error {
	if g.typed && g.kind != kind {
		return ErrGroupKindMismatch
	}
	return nil
}

func (g *Group) addItem(ctrl Controller) {
	if !g.typed {
		g.kind = ctrl.Kind()
		g.typed = true
	}
	g.members = append(g.members, ctrl)
}

func (g *Group) removeItem(ctrl Controller) {
	for i, cur := range g.members {
		if cur == ctrl {
			g.members = append(g.members[:i], g.members[i+1:]...)
			return
		}
	}
}

// Rename changes the group's name as one undo step.
func (g *Group) Rename(name string) error {
	if g.name == name {
		return nil
	}
	return g.simplex.store(func() error {
		g.name = name
		g.simplex.notifyChanged(g)
		return nil
	})
}

// Delete removes the group and every member controller. The last group of
// a kind cannot be deleted.
func (g *Group) Delete() error {
	if g.typed {
		remaining := 0
		for _, other := range g.simplex.groups {
			if other != g && other.typed && other.kind == g.kind {
				remaining++
			}
		}
		if remaining == 0 {
			return ErrLastGroup
		}
	}
	return g.simplex.store(func() error {
		for _, ctrl := range g.Members() {
			var err error
			switch c := ctrl.(type) {
			case *Slider:
				err = c.Delete()
			case *Combo:
				err = c.Delete()
			case *Traversal:
				err = c.Delete()
			}
			if err != nil {
				return err
			}
		}
		for i, cur := range g.simplex.groups {
			if cur == g {
				g.simplex.groups = append(g.simplex.groups[:i], g.simplex.groups[i+1:]...)
				break
			}
		}
		g.simplex.notifyRemoved(g)
		return nil
	})
}
