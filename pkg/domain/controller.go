package domain

// ControllerKind tags the closed set of controller variants.
type ControllerKind int

const (
	KindSlider ControllerKind = iota
	KindCombo
	KindTraversal
)

func (k ControllerKind) String() string {
	switch k {
	case KindSlider:
		return "Slider"
	case KindCombo:
		return "Combo"
	case KindTraversal:
		return "Traversal"
	}
	return "Unknown"
}

// Controller is implemented by exactly Slider, Combo and Traversal. The
// unexported method keeps the variant closed so split and serialization
// can exhaustively switch on the concrete types.
type Controller interface {
	Name() string
	Kind() ControllerKind
	Progression() *Progression
	Group() *Group
	Enabled() bool
	SetEnabled(bool) error

	// setName swaps the stored name and cascades to the progression and
	// host without going through the undo stack. Split patch-up and the
	// public Rename methods both land here.
	setName(string)
	setGroup(*Group)
	isController()
}

// item carries the fields every named graph entity shares.
type item struct {
	name         string
	color        Color
	buildIdx     int
	splitApplied map[string]struct{}
}

func newItem(name string) item {
	return item{name: name, color: DefaultColor, buildIdx: -1}
}

func (it *item) Name() string { return it.name }

func (it *item) Color() Color        { return it.color }
func (it *item) SetColor(c Color)    { it.color = c }
func (it *item) clearBuildIndex()    { it.buildIdx = -1 }
func (it *item) hasBuildIndex() bool { return it.buildIdx >= 0 }

func (it *item) markSplit(axis string) {
	if it.splitApplied == nil {
		it.splitApplied = map[string]struct{}{}
	}
	it.splitApplied[axis] = struct{}{}
}

func (it *item) splitOn(axis string) bool {
	_, ok := it.splitApplied[axis]
	return ok
}

func (it *item) copySplitApplied() map[string]struct{} {
	if it.splitApplied == nil {
		return nil
	}
	out := make(map[string]struct{}, len(it.splitApplied))
	for k := range it.splitApplied {
		out[k] = struct{}{}
	}
	return out
}
