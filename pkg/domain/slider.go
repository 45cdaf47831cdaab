package domain

import (
	"fmt"

	"github.com/aretw0/shaperig/pkg/ports"
)

// Slider is a single continuous input axis driving one progression.
type Slider struct {
	item
	simplex *Simplex
	prog    *Progression
	group   *Group

	value   float64
	enabled bool

	thing     ports.Handle
	thingRepr string
}

func (sl *Slider) isController()             {}
func (sl *Slider) Kind() ControllerKind      { return KindSlider }
func (sl *Slider) Progression() *Progression { return sl.prog }
func (sl *Slider) Group() *Group             { return sl.group }
func (sl *Slider) Enabled() bool             { return sl.enabled }
func (sl *Slider) Value() float64            { return sl.value }

func (sl *Slider) setGroup(g *Group) { sl.group = g }

// MinValue returns the lowest pair value in the slider's progression.
func (sl *Slider) MinValue() float64 {
	mn := 0.0
	for _, pair := range sl.prog.pairs {
		if pair.Value < mn {
			mn = pair.Value
		}
	}
	return mn
}

// MaxValue returns the highest pair value in the slider's progression.
func (sl *Slider) MaxValue() float64 {
	mx := 0.0
	for _, pair := range sl.prog.pairs {
		if pair.Value > mx {
			mx = pair.Value
		}
	}
	return mx
}

// SetEnabled toggles the slider as one undo step.
func (sl *Slider) SetEnabled(enabled bool) error {
	return sl.simplex.store(func() error {
		sl.enabled = enabled
		sl.simplex.notifyChanged(sl)
		return nil
	})
}

// SetValue sets the evaluated weight, clamped to the progression range,
// and pushes it to the host.
func (sl *Slider) SetValue(value float64) error {
	if mn, mx := sl.MinValue(), sl.MaxValue(); value < mn {
		value = mn
	} else if value > mx {
		value = mx
	}
	sl.value = value
	if sl.simplex.host != nil && sl.thing != "" {
		if err := sl.simplex.host.SetSliderWeight(sl.thing, value); err != nil {
			return fmt.Errorf("slider %q: %w", sl.name, err)
		}
	}
	sl.simplex.notifyChanged(sl)
	return nil
}

// Rename changes the slider's name as one undo step. The progression
// follows the controller's name.
func (sl *Slider) Rename(name string) error {
	if sl.name == name {
		return nil
	}
	return sl.simplex.store(func() error {
		sl.setName(name)
		return nil
	})
}

func (sl *Slider) setName(name string) {
	sl.name = name
	sl.prog.name = name
	if sl.simplex.host != nil && sl.thing != "" {
		sl.simplex.host.RenameSlider(sl.thing, name)
	}
	sl.simplex.notifyChanged(sl)
}

// Delete removes the slider, its progression's non-rest shapes, and every
// combo and traversal depending on it.
func (sl *Slider) Delete() error {
	return sl.simplex.store(func() error {
		if err := sl.simplex.deleteDownstream(sl); err != nil {
			return err
		}
		sl.group.removeItem(sl)
		sl.group = nil
		for i, cur := range sl.simplex.sliders {
			if cur == sl {
				sl.simplex.sliders = append(sl.simplex.sliders[:i], sl.simplex.sliders[i+1:]...)
				break
			}
		}
		for _, pair := range sl.prog.Pairs() {
			if !pair.Shape.IsRest() {
				sl.simplex.removeShape(pair.Shape)
			}
		}
		if sl.simplex.host != nil && sl.thing != "" {
			sl.simplex.host.DeleteSlider(sl.thing)
		}
		sl.simplex.notifyRemoved(sl)
		return nil
	})
}
