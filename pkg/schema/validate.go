package schema

import "fmt"

// Validate checks cross-section index references and per-record shape.
// All problems are collected so a caller can report the whole file at once.
func (d *Definition) Validate() error {
	var errs []error
	add := func(section string, index int, format string, args ...any) {
		errs = append(errs, &ValidationError{
			Section: section, Index: index, Reason: fmt.Sprintf(format, args...),
		})
	}

	nShapes := len(d.Shapes)
	nGroups := len(d.Groups)
	nProgs := len(d.Progressions)
	nSliders := len(d.Sliders)
	nFalloffs := len(d.Falloffs)
	nCombos := len(d.Combos)

	for i, fo := range d.Falloffs {
		switch fo.Type {
		case SplitPlanar:
			switch fo.Axis {
			case "X", "Y", "Z", "x", "y", "z":
			default:
				add("falloffs", i, "unknown axis %q", fo.Axis)
			}
		case SplitMap:
			if fo.MapName == "" {
				add("falloffs", i, "map falloff without a map name")
			}
		default:
			add("falloffs", i, "unknown falloff type %q", fo.Type)
		}
	}

	for i, p := range d.Progressions {
		for _, pair := range p.Pairs {
			if pair.Index < 0 || pair.Index >= nShapes {
				add("progressions", i, "shape index %d out of range [0,%d)", pair.Index, nShapes)
			}
		}
		for _, fi := range p.Falloffs {
			if fi < 0 || fi >= nFalloffs {
				add("progressions", i, "falloff index %d out of range [0,%d)", fi, nFalloffs)
			}
		}
		switch p.Interp {
		case InterpLinear, InterpSpline, InterpSplitSpline, "":
		default:
			add("progressions", i, "unknown interpolation %q", p.Interp)
		}
	}

	for i, s := range d.Sliders {
		if s.Prog < 0 || s.Prog >= nProgs {
			add("sliders", i, "progression index %d out of range [0,%d)", s.Prog, nProgs)
		}
		// -1 asks the loader to synthesize the conventional group.
		if s.Group < -1 || s.Group >= nGroups {
			add("sliders", i, "group index %d out of range [0,%d)", s.Group, nGroups)
		}
	}

	for i, c := range d.Combos {
		if c.Prog < 0 || c.Prog >= nProgs {
			add("combos", i, "progression index %d out of range [0,%d)", c.Prog, nProgs)
		}
		// -1 asks the loader to bucket the combo by depth.
		if c.Group < -1 || c.Group >= nGroups {
			add("combos", i, "group index %d out of range [0,%d)", c.Group, nGroups)
		}
		if len(c.Pairs) == 0 {
			add("combos", i, "combo with no driving sliders")
		}
		for _, pair := range c.Pairs {
			if pair.Index < 0 || pair.Index >= nSliders {
				add("combos", i, "slider index %d out of range [0,%d)", pair.Index, nSliders)
			}
		}
		switch c.SolveType {
		case SolveMin, SolveMulAll, SolveMulExtremes, SolveMulAvgExt, SolveMulAvgAll, "":
		default:
			add("combos", i, "unknown solve type %q", c.SolveType)
		}
	}

	for i, t := range d.Traversals {
		if t.Prog < 0 || t.Prog >= nProgs {
			add("traversals", i, "progression index %d out of range [0,%d)", t.Prog, nProgs)
		}
		if t.Group < -1 || t.Group >= nGroups {
			add("traversals", i, "group index %d out of range [0,%d)", t.Group, nGroups)
		}
		if t.HasPoints() {
			for _, pair := range append(append([]IndexValue{}, t.Start...), t.End...) {
				if pair.Index < 0 || pair.Index >= nSliders {
					add("traversals", i, "slider index %d out of range [0,%d)", pair.Index, nSliders)
				}
			}
			continue
		}
		checkControl := func(kind string, idx int) {
			switch kind {
			case ControlSlider:
				if idx < 0 || idx >= nSliders {
					add("traversals", i, "slider index %d out of range [0,%d)", idx, nSliders)
				}
			case ControlCombo:
				if idx < 0 || idx >= nCombos {
					add("traversals", i, "combo index %d out of range [0,%d)", idx, nCombos)
				}
			default:
				add("traversals", i, "unknown controller type %q", kind)
			}
		}
		checkControl(t.ProgressType, t.ProgressControl)
		checkControl(t.MultiplierType, t.MultiplierControl)
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &AggregateError{Errors: errs}
	}
}
