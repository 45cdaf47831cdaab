package schema

import (
	"encoding/json"
	"fmt"
)

// Parse reads a definition blob in any supported encoding version.
// Unknown top-level keys are preserved in Extras; known sections are
// validated structurally (index bounds, required fields) before returning.
func Parse(data []byte) (*Definition, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("definition is not a JSON object: %w", err)
	}

	d := &Definition{Extras: map[string]json.RawMessage{}}

	verRaw, ok := raw["encodingVersion"]
	if !ok {
		return nil, &ValidationError{Section: "encodingVersion", Index: -1, Reason: "missing"}
	}
	if err := json.Unmarshal(verRaw, &d.EncodingVersion); err != nil {
		return nil, &ValidationError{Section: "encodingVersion", Index: -1, Reason: "not an integer"}
	}
	if d.EncodingVersion < LegacyVersion || d.EncodingVersion > CurrentVersion {
		return nil, &ValidationError{
			Section: "encodingVersion", Index: -1,
			Reason: fmt.Sprintf("unsupported version %d", d.EncodingVersion),
		}
	}

	if s, ok := raw["systemName"]; ok {
		if err := json.Unmarshal(s, &d.SystemName); err != nil {
			return nil, &ValidationError{Section: "systemName", Index: -1, Reason: "not a string"}
		}
	}
	if s, ok := raw["clusterName"]; ok {
		if err := json.Unmarshal(s, &d.ClusterName); err != nil {
			return nil, &ValidationError{Section: "clusterName", Index: -1, Reason: "not a string"}
		}
	}

	var err error
	if d.EncodingVersion == LegacyVersion {
		err = d.parseLegacySections(raw)
	} else {
		err = d.parseNamedSections(raw)
	}
	if err != nil {
		return nil, err
	}

	// Everything not claimed above rides along untouched.
	known := map[string]bool{}
	for _, k := range knownKeys {
		known[k] = true
	}
	for k, v := range raw {
		if !known[k] {
			d.Extras[k] = v
		}
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// parseNamedSections handles versions 2 and 3 (named-field records).
func (d *Definition) parseNamedSections(raw map[string]json.RawMessage) error {
	sections := []struct {
		key string
		dst any
	}{
		{"falloffs", &d.Falloffs},
		{"shapes", &d.Shapes},
		{"groups", &d.Groups},
		{"progressions", &d.Progressions},
		{"sliders", &d.Sliders},
		{"combos", &d.Combos},
		{"traversals", &d.Traversals},
	}
	for _, s := range sections {
		msg, ok := raw[s.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(msg, s.dst); err != nil {
			return &ValidationError{Section: s.key, Index: -1, Reason: err.Error()}
		}
	}
	return nil
}

// parseLegacySections handles version 1 (flat indexed arrays).
func (d *Definition) parseLegacySections(raw map[string]json.RawMessage) error {
	if msg, ok := raw["falloffs"]; ok {
		var rows [][]any
		if err := json.Unmarshal(msg, &rows); err != nil {
			return &ValidationError{Section: "falloffs", Index: -1, Reason: err.Error()}
		}
		for i, row := range rows {
			fo, err := legacyFalloff(row)
			if err != nil {
				return &ValidationError{Section: "falloffs", Index: i, Reason: err.Error()}
			}
			d.Falloffs = append(d.Falloffs, fo)
		}
	}

	if msg, ok := raw["shapes"]; ok {
		var names []string
		if err := json.Unmarshal(msg, &names); err != nil {
			return &ValidationError{Section: "shapes", Index: -1, Reason: "expected an array of names"}
		}
		for _, n := range names {
			d.Shapes = append(d.Shapes, Shape{Name: n, Color: DefaultColor})
		}
	}

	if msg, ok := raw["groups"]; ok {
		var names []string
		if err := json.Unmarshal(msg, &names); err != nil {
			return &ValidationError{Section: "groups", Index: -1, Reason: "expected an array of names"}
		}
		for _, n := range names {
			// Legacy groups are untyped; the loader infers the kind from
			// the first controller that references them.
			d.Groups = append(d.Groups, Group{Name: n, Color: DefaultColor})
		}
	}

	if msg, ok := raw["progressions"]; ok {
		var rows []json.RawMessage
		if err := json.Unmarshal(msg, &rows); err != nil {
			return &ValidationError{Section: "progressions", Index: -1, Reason: err.Error()}
		}
		for i, row := range rows {
			p, err := legacyProgression(row)
			if err != nil {
				return &ValidationError{Section: "progressions", Index: i, Reason: err.Error()}
			}
			d.Progressions = append(d.Progressions, p)
		}
	}

	if msg, ok := raw["sliders"]; ok {
		var rows [][]any
		if err := json.Unmarshal(msg, &rows); err != nil {
			return &ValidationError{Section: "sliders", Index: -1, Reason: err.Error()}
		}
		for i, row := range rows {
			if len(row) < 3 {
				return &ValidationError{Section: "sliders", Index: i, Reason: "expected [name, prog, group]"}
			}
			name, ok := row[0].(string)
			if !ok {
				return &ValidationError{Section: "sliders", Index: i, Reason: "name is not a string"}
			}
			prog, ok1 := asInt(row[1])
			group, ok2 := asInt(row[2])
			if !ok1 || !ok2 {
				return &ValidationError{Section: "sliders", Index: i, Reason: "prog/group are not integers"}
			}
			d.Sliders = append(d.Sliders, Slider{
				Name: name, Prog: prog, Group: group,
				Color: DefaultColor, Enabled: true,
			})
		}
	}

	if msg, ok := raw["combos"]; ok {
		var rows []json.RawMessage
		if err := json.Unmarshal(msg, &rows); err != nil {
			return &ValidationError{Section: "combos", Index: -1, Reason: err.Error()}
		}
		for i, row := range rows {
			c, err := legacyCombo(row)
			if err != nil {
				return &ValidationError{Section: "combos", Index: i, Reason: err.Error()}
			}
			d.Combos = append(d.Combos, c)
		}
	}

	// Traversals never had a flat-array form; legacy files that carry them
	// use the named records.
	if msg, ok := raw["traversals"]; ok {
		if err := json.Unmarshal(msg, &d.Traversals); err != nil {
			return &ValidationError{Section: "traversals", Index: -1, Reason: err.Error()}
		}
	}
	return nil
}

// legacyFalloff parses [name, "planar", axis, max, maxH, minH, min] or
// [name, "map", mapName].
func legacyFalloff(row []any) (Falloff, error) {
	if len(row) < 2 {
		return Falloff{}, fmt.Errorf("expected at least [name, type]")
	}
	name, ok := row[0].(string)
	if !ok {
		return Falloff{}, fmt.Errorf("name is not a string")
	}
	tpe, ok := row[1].(string)
	if !ok {
		return Falloff{}, fmt.Errorf("type is not a string")
	}
	fo := Falloff{Name: name, Type: tpe, Color: DefaultColor}
	switch tpe {
	case SplitPlanar:
		if len(row) != 7 {
			return Falloff{}, fmt.Errorf("planar falloff expects 7 fields, got %d", len(row))
		}
		axis, ok := row[2].(string)
		if !ok {
			return Falloff{}, fmt.Errorf("axis is not a string")
		}
		fo.Axis = axis
		vals := make([]float64, 4)
		for i, cell := range row[3:7] {
			f, ok := asFloat(cell)
			if !ok {
				return Falloff{}, fmt.Errorf("ramp value %d is not a number", i)
			}
			vals[i] = f
		}
		fo.MaxVal, fo.MaxHandle, fo.MinHandle, fo.MinVal = vals[0], vals[1], vals[2], vals[3]
	case SplitMap:
		if len(row) < 3 {
			return Falloff{}, fmt.Errorf("map falloff expects a map name")
		}
		mapName, ok := row[2].(string)
		if !ok {
			return Falloff{}, fmt.Errorf("map name is not a string")
		}
		fo.MapName = mapName
	default:
		return Falloff{}, fmt.Errorf("unknown falloff type %q", tpe)
	}
	return fo, nil
}

// legacyProgression parses [name, [shapeIdxs], [values], interp, [foIdxs]].
func legacyProgression(row json.RawMessage) (Progression, error) {
	var rec struct {
		name    string
		shapes  []int
		values  []float64
		interp  string
		foIdxs  []int
	}
	var cells []json.RawMessage
	if err := json.Unmarshal(row, &cells); err != nil {
		return Progression{}, err
	}
	if len(cells) != 5 {
		return Progression{}, fmt.Errorf("expected 5 fields, got %d", len(cells))
	}
	if err := json.Unmarshal(cells[0], &rec.name); err != nil {
		return Progression{}, fmt.Errorf("name: %w", err)
	}
	if err := json.Unmarshal(cells[1], &rec.shapes); err != nil {
		return Progression{}, fmt.Errorf("shape indices: %w", err)
	}
	if err := json.Unmarshal(cells[2], &rec.values); err != nil {
		return Progression{}, fmt.Errorf("values: %w", err)
	}
	if err := json.Unmarshal(cells[3], &rec.interp); err != nil {
		return Progression{}, fmt.Errorf("interp: %w", err)
	}
	if err := json.Unmarshal(cells[4], &rec.foIdxs); err != nil {
		return Progression{}, fmt.Errorf("falloff indices: %w", err)
	}
	if len(rec.shapes) != len(rec.values) {
		return Progression{}, fmt.Errorf("shape/value count mismatch: %d != %d", len(rec.shapes), len(rec.values))
	}
	p := Progression{Name: rec.name, Interp: rec.interp, Falloffs: rec.foIdxs}
	for i := range rec.shapes {
		p.Pairs = append(p.Pairs, IndexValue{Index: rec.shapes[i], Value: rec.values[i]})
	}
	return p, nil
}

// legacyCombo parses [name, prog, [[sliderIdx, value]...], group?].
func legacyCombo(row json.RawMessage) (Combo, error) {
	var cells []json.RawMessage
	if err := json.Unmarshal(row, &cells); err != nil {
		return Combo{}, err
	}
	if len(cells) < 3 {
		return Combo{}, fmt.Errorf("expected at least [name, prog, pairs]")
	}
	c := Combo{Group: -1, Color: DefaultColor, Enabled: true}
	if err := json.Unmarshal(cells[0], &c.Name); err != nil {
		return Combo{}, fmt.Errorf("name: %w", err)
	}
	if err := json.Unmarshal(cells[1], &c.Prog); err != nil {
		return Combo{}, fmt.Errorf("prog: %w", err)
	}
	if err := json.Unmarshal(cells[2], &c.Pairs); err != nil {
		return Combo{}, fmt.Errorf("pairs: %w", err)
	}
	if len(cells) >= 4 {
		if err := json.Unmarshal(cells[3], &c.Group); err != nil {
			return Combo{}, fmt.Errorf("group: %w", err)
		}
	}
	return c, nil
}

func asInt(v any) (int, bool) {
	f, ok := v.(float64)
	if !ok || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

func asFloat(v any) (float64, bool) {
	f, ok := v.(float64)
	return f, ok
}
