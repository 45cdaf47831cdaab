package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Marshal renders the definition in its own encoding version. Known keys
// come out in a stable order with extras appended alphabetically, so two
// dumps of the same definition are byte-identical.
func Marshal(d *Definition) ([]byte, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	sections, err := d.encodeSections()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string, msg json.RawMessage) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(msg)
	}

	for _, key := range knownKeys {
		if msg, ok := sections[key]; ok {
			writeKey(key, msg)
		}
	}

	extraKeys := make([]string, 0, len(d.Extras))
	for k := range d.Extras {
		if _, claimed := sections[k]; claimed {
			continue
		}
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		writeKey(k, d.Extras[k])
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *Definition) encodeSections() (map[string]json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	put := func(key string, v any) error {
		msg, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", key, err)
		}
		out[key] = msg
		return nil
	}

	if err := put("encodingVersion", d.EncodingVersion); err != nil {
		return nil, err
	}
	if err := put("systemName", d.SystemName); err != nil {
		return nil, err
	}
	if err := put("clusterName", d.ClusterName); err != nil {
		return nil, err
	}

	if d.EncodingVersion == LegacyVersion {
		if err := d.encodeLegacySections(put); err != nil {
			return nil, err
		}
		return out, nil
	}

	if err := put("falloffs", nonNil(d.Falloffs)); err != nil {
		return nil, err
	}
	if err := put("shapes", nonNil(d.Shapes)); err != nil {
		return nil, err
	}
	if err := put("groups", nonNil(d.Groups)); err != nil {
		return nil, err
	}
	if err := put("progressions", nonNil(d.Progressions)); err != nil {
		return nil, err
	}
	if err := put("sliders", nonNil(d.Sliders)); err != nil {
		return nil, err
	}
	if err := put("combos", nonNil(d.Combos)); err != nil {
		return nil, err
	}

	travs := make([]json.RawMessage, 0, len(d.Traversals))
	for i, t := range d.Traversals {
		msg, err := t.encode(d.EncodingVersion)
		if err != nil {
			return nil, &ValidationError{Section: "traversals", Index: i, Reason: err.Error()}
		}
		travs = append(travs, msg)
	}
	if err := put("traversals", travs); err != nil {
		return nil, err
	}
	return out, nil
}

// encode picks the traversal record shape per version. Version 3 uses
// start/end point lists; a traversal still driven by a combo has no point
// form and keeps the control-field record.
func (t Traversal) encode(version int) (json.RawMessage, error) {
	if version >= CurrentVersion && t.HasPoints() {
		return json.Marshal(struct {
			Name    string       `json:"name"`
			Prog    int          `json:"prog"`
			Start   []IndexValue `json:"start"`
			End     []IndexValue `json:"end"`
			Group   int          `json:"group"`
			Color   Color        `json:"color"`
			Enabled bool         `json:"enabled"`
		}{t.Name, t.Prog, t.Start, t.End, t.Group, t.Color, t.Enabled})
	}
	return json.Marshal(struct {
		Name              string `json:"name"`
		Prog              int    `json:"prog"`
		ProgressType      string `json:"progressType"`
		ProgressControl   int    `json:"progressControl"`
		ProgressFlip      bool   `json:"progressFlip"`
		MultiplierType    string `json:"multiplierType"`
		MultiplierControl int    `json:"multiplierControl"`
		MultiplierFlip    bool   `json:"multiplierFlip"`
		Group             int    `json:"group"`
		Color             Color  `json:"color"`
		Enabled           bool   `json:"enabled"`
	}{
		t.Name, t.Prog,
		t.ProgressType, t.ProgressControl, t.ProgressFlip,
		t.MultiplierType, t.MultiplierControl, t.MultiplierFlip,
		t.Group, t.Color, t.Enabled,
	})
}

func (d *Definition) encodeLegacySections(put func(string, any) error) error {
	falloffs := make([][]any, 0, len(d.Falloffs))
	for _, fo := range d.Falloffs {
		switch fo.Type {
		case SplitMap:
			falloffs = append(falloffs, []any{fo.Name, fo.Type, fo.MapName})
		default:
			falloffs = append(falloffs, []any{
				fo.Name, fo.Type, fo.Axis,
				fo.MaxVal, fo.MaxHandle, fo.MinHandle, fo.MinVal,
			})
		}
	}
	if err := put("falloffs", falloffs); err != nil {
		return err
	}

	shapes := make([]string, 0, len(d.Shapes))
	for _, s := range d.Shapes {
		shapes = append(shapes, s.Name)
	}
	if err := put("shapes", shapes); err != nil {
		return err
	}

	groups := make([]string, 0, len(d.Groups))
	for _, g := range d.Groups {
		groups = append(groups, g.Name)
	}
	if err := put("groups", groups); err != nil {
		return err
	}

	progs := make([][]any, 0, len(d.Progressions))
	for _, p := range d.Progressions {
		idxs := make([]int, 0, len(p.Pairs))
		vals := make([]float64, 0, len(p.Pairs))
		for _, pair := range p.Pairs {
			idxs = append(idxs, pair.Index)
			vals = append(vals, pair.Value)
		}
		progs = append(progs, []any{p.Name, idxs, vals, p.Interp, nonNil(p.Falloffs)})
	}
	if err := put("progressions", progs); err != nil {
		return err
	}

	sliders := make([][]any, 0, len(d.Sliders))
	for _, s := range d.Sliders {
		sliders = append(sliders, []any{s.Name, s.Prog, s.Group})
	}
	if err := put("sliders", sliders); err != nil {
		return err
	}

	combos := make([][]any, 0, len(d.Combos))
	for _, c := range d.Combos {
		combos = append(combos, []any{c.Name, c.Prog, nonNil(c.Pairs), c.Group})
	}
	if err := put("combos", combos); err != nil {
		return err
	}

	if len(d.Traversals) > 0 {
		if err := put("traversals", d.Traversals); err != nil {
			return err
		}
	}
	return nil
}

// nonNil keeps empty sections rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
