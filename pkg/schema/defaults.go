package schema

import "encoding/json"

// Records decoded from named-field sections default their optional fields
// the way the original files expect: controllers are enabled unless the
// record says otherwise, and a missing group index means "pick a default
// bucket" (-1).

func (s *Slider) UnmarshalJSON(data []byte) error {
	type alias Slider
	tmp := alias{Group: -1, Color: DefaultColor, Enabled: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*s = Slider(tmp)
	return nil
}

func (c *Combo) UnmarshalJSON(data []byte) error {
	type alias Combo
	tmp := alias{Group: -1, Color: DefaultColor, Enabled: true, SolveType: SolveMin}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*c = Combo(tmp)
	return nil
}

func (t *Traversal) UnmarshalJSON(data []byte) error {
	type alias Traversal
	tmp := alias{Group: -1, Color: DefaultColor, Enabled: true}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*t = Traversal(tmp)
	return nil
}
