package schema

import (
	"encoding/json"
	"fmt"
)

// Encoding generations. Writers emit CurrentVersion unless legacy output is
// requested, in which case they emit LegacyVersion.
const (
	LegacyVersion  = 1
	Version2       = 2
	CurrentVersion = 3
)

// Interpolation modes carried by progression records.
const (
	InterpLinear      = "linear"
	InterpSpline      = "spline"
	InterpSplitSpline = "splitspline"
)

// Combo solve types. The UI label "None" maps onto SolveMin in the solver,
// so it never appears on disk.
const (
	SolveMin         = "min"
	SolveMulAll      = "allMul"
	SolveMulExtremes = "extMul"
	SolveMulAvgExt   = "mulAvgExt"
	SolveMulAvgAll   = "mulAvgAll"
)

// Falloff split types.
const (
	SplitPlanar = "planar"
	SplitMap    = "map"
)

// Color is an RGB triple serialized as a 3-element JSON array.
type Color [3]uint8

// DefaultColor is the neutral gray assigned to items created without an
// explicit color.
var DefaultColor = Color{128, 128, 128}

// MarshalJSON writes the color as [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(c[0]), int(c[1]), int(c[2])})
}

// UnmarshalJSON reads [r, g, b]; extra elements (alpha) are ignored.
func (c *Color) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	if len(raw) < 3 {
		return fmt.Errorf("color: expected at least 3 components, got %d", len(raw))
	}
	for i := 0; i < 3; i++ {
		if raw[i] < 0 || raw[i] > 255 {
			return fmt.Errorf("color: component %d out of range: %v", i, raw[i])
		}
		c[i] = uint8(raw[i])
	}
	return nil
}

// IndexValue is a (build index, scalar value) pair serialized as the
// 2-element JSON array [index, value].
type IndexValue struct {
	Index int
	Value float64
}

// MarshalJSON writes the pair as [index, value].
func (p IndexValue) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{p.Index, p.Value})
}

// UnmarshalJSON reads [index, value].
func (p *IndexValue) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("pair: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("pair: expected 2 elements, got %d", len(raw))
	}
	if raw[0] != float64(int(raw[0])) {
		return fmt.Errorf("pair: index %v is not an integer", raw[0])
	}
	p.Index = int(raw[0])
	p.Value = raw[1]
	return nil
}

// Shape is one entry of the shapes[] section. The rest shape is always
// index 0.
type Shape struct {
	Name  string `json:"name" mapstructure:"name"`
	Color Color  `json:"color" mapstructure:"color"`
}

// Group is one entry of the groups[] section. Type is one of "Slider",
// "Combo" or "Traversal"; version 1 records carry only the name and leave
// Type empty for the loader to infer from the referencing controllers.
type Group struct {
	Name  string `json:"name" mapstructure:"name"`
	Color Color  `json:"color" mapstructure:"color"`
	Type  string `json:"type" mapstructure:"type"`
}

// Falloff is one entry of the falloffs[] section. Planar falloffs populate
// Axis and the four ramp scalars; map falloffs populate MapName.
type Falloff struct {
	Name      string  `json:"name" mapstructure:"name"`
	Type      string  `json:"type" mapstructure:"type"`
	Axis      string  `json:"axis" mapstructure:"axis"`
	MaxVal    float64 `json:"maxVal" mapstructure:"maxVal"`
	MaxHandle float64 `json:"maxHandle" mapstructure:"maxHandle"`
	MinHandle float64 `json:"minHandle" mapstructure:"minHandle"`
	MinVal    float64 `json:"minVal" mapstructure:"minVal"`
	MapName   string  `json:"mapName" mapstructure:"mapName"`
	Color     Color   `json:"color" mapstructure:"color"`
}

// Progression is one entry of the progressions[] section. Pairs reference
// shapes[] build indices; Falloffs reference falloffs[] build indices.
type Progression struct {
	Name     string       `json:"name"`
	Pairs    []IndexValue `json:"pairs"`
	Interp   string       `json:"interp"`
	Falloffs []int        `json:"falloffs"`
}

// Slider is one entry of the sliders[] section.
type Slider struct {
	Name    string `json:"name"`
	Prog    int    `json:"prog"`
	Group   int    `json:"group"`
	Color   Color  `json:"color"`
	Enabled bool   `json:"enabled"`
}

// Combo is one entry of the combos[] section. Pairs reference sliders[]
// build indices. A Group of -1 means the record carried no group and the
// loader should bucket the combo by depth.
type Combo struct {
	Name      string       `json:"name"`
	Prog      int          `json:"prog"`
	Pairs     []IndexValue `json:"pairs"`
	Group     int          `json:"group"`
	Color     Color        `json:"color"`
	Enabled   bool         `json:"enabled"`
	SolveType string       `json:"solveType"`
}

// Controller reference types used by traversal records.
const (
	ControlSlider = "Slider"
	ControlCombo  = "Combo"
)

// Traversal is one entry of the traversals[] section, carrying both record
// generations. Version 2 populates the six control fields; version 3
// populates Start/End pair lists over sliders[] build indices instead.
// HasPoints reports which generation a parsed record used.
type Traversal struct {
	Name string `json:"name"`
	Prog int    `json:"prog"`

	ProgressType      string `json:"progressType,omitempty"`
	ProgressControl   int    `json:"progressControl,omitempty"`
	ProgressFlip      bool   `json:"progressFlip,omitempty"`
	MultiplierType    string `json:"multiplierType,omitempty"`
	MultiplierControl int    `json:"multiplierControl,omitempty"`
	MultiplierFlip    bool   `json:"multiplierFlip,omitempty"`

	Start []IndexValue `json:"start,omitempty"`
	End   []IndexValue `json:"end,omitempty"`

	Group   int   `json:"group"`
	Color   Color `json:"color"`
	Enabled bool  `json:"enabled"`
}

// HasPoints reports whether the record uses the version 3 start/end shape.
func (t *Traversal) HasPoints() bool {
	return len(t.Start) > 0 || len(t.End) > 0
}

// Definition is the parsed, version-neutral form of one rig definition.
// Extras carries unknown top-level keys verbatim so they survive a
// load/save round trip; known keys always win over extras on write.
type Definition struct {
	EncodingVersion int
	SystemName      string
	ClusterName     string
	Falloffs        []Falloff
	Shapes          []Shape
	Groups          []Group
	Progressions    []Progression
	Sliders         []Slider
	Combos          []Combo
	Traversals      []Traversal
	Extras          map[string]json.RawMessage
}

// knownKeys are the top-level definition keys owned by this package, in
// emission order. Anything else round-trips through Extras.
var knownKeys = []string{
	"encodingVersion",
	"systemName",
	"clusterName",
	"falloffs",
	"shapes",
	"groups",
	"progressions",
	"sliders",
	"combos",
	"traversals",
}
