package schema

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDefinition() *Definition {
	return &Definition{
		EncodingVersion: CurrentVersion,
		SystemName:      "Face",
		ClusterName:     "Shape",
		Falloffs: []Falloff{
			{Name: "Falloff_X", Type: SplitPlanar, Axis: "X", MaxVal: 5, MaxHandle: 0.33, MinHandle: 0.66, MinVal: -5, Color: DefaultColor},
		},
		Shapes: []Shape{
			{Name: "Rest_Face", Color: DefaultColor},
			{Name: "Smile", Color: DefaultColor},
			{Name: "Frown", Color: DefaultColor},
			{Name: "SmileFrown", Color: DefaultColor},
		},
		Groups: []Group{
			{Name: "Group_0", Color: DefaultColor, Type: "Slider"},
			{Name: "Group_1", Color: DefaultColor, Type: "Combo"},
		},
		Progressions: []Progression{
			{Name: "Smile", Pairs: []IndexValue{{0, 0}, {1, 1}}, Interp: InterpSpline, Falloffs: []int{0}},
			{Name: "Frown", Pairs: []IndexValue{{0, 0}, {2, 1}}, Interp: InterpSpline},
			{Name: "SmileFrown", Pairs: []IndexValue{{0, 0}, {3, 1}}, Interp: InterpLinear},
		},
		Sliders: []Slider{
			{Name: "Smile", Prog: 0, Group: 0, Color: DefaultColor, Enabled: true},
			{Name: "Frown", Prog: 1, Group: 0, Color: DefaultColor, Enabled: true},
		},
		Combos: []Combo{
			{Name: "SmileFrown", Prog: 2, Pairs: []IndexValue{{0, 1}, {1, 1}}, Group: 1, Color: DefaultColor, Enabled: true, SolveType: SolveMin},
		},
		Extras: map[string]json.RawMessage{},
	}
}

func TestRoundTripCurrentVersion(t *testing.T) {
	want := sampleDefinition()

	data, err := Marshal(want)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshalStableKeyOrder(t *testing.T) {
	d := sampleDefinition()
	d.Extras["uiData"] = json.RawMessage(`{"zoom":2}`)
	d.Extras["authorNotes"] = json.RawMessage(`"wip"`)

	a, err := Marshal(d)
	require.NoError(t, err)
	b, err := Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	// encodingVersion leads, extras trail.
	assert.Equal(t, byte('{'), a[0])
	assert.Contains(t, string(a[:30]), `"encodingVersion"`)
}

func TestExtrasSurviveRoundTrip(t *testing.T) {
	d := sampleDefinition()
	d.Extras["customTool"] = json.RawMessage(`{"pinned":["Smile"]}`)

	data, err := Marshal(d)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pinned":["Smile"]}`, string(got.Extras["customTool"]))
}

func TestExtrasNeverShadowKnownKeys(t *testing.T) {
	d := sampleDefinition()
	d.Extras["systemName"] = json.RawMessage(`"Impostor"`)

	data, err := Marshal(d)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "Face", got.SystemName)
}

func TestParseLegacyFile(t *testing.T) {
	blob := `{
		"encodingVersion": 1,
		"systemName": "Face",
		"clusterName": "Shape",
		"falloffs": [
			["Falloff_X", "planar", "X", 5.0, 0.33, 0.66, -5.0],
			["Falloff_Cheeks", "map", "cheekWeights"]
		],
		"shapes": ["Rest_Face", "Smile", "Frown", "SmileFrown"],
		"groups": ["Group_0", "Group_1"],
		"progressions": [
			["Smile", [0, 1], [0.0, 1.0], "spline", [0]],
			["Frown", [0, 2], [0.0, 1.0], "spline", []],
			["SmileFrown", [0, 3], [0.0, 1.0], "linear", []]
		],
		"sliders": [
			["Smile", 0, 0],
			["Frown", 1, 0]
		],
		"combos": [
			["SmileFrown", 2, [[0, 1.0], [1, 1.0]], 1]
		]
	}`

	d, err := Parse([]byte(blob))
	require.NoError(t, err)

	assert.Equal(t, LegacyVersion, d.EncodingVersion)
	require.Len(t, d.Falloffs, 2)
	assert.Equal(t, SplitPlanar, d.Falloffs[0].Type)
	assert.Equal(t, 0.33, d.Falloffs[0].MaxHandle)
	assert.Equal(t, SplitMap, d.Falloffs[1].Type)
	assert.Equal(t, "cheekWeights", d.Falloffs[1].MapName)

	require.Len(t, d.Progressions, 3)
	assert.Equal(t, []IndexValue{{0, 0}, {1, 1}}, d.Progressions[0].Pairs)
	assert.Equal(t, []int{0}, d.Progressions[0].Falloffs)

	require.Len(t, d.Sliders, 2)
	assert.True(t, d.Sliders[0].Enabled)

	require.Len(t, d.Combos, 1)
	assert.Equal(t, []IndexValue{{0, 1}, {1, 1}}, d.Combos[0].Pairs)
	assert.Equal(t, 1, d.Combos[0].Group)
}

func TestParseTraversalBothShapes(t *testing.T) {
	blob := `{
		"encodingVersion": 3,
		"systemName": "Face",
		"clusterName": "Shape",
		"falloffs": [],
		"shapes": ["Rest_Face", "Open"],
		"groups": [{"name": "Group_2", "color": [128,128,128], "type": "Traversal"}],
		"progressions": [
			{"name": "JawOpen", "pairs": [[0,0],[1,1]], "interp": "spline", "falloffs": []},
			{"name": "T_Open", "pairs": [[0,0],[1,1]], "interp": "spline", "falloffs": []}
		],
		"sliders": [{"name": "JawOpen", "prog": 0, "group": 0, "color": [128,128,128], "enabled": true}],
		"combos": [],
		"traversals": [
			{"name": "T_Open", "prog": 1, "start": [[0, 0.0]], "end": [[0, 1.0]],
			 "group": 0, "color": [128,128,128], "enabled": true},
			{"name": "T_Legacy", "prog": 1,
			 "progressType": "Slider", "progressControl": 0, "progressFlip": false,
			 "multiplierType": "Slider", "multiplierControl": 0, "multiplierFlip": true,
			 "group": 0, "color": [128,128,128], "enabled": true}
		]
	}`

	d, err := Parse([]byte(blob))
	require.NoError(t, err)
	require.Len(t, d.Traversals, 2)

	assert.True(t, d.Traversals[0].HasPoints())
	assert.Equal(t, []IndexValue{{0, 0}}, d.Traversals[0].Start)
	assert.Equal(t, []IndexValue{{0, 1}}, d.Traversals[0].End)

	assert.False(t, d.Traversals[1].HasPoints())
	assert.Equal(t, ControlSlider, d.Traversals[1].ProgressType)
	assert.True(t, d.Traversals[1].MultiplierFlip)
}

func TestValidateReportsEverything(t *testing.T) {
	d := sampleDefinition()
	d.Sliders[0].Prog = 99
	d.Combos[0].Pairs[0].Index = -1
	d.Progressions[1].Interp = "bezier"

	err := d.Validate()
	require.Error(t, err)

	errs := ValidationErrors(err)
	require.Len(t, errs, 3)
	sections := map[string]bool{}
	for _, ve := range errs {
		sections[ve.Section] = true
	}
	assert.True(t, sections["sliders"])
	assert.True(t, sections["combos"])
	assert.True(t, sections["progressions"])
}

func TestParseGrouplessDocument(t *testing.T) {
	// Files written before group support carry no groups[] section; the
	// loader synthesizes the conventional buckets, so -1 indices must
	// survive validation.
	raw := []byte(`{
		"encodingVersion": 3,
		"systemName": "Face",
		"clusterName": "Shape",
		"shapes": [{"name": "Rest_Face"}, {"name": "Smile"}],
		"progressions": [{"name": "Smile", "pairs": [[0, 0], [1, 1]], "interp": "spline"}],
		"sliders": [{"name": "Smile", "prog": 0}]
	}`)

	def, err := Parse(raw)
	require.NoError(t, err)
	assert.Empty(t, def.Groups)
	assert.Equal(t, -1, def.Sliders[0].Group)
}

func TestParseRejectsUnknownVersion(t *testing.T) {
	_, err := Parse([]byte(`{"encodingVersion": 9}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported version")
}

func TestIndexValueJSONShape(t *testing.T) {
	data, err := json.Marshal(IndexValue{Index: 3, Value: 0.5})
	require.NoError(t, err)
	assert.Equal(t, `[3,0.5]`, string(data))

	var iv IndexValue
	require.NoError(t, json.Unmarshal([]byte(`[7, 1]`), &iv))
	assert.Equal(t, IndexValue{7, 1}, iv)

	assert.Error(t, json.Unmarshal([]byte(`[1.5, 1]`), &iv))
}

func TestColorToleratesAlpha(t *testing.T) {
	var c Color
	require.NoError(t, json.Unmarshal([]byte(`[10, 20, 30, 255]`), &c))
	assert.Equal(t, Color{10, 20, 30}, c)

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `[10,20,30]`, string(data))
}
