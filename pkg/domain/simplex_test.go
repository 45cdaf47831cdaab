package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
	"github.com/aretw0/shaperig/pkg/schema"
	"github.com/aretw0/shaperig/pkg/undo"
)

func TestBuildDefinitionSmileSlider(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	_, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)

	def, err := s.BuildDefinition()
	require.NoError(t, err)

	assert.Equal(t, schema.CurrentVersion, def.EncodingVersion)
	assert.Equal(t, "Face", def.SystemName)

	// The rest shape always serializes first.
	require.NotEmpty(t, def.Shapes)
	assert.Equal(t, "Rest_Face", def.Shapes[0].Name)

	require.Len(t, def.Sliders, 1)
	sl := def.Sliders[0]
	assert.Equal(t, "Smile", sl.Name)
	require.Less(t, sl.Prog, len(def.Progressions))
	require.Less(t, sl.Group, len(def.Groups))

	prog := def.Progressions[sl.Prog]
	assert.Equal(t, "Smile", prog.Name)
	require.Len(t, prog.Pairs, 2)
	assert.Equal(t, schema.IndexValue{Index: 0, Value: 0}, prog.Pairs[0])
	assert.Equal(t, "Smile", def.Shapes[prog.Pairs[1].Index].Name)
	assert.Equal(t, 1.0, prog.Pairs[1].Value)
}

func TestBuildDefinitionIndexBounds(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	smile, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)
	frown, err := s.CreateSlider("Frown", nil)
	require.NoError(t, err)
	_, err = s.CreateCombo("Smile_Frown", []domain.ComboPairSpec{
		{Slider: smile, Value: 1}, {Slider: frown, Value: 1},
	}, nil, schema.SolveMin)
	require.NoError(t, err)
	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	require.NoError(t, smile.Progression().AddFalloff(fo))

	def, err := s.BuildDefinition()
	require.NoError(t, err)

	// Validate walks every cross reference, so a clean pass means no
	// section points past another's length.
	require.NoError(t, def.Validate())

	for _, p := range def.Progressions {
		for _, fi := range p.Falloffs {
			assert.Less(t, fi, len(def.Falloffs))
		}
	}
	for _, c := range def.Combos {
		for _, pair := range c.Pairs {
			assert.Less(t, pair.Index, len(def.Sliders))
		}
	}
}

// buildRichRig assembles a system touching every serialized section.
func buildRichRig(t *testing.T) *domain.Simplex {
	t.Helper()
	s, _ := newFaceRig(t, lineMesh(-1, -0.5, 0, 0.5, 1))

	smile, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)
	jaw, err := s.CreateSlider("JawOpen", nil)
	require.NoError(t, err)
	_, err = smile.Progression().CreateShape("", 0.5)
	require.NoError(t, err)

	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	require.NoError(t, smile.Progression().AddFalloff(fo))

	_, err = s.CreateCombo("JawOpen_Smile", []domain.ComboPairSpec{
		{Slider: jaw, Value: 1}, {Slider: smile, Value: 1},
	}, nil, schema.SolveMin)
	require.NoError(t, err)

	_, err = s.CreateTraversal("SmileDriven", smile, false, jaw, false, nil)
	require.NoError(t, err)
	return s
}

func TestDumpLoadRoundTrip(t *testing.T) {
	s := buildRichRig(t)

	first, err := s.Dump()
	require.NoError(t, err)

	loaded := domain.NewSimplex("Scratch", memory.NewHost(lineMesh(-1, -0.5, 0, 0.5, 1)), nil)
	require.NoError(t, loaded.LoadJSON(first, true, nil))

	assert.Equal(t, "Face", loaded.Name())
	assert.Len(t, loaded.Sliders(), 2)
	assert.Len(t, loaded.Combos(), 1)
	assert.Len(t, loaded.Traversals(), 1)
	require.NotNil(t, loaded.RestShape())
	assert.Equal(t, "Rest_Face", loaded.RestShape().Name())

	trav := loaded.Traversals()[0]
	assert.Equal(t, "Smile", trav.Progress().Controller.Name())
	assert.Equal(t, "JawOpen", trav.Multiplier().Controller.Name())

	// Serialization is byte stable across a round trip.
	second, err := loaded.Dump()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestDumpLoadRoundTripLegacy(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	smile, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)
	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	require.NoError(t, smile.Progression().AddFalloff(fo))
	s.SetLegacy(true)

	first, err := s.Dump()
	require.NoError(t, err)

	loaded := domain.NewSimplex("Scratch", memory.NewHost(lineMesh(-1, 0, 1)), nil)
	require.NoError(t, loaded.LoadJSON(first, true, nil))
	assert.True(t, loaded.Legacy())
	require.Len(t, loaded.Sliders(), 1)
	assert.Equal(t, "Smile", loaded.Sliders()[0].Name())
	require.Len(t, loaded.Falloffs(), 1)
	assert.Equal(t, "X", loaded.Falloffs()[0].Axis())

	second, err := loaded.Dump()
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}

func TestLoadSynthesizesDefaultGroups(t *testing.T) {
	// Old files carry no groups[] section at all; sliders decode with a
	// -1 group index and land in the conventional bucket.
	raw := []byte(`{
		"encodingVersion": 3,
		"systemName": "Face",
		"clusterName": "Shape",
		"shapes": [{"name": "Rest_Face"}, {"name": "Smile"}],
		"progressions": [{"name": "Smile", "pairs": [[0, 0], [1, 1]], "interp": "spline"}],
		"sliders": [{"name": "Smile", "prog": 0}]
	}`)

	loaded := domain.NewSimplex("Scratch", memory.NewHost(lineMesh(-1, 0, 1)), nil)
	require.NoError(t, loaded.LoadJSON(raw, true, nil))

	require.Len(t, loaded.Sliders(), 1)
	group := loaded.Sliders()[0].Group()
	require.NotNil(t, group)
	assert.Equal(t, "Group_0", group.Name())
	assert.Equal(t, domain.KindSlider, group.Kind())
}

func TestLoadIsAllOrNothing(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	_, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)

	// Out-of-range progression index makes the payload invalid.
	bad := []byte(`{
		"encodingVersion": 3,
		"systemName": "Broken",
		"clusterName": "Broken",
		"falloffs": [],
		"shapes": [{"name": "Rest_Broken"}],
		"groups": [{"name": "G"}],
		"progressions": [],
		"sliders": [{"name": "S", "prog": 42, "group": 0}],
		"combos": [],
		"traversals": []
	}`)
	err = s.LoadJSON(bad, false, nil)
	require.Error(t, err)

	// The live system is untouched.
	assert.Equal(t, "Face", s.Name())
	require.Len(t, s.Sliders(), 1)
	assert.Equal(t, "Smile", s.Sliders()[0].Name())
}

func TestSliderDeleteCascade(t *testing.T) {
	s, host := newFaceRig(t, lineMesh(-1, 0, 1))
	a, err := s.CreateSlider("Brow", nil)
	require.NoError(t, err)
	b, err := s.CreateSlider("Squint", nil)
	require.NoError(t, err)
	c, err := s.CreateSlider("Sneer", nil)
	require.NoError(t, err)

	mk := func(name string, first, second *domain.Slider) {
		t.Helper()
		_, err := s.CreateCombo(name, []domain.ComboPairSpec{
			{Slider: first, Value: 1}, {Slider: second, Value: 1},
		}, nil, schema.SolveMin)
		require.NoError(t, err)
	}
	mk("Brow_Squint", a, b)
	mk("Brow_Sneer", a, c)
	mk("Squint_Sneer", b, c)

	shapesBefore := host.ShapeCount()
	require.NoError(t, a.Delete())

	assert.Nil(t, s.FindSlider("Brow"))
	assert.Nil(t, s.FindCombo("Brow_Squint"))
	assert.Nil(t, s.FindCombo("Brow_Sneer"))
	assert.NotNil(t, s.FindCombo("Squint_Sneer"))
	assert.Len(t, s.Combos(), 1)

	// The slider's extreme shape and both dead combo shapes are gone
	// from the host too.
	assert.Equal(t, shapesBefore-3, host.ShapeCount())
	assert.Nil(t, s.FindShape("Brow"))
	assert.NotNil(t, s.FindShape("Squint_Sneer"))
}

func TestComboQueries(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	a, err := s.CreateSlider("Brow", nil)
	require.NoError(t, err)
	b, err := s.CreateSlider("Squint", nil)
	require.NoError(t, err)
	c, err := s.CreateSlider("Sneer", nil)
	require.NoError(t, err)

	ab, err := s.CreateCombo("Brow_Squint", []domain.ComboPairSpec{
		{Slider: a, Value: 1}, {Slider: b, Value: 1},
	}, nil, schema.SolveMin)
	require.NoError(t, err)
	abc, err := s.CreateCombo("Brow_Squint_Sneer", []domain.ComboPairSpec{
		{Slider: a, Value: 1}, {Slider: b, Value: 1}, {Slider: c, Value: 1},
	}, nil, schema.SolveMin)
	require.NoError(t, err)
	floating, err := s.CreateCombo("Brow_Half", []domain.ComboPairSpec{
		{Slider: a, Value: 0.5}, {Slider: c, Value: 1},
	}, nil, schema.SolveMin)
	require.NoError(t, err)

	t.Run("ComboExists ignores pair order", func(t *testing.T) {
		assert.Equal(t, ab, s.ComboExists([]*domain.Slider{b, a}, []float64{1, 1}))
		assert.Nil(t, s.ComboExists([]*domain.Slider{b, a}, []float64{1, -1}))
	})

	t.Run("IsFloating and FloatingShapes", func(t *testing.T) {
		assert.False(t, ab.IsFloating())
		assert.True(t, floating.IsFloating())
		names := []string{}
		for _, sh := range s.FloatingShapes() {
			names = append(names, sh.Name())
		}
		assert.Equal(t, []string{"Rest_Face", "Brow_Half"}, names)
	})

	t.Run("ComboUpstreams finds strict sub-combos", func(t *testing.T) {
		ups := s.ComboUpstreams(abc)
		require.Len(t, ups, 1)
		assert.Equal(t, ab, ups[0])
		assert.Empty(t, s.ComboUpstreams(ab))
	})

	t.Run("BuildComboName sorts by slider name", func(t *testing.T) {
		name := domain.BuildComboName([]*domain.Slider{c, a}, []float64{1, 1})
		assert.Equal(t, "Brow_Sneer", name)
	})

	t.Run("DownstreamCombos", func(t *testing.T) {
		downs := s.DownstreamCombos(a)
		assert.Len(t, downs, 3)
		assert.Len(t, s.DownstreamCombos(b), 2)
	})

	t.Run("ControllersByDepth orders sliders then combos by arity", func(t *testing.T) {
		ctrls := s.ControllersByDepth()
		require.Len(t, ctrls, 6)
		assert.Equal(t, domain.KindSlider, ctrls[0].Kind())
		assert.Equal(t, domain.KindSlider, ctrls[1].Kind())
		assert.Equal(t, domain.KindSlider, ctrls[2].Kind())
		// Regular combos come before floating ones of the same depth.
		assert.Equal(t, ab, ctrls[3])
		assert.Equal(t, floating, ctrls[4])
		assert.Equal(t, abc, ctrls[5])
	})
}

func TestUndoStackRestore(t *testing.T) {
	s, host := newFaceRig(t, lineMesh(-1, 0, 1))
	_, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)
	revAfterSmile := host.CurrentRevision()
	_, err = s.CreateSlider("Frown", nil)
	require.NoError(t, err)

	revs := s.Stack().Revisions()
	require.Contains(t, revs, revAfterSmile)

	// The stack already sits at the last revision it produced; asking
	// for that one is an error by contract.
	_, err = s.Stack().GetRevision(host.CurrentRevision())
	require.ErrorIs(t, err, undo.ErrRevisionUnknown)

	// Host-side undo rewinds the counter, then resyncs from the stack.
	host.SetRevision(revAfterSmile)
	snap, err := s.Stack().GetRevision(revAfterSmile)
	require.NoError(t, err)
	s.Restore(snap.(*domain.Simplex))

	assert.Len(t, s.Sliders(), 1)
	assert.Equal(t, "Smile", s.Sliders()[0].Name())
	// The restored system keeps talking to the live host.
	assert.NotNil(t, s.Host())
}
