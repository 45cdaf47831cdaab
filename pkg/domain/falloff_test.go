package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
)

// newFaceRig builds a small system with a rest shape over the given
// neutral mesh, backed by the in-memory host.
func newFaceRig(t *testing.T, restVerts []r3.Vec) (*domain.Simplex, *memory.Host) {
	t.Helper()
	host := memory.NewHost(restVerts)
	s := domain.NewSimplex("Face", host, nil)
	_, err := s.EnsureRestShape()
	require.NoError(t, err)
	return s, host
}

// lineMesh lays vertices along the X axis so planar weights are easy to
// predict.
func lineMesh(xs ...float64) []r3.Vec {
	verts := make([]r3.Vec, len(xs))
	for i, x := range xs {
		verts[i] = r3.Vec{X: x}
	}
	return verts
}

func TestFalloffMultiplier(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)

	t.Run("clamps outside the range", func(t *testing.T) {
		assert.Equal(t, 0.0, fo.Multiplier(-1))
		assert.Equal(t, 0.0, fo.Multiplier(-2.5))
		assert.Equal(t, 1.0, fo.Multiplier(1))
		assert.Equal(t, 1.0, fo.Multiplier(7))
	})

	t.Run("symmetric handles give half weight at center", func(t *testing.T) {
		assert.InDelta(t, 0.5, fo.Multiplier(0), 1e-9)
	})

	t.Run("monotonic across the ramp", func(t *testing.T) {
		prev := -1.0
		for i := 0; i <= 400; i++ {
			x := -1 + float64(i)/200
			w := fo.Multiplier(x)
			assert.GreaterOrEqual(t, w, prev-1e-9, "weight regressed at x=%g", x)
			assert.GreaterOrEqual(t, w, 0.0)
			assert.LessOrEqual(t, w, 1.0)
			prev = w
		}
	})

	t.Run("asymmetric handles stay monotonic", func(t *testing.T) {
		skew, err := s.CreatePlanarFalloff("Falloff_Skew", "X", 1, 0.6, -0.2, -1)
		require.NoError(t, err)
		prev := -1.0
		for i := 0; i <= 400; i++ {
			x := -1 + float64(i)/200
			w := skew.Multiplier(x)
			assert.GreaterOrEqual(t, w, prev-1e-9, "weight regressed at x=%g", x)
			prev = w
		}
	})

	t.Run("handles at exact thirds degenerate cleanly", func(t *testing.T) {
		thirds, err := s.CreatePlanarFalloff("Falloff_Thirds", "X", 1, 1.0/3, -1.0/3, -1)
		require.NoError(t, err)
		assert.InDelta(t, 0.5, thirds.Multiplier(0), 1e-9)
		assert.InDelta(t, 0.0, thirds.Multiplier(-1), 1e-9)
		assert.InDelta(t, 1.0, thirds.Multiplier(1), 1e-9)
	})
}

func TestFalloffSetVerts(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)

	require.NoError(t, fo.SetVerts(lineMesh(-1, -0.5, 0, 0.5, 1)))
	weights, err := fo.Weights()
	require.NoError(t, err)
	require.Len(t, weights, 5)
	assert.Equal(t, 0.0, weights[0])
	assert.InDelta(t, 0.5, weights[2], 1e-9)
	assert.Equal(t, 1.0, weights[4])
	// The two shoulders mirror each other.
	assert.InDelta(t, weights[1], 1-weights[3], 1e-9)
}

func TestFalloffSidedName(t *testing.T) {
	s, _ := newFaceRig(t, nil)
	foX, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	foY, err := s.CreatePlanarFalloff("Falloff_V", "Y", 1, 0.33, -0.33, -1)
	require.NoError(t, err)

	cases := []struct {
		fo    *domain.Falloff
		name  string
		side0 string
		side1 string
	}{
		{foX, "Smile_X", "Smile_L", "Smile_R"},
		{foX, "X_Brow", "L_Brow", "R_Brow"},
		{foX, "Brow_X_Up", "Brow_L_Up", "Brow_R_Up"},
		{foX, "Relax", "Relax", "Relax"},
		{foX, "Fox", "Fox", "Fox"},
		{foY, "Lids_V", "Lids_U", "Lids_D"},
		{foY, "Smile_X", "Smile_X", "Smile_X"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.side0, tc.fo.SidedName(tc.name, 0), "%s side 0", tc.name)
		assert.Equal(t, tc.side1, tc.fo.SidedName(tc.name, 1), "%s side 1", tc.name)
	}
}

func TestFalloffDuplicate(t *testing.T) {
	s, _ := newFaceRig(t, lineMesh(-1, 0, 1))
	fo, err := s.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	require.NoError(t, fo.SetVerts(lineMesh(-1, 0, 1)))

	dup, err := fo.Duplicate("Falloff_X_Copy")
	require.NoError(t, err)
	assert.Equal(t, "Falloff_X_Copy", dup.Name())
	assert.Equal(t, fo.Axis(), dup.Axis())
	assert.NotNil(t, s.FindFalloff("Falloff_X_Copy"))

	// The copy shares the already computed weights.
	origW, err := fo.Weights()
	require.NoError(t, err)
	dupW, err := dup.Weights()
	require.NoError(t, err)
	assert.Equal(t, origW, dupW)
}

func TestShapeStrippedName(t *testing.T) {
	s, _ := newFaceRig(t, nil)
	slider, err := s.CreateSlider("Smile", nil)
	require.NoError(t, err)

	half, err := slider.Progression().CreateShape("", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "Smile_50", half.Name())
	assert.Equal(t, "Smile", half.StrippedName())

	neg, err := slider.Progression().CreateShape("", -0.25)
	require.NoError(t, err)
	assert.Equal(t, "Smile_n25", neg.Name())
	assert.Equal(t, "Smile", neg.StrippedName())

	// A non-numeric tail is left alone.
	extreme := slider.Progression().ShapeAtValue(1)
	require.NotNil(t, extreme)
	assert.Equal(t, "Smile", extreme.StrippedName())
}

func TestProgressionGuessNextValue(t *testing.T) {
	s, _ := newFaceRig(t, nil)
	slider, err := s.CreateSlider("Jaw", nil)
	require.NoError(t, err)
	prog := slider.Progression()

	// Rest at 0 and extreme at 1 suggest halving first.
	assert.Equal(t, 0.5, prog.GuessNextValue())
	_, err = prog.CreateShape("", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.25, prog.GuessNextValue())
	_, err = prog.CreateShape("", 0.25)
	require.NoError(t, err)
	assert.Equal(t, 0.75, prog.GuessNextValue())
	_, err = prog.CreateShape("", 0.75)
	require.NoError(t, err)
	assert.Equal(t, -1.0, prog.GuessNextValue())

	// A symmetric progression walks the mirrored ladder.
	_, err = prog.CreateShape("JawOpp", -1)
	require.NoError(t, err)
	assert.Equal(t, -0.5, prog.GuessNextValue())
}
