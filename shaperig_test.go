package shaperig_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/aretw0/shaperig"
	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/adapters/smpx"
	"github.com/aretw0/shaperig/pkg/domain"
)

func TestSessionBuildAndSplit(t *testing.T) {
	host := memory.NewHost([]r3.Vec{{X: -1}, {}, {X: 1}})
	session, err := shaperig.New("Face", shaperig.WithHost(host))
	require.NoError(t, err)

	sys := session.System()
	require.NotNil(t, sys.RestShape())

	smile, err := sys.CreateSlider("Smile_X", nil)
	require.NoError(t, err)
	fo, err := sys.CreatePlanarFalloff("Falloff_X", "X", 1, 0.33, -0.33, -1)
	require.NoError(t, err)
	require.NoError(t, smile.Progression().AddFalloff(fo))

	split, err := session.Split(nil)
	require.NoError(t, err)
	assert.NotNil(t, split.FindSlider("Smile_L"))
	assert.NotNil(t, split.FindSlider("Smile_R"))

	// The session system is untouched.
	assert.NotNil(t, sys.FindSlider("Smile_X"))
}

func TestSessionObservers(t *testing.T) {
	var inserted []string
	obs := domain.ObserverFuncs{
		Inserted: func(item any) {
			if n, ok := item.(interface{ Name() string }); ok {
				inserted = append(inserted, n.Name())
			}
		},
	}
	session, err := shaperig.New("Face", shaperig.WithObservers(obs))
	require.NoError(t, err)

	_, err = session.System().CreateSlider("Smile", nil)
	require.NoError(t, err)
	assert.Contains(t, inserted, "Smile")
}

func TestSessionArchiveRoundTrip(t *testing.T) {
	rest := []r3.Vec{{X: -1}, {}, {X: 1}}
	session, err := shaperig.New("Face", shaperig.WithHost(memory.NewHost(rest)))
	require.NoError(t, err)

	sys := session.System()
	slider, err := sys.CreateSlider("Smile", nil)
	require.NoError(t, err)
	extreme := slider.Progression().ShapeAtValue(1)
	require.NotNil(t, extreme)
	moved := []r3.Vec{{X: -1, Y: 1}, {Y: 1}, {X: 1, Y: 1}}
	require.NoError(t, extreme.SetVerts(moved))

	path := filepath.Join(t.TempDir(), "face.smpx")
	archive := smpx.New()
	require.NoError(t, session.ExportArchive(path, archive, shaperig.ExportOptions{
		Faces:  []int{0, 1, 2},
		Counts: []int{3},
	}))

	// Import into a fresh session over a fresh host.
	restore, err := shaperig.New("Scratch", shaperig.WithHost(memory.NewHost(rest)))
	require.NoError(t, err)
	require.NoError(t, restore.ImportArchive(path, archive, nil))

	sys2 := restore.System()
	assert.Equal(t, "Face", sys2.Name())
	got := sys2.FindShape("Smile")
	require.NotNil(t, got)
	verts, err := got.Verts()
	require.NoError(t, err)
	assert.Equal(t, moved, verts)
}

func TestSessionExportCanceled(t *testing.T) {
	session, err := shaperig.New("Face", shaperig.WithHost(memory.NewHost([]r3.Vec{{}})))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "face.smpx")
	err = session.ExportArchive(path, smpx.New(), shaperig.ExportOptions{
		Progress: func() bool { return false },
	})
	require.ErrorIs(t, err, domain.ErrCanceled)
}
