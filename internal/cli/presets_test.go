package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadPresetsYAML(t *testing.T) {
	path := writeFile(t, "falloffs.yaml", `
falloffs:
  - name: Falloff_X
    axis: X
    minVal: -1
    minHandle: -0.33
    maxHandle: 0.33
    maxVal: 1
  - name: Falloff_Cheeks
    type: map
    mapName: cheeks
`)
	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)

	assert.Equal(t, "Falloff_X", presets[0].Name)
	// Omitted type defaults to planar.
	assert.Equal(t, domain.SplitPlanar, presets[0].Type)
	assert.Equal(t, "X", presets[0].Axis)
	assert.Equal(t, -0.33, presets[0].MinHandle)

	assert.Equal(t, domain.SplitMap, presets[1].Type)
	assert.Equal(t, "cheeks", presets[1].MapName)
}

func TestLoadPresetsJSON(t *testing.T) {
	path := writeFile(t, "falloffs.json", `{
		"falloffs": [
			{"name": "Falloff_V", "axis": "Y", "minVal": -1, "minHandle": -0.5, "maxHandle": 0.5, "maxVal": 1}
		]
	}`)
	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 1)
	assert.Equal(t, "Falloff_V", presets[0].Name)
	assert.Equal(t, "Y", presets[0].Axis)
}

func TestLoadPresetsMissingFile(t *testing.T) {
	presets, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, presets)
}

func TestLoadPresetsUnnamed(t *testing.T) {
	path := writeFile(t, "falloffs.yaml", "falloffs:\n  - axis: X\n")
	_, err := LoadPresets(path)
	require.Error(t, err)
}

func TestApplyPresets(t *testing.T) {
	system := domain.NewSimplex("Face", memory.NewHost(nil), nil)
	_, err := system.EnsureRestShape()
	require.NoError(t, err)

	presets := []FalloffPreset{
		{Name: "Falloff_X", Type: domain.SplitPlanar, Axis: "X", MinVal: -1, MinHandle: -0.33, MaxHandle: 0.33, MaxVal: 1},
		{Name: "Falloff_Cheeks", Type: domain.SplitMap, MapName: "cheeks"},
	}
	require.NoError(t, ApplyPresets(system, presets))
	assert.NotNil(t, system.FindFalloff("Falloff_X"))
	assert.NotNil(t, system.FindFalloff("Falloff_Cheeks"))

	// Reapplying skips existing names.
	require.NoError(t, ApplyPresets(system, presets))
	assert.Len(t, system.Falloffs(), 2)
}
