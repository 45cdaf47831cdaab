// Package cli holds shared plumbing for the shaperig commands: falloff
// preset loading and file-based system loading.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/shaperig/pkg/domain"
)

// FalloffPreset is one falloff described in a presets file. Studios keep
// these next to the rig so artists share a consistent split setup.
type FalloffPreset struct {
	Name      string  `mapstructure:"name"`
	Type      string  `mapstructure:"type"`
	Axis      string  `mapstructure:"axis"`
	MinVal    float64 `mapstructure:"minVal"`
	MinHandle float64 `mapstructure:"minHandle"`
	MaxHandle float64 `mapstructure:"maxHandle"`
	MaxVal    float64 `mapstructure:"maxVal"`
	MapName   string  `mapstructure:"mapName"`
}

type presetFile struct {
	Falloffs []map[string]any `yaml:"falloffs" json:"falloffs"`
}

// LoadPresets reads a falloff presets file, YAML by default and JSON by
// extension. A missing file is not an error: it means no presets are
// configured.
func LoadPresets(path string) ([]FalloffPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read presets: %w", err)
	}

	var file presetFile
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse presets json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse presets yaml: %w", err)
		}
	}

	presets := make([]FalloffPreset, 0, len(file.Falloffs))
	for _, raw := range file.Falloffs {
		var preset FalloffPreset
		if err := mapstructure.Decode(raw, &preset); err != nil {
			return nil, fmt.Errorf("failed to decode preset: %w", err)
		}
		if preset.Name == "" {
			return nil, fmt.Errorf("preset missing name")
		}
		if preset.Type == "" {
			preset.Type = domain.SplitPlanar
		}
		presets = append(presets, preset)
	}
	return presets, nil
}

// ApplyPresets creates the preset falloffs on a system, skipping names
// that already exist.
func ApplyPresets(system *domain.Simplex, presets []FalloffPreset) error {
	for _, preset := range presets {
		if system.FindFalloff(preset.Name) != nil {
			continue
		}
		var err error
		switch preset.Type {
		case domain.SplitPlanar:
			_, err = system.CreatePlanarFalloff(preset.Name, preset.Axis,
				preset.MaxVal, preset.MaxHandle, preset.MinHandle, preset.MinVal)
		case domain.SplitMap:
			_, err = system.CreateMapFalloff(preset.Name, preset.MapName)
		default:
			err = fmt.Errorf("unknown falloff type %q", preset.Type)
		}
		if err != nil {
			return fmt.Errorf("preset %q: %w", preset.Name, err)
		}
	}
	return nil
}
