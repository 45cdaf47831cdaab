package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/domain"
)

// LoadSystemFile reads a definition JSON file into a detached system
// over the in-memory host.
func LoadSystemFile(path string, logger *slog.Logger) (*domain.Simplex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}

	system := domain.NewSimplex("", memory.NewHost(nil), logger)
	if err := system.LoadJSON(data, true, nil); err != nil {
		return nil, fmt.Errorf("failed to load definition: %w", err)
	}
	return system, nil
}

// WriteSystemFile serializes a system to a definition JSON file.
func WriteSystemFile(path string, system *domain.Simplex) error {
	data, err := system.Dump()
	if err != nil {
		return fmt.Errorf("failed to serialize definition: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write definition: %w", err)
	}
	return nil
}
