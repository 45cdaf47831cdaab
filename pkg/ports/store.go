package ports

import (
	"context"
	"errors"
)

// ErrDefinitionNotFound is returned when a definition name cannot be found
// in the store.
var ErrDefinitionNotFound = errors.New("definition not found")

// DefinitionStore persists serialized rig definitions keyed by system name.
// This backs the serve surface, enabling "load once, inspect from anywhere"
// workflows; it is not part of the undo model.
type DefinitionStore interface {
	// Save persists the definition JSON for a given system name.
	Save(ctx context.Context, name string, definition []byte) error

	// Load retrieves the definition JSON for a given system name.
	// Returns ErrDefinitionNotFound if the system does not exist.
	Load(ctx context.Context, name string) ([]byte, error)

	// Delete removes the definition for a given system name.
	Delete(ctx context.Context, name string) error

	// List returns the stored system names.
	List(ctx context.Context) ([]string, error)
}
