package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/shaperig/pkg/adapters/memory"
	"github.com/aretw0/shaperig/pkg/ports"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	definition := []byte(`{"systemName": "Face"}`)
	require.NoError(t, store.Save(ctx, "Face", definition))

	got, err := store.Load(ctx, "Face")
	require.NoError(t, err)
	assert.Equal(t, definition, got)

	// The store hands back copies: mutating the result must not leak
	// into the stored bytes.
	got[0] = 'X'
	again, err := store.Load(ctx, "Face")
	require.NoError(t, err)
	assert.Equal(t, definition, again)

	require.NoError(t, store.Delete(ctx, "Face"))
	_, err = store.Load(ctx, "Face")
	assert.ErrorIs(t, err, ports.ErrDefinitionNotFound)
}

func TestStore_List(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "Face", []byte(`{}`)))
	require.NoError(t, store.Save(ctx, "Body", []byte(`{}`)))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Face", "Body"}, names)
}
