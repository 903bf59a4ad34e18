package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estante-app/estante/core"
)

func TestStore_RoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "estante.db"))
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(core.Identity{}))

	role := core.RoleAdmin
	uid := int64(42)
	id := core.Identity{Token: "tok123", Role: &role, DisplayName: "Ana", AvatarURL: "a.png", UserID: &uid}
	require.NoError(t, store.Save(id))

	got, err = store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(id), "loaded %+v, want %+v", got, id)

	// Saving again replaces, never accumulates rows.
	uid2 := int64(7)
	id.UserID = &uid2
	require.NoError(t, store.Save(id))
	got, err = store.Load()
	require.NoError(t, err)
	require.NotNil(t, got.UserID)
	assert.Equal(t, int64(7), *got.UserID)

	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(core.Identity{}))
}
