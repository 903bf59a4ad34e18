package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estante-app/estante/core"
	"github.com/estante-app/estante/pkg/crypto"
)

func testIdentity() core.Identity {
	role := core.RoleAuthor
	uid := int64(42)
	return core.Identity{Token: "tok123", Role: &role, DisplayName: "Ana", AvatarURL: "a.png", UserID: &uid}
}

func TestStore_RoundTrip(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "credentials.json"))

	// Empty store loads the baseline.
	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(core.Identity{}))

	id := testIdentity()
	require.NoError(t, store.Save(id))

	got, err = store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(id), "loaded %+v, want %+v", got, id)
}

func TestStore_MissingTokenIgnoresStaleFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	// A record left behind without its token key, as an older version
	// clearing keys one by one could produce.
	require.NoError(t, os.WriteFile(path, []byte(`{"role":"2","name":"Ghost","id":"99"}`), 0o600))

	got, err := New(path).Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(core.Identity{}), "stale fields resurrected: %+v", got)
}

func TestStore_ClearIsIdempotent(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "credentials.json"))
	require.NoError(t, store.Save(testIdentity()))

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear()) // already gone

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(core.Identity{}))
}

func TestStore_Sealed(t *testing.T) {
	salt, err := crypto.GenerateSalt(16)
	require.NoError(t, err)
	sealer := crypto.NewSealer("device-passphrase", salt)

	path := filepath.Join(t.TempDir(), "credentials.bin")
	store := New(path, WithSealer(sealer))

	id := testIdentity()
	require.NoError(t, store.Save(id))

	// On disk there is ciphertext, not the token.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok123")

	got, err := store.Load()
	require.NoError(t, err)
	assert.True(t, got.Equal(id))

	// A different passphrase cannot open the file.
	_, err = New(path, WithSealer(crypto.NewSealer("wrong", salt))).Load()
	assert.Error(t, err)
}
