package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=16384,t=2,p=2\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`, hash)

	ok, err := VerifyPassword("s3cret", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	other, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, h := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=16384,t=2,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=x,t=2,p=2$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=16384,t=2,p=2$!!$aGFzaA",
		"$argon2id$v=19$m=16384,t=2,p=2$c2FsdA$",
	} {
		_, err := VerifyPassword("x", h)
		assert.ErrorIs(t, err, ErrMalformedHash, h)
	}
}

func writeUsers(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadUsersAndAuthenticate(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	path := writeUsers(t, "users:\n  alice:\n    password: "+hash+"\n    roles: [admin, user]\n")

	store, err := LoadUsers(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, store.Names())

	id, err := store.Authenticate("alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Name)
	assert.True(t, id.HasRole("admin"))

	_, err = store.Authenticate("alice", "nope")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = store.Authenticate("bob", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoadUsers_RejectsPlaintextPasswords(t *testing.T) {
	path := writeUsers(t, "users:\n  alice:\n    password: plaintext\n")
	_, err := LoadUsers(path)
	assert.ErrorIs(t, err, ErrMalformedHash)
}

func TestUserStore_Reload(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	path := writeUsers(t, "users:\n  alice:\n    password: "+hash+"\n")
	store, err := LoadUsers(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("users:\n  bob:\n    password: "+hash+"\n"), 0o600))
	require.NoError(t, store.Reload(path))
	assert.Equal(t, []string{"bob"}, store.Names())

	require.NoError(t, os.WriteFile(path, []byte("users: [broken"), 0o600))
	assert.Error(t, store.Reload(path))
	assert.Equal(t, []string{"bob"}, store.Names(), "failed reload keeps users")
}
