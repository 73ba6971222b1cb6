package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// seededAdminHash is the hash inserted by migrations/00006_seed_admin.sql.
const seededAdminHash = "$2a$10$uejoNCSLZ9YkKOZriLlSGeg0pm/nuGVS3nRuSPyYuk/Z7HJHKBhGO"

func TestHashPassword_RoundTrip(t *testing.T) {
	stored, err := HashPassword("agent-owner-42")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(stored))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	assert.True(t, PasswordMatches(stored, "agent-owner-42"))
	assert.False(t, PasswordMatches(stored, "agent-owner-43"))
	assert.False(t, PasswordMatches(stored, ""))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("1234567")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestPasswordMatches_SeededAdmin(t *testing.T) {
	assert.True(t, PasswordMatches(seededAdminHash, "changeme"))
	for _, guess := range []string{"admin", "root", "Changeme"} {
		assert.False(t, PasswordMatches(seededAdminHash, guess), guess)
	}
}

func TestPasswordMatches_MalformedHash(t *testing.T) {
	assert.False(t, PasswordMatches("not-a-bcrypt-hash", "changeme"))
	assert.False(t, PasswordMatches("", ""))
}
