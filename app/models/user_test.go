package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	u, err := CreateUser("alice", "alice@example.com", "hunter22")
	require.NoError(t, err)

	assert.Equal(t, ROLE_USER, u.Role)
	assert.Equal(t, STATUS_ACTIVE, u.Status)
	assert.True(t, u.CheckPassword("hunter22"))
	assert.False(t, u.CheckPassword("wrong"))
}

func TestCreateUserValidation(t *testing.T) {
	_, err := CreateUser("al", "not-an-email", "hunter22")
	assert.Error(t, err)
}

func TestGenerateAPIKey(t *testing.T) {
	u := &User{}

	key, err := u.GenerateAPIKey()
	require.NoError(t, err)
	require.NotEmpty(t, key)

	assert.Equal(t, HashAPIKey(key), u.APIKeyHash)
	assert.NotNil(t, u.APIKeyCreatedAt)

	// rotating produces a different key and invalidates the old hash
	oldHash := u.APIKeyHash
	key2, err := u.GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, key2)
	assert.NotEqual(t, oldHash, u.APIKeyHash)
}
