package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Secret#123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret#123", hash)
	assert.True(t, CheckPassword("Secret#123", hash))
	assert.False(t, CheckPassword("secret#123", hash))
}

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(25)
	require.NoError(t, err)
	b, err := RandomToken(25)
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^[a-z2-7]+$`, a)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
}
