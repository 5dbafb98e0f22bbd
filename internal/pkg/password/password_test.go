package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("longenough1")
	require.NoError(t, err)
	assert.NotEqual(t, "longenough1", hash)

	assert.True(t, Verify("longenough1", hash))
	assert.False(t, Verify("longenough2", hash))
	assert.False(t, Verify("longenough1", "not-a-hash"))
}

func TestNewToken(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	b, err := NewToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("12345678"))
	assert.True(t, ValidatePassword(strings.Repeat("a", 30)))
	assert.False(t, ValidatePassword(strings.Repeat("a", 31)))
}
