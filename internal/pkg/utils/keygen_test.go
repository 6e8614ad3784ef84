package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateKey(t *testing.T) {
	k, err := GenerateKey("tr_", 24)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(k, "tr_"))
	assert.Len(t, k, 27)
	for _, c := range k[3:] {
		assert.Contains(t, base62Chars, string(c))
	}
}

func TestGeneratePassword_Unique(t *testing.T) {
	a, err := GeneratePassword()
	require.NoError(t, err)
	b, err := GeneratePassword()
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}
