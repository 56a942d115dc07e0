package cryptox

import (
	"encoding/base64"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	for _, size := range []int{TokenSize128, TokenSize256, 24} {
		tok, err := GenerateToken(size)
		require.NoError(t, err)

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, size)

		other, err := GenerateToken(size)
		require.NoError(t, err)
		require.NotEqual(t, tok, other)
	}

	_, err := GenerateToken(0)
	require.Error(t, err)
}

func TestFingerprintTokenIsStable(t *testing.T) {
	require.Equal(t, FingerprintToken("abc"), FingerprintToken("abc"))
	require.NotEqual(t, FingerprintToken("abc"), FingerprintToken("abd"))
	require.Len(t, FingerprintToken("abc"), 43)
}

func TestRandomSuffix(t *testing.T) {
	re := regexp.MustCompile(`^[a-z0-9]{6}$`)
	s, err := RandomSuffix(6)
	require.NoError(t, err)
	require.Regexp(t, re, s)

	empty, err := RandomSuffix(0)
	require.NoError(t, err)
	require.Empty(t, empty)
}
