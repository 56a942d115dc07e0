package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "cryptox-pepper")
	if err != nil {
		panic(err)
	}
	SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func TestHashAndVerify(t *testing.T) {
	cases := []string{"hunter2!A", "P@ssw0rd!#$%^&*()", strings.Repeat("a", 128), "", "pässwörd 1!"}

	for _, pw := range cases {
		t.Run(pw, func(t *testing.T) {
			hash, err := HashPassword(pw)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$"))
			require.Len(t, strings.Split(hash, "$"), 6)

			require.NoError(t, VerifyPassword(pw, hash))
			require.ErrorIs(t, VerifyPassword(pw+"x", hash), ErrMismatchedPassword)
		})
	}
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPassword("same-input-1!")
	require.NoError(t, err)
	b, err := HashPassword("same-input-1!")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformedHash(t *testing.T) {
	for _, bad := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$garbage$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$aGFzaA",
	} {
		require.ErrorIs(t, VerifyPassword("x", bad), ErrInvalidHash, bad)
	}
}

func TestPepperChangesDigest(t *testing.T) {
	hash, err := HashPassword("peppered-1!")
	require.NoError(t, err)

	original := GetPepper()
	SetPepper("a-different-pepper")
	t.Cleanup(func() { SetPepper(original) })

	require.ErrorIs(t, VerifyPassword("peppered-1!", hash), ErrMismatchedPassword)
}

func TestGeneratePasswordSatisfiesPolicy(t *testing.T) {
	for range 20 {
		pw, err := GeneratePassword()
		require.NoError(t, err)
		require.Len(t, pw, 16)

		var digit, symbol bool
		for _, r := range pw {
			switch {
			case unicode.IsDigit(r):
				digit = true
			case !unicode.IsLetter(r):
				symbol = true
			}
		}
		require.True(t, digit, pw)
		require.True(t, symbol, pw)
	}
}
