package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"math/big"
)

const (
	TokenSize128 = 16
	TokenSize256 = 32
)

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size must be positive, got %d", size)
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// FingerprintToken returns a stable SHA-256 fingerprint of token, suitable
// as a storage key when the raw value must not be kept.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// RandomSuffix returns n random characters from [a-z0-9].
func RandomSuffix(n int) (string, error) {
	return randomFrom("abcdefghijklmnopqrstuvwxyz0123456789", n)
}

func randomFrom(charset string, n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("cryptox: read random: %w", err)
		}
		out[i] = charset[v.Int64()]
	}
	return string(out), nil
}
