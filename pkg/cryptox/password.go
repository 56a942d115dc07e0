package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for newly hashed passwords. Verification reads the
// parameters back out of the encoded hash so these can move over time.
const (
	memory      = 19 * 1024 // KiB
	iterations  = 2
	parallelism = 1
	keyLength   = 32
	saltLength  = 16
)

var (
	ErrMismatchedPassword = errors.New("cryptox: password does not match")
	ErrInvalidHash        = errors.New("cryptox: invalid argon2id hash")
)

// HashPassword returns a PHC-format argon2id string for the peppered password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: read salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password+GetPepper()), salt, iterations, memory, parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// VerifyPassword checks password against an encoded hash produced by HashPassword.
func VerifyPassword(password, encoded string) error {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ErrInvalidHash
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: digest: %v", ErrInvalidHash, err)
	}

	got := argon2.IDKey([]byte(password+GetPepper()), salt, iters, mem, par, uint32(len(want))) // #nosec G115
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrMismatchedPassword
	}
	return nil
}

// GeneratePassword returns a random password that satisfies the account
// password policy: letters, at least one digit and at least one symbol.
func GeneratePassword() (string, error) {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
		digits  = "0123456789"
		symbols = "!@#%^&*-_=+?"
	)

	body, err := randomFrom(letters+digits, 14)
	if err != nil {
		return "", err
	}
	digit, err := randomFrom(digits, 1)
	if err != nil {
		return "", err
	}
	symbol, err := randomFrom(symbols, 1)
	if err != nil {
		return "", err
	}
	return body + digit + symbol, nil
}
