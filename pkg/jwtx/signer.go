package jwtx

import (
	"crypto/ed25519"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer mints tokens. The intake service never signs in production; the
// operator CLI and tests use these to produce tokens the verifiers accept.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// EdDSASigner signs with an Ed25519 key and stamps kid in the header.
type EdDSASigner struct {
	kid string
	key ed25519.PrivateKey
}

// NewSignerEdDSA loads a PKCS8 PEM Ed25519 private key.
func NewSignerEdDSA(kid string, pemKey []byte) (*EdDSASigner, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("jwtx: expected PKCS8 PRIVATE KEY PEM")
	}

	priv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("jwtx: parse PKCS8: %w", err)
	}
	key, ok := priv.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("jwtx: not an Ed25519 private key")
	}
	return &EdDSASigner{kid: kid, key: key}, nil
}

func (s *EdDSASigner) Alg() string { return jwt.SigningMethodEdDSA.Alg() }
func (s *EdDSASigner) KID() string { return s.kid }

func (s *EdDSASigner) Sign(c Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodEdDSA, c)
	t.Header["kid"] = s.kid
	return t.SignedString(s.key)
}

// PublicJWK is the key a verifier needs for tokens from this signer.
func (s *EdDSASigner) PublicJWK() JWK {
	return NewEd25519JWK(s.kid, s.key.Public().(ed25519.PublicKey))
}

// HS256Signer signs with a shared secret.
type HS256Signer struct {
	secret []byte
}

func NewSignerHS256(secret []byte) (*HS256Signer, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwtx: HS256 secret must be at least 32 bytes")
	}
	return &HS256Signer{secret: secret}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (s *HS256Signer) Sign(c Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
}
