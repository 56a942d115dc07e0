package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a raw token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrNoSubject   = errors.New("jwtx: missing subject")
)

// DefaultLeeway absorbs clock skew between us and the issuer.
const DefaultLeeway = 30 * time.Second

type verifier struct {
	alg     string
	keyFunc jwt.Keyfunc
	issuer  string
	aud     []string
}

// NewVerifierEdDSA verifies EdDSA tokens against keys, selected by kid.
func NewVerifierEdDSA(keys *KeySet, issuer string, aud []string) Verifier {
	return &verifier{
		alg:    jwt.SigningMethodEdDSA.Alg(),
		issuer: issuer,
		aud:    aud,
		keyFunc: func(t *jwt.Token) (any, error) {
			kid, _ := t.Header["kid"].(string)
			if kid == "" {
				return nil, ErrUnknownKID
			}
			pub, err := keys.Get(kid)
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
			}
			return pub, nil
		},
	}
}

// NewVerifierHS256 verifies HS256 tokens with a shared secret.
func NewVerifierHS256(secret []byte, issuer string, aud []string) Verifier {
	return &verifier{
		alg:     jwt.SigningMethodHS256.Alg(),
		issuer:  issuer,
		aud:     aud,
		keyFunc: func(*jwt.Token) (any, error) { return secret, nil },
	}
}

func (v *verifier) Verify(raw string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{v.alg}),
		jwt.WithLeeway(DefaultLeeway),
	)

	var claims Claims
	token, err := parser.ParseWithClaims(raw, &claims, v.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return Claims{}, ErrNotYetValid
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		}
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}
	if !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateAudience(v.aud); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(DefaultLeeway); err != nil {
		return Claims{}, err
	}
	if claims.Subject == "" {
		return Claims{}, ErrNoSubject
	}
	return claims, nil
}
