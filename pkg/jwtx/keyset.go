package jwtx

import (
	"crypto/ed25519"
	"errors"
	"sync"
)

var ErrNoKey = errors.New("jwtx: key not found")

// KeySet holds the verification keys by kid. Safe for concurrent use; the
// refresher swaps the whole set while requests read it.
type KeySet struct {
	mu   sync.RWMutex
	jwks JWKS
	pub  map[string]ed25519.PublicKey
}

func NewKeySet() *KeySet {
	return &KeySet{pub: make(map[string]ed25519.PublicKey)}
}

// AddJWK parses and registers one key.
func (k *KeySet) AddJWK(j JWK) error {
	key, err := j.publicKey()
	if err != nil {
		return err
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub[j.Kid] = key
	k.jwks.Keys = append(k.jwks.Keys, j)
	return nil
}

// Get returns the key registered under kid.
func (k *KeySet) Get(kid string) (ed25519.PublicKey, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if pk, ok := k.pub[kid]; ok {
		return pk, nil
	}
	return nil, ErrNoKey
}

// IsReady reports whether at least one key is loaded.
func (k *KeySet) IsReady() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.pub) > 0
}

// PublicJWKS returns a copy of the loaded keys.
func (k *KeySet) PublicJWKS() JWKS {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return JWKS{Keys: append([]JWK(nil), k.jwks.Keys...)}
}

// ResetFromJWKS replaces every key. Nothing changes if any key is invalid.
func (k *KeySet) ResetFromJWKS(set JWKS) error {
	next := make(map[string]ed25519.PublicKey, len(set.Keys))
	for _, j := range set.Keys {
		key, err := j.publicKey()
		if err != nil {
			return err
		}
		next[j.Kid] = key
	}

	k.mu.Lock()
	defer k.mu.Unlock()
	k.pub = next
	k.jwks = set
	return nil
}
