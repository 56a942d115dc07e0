package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	pepperMu   sync.RWMutex
	pepper     string
	pepperFile string
)

// SetPepperPath sets the file the pepper is loaded from, or created at when
// missing. It clears any pepper already cached.
func SetPepperPath(file string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepperFile = file
	pepper = ""
}

// SetPepper pins the pepper in memory, bypassing the file. Used by tests
// and by callers that keep the pepper in a secret store.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

// GetPepper returns the cached pepper, loading it on first use. A pepper
// that cannot be loaded or created is fatal.
func GetPepper() string {
	pepperMu.RLock()
	p := pepper
	pepperMu.RUnlock()
	if p != "" {
		return p
	}

	pepperMu.Lock()
	defer pepperMu.Unlock()
	if pepper != "" {
		return pepper
	}

	loaded, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		slog.Error("failed to load or generate pepper", slog.Any("error", err))
		os.Exit(1)
	}
	pepper = loaded
	return pepper
}

// ReloadPepper re-reads the pepper file, e.g. after a restore.
func ReloadPepper() error {
	pepperMu.Lock()
	defer pepperMu.Unlock()

	loaded, err := loadOrGeneratePepper(pepperFile)
	if err != nil {
		return err
	}
	pepper = loaded
	return nil
}

func loadOrGeneratePepper(file string) (string, error) {
	if file == "" {
		return "", errors.New("cryptox: pepper file not configured")
	}
	file = filepath.Clean(file)

	raw, err := os.ReadFile(file)
	switch {
	case err == nil:
		return strings.TrimSpace(string(raw)), nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o750); err != nil {
		return "", err
	}

	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	generated := base64.RawURLEncoding.EncodeToString(buf)
	if err := os.WriteFile(file, []byte(generated), 0o600); err != nil {
		return "", err
	}
	return generated, nil
}
