package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Dir stores blobs as files below a root directory, mirroring the locator
// path.
type Dir struct {
	root string
}

func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("blob: create root: %w", err)
	}
	return &Dir{root: filepath.Clean(root)}, nil
}

func (d *Dir) path(locator string) (string, error) {
	if !validLocator(locator) {
		return "", fmt.Errorf("%w: invalid locator %q", ErrNotFound, locator)
	}
	return filepath.Join(d.root, filepath.FromSlash(locator)), nil
}

func (d *Dir) Put(ctx context.Context, data []byte, _, filename string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	loc := NewLocator(time.Now(), filename)
	p, err := d.path(loc)
	if err != nil {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// Write then rename so readers never see a partial file.
	tmp := p + ".part"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		_ = os.Remove(tmp)
		return Object{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return Object{Locator: loc, Size: int64(len(data))}, nil
}

func (d *Dir) Get(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := d.path(locator)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return data, nil
}

func (d *Dir) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := d.path(locator)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrNotFound
	case err != nil:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
