package imagestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const tmpDirName = "tmp"

// LocalDir stores image bytes in a flat directory, one file per image id.
type LocalDir struct {
	root string
}

// NewLocalDir creates a store rooted at root.
func NewLocalDir(root string) (*LocalDir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("image dir is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(abs, tmpDirName), 0o755); err != nil {
		return nil, err
	}
	return &LocalDir{root: abs}, nil
}

// Root returns the absolute store directory.
func (d *LocalDir) Root() string {
	return d.root
}

// Exists reports whether an image is stored under id.
func (d *LocalDir) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	path, ok := d.pathFromID(id)
	if !ok {
		return false, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat image: %w", stripPath(err))
	}
	return info.Mode().IsRegular(), nil
}

// Open returns a reader for the image stored under id.
func (d *LocalDir) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, ok := d.pathFromID(id)
	if !ok {
		return nil, ErrNotFound
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open image: %w", stripPath(err))
	}
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return f, nil
}

// Write streams r into the store under id. The file appears atomically.
func (d *LocalDir) Write(ctx context.Context, id string, r io.Reader) (int64, error) {
	if r == nil {
		return 0, fmt.Errorf("reader is required")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dst, ok := d.pathFromID(id)
	if !ok {
		return 0, fmt.Errorf("invalid image id %q", id)
	}

	tmp, err := os.CreateTemp(filepath.Join(d.root, tmpDirName), "upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", stripPath(err))
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	n, err := io.Copy(tmp, r)
	if err != nil {
		cleanup()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return 0, fmt.Errorf("close temp file: %w", stripPath(err))
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		cleanup()
		return 0, fmt.Errorf("store image: %w", stripPath(err))
	}
	return n, nil
}

// pathFromID resolves id to a file directly under root.
// Anything that could escape the directory is reported as not resolvable.
func (d *LocalDir) pathFromID(id string) (string, bool) {
	if !ValidID(id) {
		return "", false
	}
	return filepath.Join(d.root, id), true
}

// ValidID reports whether id can name a stored image.
func ValidID(id string) bool {
	if id == "" || len(id) > 128 {
		return false
	}
	if strings.HasPrefix(id, ".") || strings.Contains(id, "..") {
		return false
	}
	for _, ch := range id {
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		case ch == '-', ch == '_', ch == '.':
		default:
			return false
		}
	}
	return true
}

func stripPath(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return fmt.Errorf("%s: %w", linkErr.Op, linkErr.Err)
	}
	return err
}
