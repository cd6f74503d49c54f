package imagestore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned for ids with no stored image.
// It never carries filesystem details.
var ErrNotFound = errors.New("image not found")

// ImageStore is the byte-storage abstraction for uploaded images,
// keyed by suffixed image id.
type ImageStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	Write(ctx context.Context, id string, r io.Reader) (int64, error)
}
