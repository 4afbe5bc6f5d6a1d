// Package objectstore uploads user files and returns their public download URIs.
package objectstore

import (
	"context"
	"errors"
)

var ErrEmptyObject = errors.New("empty object")

// Uploader stores bytes under a path and returns a download URI.
type Uploader interface {
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}
