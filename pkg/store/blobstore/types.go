// Package blobstore implements stores for the raw bytes of uploaded
// files. Blobs are addressed by the location returned when they were
// stored, not by their content.
package blobstore

import (
	"context"
	"io"
)

// BlobStore describes the interface of a blob store.
type BlobStore interface {
	// Put persists the contents of r under a new location derived from
	// originalName, and returns that location together with the number
	// of bytes written.
	Put(ctx context.Context, originalName string, r io.Reader) (location string, n int64, err error)
	// Get returns a reader for the blob at location, and its size.
	// Returns store.ErrNotFound if no such blob exists.
	Get(ctx context.Context, location string) (io.ReadCloser, int64, error)
	// Delete removes the blob at location.
	// Deleting a blob that doesn't exist is not an error.
	Delete(ctx context.Context, location string) error
	io.Closer
}
