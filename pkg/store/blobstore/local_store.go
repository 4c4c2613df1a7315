package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/casevault/casevault/pkg/store"
)

// LocalStore implements BlobStore
var _ BlobStore = &LocalStore{}

// LocalStore keeps each blob as a plain file in a single directory.
type LocalStore struct {
	directory string
}

// NewLocalStore creates the directory if it doesn't exist yet.
func NewLocalStore(directory string) (*LocalStore, error) {
	err := os.MkdirAll(directory, os.ModePerm)
	if err != nil {
		return nil, err
	}
	return &LocalStore{directory: directory}, nil
}

func (s *LocalStore) Close() error {
	return nil
}

// Put writes the blob to a file named <unix-millis>-<original name>.
// The file is created with O_EXCL, so a second upload with the same
// name in the same millisecond can't truncate a live blob; it gets a
// counter spliced into its location instead.
func (s *LocalStore) Put(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	millis := time.Now().UnixNano() / int64(time.Millisecond)
	name := sanitizeName(originalName)

	var f *os.File
	var location string
	for i := 0; ; i++ {
		location = fmt.Sprintf("%d-%s", millis, name)
		if i > 0 {
			location = fmt.Sprintf("%d-%d-%s", millis, i, name)
		}
		var err error
		f, err = os.OpenFile(path.Join(s.directory, location), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", 0, err
		}
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return "", n, err
	}
	err = f.Close()
	if err != nil {
		return "", n, err
	}
	return location, n, nil
}

func (s *LocalStore) Get(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	p, err := s.blobPath(location)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, store.ErrNotFound
		}
		return nil, 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, fi.Size(), nil
}

func (s *LocalStore) Delete(ctx context.Context, location string) error {
	p, err := s.blobPath(location)
	if err != nil {
		return err
	}
	err = os.Remove(p)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// blobPath resolves a location to a path inside the store directory.
// Locations naming anything outside the directory are rejected.
func (s *LocalStore) blobPath(location string) (string, error) {
	if location == "" || path.Base(location) != location || location == "." || location == ".." {
		return "", fmt.Errorf("invalid blob location: %q", location)
	}
	return path.Join(s.directory, location), nil
}

// sanitizeName strips directory components from a client-supplied
// filename, so it can't name anything outside the store directory.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return "blob"
	}
	return name
}
