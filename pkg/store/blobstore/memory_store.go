package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/casevault/casevault/pkg/store"
)

// MemoryStore implements BlobStore
var _ BlobStore = &MemoryStore{}

type MemoryStore struct {
	blobs   map[string][]byte
	seq     uint64
	muBlobs sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

func (m *MemoryStore) Put(ctx context.Context, originalName string, r io.Reader) (string, int64, error) {
	contents, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	m.muBlobs.Lock()
	m.seq++
	location := fmt.Sprintf("%d-%s", m.seq, sanitizeName(originalName))
	m.blobs[location] = contents
	m.muBlobs.Unlock()
	return location, int64(len(contents)), nil
}

func (m *MemoryStore) Get(ctx context.Context, location string) (io.ReadCloser, int64, error) {
	m.muBlobs.Lock()
	v, ok := m.blobs[location]
	m.muBlobs.Unlock()
	if ok {
		return io.NopCloser(bytes.NewReader(v)), int64(len(v)), nil
	}
	return nil, 0, store.ErrNotFound
}

func (m *MemoryStore) Delete(ctx context.Context, location string) error {
	m.muBlobs.Lock()
	delete(m.blobs, location)
	m.muBlobs.Unlock()
	return nil
}

// Len returns the number of blobs currently in the store.
func (m *MemoryStore) Len() int {
	m.muBlobs.Lock()
	defer m.muBlobs.Unlock()
	return len(m.blobs)
}
