package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"testing"

	"github.com/casevault/casevault/pkg/store"
	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	memoryStore := NewMemoryStore()
	t.Cleanup(func() {
		memoryStore.Close()
	})
	testBlobStore(t, memoryStore)
}

func TestLocalStore(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "evidence_files")
	if err != nil {
		panic(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})
	localStore, err := NewLocalStore(tmpDir)
	if err != nil {
		panic(err)
	}
	t.Cleanup(func() {
		localStore.Close()
	})
	testBlobStore(t, localStore)
}

// testBlobStore runs all blob store tests against the passed store.
func testBlobStore(t *testing.T, blobStore BlobStore) {
	contents := []byte("some uploaded evidence")

	var location string

	t.Run("GetNotFound", func(t *testing.T) {
		_, _, err := blobStore.Get(context.Background(), "1-doesnotexist.pdf")
		if assert.Error(t, err) {
			assert.ErrorIs(t, err, store.ErrNotFound)
		}
	})

	t.Run("Put", func(t *testing.T) {
		var n int64
		var err error
		location, n, err = blobStore.Put(context.Background(), "scan.pdf", bytes.NewReader(contents))
		assert.NoError(t, err)
		assert.Equal(t, int64(len(contents)), n)
		assert.Contains(t, location, "scan.pdf")
	})

	t.Run("Get", func(t *testing.T) {
		r, size, err := blobStore.Get(context.Background(), location)
		assert.NoError(t, err)
		defer r.Close()
		assert.Equal(t, int64(len(contents)), size)

		actualContents, err := io.ReadAll(r)
		assert.NoError(t, err)
		assert.Equal(t, contents, actualContents)
	})

	t.Run("Put same name twice", func(t *testing.T) {
		otherLocation, _, err := blobStore.Put(context.Background(), "scan.pdf", bytes.NewReader([]byte("other contents")))
		assert.NoError(t, err)
		assert.NotEqual(t, location, otherLocation)

		// the first blob is untouched
		r, _, err := blobStore.Get(context.Background(), location)
		assert.NoError(t, err)
		defer r.Close()
		actualContents, err := io.ReadAll(r)
		assert.NoError(t, err)
		assert.Equal(t, contents, actualContents)
	})

	t.Run("Put same name rapidly", func(t *testing.T) {
		// back-to-back uploads land within the same millisecond; each
		// one still has to get its own location
		locations := make(map[string]bool)
		for i := 0; i < 20; i++ {
			burstContents := []byte(fmt.Sprintf("upload %d", i))
			loc, _, err := blobStore.Put(context.Background(), "burst.bin", bytes.NewReader(burstContents))
			assert.NoError(t, err)
			assert.False(t, locations[loc], "locations should never be reused")
			locations[loc] = true

			r, _, err := blobStore.Get(context.Background(), loc)
			if assert.NoError(t, err) {
				actualContents, err := io.ReadAll(r)
				r.Close()
				assert.NoError(t, err)
				assert.Equal(t, burstContents, actualContents)
			}
		}
	})

	t.Run("Put strips directories from the name", func(t *testing.T) {
		loc, _, err := blobStore.Put(context.Background(), "../../etc/passwd", bytes.NewReader([]byte("x")))
		assert.NoError(t, err)
		assert.False(t, strings.Contains(loc, "/"))
		assert.True(t, strings.HasSuffix(loc, "-passwd"))
	})

	t.Run("Delete", func(t *testing.T) {
		err := blobStore.Delete(context.Background(), location)
		assert.NoError(t, err)

		_, _, err = blobStore.Get(context.Background(), location)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Delete again", func(t *testing.T) {
		err := blobStore.Delete(context.Background(), location)
		assert.NoError(t, err)
	})

	t.Run("Get outside the store directory", func(t *testing.T) {
		_, _, err := blobStore.Get(context.Background(), "../go.mod")
		assert.Error(t, err)
	})
}
