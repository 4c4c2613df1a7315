package digest_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/casevault/casevault/pkg/digest"
	"github.com/stretchr/testify/assert"
)

func TestSum(t *testing.T) {
	t.Run("known vectors", func(t *testing.T) {
		sum, err := digest.Sum(bytes.NewReader([]byte{0x01, 0x02, 0x03}))
		assert.NoError(t, err)
		assert.Equal(t, "039058c6f2c0cb492c533b0a4d14ef77cc0f78abccced5287d84a1a2011cfb81", sum)

		sum, err = digest.Sum(bytes.NewReader([]byte{}))
		assert.NoError(t, err)
		assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", sum)
	})

	t.Run("deterministic", func(t *testing.T) {
		contents := []byte("The quick brown fox jumps over the lazy dog")

		first, err := digest.Sum(bytes.NewReader(contents))
		assert.NoError(t, err)
		second, err := digest.Sum(bytes.NewReader(contents))
		assert.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, "d7a8fbb307d7809469ca9abcb0082e4f8d5651e46d3cdb762d02d0bf37c9e592", first)
	})
}

func TestEqual(t *testing.T) {
	assert.True(t, digest.Equal("abc123", "abc123"))
	assert.True(t, digest.Equal("ABC123", "abc123"))
	assert.False(t, digest.Equal("abc123", "abc124"))
	assert.False(t, digest.Equal("abc123", strings.Repeat("a", 64)))
}
