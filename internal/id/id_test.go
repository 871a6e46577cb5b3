package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	const count = 1000

	for range count {
		id, err := Generate("test")
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixPreview, PrefixRequest, "custom"} {
		t.Run(prefix, func(t *testing.T) {
			id := MustGenerate(prefix)
			assert.True(t, HasPrefix(id, prefix), id)
			assert.Len(t, id, len(prefix)+1+21)
		})
	}
}

func TestNewPreviewID(t *testing.T) {
	id, err := NewPreviewID()
	require.NoError(t, err)
	assert.True(t, HasPrefix(id, PrefixPreview))
	assert.False(t, HasPrefix(id, PrefixRequest))
}

func TestHasPrefix(t *testing.T) {
	assert.False(t, HasPrefix("imp-", PrefixPreview))
	assert.False(t, HasPrefix("impx", PrefixPreview))
	assert.True(t, HasPrefix("imp-abc", PrefixPreview))
}
