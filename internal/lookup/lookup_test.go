package lookup

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	dune := Metadata{ISBN: "978-0-441-17271-6", Title: "Dune", Author: "Frank Herbert", PageCount: 412}
	p := NewStatic(dune, Metadata{Title: "No ISBN", Author: "Anon"})
	ctx := context.Background()

	t.Run("isbn lookup normalizes", func(t *testing.T) {
		m, err := p.LookupByISBN(ctx, "9780441172716")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, 412, m.PageCount)
	})

	t.Run("isbn miss is nil nil", func(t *testing.T) {
		m, err := p.LookupByISBN(ctx, "0000000000")
		assert.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("search folds case", func(t *testing.T) {
		m, err := p.SearchByTitleAuthor(ctx, "DUNE", " frank herbert ", "")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "Dune", m.Title)
	})

	t.Run("search prefers isbn", func(t *testing.T) {
		m, err := p.SearchByTitleAuthor(ctx, "Something Else", "Someone", "9780441172716")
		require.NoError(t, err)
		require.NotNil(t, m)
		assert.Equal(t, "Dune", m.Title)
	})

	t.Run("search miss", func(t *testing.T) {
		m, err := p.SearchByTitleAuthor(ctx, "Obscure Title", "Unknown Author", "")
		assert.NoError(t, err)
		assert.Nil(t, m)
	})

	t.Run("canceled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := p.LookupByISBN(cctx, "9780441172716")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNone(t *testing.T) {
	var p Provider = None{}

	m, err := p.LookupByISBN(context.Background(), "9780441172716")
	assert.NoError(t, err)
	assert.Nil(t, m)

	m, err = p.SearchByTitleAuthor(context.Background(), "Dune", "Frank Herbert", "")
	assert.NoError(t, err)
	assert.Nil(t, m)
}
