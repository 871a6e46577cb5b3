package dedup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name   string
		record Fields
		want   []Key
	}{
		{
			name:   "isbn and title author",
			record: Fields{ISBN: "9780441172716", Title: "Dune", Author: "Frank Herbert"},
			want:   []Key{"isbn:9780441172716", "ta:dune|frank herbert"},
		},
		{
			name:   "isbn only",
			record: Fields{ISBN: "9780441172716", Title: "Dune"},
			want:   []Key{"isbn:9780441172716"},
		},
		{
			name:   "title author only",
			record: Fields{Title: "The Hobbit", Author: "J.R.R. Tolkien"},
			want:   []Key{"ta:the hobbit|j.r.r. tolkien"},
		},
		{
			name:   "hyphenated isbn normalized",
			record: Fields{ISBN: "978-0-261-10295-4"},
			want:   []Key{"isbn:9780261102954"},
		},
		{
			name:   "isbn10 check digit uppercased",
			record: Fields{ISBN: "0-8044-2957-x"},
			want:   []Key{"isbn:080442957X"},
		},
		{
			name:   "whitespace trimmed before lowercasing",
			record: Fields{Title: "  Dune ", Author: " Frank Herbert"},
			want:   []Key{"ta:dune|frank herbert"},
		},
		{
			name:   "unicode lowercased",
			record: Fields{Title: "ÉLAN", Author: "ÖZ"},
			want:   []Key{"ta:élan|öz"},
		},
		{
			name:   "title without author is unkeyable",
			record: Fields{Title: "Dune"},
			want:   []Key{},
		},
		{
			name:   "whitespace only fields are unkeyable",
			record: Fields{ISBN: " - ", Title: " ", Author: "x"},
			want:   []Key{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compute(tt.record))
		})
	}
}

func TestMatch(t *testing.T) {
	t.Run("isbn match with different titles", func(t *testing.T) {
		a := Fields{ISBN: "9780441172716", Title: "Dune"}
		b := Fields{ISBN: "978-0441172716", Title: "Dune (Deluxe Edition)", Author: "Frank Herbert"}
		assert.True(t, Match(a, b))
	})

	t.Run("title author match across editions", func(t *testing.T) {
		a := Fields{ISBN: "9780441172716", Title: "Dune", Author: "Frank Herbert"}
		b := Fields{ISBN: "9780593099322", Title: "DUNE", Author: "frank herbert"}
		assert.True(t, Match(a, b))
	})

	t.Run("unkeyable never matches itself", func(t *testing.T) {
		a := Fields{Title: "Untitled"}
		assert.False(t, Match(a, a))
	})

	t.Run("different works", func(t *testing.T) {
		a := Fields{ISBN: "1", Title: "A", Author: "X"}
		b := Fields{ISBN: "2", Title: "B", Author: "X"}
		assert.False(t, Match(a, b))
	})
}

func TestIndex_FirstRegistrationWins(t *testing.T) {
	idx := NewIndex[int64]()
	idx.Add(Fields{ISBN: "111", Title: "A", Author: "B"}, 1)
	idx.Add(Fields{ISBN: "222", Title: "A", Author: "B"}, 2)

	got, ok := idx.Find(Compute(Fields{Title: "a", Author: "b"}))
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)

	got, ok = idx.Find(Compute(Fields{ISBN: "222"}))
	assert.True(t, ok)
	assert.Equal(t, int64(2), got)

	_, ok = idx.Find(nil)
	assert.False(t, ok)
	assert.Equal(t, 3, idx.Len())
}

func TestSet(t *testing.T) {
	s := NewSet(Fields{ISBN: "111"}, Fields{Title: "A", Author: "B"})
	assert.True(t, s.Has("isbn:111"))
	assert.True(t, s.Intersects([]Key{"isbn:999", "ta:a|b"}))
	assert.False(t, s.Intersects(nil))
}

func genFields() *rapid.Generator[Fields] {
	return rapid.Custom(func(t *rapid.T) Fields {
		return Fields{
			ISBN:   rapid.SampledFrom([]string{"", "9780441172716", "978-0-441-17271-6", "080442957X", "12"}).Draw(t, "isbn"),
			Title:  rapid.SampledFrom([]string{"", " ", "Dune", "dune", "The Hobbit", "Émile"}).Draw(t, "title"),
			Author: rapid.SampledFrom([]string{"", "Frank Herbert", "FRANK HERBERT", "Tolkien"}).Draw(t, "author"),
		}
	})
}

func TestProperty_EmptyKeysIffUnkeyable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		f := genFields().Draw(t, "record")
		hasISBN := NormalizeISBN(f.ISBN) != ""
		hasTitleAuthor := strings.TrimSpace(f.Title) != "" && strings.TrimSpace(f.Author) != ""

		keys := Compute(f)
		if (len(keys) == 0) != (!hasISBN && !hasTitleAuthor) {
			t.Fatalf("keys %v inconsistent with record %+v", keys, f)
		}
	})
}

func TestProperty_SharedISBNIntersects(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		isbn := rapid.StringMatching(`[0-9]{10,13}`).Draw(t, "isbn")
		a := genFields().Draw(t, "a")
		b := genFields().Draw(t, "b")
		a.ISBN, b.ISBN = isbn, isbn

		if !Match(a, b) {
			t.Fatalf("records sharing isbn %s did not match", isbn)
		}
	})
}

func TestProperty_MatchIsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := genFields().Draw(t, "a")
		b := genFields().Draw(t, "b")
		if Match(a, b) != Match(b, a) {
			t.Fatalf("match not symmetric for %+v and %+v", a, b)
		}
	})
}
