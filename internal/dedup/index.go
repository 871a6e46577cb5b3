package dedup

// Set is an unordered collection of keys.
type Set map[Key]struct{}

// NewSet builds a set from the keys of every record.
func NewSet[R Record](records ...R) Set {
	s := make(Set)
	for _, r := range records {
		s.Add(Compute(r)...)
	}
	return s
}

// Add inserts keys into the set.
func (s Set) Add(keys ...Key) {
	for _, k := range keys {
		s[k] = struct{}{}
	}
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Intersects reports whether any of keys is in the set.
func (s Set) Intersects(keys []Key) bool {
	for _, k := range keys {
		if s.Has(k) {
			return true
		}
	}
	return false
}

// Index maps keys to the first value registered under them.
// It answers "which existing row does this record match".
type Index[T any] struct {
	byKey map[Key]T
}

// NewIndex returns an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{byKey: make(map[Key]T)}
}

// Add registers v under every key of r. Keys already claimed keep their
// original value so lookups resolve to the earliest registration.
func (idx *Index[T]) Add(r Record, v T) {
	idx.AddKeys(Compute(r), v)
}

// AddKeys registers v under the given keys.
func (idx *Index[T]) AddKeys(keys []Key, v T) {
	for _, k := range keys {
		if _, exists := idx.byKey[k]; !exists {
			idx.byKey[k] = v
		}
	}
}

// Find returns the value registered under the first matching key, in key order.
func (idx *Index[T]) Find(keys []Key) (T, bool) {
	for _, k := range keys {
		if v, ok := idx.byKey[k]; ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Len returns the number of distinct keys in the index.
func (idx *Index[T]) Len() int {
	return len(idx.byKey)
}
