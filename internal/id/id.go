// Package id generates opaque prefixed identifiers.
package id

import (
	"fmt"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated ids.
const (
	PrefixPreview = "imp"
	PrefixRequest = "req"
)

// Generate creates a prefixed NanoID, e.g. "imp-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system has insufficient entropy.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics on failure.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewPreviewID returns a correlation id for an import preview.
func NewPreviewID() (string, error) {
	return Generate(PrefixPreview)
}

// HasPrefix reports whether id was generated with prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"-") && len(id) > len(prefix)+1
}
