// Package dictionary provides the word lookups used to validate and
// explain words in markdown documents. Backends include an in-memory trie
// (built-in list or a word list file), a SQL table and a Redis hash.
package dictionary

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Lookup when the word is not in the dictionary.
var ErrNotFound = errors.New("word not found")

// Entry is one dictionary word and its optional definition.
type Entry struct {
	Word       string
	Definition string
}

// Dictionary looks words up. Implementations fold case, so "Hello" and
// "hello" are the same word.
type Dictionary interface {
	// Lookup returns the entry for word, or ErrNotFound.
	Lookup(ctx context.Context, word string) (Entry, error)

	// Close releases any connection held by the dictionary.
	Close() error
}

// Importer is implemented by backends that can be filled from a word list.
type Importer interface {
	Import(ctx context.Context, entries []Entry) error
}

// Lister is implemented by in-memory backends that can enumerate their
// words, used to suggest spellings.
type Lister interface {
	Words() []string
}

// InitError reports a dictionary that could not be built.
type InitError struct {
	Backend string
	Err     error
}

// Error implements the error interface.
func (e *InitError) Error() string {
	return fmt.Sprintf("dictionary %s: %v", e.Backend, e.Err)
}

// Unwrap returns the underlying error.
func (e *InitError) Unwrap() error {
	return e.Err
}

// Normalize returns the lookup key for a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}
