package dictionary

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed builtin.txt
var builtinWords string

// ReadWordList parses a word list: one word per line, optionally followed by
// a tab and its definition. Blank lines and lines starting with '#' are
// skipped.
func ReadWordList(r io.Reader) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		// The word ends at the first tab; a line starting with a tab has none
		word, definition, _ := strings.Cut(line, "\t")
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		entries = append(entries, Entry{
			Word:       Normalize(word),
			Definition: strings.TrimSpace(definition),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading word list: %w", err)
	}

	return entries, nil
}

// LoadFile reads a word list file into a trie.
func LoadFile(path string) (*Trie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening word list: %w", err)
	}
	defer f.Close()

	entries, err := ReadWordList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewTrieFromEntries(entries), nil
}

// Builtin returns a trie holding the word list compiled into the binary.
func Builtin() *Trie {
	entries, err := ReadWordList(strings.NewReader(builtinWords))
	if err != nil {
		// The embedded list is read from memory and cannot fail to scan
		panic(err)
	}
	return NewTrieFromEntries(entries)
}
