package dictionary

import (
	"context"
	"sort"
)

// Trie is an in-memory dictionary keyed by rune. It is built once and then
// only read, so lookups need no locking.
type Trie struct {
	root *trieNode
	size int
}

type trieNode struct {
	children   map[rune]*trieNode
	terminal   bool
	word       string
	definition string
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}}
}

// NewTrieFromEntries builds a trie holding entries. Later duplicates
// replace earlier definitions.
func NewTrieFromEntries(entries []Entry) *Trie {
	t := NewTrie()
	for _, e := range entries {
		t.Insert(e.Word, e.Definition)
	}
	return t
}

// Insert adds word with an optional definition.
func (t *Trie) Insert(word, definition string) {
	key := Normalize(word)
	if key == "" {
		return
	}

	node := t.root
	for _, r := range key {
		if node.children == nil {
			node.children = make(map[rune]*trieNode)
		}
		next, ok := node.children[r]
		if !ok {
			next = &trieNode{}
			node.children[r] = next
		}
		node = next
	}

	if !node.terminal {
		t.size++
	}
	node.terminal = true
	node.word = key
	if definition != "" || node.definition == "" {
		node.definition = definition
	}
}

// Lookup implements Dictionary.
func (t *Trie) Lookup(_ context.Context, word string) (Entry, error) {
	node := t.find(Normalize(word))
	if node == nil || !node.terminal {
		return Entry{}, ErrNotFound
	}
	return Entry{Word: node.word, Definition: node.definition}, nil
}

// Len returns the number of distinct words.
func (t *Trie) Len() int {
	return t.size
}

// Words returns every word in the trie in sorted order.
func (t *Trie) Words() []string {
	words := make([]string, 0, t.size)
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if n.terminal {
			words = append(words, n.word)
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(t.root)

	sort.Strings(words)
	return words
}

// Close implements Dictionary.
func (t *Trie) Close() error {
	return nil
}

func (t *Trie) find(key string) *trieNode {
	node := t.root
	for _, r := range key {
		next, ok := node.children[r]
		if !ok {
			return nil
		}
		node = next
	}
	return node
}
