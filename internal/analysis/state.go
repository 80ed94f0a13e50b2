// Package analysis holds the open markdown documents of a session and
// answers diagnostics and hover queries against a dictionary.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"
)

// DiagnosticSource is reported as the source of every diagnostic.
const DiagnosticSource = "mdlsp"

// ProjectWordsFile is the word list read from the workspace root. Its words
// are known in addition to the dictionary's.
const ProjectWordsFile = ".mdlsp-words"

// Document is an open text document.
type Document struct {
	Text       string
	Version    int32
	LanguageID protocol.LanguageIdentifier
}

// State is the server state for one session.
type State struct {
	dict   dictionary.Dictionary
	logger *zap.Logger

	mu        sync.RWMutex
	documents map[protocol.DocumentURI]Document
	root      protocol.DocumentURI
	project   *dictionary.Trie
}

// NewState creates an empty state. dict may be nil, in which case no word is
// checked and hovers are empty.
func NewState(dict dictionary.Dictionary, logger *zap.Logger) *State {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &State{
		dict:      dict,
		logger:    logger,
		documents: make(map[protocol.DocumentURI]Document),
	}
}

// SetRoot records the workspace root and loads its project word list.
func (s *State) SetRoot(root protocol.DocumentURI) {
	project := s.loadProjectWords(root)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	s.project = project
}

func (s *State) loadProjectWords(root protocol.DocumentURI) *dictionary.Trie {
	// Filename panics on anything but a parsable file URI
	if u, err := url.ParseRequestURI(string(root)); err != nil || u.Scheme != uri.FileScheme {
		return nil
	}

	path := filepath.Join(uri.URI(root).Filename(), ProjectWordsFile)
	project, err := dictionary.LoadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("ignoring project word list", zap.String("path", path), zap.Error(err))
		}
		return nil
	}

	s.logger.Info("loaded project word list", zap.String("path", path), zap.Int("words", project.Len()))
	return project
}

// Root returns the workspace root, empty when the client sent none.
func (s *State) Root() protocol.DocumentURI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Document returns the open document stored under uri.
func (s *State) Document(uri protocol.DocumentURI) (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[uri]
	return doc, ok
}

// CloseDocument forgets the document stored under uri.
func (s *State) CloseDocument(uri protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, uri)
}

// GetDiagnosticsForFile stores the opened document and reports every word
// the dictionary does not know.
func (s *State) GetDiagnosticsForFile(ctx context.Context, params *protocol.DidOpenTextDocumentParams) []protocol.Diagnostic {
	item := params.TextDocument

	s.mu.Lock()
	s.documents[item.URI] = Document{
		Text:       item.Text,
		Version:    item.Version,
		LanguageID: item.LanguageID,
	}
	s.mu.Unlock()

	return s.Check(ctx, item.Text)
}

// Check returns the diagnostics for text without storing it.
func (s *State) Check(ctx context.Context, text string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	if s.dict == nil || text == "" {
		return diagnostics
	}

	known := make(map[string]bool)
	for _, w := range ScanWords(text) {
		key := dictionary.Normalize(w.Text)

		ok, seen := known[key]
		if !seen {
			var err error
			ok, err = s.isKnown(ctx, key)
			if err != nil {
				// A failing backend must not flag every word.
				s.logger.Warn("dictionary lookup failed", zap.String("word", key), zap.Error(err))
				return diagnostics
			}
			known[key] = ok
		}
		if ok {
			continue
		}

		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: w.Line, Character: w.Start},
				End:   protocol.Position{Line: w.Line, Character: w.End},
			},
			Severity: protocol.DiagnosticSeverityWarning,
			Source:   DiagnosticSource,
			Message:  fmt.Sprintf("unknown word %q", w.Text),
		})
	}

	return diagnostics
}

// lookup consults the project word list before the dictionary.
func (s *State) lookup(ctx context.Context, word string) (dictionary.Entry, error) {
	s.mu.RLock()
	project := s.project
	s.mu.RUnlock()

	if project != nil {
		if entry, err := project.Lookup(ctx, word); err == nil {
			return entry, nil
		}
	}
	return s.dict.Lookup(ctx, word)
}

func (s *State) isKnown(ctx context.Context, word string) (bool, error) {
	_, err := s.lookup(ctx, word)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, dictionary.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
