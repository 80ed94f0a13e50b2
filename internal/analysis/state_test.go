package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap/zaptest"
)

const testURI = protocol.DocumentURI("file:///notes/readme.md")

func testDictionary() *dictionary.Trie {
	return dictionary.NewTrieFromEntries([]dictionary.Entry{
		{Word: "the"},
		{Word: "quick"},
		{Word: "fox", Definition: "A small wild canine."},
		{Word: "author"},
	})
}

func didOpen(text string) *protocol.DidOpenTextDocumentParams {
	return &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        testURI,
			LanguageID: "markdown",
			Version:    3,
			Text:       text,
		},
	}
}

// failingDictionary fails every lookup.
type failingDictionary struct{}

func (failingDictionary) Lookup(context.Context, string) (dictionary.Entry, error) {
	return dictionary.Entry{}, errors.New("backend down")
}

func (failingDictionary) Close() error { return nil }

func TestState_GetDiagnosticsForFile(t *testing.T) {
	state := NewState(testDictionary(), zaptest.NewLogger(t))

	diagnostics := state.GetDiagnosticsForFile(context.Background(), didOpen("The quick brwn fox\nthe author's brwn `cde`"))

	require.Len(t, diagnostics, 2)
	assert.Equal(t, protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 10},
			End:   protocol.Position{Line: 0, Character: 14},
		},
		Severity: protocol.DiagnosticSeverityWarning,
		Source:   DiagnosticSource,
		Message:  `unknown word "brwn"`,
	}, diagnostics[0])
	assert.Equal(t, protocol.Position{Line: 1, Character: 13}, diagnostics[1].Range.Start)

	doc, ok := state.Document(testURI)
	require.True(t, ok)
	assert.Equal(t, int32(3), doc.Version)
	assert.Equal(t, protocol.LanguageIdentifier("markdown"), doc.LanguageID)
}

func TestState_GetDiagnosticsForFile_Empty(t *testing.T) {
	tests := []struct {
		name  string
		state *State
		text  string
	}{
		{name: "empty text", state: NewState(testDictionary(), nil), text: ""},
		{name: "nil dictionary", state: NewState(nil, nil), text: "anything goes here"},
		{name: "all known", state: NewState(testDictionary(), nil), text: "the quick fox"},
		{name: "lookup failure", state: NewState(failingDictionary{}, zaptest.NewLogger(t)), text: "some words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diagnostics := tt.state.GetDiagnosticsForFile(context.Background(), didOpen(tt.text))
			assert.NotNil(t, diagnostics)
			assert.Empty(t, diagnostics)

			_, ok := tt.state.Document(testURI)
			assert.True(t, ok)
		})
	}
}

func TestState_CloseDocument(t *testing.T) {
	state := NewState(testDictionary(), nil)
	state.GetDiagnosticsForFile(context.Background(), didOpen("the fox"))

	state.CloseDocument(testURI)

	_, ok := state.Document(testURI)
	assert.False(t, ok)
}

func TestState_Root(t *testing.T) {
	state := NewState(nil, nil)
	assert.Empty(t, state.Root())

	state.SetRoot("file:///notes")
	assert.Equal(t, protocol.DocumentURI("file:///notes"), state.Root())
}

func TestState_ProjectWords(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ProjectWordsFile), []byte("brwn\tour build tool\n"), 0o644))

	state := NewState(testDictionary(), zaptest.NewLogger(t))
	text := "the brwn fox"

	require.Len(t, state.Check(context.Background(), text), 1)

	state.SetRoot(uri.File(dir))
	assert.Empty(t, state.Check(context.Background(), text))

	state.GetDiagnosticsForFile(context.Background(), didOpen(text))
	hover := state.Hover(context.Background(), hoverAt(testURI, 0, 5))
	assert.Equal(t, "**brwn**\n\nour build tool", hover.Contents.Value)

	hover = state.Hover(context.Background(), hoverAt(testURI, 0, 10))
	assert.Equal(t, "**fox**\n\nA small wild canine.", hover.Contents.Value)

	// A new root without a word list drops the previous one
	state.SetRoot(uri.File(t.TempDir()))
	assert.Len(t, state.Check(context.Background(), text), 1)
}

func TestState_ProjectWordsIgnored(t *testing.T) {
	tests := []struct {
		name string
		root protocol.DocumentURI
	}{
		{name: "non-file root", root: "https://example.org/notes"},
		{name: "missing directory", root: uri.File(filepath.Join(t.TempDir(), "missing"))},
		{name: "empty root", root: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := NewState(testDictionary(), zaptest.NewLogger(t))
			state.SetRoot(tt.root)
			assert.Equal(t, tt.root, state.Root())
			assert.Len(t, state.Check(context.Background(), "the brwn fox"), 1)
		})
	}
}

func hoverAt(uri protocol.DocumentURI, line, character uint32) *protocol.HoverParams {
	return &protocol.HoverParams{
		TextDocumentPositionParams: protocol.TextDocumentPositionParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
			Position:     protocol.Position{Line: line, Character: character},
		},
	}
}

func TestState_Hover(t *testing.T) {
	state := NewState(testDictionary(), zaptest.NewLogger(t))
	state.GetDiagnosticsForFile(context.Background(), didOpen("the  quick fox"))

	hover := state.Hover(context.Background(), hoverAt(testURI, 0, 12))

	assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
	assert.Equal(t, "**fox**\n\nA small wild canine.", hover.Contents.Value)
	require.NotNil(t, hover.Range)
	assert.Equal(t, protocol.Position{Line: 0, Character: 11}, hover.Range.Start)
	assert.Equal(t, protocol.Position{Line: 0, Character: 14}, hover.Range.End)

	hover = state.Hover(context.Background(), hoverAt(testURI, 0, 6))
	assert.Equal(t, "**quick**", hover.Contents.Value)
}

func TestState_HoverEmpty(t *testing.T) {
	state := NewState(testDictionary(), nil)
	state.GetDiagnosticsForFile(context.Background(), didOpen("the  brwn"))

	tests := []struct {
		name   string
		state  *State
		params *protocol.HoverParams
	}{
		{name: "whitespace", state: state, params: hoverAt(testURI, 0, 4)},
		{name: "unknown word", state: state, params: hoverAt(testURI, 0, 6)},
		{name: "unknown document", state: state, params: hoverAt("file:///other.md", 0, 0)},
		{name: "past line end", state: state, params: hoverAt(testURI, 0, 99999)},
		{name: "nil dictionary", state: NewState(nil, nil), params: hoverAt(testURI, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hover := tt.state.Hover(context.Background(), tt.params)
			assert.Equal(t, protocol.Markdown, hover.Contents.Kind)
			assert.Empty(t, hover.Contents.Value)
			assert.Nil(t, hover.Range)
		})
	}
}
