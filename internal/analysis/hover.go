package analysis

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// Hover explains the word under the cursor using its dictionary definition.
// Positions outside a word, unknown words and unknown documents yield a hover
// with empty contents.
func (s *State) Hover(ctx context.Context, params *protocol.HoverParams) protocol.Hover {
	empty := protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown},
	}

	if s.dict == nil {
		return empty
	}

	doc, ok := s.Document(params.TextDocument.URI)
	if !ok {
		s.logger.Debug("hover on unknown document", zap.String("uri", string(params.TextDocument.URI)))
		return empty
	}

	w, ok := WordAt(doc.Text, params.Position)
	if !ok {
		return empty
	}

	entry, err := s.lookup(ctx, w.Text)
	if err != nil {
		if !errors.Is(err, dictionary.ErrNotFound) {
			s.logger.Warn("dictionary lookup failed", zap.String("word", w.Text), zap.Error(err))
		}
		return empty
	}

	return protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: renderEntry(entry),
		},
		Range: &protocol.Range{
			Start: protocol.Position{Line: w.Line, Character: w.Start},
			End:   protocol.Position{Line: w.Line, Character: w.End},
		},
	}
}

// WordAt returns the word covering pos in text.
func WordAt(text string, pos protocol.Position) (Word, bool) {
	lines := splitLines(text)
	if int(pos.Line) >= len(lines) {
		return Word{}, false
	}
	line := lines[pos.Line]
	if pos.Character > utf16Len(line) {
		return Word{}, false
	}
	offset := byteOffset(line, pos.Character)

	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(line[:start])
		if !isTokenRune(r) {
			break
		}
		start -= size
	}
	end := offset
	for end < len(line) {
		r, size := utf8.DecodeRuneInString(line[end:])
		if !isTokenRune(r) {
			break
		}
		end += size
	}
	if start == end {
		return Word{}, false
	}

	w, ok := tokenWord(line[start:end], utf16Len(line[:start]))
	if !ok {
		return Word{}, false
	}
	w.Line = pos.Line
	return w, true
}

func renderEntry(entry dictionary.Entry) string {
	var b strings.Builder

	b.WriteString("**")
	b.WriteString(entry.Word)
	b.WriteString("**")

	if entry.Definition != "" {
		b.WriteString("\n\n")
		b.WriteString(entry.Definition)
	}

	return b.String()
}
