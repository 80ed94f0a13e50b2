package analysis

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

// Word is a word found in a document. Start and End are UTF-16 columns on
// Line, End exclusive.
type Word struct {
	Text  string
	Line  uint32
	Start uint32
	End   uint32
}

var urlPrefixes = []string{"http://", "https://", "ftp://", "mailto:", "www."}

// ScanWords returns the prose words of a markdown document. Fenced code
// blocks, inline code spans, URLs, link destinations, autolinks and HTML tags
// are skipped, as are tokens containing digits or underscores.
func ScanWords(text string) []Word {
	var words []Word

	var fence string
	for n, line := range splitLines(text) {
		if marker, ok := fenceMarker(line); ok {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence):
				fence = ""
			}
			continue
		}
		if fence != "" {
			continue
		}
		words = scanLine(words, line, uint32(n))
	}

	return words
}

// splitLines splits text on "\n", dropping a trailing "\r" from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// fenceMarker reports whether line opens or closes a fenced code block and
// returns its run of fence characters.
func fenceMarker(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", false
	}
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return trimmed[:n], true
		}
	}
	return "", false
}

func scanLine(words []Word, line string, lineNo uint32) []Word {
	var col uint32
	i := 0

	advance := func(to int) {
		col += utf16Len(line[i:to])
		i = to
	}

	for i < len(line) {
		rest := line[i:]

		switch {
		case rest[0] == '`':
			advance(skipCodeSpan(line, i))
			continue
		case rest[0] == '<':
			if end := strings.IndexByte(rest, '>'); end > 0 && !strings.ContainsAny(rest[1:end], " \t") {
				advance(i + end + 1)
				continue
			}
		case strings.HasPrefix(rest, "]("):
			if end := strings.IndexByte(rest, ')'); end > 0 {
				advance(i + end + 1)
				continue
			}
		case hasURLPrefix(rest):
			end := strings.IndexFunc(rest, unicode.IsSpace)
			if end < 0 {
				end = len(rest)
			}
			advance(i + end)
			continue
		}

		r, size := utf8.DecodeRuneInString(rest)
		if !isTokenRune(r) {
			advance(i + size)
			continue
		}

		end := i
		for end < len(line) {
			r, size := utf8.DecodeRuneInString(line[end:])
			if !isTokenRune(r) {
				break
			}
			end += size
		}

		start := i
		startCol := col
		advance(end)

		if w, ok := tokenWord(line[start:end], startCol); ok {
			w.Line = lineNo
			words = append(words, w)
		}
	}

	return words
}

// tokenWord trims a raw token into a word. Tokens with digits or underscores
// are not words.
func tokenWord(token string, col uint32) (Word, bool) {
	if strings.IndexFunc(token, func(r rune) bool { return unicode.IsDigit(r) || r == '_' }) >= 0 {
		return Word{}, false
	}

	lead := len(token) - len(strings.TrimLeft(token, "'’"))
	text := trimWord(token)
	if text == "" {
		return Word{}, false
	}

	start := col + utf16Len(token[:lead])
	return Word{
		Text:  text,
		Start: start,
		End:   start + utf16Len(text),
	}, true
}

// trimWord strips surrounding apostrophes and a possessive "'s".
func trimWord(token string) string {
	word := strings.Trim(token, "'’")
	for _, suffix := range []string{"'s", "’s", "'S", "’S"} {
		if stem := strings.TrimSuffix(word, suffix); stem != word {
			return stem
		}
	}
	return word
}

func isTokenRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'' || r == '’'
}

func hasURLPrefix(s string) bool {
	for _, prefix := range urlPrefixes {
		if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

// skipCodeSpan returns the index just past the code span opening at i. An
// unmatched run of backticks is skipped on its own.
func skipCodeSpan(line string, i int) int {
	n := 0
	for i+n < len(line) && line[i+n] == '`' {
		n++
	}
	open := line[i : i+n]

	j := i + n
	for j < len(line) {
		k := strings.Index(line[j:], open)
		if k < 0 {
			break
		}
		end := j + k + n
		if end >= len(line) || line[end] != '`' {
			return end
		}
		for end < len(line) && line[end] == '`' {
			end++
		}
		j = end
	}

	return i + n
}

func utf16Len(s string) uint32 {
	var n uint32
	for _, r := range s {
		n += uint32(utf16.RuneLen(r))
	}
	return n
}

// byteOffset converts a UTF-16 column into a byte offset in line, clamped to
// the line length.
func byteOffset(line string, character uint32) int {
	var col uint32
	for i, r := range line {
		if col >= character {
			return i
		}
		col += uint32(utf16.RuneLen(r))
	}
	return len(line)
}
