package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.lsp.dev/protocol"
)

// FormatDiagnostic renders one diagnostic as a compiler-style line:
//
//	notes.md:3:12: warning: unknown word "teh" (did you mean: the, ten?)
//
// Line and column are 1-based.
func FormatDiagnostic(file string, d protocol.Diagnostic, suggestions []string, noColor bool) string {
	var b strings.Builder

	location := color.New(color.Bold)
	severity := severityColor(d.Severity)
	hint := color.New(color.FgHiBlack)
	if noColor {
		location.DisableColor()
		severity.DisableColor()
		hint.DisableColor()
	}

	location.Fprintf(&b, "%s:%d:%d:", file, d.Range.Start.Line+1, d.Range.Start.Character+1)
	b.WriteString(" ")
	severity.Fprintf(&b, "%s:", severityName(d.Severity))
	b.WriteString(" ")
	b.WriteString(d.Message)

	if len(suggestions) > 0 {
		b.WriteString(" ")
		hint.Fprintf(&b, "(did you mean: %s?)", strings.Join(suggestions, ", "))
	}

	return b.String()
}

// WriteDiagnostic writes a formatted diagnostic line to the writer
func WriteDiagnostic(w io.Writer, file string, d protocol.Diagnostic, suggestions []string, noColor bool) {
	fmt.Fprintln(w, FormatDiagnostic(file, d, suggestions, noColor))
}

func severityName(s protocol.DiagnosticSeverity) string {
	switch s {
	case protocol.DiagnosticSeverityError:
		return "error"
	case protocol.DiagnosticSeverityWarning:
		return "warning"
	case protocol.DiagnosticSeverityInformation:
		return "info"
	case protocol.DiagnosticSeverityHint:
		return "hint"
	default:
		return "warning"
	}
}

func severityColor(s protocol.DiagnosticSeverity) *color.Color {
	switch s {
	case protocol.DiagnosticSeverityError:
		return color.New(color.FgRed, color.Bold)
	case protocol.DiagnosticSeverityInformation, protocol.DiagnosticSeverityHint:
		return color.New(color.FgCyan, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}
