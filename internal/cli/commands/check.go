package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jsuarez-dev/MarkdownLSP/internal/analysis"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/config"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/ui"
	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"github.com/jsuarez-dev/MarkdownLSP/internal/utils"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check PATH...",
		Short: "Check markdown files for unknown words",
		Long: `Check markdown files against the configured dictionary and print every
unknown word, the same warnings an editor shows when the file is opened.
Directories are searched recursively for .md and .markdown files.

Exits with a non-zero status when any unknown word is found.`,
		Example: `  mdlsp check README.md docs/*.md
  mdlsp check --summary docs/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("summary", false, "print a per-file summary table")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	paths, err := utils.ExpandPaths(args)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	ctx := cmd.Context()
	dict, err := dictionary.Open(ctx, cfg.DictionaryOptions(), nil)
	if err != nil {
		return err
	}
	defer dict.Close()

	var candidates []string
	if lister, ok := dict.(dictionary.Lister); ok {
		candidates = lister.Words()
	}

	out := cmd.OutOrStdout()
	state := analysis.NewState(dict, nil)
	table := ui.NewTable(out, noColor, "FILE", "UNKNOWN")

	total := 0
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		docURI := uri.File(abs)

		diagnostics := state.GetDiagnosticsForFile(ctx, &protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{
				URI:        docURI,
				LanguageID: "markdown",
				Version:    1,
				Text:       string(text),
			},
		})
		state.CloseDocument(docURI)

		for _, d := range diagnostics {
			word := d.Message
			if w, ok := analysis.WordAt(string(text), d.Range.Start); ok {
				word = w.Text
			}
			ui.WriteDiagnostic(out, path, d, ui.Suggest(word, candidates, nil), noColor)
		}

		table.AddRow(path, strconv.Itoa(len(diagnostics)))
		total += len(diagnostics)
	}

	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		fmt.Fprintln(out)
		table.Render()
	}

	if total > 0 {
		return fmt.Errorf("found %d unknown word(s) in %d file(s)", total, len(paths))
	}

	ui.WriteSuccess(out, fmt.Sprintf("no unknown words in %d file(s)", len(paths)), noColor)
	return nil
}
