package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/config"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/ui"
	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"github.com/spf13/cobra"
)

// importBatchSize is the number of entries written per Import call.
const importBatchSize = 500

// NewDictCommand creates the dict command
func NewDictCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Manage the word dictionary",
		Long: `Manage the dictionary configured under "dictionary" in mdlsp.yaml or the
MDLSP_DICTIONARY_* environment variables.`,
	}

	cmd.AddCommand(newDictImportCommand())
	cmd.AddCommand(newDictLookupCommand())

	return cmd
}

func newDictImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a word list into the SQL or Redis dictionary",
		Long: `Import a word list into the configured SQL or Redis dictionary.

The file has one word per line, optionally followed by a tab and the
definition shown on hover. Blank lines and lines starting with '#' are
skipped. Existing words are updated.`,
		Example: `  MDLSP_DICTIONARY_BACKEND=sql MDLSP_DICTIONARY_SQL_DSN=words.db mdlsp dict import words.txt`,
		Args:    cobra.ExactArgs(1),
		RunE:    runDictImport,
	}
}

func newDictLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup WORD",
		Short: "Look a word up in the configured dictionary",
		Args:  cobra.ExactArgs(1),
		RunE:  runDictLookup,
	}
}

func runDictImport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open word list: %w", err)
	}
	defer f.Close()

	entries, err := dictionary.ReadWordList(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	dict, err := dictionary.Open(ctx, cfg.DictionaryOptions(), nil)
	if err != nil {
		return err
	}
	defer dict.Close()

	importer, ok := dict.(dictionary.Importer)
	if !ok {
		return fmt.Errorf("the %s dictionary is read-only; use the sql or redis backend", cfg.Dictionary.Backend)
	}

	bar := ui.NewProgressBar(cmd.OutOrStdout(), "words", len(entries), noColor)
	for start := 0; start < len(entries); start += importBatchSize {
		end := min(start+importBatchSize, len(entries))
		if err := importer.Import(ctx, entries[start:end]); err != nil {
			return err
		}
		bar.Add(end - start)
	}
	bar.Finish(fmt.Sprintf("Imported %d words into the %s dictionary", len(entries), cfg.Dictionary.Backend))

	return nil
}

func runDictLookup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dict, err := dictionary.Open(cmd.Context(), cfg.DictionaryOptions(), nil)
	if err != nil {
		return err
	}
	defer dict.Close()

	entry, err := dict.Lookup(cmd.Context(), args[0])
	if errors.Is(err, dictionary.ErrNotFound) {
		return fmt.Errorf("%q is not in the %s dictionary", args[0], cfg.Dictionary.Backend)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	word := color.New(color.Bold)
	if noColor {
		word.DisableColor()
	}
	word.Fprintln(out, entry.Word)
	if entry.Definition != "" {
		fmt.Fprintf(out, "  %s\n", entry.Definition)
	}
	return nil
}
