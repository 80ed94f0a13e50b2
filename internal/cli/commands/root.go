package commands

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/config"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/ui"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// noColor disables colored terminal output
var noColor bool

// NewRootCommand creates the root command. Run without a subcommand it
// starts the language server, which is how editors launch it.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mdlsp",
		Short: "Language server for markdown documents",
		Long: color.CyanString(`mdlsp - Markdown Language Server

mdlsp speaks the Language Server Protocol over stdin/stdout (or a local
websocket) and checks markdown documents against a word dictionary.

Features:
  • Unknown word diagnostics on open
  • Dictionary definitions on hover
  • Built-in, word list file, SQL and Redis dictionaries`),
		Args:          cobra.NoArgs,
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	addServeFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewDictCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the mdlsp version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			// Set GoVersion to actual runtime if not set at build time
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			if noColor {
				titleColor.DisableColor()
			}
			out := cmd.OutOrStdout()

			for _, line := range [][2]string{
				{"mdlsp version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, line[0])
				fmt.Fprintln(out, line[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		reportError(rootCmd, err)
		return err
	}
	return nil
}

func reportError(cmd *cobra.Command, err error) {
	var startupErr *config.StartupError
	if errors.As(err, &startupErr) {
		fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), noColor))
		return
	}

	ui.WriteError(cmd.ErrOrStderr(), ui.ErrorOptions{
		Level:   ui.ErrorLevelError,
		Problem: err.Error(),
		NoColor: noColor,
	})
}
