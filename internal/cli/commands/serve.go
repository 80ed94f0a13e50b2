package commands

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/jsuarez-dev/MarkdownLSP/internal/analysis"
	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/config"
	"github.com/jsuarez-dev/MarkdownLSP/internal/dictionary"
	"github.com/jsuarez-dev/MarkdownLSP/internal/logging"
	"github.com/jsuarez-dev/MarkdownLSP/internal/lsp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// webSocketPath is the HTTP path upgraded to the LSP websocket.
const webSocketPath = "/lsp"

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Language Server Protocol server",
		Long: `Start the markdown Language Server Protocol (LSP) server.

This command starts an LSP server that provides IDE integration features including:
  • Unknown word diagnostics when a document is opened
  • Dictionary definitions on hover

The LSP server communicates via JSON-RPC over stdin/stdout, or over a local
websocket when transport.mode is "websocket". It is typically started
automatically by your editor/IDE.

PROJECTS_DIR must be set; the log is written to
$PROJECTS_DIR/MarkdownLSP/log.txt.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	addServeFlags(cmd)
	return cmd
}

// addServeFlags registers flags editors pass when launching a server.
func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("stdio", false, "communicate over stdin/stdout (the default)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.RequireProjectsDir(); err != nil {
		return err
	}
	if stdio, _ := cmd.Flags().GetBool("stdio"); stdio {
		cfg.Transport.Mode = config.TransportStdio
	}

	logger, err := logging.New(cfg.LogFile(), cfg.Log.Level)
	if err != nil {
		return &config.StartupError{Setting: "log.file", Err: err}
	}
	logger = logger.With(zap.String("session", uuid.NewString()))
	defer logger.Sync()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Closed on return, or by the server right before it exits on shutdown
	var closers []io.Closer
	var closeOnce sync.Once
	closeAll := func() {
		closeOnce.Do(func() {
			for i := len(closers) - 1; i >= 0; i-- {
				if err := closers[i].Close(); err != nil {
					logger.Debug("closing resource", zap.Error(err))
				}
			}
		})
	}
	defer closeAll()

	// A missing dictionary disables word checks but not the server
	dict, err := dictionary.Open(ctx, cfg.DictionaryOptions(), logger)
	if err != nil {
		logger.Error("dictionary unavailable, continuing without one", zap.Error(err))
	} else {
		closers = append(closers, dict)
	}

	conn, err := openTransport(ctx, cmd, cfg, logger)
	if err != nil {
		logger.Error("opening transport", zap.Error(err))
		return err
	}
	closers = append(closers, conn)

	// Unblock a pending read when a signal arrives
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	server := lsp.NewServer(
		analysis.NewState(dict, logger),
		conn,
		logger,
		lsp.WithServerInfo("mdlsp", Version),
		lsp.WithShutdown(closeAll),
	)

	return server.Serve(ctx, conn)
}

func openTransport(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *zap.Logger) (io.ReadWriteCloser, error) {
	if cfg.Transport.Mode == config.TransportWebSocket {
		return lsp.ListenWebSocket(ctx, cfg.Transport.Addr, webSocketPath, logger)
	}
	return lsp.NewStream(cmd.InOrStdin(), cmd.OutOrStdout()), nil
}
