// Package lsp implements the MarkdownLSP language server: the read loop over
// a framed byte stream, the JSON-RPC method dispatcher and the transports
// the loop can run on.
package lsp

import (
	"context"
	"io"
	"os"

	"github.com/jsuarez-dev/MarkdownLSP/internal/rpc"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// State is the per-session document state the dispatcher works against.
type State interface {
	// GetDiagnosticsForFile records the opened document and returns its diagnostics.
	GetDiagnosticsForFile(ctx context.Context, params *protocol.DidOpenTextDocumentParams) []protocol.Diagnostic

	// Hover returns the hover content for a document position.
	Hover(ctx context.Context, params *protocol.HoverParams) protocol.Hover

	// CloseDocument forgets a document.
	CloseDocument(uri protocol.DocumentURI)

	// SetRoot records the workspace root announced by the client.
	SetRoot(root protocol.DocumentURI)
}

// Server implements the LSP server for markdown documents
type Server struct {
	// state holds open documents and answers analysis queries
	state State

	// writer frames outbound messages
	writer *rpc.Writer

	logger *zap.Logger

	// Server capabilities
	capabilities protocol.ServerCapabilities
	info         protocol.ServerInfo

	// exit terminates the process; replaced in tests
	exit func(code int)

	// cleanups run in reverse order before exit
	cleanups []func()

	// stopped is set once shutdown has been handled
	stopped bool
}

// Option configures a Server.
type Option func(*Server)

// WithExit replaces the function used to terminate the process on shutdown.
func WithExit(exit func(code int)) Option {
	return func(s *Server) {
		s.exit = exit
	}
}

// WithShutdown registers fn to run before the process exits on shutdown.
// Deferred calls do not run once exit is called, so resources held by the
// caller are released here.
func WithShutdown(fn func()) Option {
	return func(s *Server) {
		s.cleanups = append(s.cleanups, fn)
	}
}

// WithServerInfo sets the name and version reported to the client.
func WithServerInfo(name, version string) Option {
	return func(s *Server) {
		s.info = protocol.ServerInfo{Name: name, Version: version}
	}
}

// NewServer creates a server that answers on out.
func NewServer(state State, out io.Writer, logger *zap.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		state:  state,
		writer: rpc.NewWriter(out),
		logger: logger,
		capabilities: protocol.ServerCapabilities{
			TextDocumentSync: protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindNone,
			},
			HoverProvider: true,
		},
		info: protocol.ServerInfo{
			Name:    "mdlsp",
			Version: "dev",
		},
		exit: os.Exit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Capabilities returns the capabilities announced on initialize.
func (s *Server) Capabilities() protocol.ServerCapabilities {
	return s.capabilities
}

// reply sends the response to a call.
func (s *Server) reply(id jsonrpc2.ID, result interface{}) error {
	resp, err := jsonrpc2.NewResponse(id, result, nil)
	if err != nil {
		return err
	}
	s.logger.Debug("sending response", zap.String("id", idString(id)))
	return s.writer.Write(resp)
}

// notify sends a server-initiated notification.
func (s *Server) notify(method string, params interface{}) error {
	notif, err := jsonrpc2.NewNotification(method, params)
	if err != nil {
		return err
	}
	s.logger.Debug("sending notification", zap.String("method", method))
	return s.writer.Write(notif)
}

// terminate ends the session with the given exit status.
func (s *Server) terminate(code int) {
	if s.stopped {
		return
	}
	s.stopped = true
	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.exit(code)
}
