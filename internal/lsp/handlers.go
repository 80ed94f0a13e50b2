package lsp

import (
	"context"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// handleInitialize handles the initialize request
func (s *Server) handleInitialize(ctx context.Context, params *protocol.InitializeParams) (protocol.InitializeResult, error) {
	if params.ClientInfo != nil {
		s.logger.Info("initialize from client",
			zap.String("client", params.ClientInfo.Name),
			zap.String("version", params.ClientInfo.Version),
		)
	}

	// Prefer workspace folders, then fall back to the deprecated rootUri
	switch {
	case len(params.WorkspaceFolders) > 0:
		s.state.SetRoot(protocol.DocumentURI(params.WorkspaceFolders[0].URI))
	case params.RootURI != "":
		s.state.SetRoot(params.RootURI)
	}

	info := s.info
	return protocol.InitializeResult{
		Capabilities: s.capabilities,
		ServerInfo:   &info,
	}, nil
}

// handleInitialized handles the initialized notification
func (s *Server) handleInitialized(ctx context.Context, params *protocol.InitializedParams) error {
	s.logger.Debug("client initialized")
	return nil
}

// handleTextDocumentDidOpen computes diagnostics for the opened document
// and pushes them to the client.
func (s *Server) handleTextDocumentDidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("document opened",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version),
	)

	diagnostics := s.state.GetDiagnosticsForFile(ctx, params)

	return s.publishDiagnostics(params.TextDocument.URI, params.TextDocument.Version, diagnostics)
}

// handleTextDocumentDidClose drops the document and clears its diagnostics.
func (s *Server) handleTextDocumentDidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("document closed", zap.String("uri", string(params.TextDocument.URI)))

	s.state.CloseDocument(params.TextDocument.URI)

	return s.publishDiagnostics(params.TextDocument.URI, 0, nil)
}

// handleTextDocumentHover answers a hover request
func (s *Server) handleTextDocumentHover(ctx context.Context, params *protocol.HoverParams) (protocol.Hover, error) {
	s.logger.Debug("hover",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Uint32("line", params.Position.Line),
		zap.Uint32("character", params.Position.Character),
	)

	return s.state.Hover(ctx, params), nil
}

// publishDiagnostics sends a textDocument/publishDiagnostics notification.
func (s *Server) publishDiagnostics(uri protocol.DocumentURI, version int32, diagnostics []protocol.Diagnostic) error {
	if diagnostics == nil {
		diagnostics = []protocol.Diagnostic{}
	}

	params := protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	}
	if version > 0 {
		params.Version = uint32(version)
	}

	return s.notify(protocol.MethodTextDocumentPublishDiagnostics, &params)
}
