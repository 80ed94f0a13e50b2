package lsp

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
)

// route handles one method. Each implementation fixes the params type (and
// the result type for calls) of the methods it is registered for.
type route interface {
	serve(ctx context.Context, s *Server, req jsonrpc2.Request) error
}

// callRoute answers a request with a typed result.
type callRoute[P, R any] func(s *Server, ctx context.Context, params *P) (R, error)

func (fn callRoute[P, R]) serve(ctx context.Context, s *Server, req jsonrpc2.Request) error {
	call, ok := req.(*jsonrpc2.Call)
	if !ok {
		s.logger.Warn("request received without an id, dropping", zap.String("method", req.Method()))
		return nil
	}

	var params P
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	result, err := fn(s, ctx, &params)
	if err != nil {
		return fmt.Errorf("handling %s: %w", req.Method(), err)
	}
	return s.reply(call.ID(), result)
}

// notifyRoute handles a notification; it never replies.
type notifyRoute[P any] func(s *Server, ctx context.Context, params *P) error

func (fn notifyRoute[P]) serve(ctx context.Context, s *Server, req jsonrpc2.Request) error {
	var params P
	if err := decodeParams(req, &params); err != nil {
		return err
	}

	if err := fn(s, ctx, &params); err != nil {
		return fmt.Errorf("handling %s: %w", req.Method(), err)
	}
	return nil
}

// stubRoute accepts a method that is not implemented yet. It logs and
// sends nothing back.
type stubRoute struct{}

func (stubRoute) serve(_ context.Context, s *Server, req jsonrpc2.Request) error {
	s.logger.Debug("method not implemented yet", zap.String("method", req.Method()))
	return nil
}

// exitRoute terminates the process without replying.
type exitRoute struct{}

func (exitRoute) serve(_ context.Context, s *Server, req jsonrpc2.Request) error {
	s.logger.Info("closing language server", zap.String("method", req.Method()))
	_ = s.logger.Sync()
	s.terminate(0)
	return nil
}

// routes maps method names to their handlers. Methods missing here are
// ignored.
var routes = map[string]route{
	protocol.MethodInitialize:             callRoute[protocol.InitializeParams, protocol.InitializeResult]((*Server).handleInitialize),
	protocol.MethodInitialized:            notifyRoute[protocol.InitializedParams]((*Server).handleInitialized),
	protocol.MethodTextDocumentDidOpen:    notifyRoute[protocol.DidOpenTextDocumentParams]((*Server).handleTextDocumentDidOpen),
	protocol.MethodTextDocumentDidChange:  stubRoute{},
	protocol.MethodTextDocumentDidClose:   notifyRoute[protocol.DidCloseTextDocumentParams]((*Server).handleTextDocumentDidClose),
	protocol.MethodTextDocumentCompletion: stubRoute{},
	protocol.MethodTextDocumentCodeAction: stubRoute{},
	protocol.MethodTextDocumentDefinition: stubRoute{},
	protocol.MethodTextDocumentHover:      callRoute[protocol.HoverParams, protocol.Hover]((*Server).handleTextDocumentHover),
	protocol.MethodShutdown:               exitRoute{},
	protocol.MethodExit:                   exitRoute{},
}

// Dispatch interprets one decoded payload and sends at most one message
// back. The envelope is parsed first to find the method; the params are
// then decoded a second time into the shape that method expects.
func (s *Server) Dispatch(ctx context.Context, payload string) error {
	msg, err := jsonrpc2.DecodeMessage([]byte(payload))
	if err != nil {
		return &ParseError{Err: err}
	}

	req, ok := msg.(jsonrpc2.Request)
	if !ok {
		s.logger.Debug("ignoring response from client")
		return nil
	}

	method := req.Method()
	s.logger.Debug("received message", zap.String("method", method))

	r, ok := routes[method]
	if !ok {
		return nil
	}
	return r.serve(ctx, s, req)
}

// decodeParams unmarshals the request params into v. Absent params leave
// v at its zero value.
func decodeParams(req jsonrpc2.Request, v interface{}) error {
	raw := req.Params()
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ParseError{Method: req.Method(), Err: err}
	}
	return nil
}

func idString(id jsonrpc2.ID) string {
	return fmt.Sprintf("%q", id)
}
