package lsp

import (
	"context"
	"io"

	"github.com/jsuarez-dev/MarkdownLSP/internal/rpc"
	"go.uber.org/zap"
)

// Serve runs the read-decode-dispatch loop over r until ctx is cancelled,
// shutdown is handled, or r is exhausted.
//
// Errors caused by client input are logged and never end the loop. The
// context is only checked between messages; a blocked read finishes first.
func (s *Server) Serve(ctx context.Context, r io.Reader) error {
	s.logger.Info("starting language server")

	dec := rpc.NewDecoder(r)
	for !s.stopped {
		select {
		case <-ctx.Done():
			s.logger.Info("stop requested, shutting down language server")
			return nil
		default:
		}

		payload, err := dec.Decode()
		if err != nil {
			s.logger.Error("decoding message", zap.Error(err))
			if dec.Exhausted() {
				break
			}
			continue
		}
		if payload == "" {
			if dec.Exhausted() {
				break
			}
			continue
		}

		s.handle(ctx, payload)
	}

	s.logger.Info("language server stopped", zap.Bool("input_closed", dec.Exhausted()))
	return nil
}

// handle dispatches one payload, logging errors and recovering panics so a
// single bad message cannot take the process down.
func (s *Server) handle(ctx context.Context, payload string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while handling message",
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
		}
	}()

	if err := s.Dispatch(ctx, payload); err != nil {
		s.logger.Error("handling message", zap.Error(err))
	}
}
