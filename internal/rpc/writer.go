package rpc

import (
	"encoding/json"
	"fmt"
	"io"

	"go.lsp.dev/jsonrpc2"
)

// Writer sends JSON-RPC messages as frames. Every message is written with
// a single Write call and nothing is buffered between messages.
type Writer struct {
	w io.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write serializes msg and writes the framed bytes.
func (w *Writer) Write(msg jsonrpc2.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	if _, err := w.w.Write(Encode(string(data))); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
