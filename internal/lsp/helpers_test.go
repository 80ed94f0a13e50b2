package lsp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jsuarez-dev/MarkdownLSP/internal/rpc"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.uber.org/zap/zaptest"
)

// fakeState records the calls made by the dispatcher.
type fakeState struct {
	diagnostics []protocol.Diagnostic
	hover       protocol.Hover
	panicOnOpen bool

	opened []*protocol.DidOpenTextDocumentParams
	hovers []*protocol.HoverParams
	closed []protocol.DocumentURI
	root   protocol.DocumentURI
}

func (f *fakeState) GetDiagnosticsForFile(_ context.Context, params *protocol.DidOpenTextDocumentParams) []protocol.Diagnostic {
	if f.panicOnOpen {
		panic("analysis failed")
	}
	f.opened = append(f.opened, params)
	return f.diagnostics
}

func (f *fakeState) Hover(_ context.Context, params *protocol.HoverParams) protocol.Hover {
	f.hovers = append(f.hovers, params)
	return f.hover
}

func (f *fakeState) CloseDocument(uri protocol.DocumentURI) {
	f.closed = append(f.closed, uri)
}

func (f *fakeState) SetRoot(root protocol.DocumentURI) {
	f.root = root
}

// testServer is a server writing to a buffer with process exit captured.
type testServer struct {
	*Server
	out      *bytes.Buffer
	exitCode int
	exited   bool
}

func newTestServer(t *testing.T, state State) *testServer {
	t.Helper()

	ts := &testServer{out: &bytes.Buffer{}, exitCode: -1}
	ts.Server = NewServer(state, ts.out, zaptest.NewLogger(t),
		WithExit(func(code int) {
			ts.exited = true
			ts.exitCode = code
		}),
	)
	return ts
}

// messages decodes every frame written by the server.
func (ts *testServer) messages(t *testing.T) []string {
	t.Helper()
	return decodeAll(t, ts.out.String())
}

func decodeAll(t *testing.T, data string) []string {
	t.Helper()

	var payloads []string
	dec := rpc.NewDecoder(strings.NewReader(data))
	for {
		payload, err := dec.Decode()
		require.NoError(t, err)
		if dec.Exhausted() {
			return payloads
		}
		payloads = append(payloads, payload)
	}
}

// frames concatenates framed payloads into one input stream.
func frames(payloads ...string) string {
	var b strings.Builder
	for _, p := range payloads {
		b.Write(rpc.Encode(p))
	}
	return b.String()
}

const (
	initializeRequest   = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"processId":42,"rootUri":"file:///root","clientInfo":{"name":"nvim","version":"0.10"},"workspaceFolders":[{"uri":"file:///workspace","name":"workspace"}],"capabilities":{}}}`
	didOpenNotification = `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":{"uri":"file:///a.md","languageId":"markdown","version":2,"text":"the wrld"}}}`
	hoverRequest        = `{"jsonrpc":"2.0","id":7,"method":"textDocument/hover","params":{"textDocument":{"uri":"file:///a.md"},"position":{"line":0,"character":5}}}`
	shutdownRequest     = `{"jsonrpc":"2.0","id":2,"method":"shutdown"}`
)

// fakeWriter collects writes or fails them with err.
type fakeWriter struct {
	bytes.Buffer
	err error
}

func (w *fakeWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return w.Buffer.Write(p)
}
