package lsp

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.lsp.dev/protocol"
	"go.uber.org/zap/zaptest"
)

func TestNewServer_Capabilities(t *testing.T) {
	server := NewServer(&fakeState{}, nil, nil)

	caps := server.Capabilities()
	assert.Equal(t, true, caps.HoverProvider)
	assert.Equal(t, protocol.TextDocumentSyncOptions{
		OpenClose: true,
		Change:    protocol.TextDocumentSyncKindNone,
	}, caps.TextDocumentSync)
	assert.Nil(t, caps.CompletionProvider)
	assert.Nil(t, caps.DefinitionProvider)
}

func TestDispatch_Initialize(t *testing.T) {
	state := &fakeState{}
	ts := newTestServer(t, state)

	require.NoError(t, ts.Dispatch(context.Background(), initializeRequest))

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)

	resp := msgs[0]
	assert.Equal(t, "2.0", gjson.Get(resp, "jsonrpc").String())
	assert.Equal(t, int64(1), gjson.Get(resp, "id").Int())
	assert.True(t, gjson.Get(resp, "result.capabilities.hoverProvider").Bool())
	assert.True(t, gjson.Get(resp, "result.capabilities.textDocumentSync.openClose").Bool())
	// Edits are not synced, so clients must not send didChange
	assert.False(t, gjson.Get(resp, "result.capabilities.textDocumentSync.change").Exists())
	assert.Equal(t, "mdlsp", gjson.Get(resp, "result.serverInfo.name").String())
	assert.False(t, gjson.Get(resp, "error").Exists())

	assert.Equal(t, protocol.DocumentURI("file:///workspace"), state.root)
}

func TestDispatch_InitializeRootURIFallback(t *testing.T) {
	state := &fakeState{}
	ts := newTestServer(t, state)

	err := ts.Dispatch(context.Background(), `{"jsonrpc":"2.0","id":"init","method":"initialize","params":{"rootUri":"file:///root","capabilities":{}}}`)
	require.NoError(t, err)

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "init", gjson.Get(msgs[0], "id").String())
	assert.Equal(t, protocol.DocumentURI("file:///root"), state.root)
}

func TestDispatch_InitializeWithServerInfo(t *testing.T) {
	out := &fakeWriter{}
	server := NewServer(&fakeState{}, out, nil, WithServerInfo("mdlsp", "1.2.3"))

	require.NoError(t, server.Dispatch(context.Background(), initializeRequest))
	assert.Equal(t, "1.2.3", gjson.Get(decodeAll(t, out.String())[0], "result.serverInfo.version").String())
}

func TestDispatch_DidOpenPublishesDiagnostics(t *testing.T) {
	diagnostic := protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 4},
			End:   protocol.Position{Line: 0, Character: 8},
		},
		Severity: protocol.DiagnosticSeverityWarning,
		Source:   "mdlsp",
		Message:  `unknown word "wrld"`,
	}
	state := &fakeState{diagnostics: []protocol.Diagnostic{diagnostic}}
	ts := newTestServer(t, state)

	require.NoError(t, ts.Dispatch(context.Background(), didOpenNotification))

	require.Len(t, state.opened, 1)
	assert.Equal(t, "the wrld", state.opened[0].TextDocument.Text)

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)

	notif := msgs[0]
	assert.Equal(t, "textDocument/publishDiagnostics", gjson.Get(notif, "method").String())
	assert.False(t, gjson.Get(notif, "id").Exists())
	assert.Equal(t, "file:///a.md", gjson.Get(notif, "params.uri").String())
	assert.Equal(t, int64(2), gjson.Get(notif, "params.version").Int())
	assert.Equal(t, int64(1), gjson.Get(notif, "params.diagnostics.#").Int())
	assert.Equal(t, `unknown word "wrld"`, gjson.Get(notif, "params.diagnostics.0.message").String())
	assert.Equal(t, int64(2), gjson.Get(notif, "params.diagnostics.0.severity").Int())
}

func TestDispatch_DidOpenWithoutDiagnostics(t *testing.T) {
	ts := newTestServer(t, &fakeState{})

	require.NoError(t, ts.Dispatch(context.Background(), didOpenNotification))

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "[]", gjson.Get(msgs[0], "params.diagnostics").Raw)
}

func TestDispatch_DidClose(t *testing.T) {
	state := &fakeState{}
	ts := newTestServer(t, state)

	err := ts.Dispatch(context.Background(), `{"jsonrpc":"2.0","method":"textDocument/didClose","params":{"textDocument":{"uri":"file:///a.md"}}}`)
	require.NoError(t, err)

	assert.Equal(t, []protocol.DocumentURI{"file:///a.md"}, state.closed)

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, "file:///a.md", gjson.Get(msgs[0], "params.uri").String())
	assert.Equal(t, "[]", gjson.Get(msgs[0], "params.diagnostics").Raw)
	assert.False(t, gjson.Get(msgs[0], "params.version").Exists())
}

func TestDispatch_Hover(t *testing.T) {
	state := &fakeState{hover: protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: "**the**"},
	}}
	ts := newTestServer(t, state)

	require.NoError(t, ts.Dispatch(context.Background(), hoverRequest))

	require.Len(t, state.hovers, 1)
	assert.Equal(t, protocol.Position{Line: 0, Character: 5}, state.hovers[0].Position)
	assert.Equal(t, protocol.DocumentURI("file:///a.md"), state.hovers[0].TextDocument.URI)

	msgs := ts.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, int64(7), gjson.Get(msgs[0], "id").Int())
	assert.Equal(t, "markdown", gjson.Get(msgs[0], "result.contents.kind").String())
	assert.Equal(t, "**the**", gjson.Get(msgs[0], "result.contents.value").String())
}

func TestDispatch_HoverNotificationDropped(t *testing.T) {
	state := &fakeState{}
	ts := newTestServer(t, state)

	err := ts.Dispatch(context.Background(), `{"jsonrpc":"2.0","method":"textDocument/hover","params":{"textDocument":{"uri":"file:///a.md"},"position":{"line":0,"character":0}}}`)
	require.NoError(t, err)

	assert.Empty(t, state.hovers)
	assert.Empty(t, ts.out.String())
}

func TestDispatch_ShutdownAndExit(t *testing.T) {
	for _, payload := range []string{
		shutdownRequest,
		`{"jsonrpc":"2.0","method":"exit"}`,
	} {
		ts := newTestServer(t, &fakeState{})

		require.NoError(t, ts.Dispatch(context.Background(), payload))

		assert.True(t, ts.exited, payload)
		assert.Equal(t, 0, ts.exitCode)
		assert.True(t, ts.stopped)
		assert.Empty(t, ts.out.String(), "shutdown must not be answered")
	}
}

func TestDispatch_ShutdownRunsCleanups(t *testing.T) {
	var calls []string
	exited := 0
	server := NewServer(&fakeState{}, &bytes.Buffer{}, zaptest.NewLogger(t),
		WithShutdown(func() { calls = append(calls, "dictionary") }),
		WithShutdown(func() { calls = append(calls, "transport") }),
		WithExit(func(code int) {
			calls = append(calls, "exit")
			exited++
		}),
	)

	require.NoError(t, server.Dispatch(context.Background(), shutdownRequest))
	require.NoError(t, server.Dispatch(context.Background(), `{"jsonrpc":"2.0","method":"exit"}`))

	assert.Equal(t, []string{"transport", "dictionary", "exit"}, calls)
	assert.Equal(t, 1, exited)
}

func TestDispatch_SilentMethods(t *testing.T) {
	payloads := map[string]string{
		"unknown method":       `{"jsonrpc":"2.0","id":3,"method":"workspace/symbol","params":{"query":"x"}}`,
		"unknown notification": `{"jsonrpc":"2.0","method":"$/cancelRequest","params":{"id":1}}`,
		"didChange":            `{"jsonrpc":"2.0","method":"textDocument/didChange","params":{"textDocument":{"uri":"file:///a.md","version":3},"contentChanges":[{"text":"x"}]}}`,
		"completion":           `{"jsonrpc":"2.0","id":4,"method":"textDocument/completion","params":{}}`,
		"codeAction":           `{"jsonrpc":"2.0","id":5,"method":"textDocument/codeAction","params":{}}`,
		"definition":           `{"jsonrpc":"2.0","id":6,"method":"textDocument/definition","params":{}}`,
		"initialized":          `{"jsonrpc":"2.0","method":"initialized","params":{}}`,
		"client response":      `{"jsonrpc":"2.0","id":9,"result":null}`,
	}

	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, &fakeState{})

			require.NoError(t, ts.Dispatch(context.Background(), payload))
			assert.Empty(t, ts.out.String())
			assert.False(t, ts.exited)
		})
	}
}

func TestDispatch_ParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		method  string
	}{
		{name: "not json", payload: `{"jsonrpc":`},
		{name: "not an object", payload: `[1,2,3]`},
		{name: "bad params", payload: `{"jsonrpc":"2.0","method":"textDocument/didOpen","params":{"textDocument":"oops"}}`, method: "textDocument/didOpen"},
		{name: "bad hover params", payload: `{"jsonrpc":"2.0","id":1,"method":"textDocument/hover","params":{"position":{"line":-1}}}`, method: "textDocument/hover"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := &fakeState{}
			ts := newTestServer(t, state)

			err := ts.Dispatch(context.Background(), tt.payload)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "got %v", err)
			assert.Equal(t, tt.method, parseErr.Method)
			assert.Empty(t, ts.out.String(), "errors are never sent to the client")
			assert.Empty(t, state.opened)
		})
	}
}

func TestDispatch_WriteError(t *testing.T) {
	boom := errors.New("broken pipe")
	server := NewServer(&fakeState{}, &fakeWriter{err: boom}, nil)

	err := server.Dispatch(context.Background(), initializeRequest)
	assert.ErrorIs(t, err, boom)
}
