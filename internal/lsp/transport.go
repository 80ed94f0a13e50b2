package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// NewStream joins a reader and a writer into one connection, such as the
// process standard streams. Close closes r when it is an io.Closer.
func NewStream(r io.Reader, w io.Writer) io.ReadWriteCloser {
	return stream{Reader: r, Writer: w}
}

// stream implements io.ReadWriteCloser for stdin/stdout
type stream struct {
	io.Reader
	io.Writer
}

func (s stream) Close() error {
	if c, ok := s.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WebSocketAcceptor upgrades HTTP requests on a single path to websocket
// connections and hands out the first one. The server is single-client:
// later upgrade attempts are refused while a client is connected.
type WebSocketAcceptor struct {
	router   chi.Router
	upgrader websocket.Upgrader
	conns    chan *websocket.Conn
	busy     atomic.Bool
	logger   *zap.Logger
}

// NewWebSocketAcceptor creates an acceptor serving upgrades on path.
func NewWebSocketAcceptor(path string, logger *zap.Logger) *WebSocketAcceptor {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &WebSocketAcceptor{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				// Only local editors may connect
				return strings.HasPrefix(origin, "http://localhost") ||
					strings.HasPrefix(origin, "https://localhost") ||
					strings.HasPrefix(origin, "http://127.0.0.1") ||
					strings.HasPrefix(origin, "https://127.0.0.1")
			},
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		conns:  make(chan *websocket.Conn, 1),
		logger: logger,
	}

	router := chi.NewRouter()
	router.Get(path, a.handleUpgrade)
	a.router = router

	return a
}

// Handler returns the HTTP handler performing the upgrades.
func (a *WebSocketAcceptor) Handler() http.Handler {
	return a.router
}

func (a *WebSocketAcceptor) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	if !a.busy.CompareAndSwap(false, true) {
		http.Error(w, "a client is already connected", http.StatusServiceUnavailable)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.busy.Store(false)
		a.logger.Error("upgrading websocket connection", zap.Error(err))
		return
	}

	a.logger.Info("websocket client connected", zap.String("remote", r.RemoteAddr))
	a.conns <- conn
}

// Accept waits for the client connection.
func (a *WebSocketAcceptor) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	select {
	case conn := <-a.conns:
		return &wsConn{conn: conn, logger: a.logger}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ListenWebSocket listens on addr and blocks until one client has connected
// on path. Closing the returned connection also stops the HTTP server.
func ListenWebSocket(ctx context.Context, addr, path string, logger *zap.Logger) (io.ReadWriteCloser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}

	acceptor := NewWebSocketAcceptor(path, logger)
	srv := &http.Server{
		Handler:           acceptor.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("websocket server error", zap.Error(err))
		}
	}()
	logger.Info("waiting for websocket client", zap.String("addr", ln.Addr().String()), zap.String("path", path))

	rwc, err := acceptor.Accept(ctx)
	if err != nil {
		srv.Close()
		return nil, err
	}

	conn := rwc.(*wsConn)
	conn.onClose = srv.Close
	return conn, nil
}

// wsConn adapts a websocket connection to a byte stream. Incoming messages
// are concatenated; every Write is sent as one text message.
type wsConn struct {
	conn    *websocket.Conn
	reader  io.Reader
	logger  *zap.Logger
	onClose func() error

	closeOnce sync.Once
}

func (c *wsConn) Read(p []byte) (int, error) {
	for {
		if c.reader == nil {
			_, r, err := c.conn.NextReader()
			if err != nil {
				// gorilla returns the same error on every later call, so any
				// failure ends the stream.
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					c.logger.Warn("websocket read failed", zap.Error(err))
				}
				return 0, io.EOF
			}
			c.reader = r
		}

		n, err := c.reader.Read(p)
		if errors.Is(err, io.EOF) {
			c.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (c *wsConn) Write(p []byte) (int, error) {
	if err := c.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
		if c.onClose != nil {
			if cerr := c.onClose(); cerr != nil && err == nil {
				err = cerr
			}
		}
	})
	return err
}
