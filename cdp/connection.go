// Package cdp implements the Chrome DevTools Protocol client: a websocket
// connection carrying cdproto messages, synchronous command execution and
// event subscription, and typed wrappers over the protocol domains.
package cdp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/mailru/easyjson/jlexer"
	"github.com/mailru/easyjson/jwriter"
	"github.com/oxtoacart/bpool"

	"github.com/nikita55612/BrowserBridge/log"
)

const (
	wsHandshakeTimeout = 10 * time.Second

	// CDP messages can carry whole documents and screenshots.
	wsReadBufferSize  = 1 << 20
	wsWriteBufferSize = 1 << 20

	wsWritePoolSize = 16
)

// wsIOError marks a websocket transport failure so the send path can tell
// it apart from CDP protocol errors.
type wsIOError struct {
	err error
}

func (e wsIOError) Error() string { return fmt.Sprintf("websocket IO: %v", e.err) }
func (e wsIOError) Unwrap() error { return e.err }

// connection is a single websocket connection to a browser's DevTools
// endpoint. It only knows how to read and write cdproto messages; routing
// is the Client's business.
type connection struct {
	ws        *websocket.Conn
	writeBufs *bpool.BufferPool
	logger    *log.Logger
}

func newConnection(ctx context.Context, wsURL string, logger *log.Logger) (*connection, error) {
	wd := websocket.Dialer{
		HandshakeTimeout: wsHandshakeTimeout,
		ReadBufferSize:   wsReadBufferSize,
		WriteBufferSize:  wsWriteBufferSize,
		Proxy:            http.ProxyFromEnvironment,
	}
	ws, _, err := wd.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("dialing DevTools URL %q: %w", wsURL, err)
	}
	return &connection{
		ws:        ws,
		writeBufs: bpool.NewBufferPool(wsWritePoolSize),
		logger:    logger,
	}, nil
}

func (c *connection) readMessage() (*cdproto.Message, error) {
	_, buf, err := c.ws.ReadMessage()
	if err != nil {
		return nil, wsIOError{err}
	}

	var msg cdproto.Message
	l := jlexer.Lexer{Data: buf}
	msg.UnmarshalEasyJSON(&l)
	if err := l.Error(); err != nil {
		return nil, fmt.Errorf("decoding CDP message: %w", err)
	}

	return &msg, nil
}

func (c *connection) writeMessage(msg *cdproto.Message) error {
	var enc jwriter.Writer
	msg.MarshalEasyJSON(&enc)
	if err := enc.Error; err != nil {
		return fmt.Errorf("encoding CDP message %d: %w", msg.ID, err)
	}

	buf := c.writeBufs.Get()
	defer c.writeBufs.Put(buf)
	if _, err := enc.DumpTo(buf); err != nil {
		return fmt.Errorf("buffering CDP message %d: %w", msg.ID, err)
	}

	w, err := c.ws.NextWriter(websocket.TextMessage)
	if err != nil {
		return wsIOError{err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return wsIOError{err}
	}
	if err := w.Close(); err != nil {
		return wsIOError{err}
	}

	return nil
}

// handleIOError converts a raw websocket error into the error the caller
// should see: close errors pass through so callers can detect a shut down
// browser, everything else is wrapped.
func (c *connection) handleIOError(err error) error {
	if closeErr, ok := err.(*websocket.CloseError); ok {
		return closeErr
	}
	return fmt.Errorf("communicating with the browser: %w", err)
}

// Close performs the websocket closing handshake, best effort.
func (c *connection) Close() error {
	deadline := time.Now().Add(time.Second)
	_ = c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		deadline,
	)
	return c.ws.Close()
}
