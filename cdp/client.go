package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto"
	cdpext "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/mailru/easyjson"

	"github.com/nikita55612/BrowserBridge/cdp/domains"
	"github.com/nikita55612/BrowserBridge/log"
)

// Ensure Client can execute cdproto actions.
var _ cdpext.Executor = &Client{}

// Client manages CDP communication with the browser: one goroutine reads
// the websocket and routes responses and events, one writes queued
// commands. Execute is synchronous; events are delivered via Subscribe.
type Client struct {
	ctx    context.Context
	logger *log.Logger

	Browser   domains.Browser
	Target    domains.Target
	Page      domains.Page
	Network   domains.Network
	Emulation domains.Emulation
	DOM       domains.DOM
	Runtime   domains.Runtime
	Input     domains.Input

	conn  *connection
	msgID int64

	sendCh  chan *cdproto.Message
	errorCh chan error
	done    chan struct{}
	closed  sync.Once

	msgSubsMu sync.Mutex
	msgSubs   map[int64]chan *cdproto.Message

	watcher *eventWatcher
	wsURL   string
}

// NewClient returns a new Client that is unusable until a CDP connection is
// established with Connect.
func NewClient(ctx context.Context, logger *log.Logger) *Client {
	c := &Client{
		ctx:     ctx,
		logger:  logger,
		sendCh:  make(chan *cdproto.Message, 32), // buffered to avoid blocking in Execute
		errorCh: make(chan error, 1),
		done:    make(chan struct{}),
		msgSubs: make(map[int64]chan *cdproto.Message),
		watcher: newEventWatcher(ctx),
	}

	c.Browser = domains.NewBrowser(c)
	c.Target = domains.NewTarget(c)
	c.Page = domains.NewPage(c)
	c.Network = domains.NewNetwork(c)
	c.Emulation = domains.NewEmulation(c)
	c.DOM = domains.NewDOM(c)
	c.Runtime = domains.NewRuntime(c)
	c.Input = domains.NewInput(c)

	return c
}

// Connect to the browser that exposes a CDP API at wsURL.
func (c *Client) Connect(wsURL string) (err error) {
	if c.wsURL != "" {
		return fmt.Errorf("CDP connection already established to %q", c.wsURL)
	}

	if c.conn, err = newConnection(c.ctx, wsURL, c.logger); err != nil {
		return err
	}
	c.logger.Infof("cdp", "established CDP connection to %q", wsURL)
	c.wsURL = wsURL

	go c.recvLoop()
	go c.sendLoop()

	return nil
}

// Disconnect closes the connection to the browser's CDP API. Pending
// Executes fail; Disconnect is safe to call more than once.
func (c *Client) Disconnect() {
	c.closed.Do(func() {
		close(c.done)
		if c.conn != nil {
			if err := c.conn.Close(); err != nil {
				c.logger.Debugf("cdp:Disconnect", "closing websocket: %v", err)
			}
		}
	})
}

// Done is closed when the connection to the browser is gone, whether by
// Disconnect or a transport failure.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Execute implements cdp.Executor: it sends a CDP command and blocks until
// the matching response arrives, the context is cancelled, or the
// connection dies. The session ID set with WithSessionID routes the command
// to an attached target.
func (c *Client) Execute(
	ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler,
) error {
	c.logger.Tracef("cdp:Execute", "wsURL:%q method:%q", c.wsURL, method)

	id := atomic.AddInt64(&c.msgID, 1)
	recvCh := make(chan *cdproto.Message, 1)
	c.msgSubsMu.Lock()
	c.msgSubs[id] = recvCh
	c.msgSubsMu.Unlock()
	defer func() {
		c.msgSubsMu.Lock()
		delete(c.msgSubs, id)
		c.msgSubsMu.Unlock()
	}()

	msg, err := c.newMessage(ctx, id, method, params)
	if err != nil {
		return err
	}

	return c.send(ctx, msg, recvCh, res)
}

// ExecuteWithoutExpectationOnReply sends a CDP command and returns without
// waiting for the browser's response.
func (c *Client) ExecuteWithoutExpectationOnReply(
	ctx context.Context, method string, params easyjson.Marshaler, res easyjson.Unmarshaler,
) error {
	msg, err := c.newMessage(ctx, atomic.AddInt64(&c.msgID, 1), method, params)
	if err != nil {
		return err
	}
	return c.send(contextWithDoneChan(ctx, c.done), msg, nil, res)
}

// Subscribe returns a channel notified when any of the given CDP events
// arrive for the session ID carried by ctx (all sessions when absent) and
// the optional frame ID, plus a cancel func that unsubscribes.
func (c *Client) Subscribe(
	ctx context.Context, frameID string, events ...cdproto.MethodType,
) (<-chan *Event, func()) {
	return c.watcher.subscribe(GetSessionID(ctx), frameID, events...)
}

func (c *Client) newMessage(
	ctx context.Context, id int64, method string, params easyjson.Marshaler,
) (*cdproto.Message, error) {
	var buf []byte
	if params != nil {
		var err error
		if buf, err = easyjson.Marshal(params); err != nil {
			return nil, fmt.Errorf("encoding %q params: %w", method, err)
		}
	}

	msg := &cdproto.Message{
		ID:     id,
		Method: cdproto.MethodType(method),
		Params: buf,
	}
	// Messages without a session ID address the browser target itself;
	// with one they are routed to the attached page target.
	if sid := GetSessionID(ctx); sid != "" {
		msg.SessionID = target.SessionID(sid)
	}

	return msg, nil
}

func (c *Client) send(
	ctx context.Context, msg *cdproto.Message, recvCh chan *cdproto.Message, res easyjson.Unmarshaler,
) error {
	select {
	case c.sendCh <- msg:
	case err := <-c.errorCh:
		c.logger.Debugf("cdp:send", "wsURL:%q sid:%v err:%v", c.wsURL, msg.SessionID, err)
		var wsErr wsIOError
		if errors.As(err, &wsErr) {
			return c.conn.handleIOError(wsErr.Unwrap())
		}
		return err
	case <-c.done:
		return errors.New("connection to the browser is closed")
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}

	if recvCh == nil {
		return nil
	}

	select {
	case reply := <-recvCh:
		switch {
		case reply == nil:
			return errors.New("empty CDP response")
		case reply.Error != nil:
			return reply.Error
		case res != nil:
			return easyjson.Unmarshal(reply.Result, res)
		}
	case err := <-c.errorCh:
		var wsErr wsIOError
		if errors.As(err, &wsErr) {
			return c.conn.handleIOError(wsErr.Unwrap())
		}
		return err
	case <-c.done:
		return errors.New("connection to the browser is closed")
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}

	return nil
}

func (c *Client) recvLoop() {
	for {
		msg, err := c.conn.readMessage()
		if err != nil {
			var wsErr wsIOError
			closing := errors.As(err, &wsErr) || errors.Is(err, net.ErrClosed)
			select {
			case <-c.done:
				// Expected during Disconnect.
			default:
				if closing {
					c.logger.Debugf("cdp:recvLoop", "wsURL:%q connection lost: %v", c.wsURL, err)
				} else {
					c.logger.Errorf("cdp:recvLoop", "wsURL:%q read: %v", c.wsURL, err)
				}
			}
			c.Disconnect()
			return
		}

		switch {
		case msg.Method != "":
			evt, err := cdproto.UnmarshalMessage(msg)
			if err != nil {
				c.logger.Errorf("cdp:recvLoop", "unmarshaling CDP event %q: %v", msg.Method, err)
				continue
			}
			// Extract the frame ID when the event carries one.
			var p struct {
				FrameID cdpext.FrameID `json:"frameId"`
			}
			if raw, err := msg.Params.MarshalJSON(); err == nil {
				_ = json.Unmarshal(raw, &p)
			}
			c.watcher.notify(&Event{
				Name:      msg.Method,
				Data:      evt,
				sessionID: msg.SessionID,
				frameID:   p.FrameID,
			})
		case msg.ID > 0:
			c.msgSubsMu.Lock()
			recvCh, ok := c.msgSubs[msg.ID]
			if ok {
				delete(c.msgSubs, msg.ID)
			}
			c.msgSubsMu.Unlock()
			if !ok {
				c.logger.Debugf("cdp:recvLoop", "no waiter for CDP message %d", msg.ID)
				continue
			}
			recvCh <- msg
		default:
			c.logger.Errorf("cdp:recvLoop",
				"ignoring malformed incoming CDP message (missing id and method): %#v", msg)
		}
	}
}

func (c *Client) sendLoop() {
	for {
		select {
		case msg := <-c.sendCh:
			if err := c.conn.writeMessage(msg); err != nil {
				select {
				case c.errorCh <- err:
				default:
				}
			}
		case <-c.done:
			return
		case <-c.ctx.Done():
			c.logger.Debugf("cdp:sendLoop", "returning, ctx err: %v", c.ctx.Err())
			c.Disconnect()
			return
		}
	}
}
