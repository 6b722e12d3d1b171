package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/cdproto"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikita55612/BrowserBridge/log"
)

// testCDPServer is a minimal CDP endpoint: it answers every command with a
// canned result and can push events to the client.
type testCDPServer struct {
	t      *testing.T
	srv    *httptest.Server
	connCh chan *websocket.Conn

	// result returned for any command, as raw JSON.
	result string
	// when set, commands are answered with this CDP error instead.
	cmdErr *cdproto.Error
	// when set, commands get no answer at all.
	silent bool
}

func newTestCDPServer(t *testing.T, result string) *testCDPServer {
	t.Helper()

	s := &testCDPServer{t: t, result: result, connCh: make(chan *websocket.Conn, 1)}
	upgrader := websocket.Upgrader{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		s.connCh <- conn

		for {
			var msg struct {
				ID        int64           `json:"id"`
				Method    string          `json:"method"`
				SessionID string          `json:"sessionId,omitempty"`
				Params    json.RawMessage `json:"params,omitempty"`
			}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if s.silent {
				continue
			}

			var reply string
			if s.cmdErr != nil {
				eb, _ := json.Marshal(s.cmdErr)
				reply = fmt.Sprintf(`{"id":%d,"error":%s}`, msg.ID, eb)
			} else {
				reply = fmt.Sprintf(`{"id":%d,"result":%s}`, msg.ID, s.result)
			}
			if msg.SessionID != "" {
				reply = strings.TrimSuffix(reply, "}") +
					fmt.Sprintf(`,"sessionId":%q}`, msg.SessionID)
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(s.srv.Close)

	return s
}

func (s *testCDPServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.srv.URL, "http")
}

// push sends a raw CDP event frame to the connected client.
func (s *testCDPServer) push(event string) {
	conn := <-s.connCh
	s.connCh <- conn
	require.NoError(s.t, conn.WriteMessage(websocket.TextMessage, []byte(event)))
}

func TestClientExecute(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{"targetInfo":{"targetId":"t1","type":"page","title":"Example","url":"https://example.com/","attached":true,"browserContextId":"b1"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	info, err := c.Target.GetTargetInfo(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "Example", info.Title)
	assert.Equal(t, "https://example.com/", info.URL)
}

func TestClientExecuteCDPError(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{}`)
	srv.cmdErr = &cdproto.Error{Code: -32000, Message: "no target with given id found"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	_, err := c.Target.GetTargetInfo(ctx, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no target with given id found")
}

func TestClientCloseTarget(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{"success":true}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	require.NoError(t, c.Target.CloseTarget(ctx, "t1"))
}

func TestClientConnectTwice(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	require.Error(t, c.Connect(srv.wsURL()))
}

func TestClientSubscribe(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	evtCh, cancelSub := c.Subscribe(ctx, "", cdproto.EventTargetAttachedToTarget)
	defer cancelSub()

	// An Execute forces the connection open before the push.
	_, err := c.Target.GetTargetInfo(ctx, "t1")
	require.NoError(t, err)

	srv.push(`{"method":"Target.attachedToTarget","params":{"sessionId":"s1","targetInfo":{"targetId":"t1","type":"page","title":"","url":"about:blank","attached":true,"browserContextId":"b1"},"waitingForDebugger":false}}`)

	select {
	case evt := <-evtCh:
		assert.EqualValues(t, cdproto.EventTargetAttachedToTarget, evt.Name)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the event")
	}
}

func TestClientExecuteContextCancelled(t *testing.T) {
	t.Parallel()

	srv := newTestCDPServer(t, `{}`)
	srv.silent = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := NewClient(ctx, log.NewNullLogger())
	require.NoError(t, c.Connect(srv.wsURL()))
	defer c.Disconnect()

	callCtx, callCancel := context.WithCancel(ctx)
	callCancel()

	err := c.Execute(callCtx, "Browser.getVersion", nil, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSessionIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetSessionID(ctx))

	ctx = WithSessionID(ctx, "s42")
	assert.Equal(t, "s42", GetSessionID(ctx))
}
