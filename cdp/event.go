package cdp

import (
	"context"
	"sync"

	"github.com/chromedp/cdproto"
	cdpext "github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
)

// Event is a CDP event received from the browser, together with the session
// and frame it originated from.
type Event struct {
	Name cdproto.MethodType
	Data interface{}

	sessionID target.SessionID
	frameID   cdpext.FrameID
}

// SessionID returns the ID of the session the event was routed through.
// Empty for browser-level events.
func (e *Event) SessionID() string { return string(e.sessionID) }

type eventSub struct {
	sessionID string
	frameID   string
	events    map[cdproto.MethodType]struct{}
	ch        chan *Event
}

func (s *eventSub) wants(evt *Event) bool {
	if _, ok := s.events[evt.Name]; !ok {
		return false
	}
	if s.sessionID != "" && s.sessionID != string(evt.sessionID) {
		return false
	}
	if s.frameID != "" && s.frameID != string(evt.frameID) {
		return false
	}
	return true
}

type eventWatcher struct {
	ctx context.Context

	subsMu sync.RWMutex
	subs   map[int64]*eventSub
	nextID int64
}

func newEventWatcher(ctx context.Context) *eventWatcher {
	return &eventWatcher{
		ctx:  ctx,
		subs: make(map[int64]*eventSub),
	}
}

// subscribe registers interest in the given events, optionally filtered by
// session and frame IDs. The returned cancel func unsubscribes; the channel
// is buffered and events are dropped rather than block the receive loop.
func (w *eventWatcher) subscribe(
	sessionID, frameID string, events ...cdproto.MethodType,
) (<-chan *Event, func()) {
	sub := &eventSub{
		sessionID: sessionID,
		frameID:   frameID,
		events:    make(map[cdproto.MethodType]struct{}, len(events)),
		ch:        make(chan *Event, 16),
	}
	for _, evt := range events {
		sub.events[evt] = struct{}{}
	}

	w.subsMu.Lock()
	w.nextID++
	id := w.nextID
	w.subs[id] = sub
	w.subsMu.Unlock()

	cancel := func() {
		w.subsMu.Lock()
		delete(w.subs, id)
		w.subsMu.Unlock()
	}
	return sub.ch, cancel
}

func (w *eventWatcher) notify(evt *Event) {
	w.subsMu.RLock()
	defer w.subsMu.RUnlock()

	for _, sub := range w.subs {
		if !sub.wants(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		case <-w.ctx.Done():
			return
		default:
			// Slow subscriber; dropping beats stalling the read loop.
		}
	}
}
