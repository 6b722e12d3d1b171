package cdp

import "context"

type ctxKey int

const (
	ctxKeySessionID ctxKey = iota
)

// WithSessionID returns a context that routes CDP commands to the target
// attached under the given session ID. Without a session ID a command is
// addressed to the browser target itself.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, ctxKeySessionID, sessionID)
}

// GetSessionID returns the session ID carried by the context, if any.
func GetSessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxKeySessionID).(string)
	return sid
}

// contextWithDoneChan returns a context that is cancelled when done closes,
// in addition to the parent's own cancellation.
func contextWithDoneChan(ctx context.Context, done chan struct{}) context.Context {
	newCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		select {
		case <-done:
		case <-newCtx.Done():
		}
	}()
	return newCtx
}
