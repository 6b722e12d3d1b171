package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpin "github.com/chromedp/cdproto/input"
)

// KeyEvent describes one synthesized keyboard event.
type KeyEvent struct {
	Type      cdpin.KeyType
	Key       string
	Code      string
	Text      string
	KeyCode   int64
	Location  int64
	Modifiers int64
}

// Input exposes the CDP Input domain actions the module uses.
type Input interface {
	DispatchKeyEvent(ctx context.Context, ev KeyEvent) error
	InsertText(ctx context.Context, text string) error
}

var _ Input = &input{}

type input struct {
	exec cdp.Executor
}

// NewInput returns a new CDP Input domain wrapper.
func NewInput(exec cdp.Executor) Input {
	return &input{exec}
}

func (i *input) DispatchKeyEvent(ctx context.Context, ev KeyEvent) error {
	action := cdpin.DispatchKeyEvent(ev.Type).
		WithKey(ev.Key).
		WithCode(ev.Code).
		WithWindowsVirtualKeyCode(ev.KeyCode).
		WithNativeVirtualKeyCode(ev.KeyCode).
		WithLocation(ev.Location).
		WithModifiers(cdpin.Modifier(ev.Modifiers))
	if ev.Text != "" {
		action = action.WithText(ev.Text).WithUnmodifiedText(ev.Text)
	}
	if err := action.Do(cdp.WithExecutor(ctx, i.exec)); err != nil {
		return fmt.Errorf("dispatching key event %q: %w", ev.Key, err)
	}
	return nil
}

func (i *input) InsertText(ctx context.Context, text string) error {
	action := cdpin.InsertText(text)
	if err := action.Do(cdp.WithExecutor(ctx, i.exec)); err != nil {
		return fmt.Errorf("inserting text: %w", err)
	}
	return nil
}
