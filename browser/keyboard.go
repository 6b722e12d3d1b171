package browser

import (
	"context"
	"fmt"

	cdpin "github.com/chromedp/cdproto/input"

	"github.com/nikita55612/BrowserBridge/cdp/domains"
	"github.com/nikita55612/BrowserBridge/keyboard"
)

// Keyboard synthesizes keyboard input on a page. Get one with
// Page.Keyboard; it shares the page's CDP session.
type Keyboard struct {
	page      *Page
	layout    keyboard.Layout
	modifiers int64
}

// Keyboard returns a keyboard bound to the page, using the US layout.
func (p *Page) Keyboard() *Keyboard {
	return &Keyboard{
		page:   p,
		layout: keyboard.LayoutFor("us"),
	}
}

// Down sends a key down event and keeps the key's modifier bit set until
// the matching Up.
func (k *Keyboard) Down(ctx context.Context, key string) error {
	def := k.layout.ModifiedKeyDefinition(keyboard.Key(key), keyboard.ModifierKey(k.modifiers))
	k.modifiers |= int64(k.layout.ModifierBitFromKey(def.Key))

	ev := domains.KeyEvent{
		Type:      cdpin.KeyDown,
		Key:       def.Key,
		Code:      def.Code,
		Text:      def.Text,
		KeyCode:   def.KeyCode,
		Location:  def.Location,
		Modifiers: k.modifiers,
	}
	if ev.Text == "" {
		ev.Type = cdpin.KeyRawDown
	}
	if err := k.page.session.client.Input.DispatchKeyEvent(k.page.sctx(ctx), ev); err != nil {
		return fmt.Errorf("pressing key %q down: %w", key, err)
	}
	return nil
}

// Up sends a key up event and clears the key's modifier bit.
func (k *Keyboard) Up(ctx context.Context, key string) error {
	def := k.layout.ModifiedKeyDefinition(keyboard.Key(key), keyboard.ModifierKey(k.modifiers))
	k.modifiers &^= int64(k.layout.ModifierBitFromKey(def.Key))

	ev := domains.KeyEvent{
		Type:      cdpin.KeyUp,
		Key:       def.Key,
		Code:      def.Code,
		KeyCode:   def.KeyCode,
		Location:  def.Location,
		Modifiers: k.modifiers,
	}
	if err := k.page.session.client.Input.DispatchKeyEvent(k.page.sctx(ctx), ev); err != nil {
		return fmt.Errorf("releasing key %q: %w", key, err)
	}
	return nil
}

// Press sends a key down followed by a key up.
func (k *Keyboard) Press(ctx context.Context, key string) error {
	if err := k.Down(ctx, key); err != nil {
		return err
	}
	return k.Up(ctx, key)
}

// Type types the text into the focused element, pressing keys the layout
// knows and inserting the rest as plain text.
func (k *Keyboard) Type(ctx context.Context, text string) error {
	for _, r := range text {
		key := keyboard.Key(r)
		if k.layout.IsValidKey(key) {
			if err := k.Press(ctx, string(key)); err != nil {
				return err
			}
			continue
		}
		if err := k.page.session.client.Input.InsertText(k.page.sctx(ctx), string(r)); err != nil {
			return fmt.Errorf("typing %q: %w", r, err)
		}
	}
	return nil
}

// Type types the text into the page's focused element.
func (p *Page) Type(ctx context.Context, text string) error {
	if p.isClosed() {
		return ErrPageClosed
	}
	return p.Keyboard().Type(ctx, text)
}
