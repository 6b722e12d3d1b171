package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpe "github.com/chromedp/cdproto/emulation"
)

// Emulation exposes the CDP Emulation domain actions the module uses.
type Emulation interface {
	SetUserAgentOverride(ctx context.Context, userAgent string) error
}

var _ Emulation = &emulation{}

type emulation struct {
	exec cdp.Executor
}

// NewEmulation returns a new CDP Emulation domain wrapper.
func NewEmulation(exec cdp.Executor) Emulation {
	return &emulation{exec}
}

func (e *emulation) SetUserAgentOverride(ctx context.Context, userAgent string) error {
	action := cdpe.SetUserAgentOverride(userAgent)
	if err := action.Do(cdp.WithExecutor(ctx, e.exec)); err != nil {
		return fmt.Errorf("overriding user agent: %w", err)
	}
	return nil
}
