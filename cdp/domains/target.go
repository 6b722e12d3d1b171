package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpt "github.com/chromedp/cdproto/target"
)

// Target exposes the CDP Target domain actions the module uses.
type Target interface {
	CreateTarget(ctx context.Context, url, browserContextID string) (targetID string, err error)
	CloseTarget(ctx context.Context, targetID string) error
	GetTargetInfo(ctx context.Context, targetID string) (*cdpt.Info, error)
	CreateBrowserContext(ctx context.Context, disposeOnDetach bool) (id string, err error)
	DisposeBrowserContext(ctx context.Context, id string) error
	SetAutoAttach(ctx context.Context, autoAttach, waitForDebuggerOnStart, flatten bool) error
}

var _ Target = &target{}

type target struct {
	exec cdp.Executor
}

// NewTarget returns a new CDP Target domain wrapper.
func NewTarget(exec cdp.Executor) Target {
	return &target{exec}
}

func (t *target) CreateTarget(ctx context.Context, url, browserContextID string) (string, error) {
	action := cdpt.CreateTarget(url)
	if browserContextID != "" {
		action = action.WithBrowserContextID(cdp.BrowserContextID(browserContextID))
	}
	tid, err := action.Do(cdp.WithExecutor(ctx, t.exec))
	if err != nil {
		return "", fmt.Errorf("creating a target for %q: %w", url, err)
	}
	return string(tid), nil
}

func (t *target) CloseTarget(ctx context.Context, targetID string) error {
	action := cdpt.CloseTarget(cdpt.ID(targetID))
	if err := action.Do(cdp.WithExecutor(ctx, t.exec)); err != nil {
		return fmt.Errorf("closing target %q: %w", targetID, err)
	}
	return nil
}

func (t *target) GetTargetInfo(ctx context.Context, targetID string) (*cdpt.Info, error) {
	action := cdpt.GetTargetInfo()
	if targetID != "" {
		action = action.WithTargetID(cdpt.ID(targetID))
	}
	info, err := action.Do(cdp.WithExecutor(ctx, t.exec))
	if err != nil {
		return nil, fmt.Errorf("getting target info for %q: %w", targetID, err)
	}
	return info, nil
}

func (t *target) CreateBrowserContext(ctx context.Context, disposeOnDetach bool) (string, error) {
	action := cdpt.CreateBrowserContext().WithDisposeOnDetach(disposeOnDetach)
	bctxID, err := action.Do(cdp.WithExecutor(ctx, t.exec))
	if err != nil {
		return "", fmt.Errorf("creating a browser context: %w", err)
	}
	return string(bctxID), nil
}

func (t *target) DisposeBrowserContext(ctx context.Context, id string) error {
	action := cdpt.DisposeBrowserContext(cdp.BrowserContextID(id))
	if err := action.Do(cdp.WithExecutor(ctx, t.exec)); err != nil {
		return fmt.Errorf("disposing browser context %q: %w", id, err)
	}
	return nil
}

// SetAutoAttach executes the CDP Target.setAutoAttach command.
func (t *target) SetAutoAttach(ctx context.Context, autoAttach, waitForDebuggerOnStart, flatten bool) error {
	action := cdpt.SetAutoAttach(autoAttach, waitForDebuggerOnStart).WithFlatten(flatten)
	if err := action.Do(cdp.WithExecutor(ctx, t.exec)); err != nil {
		return fmt.Errorf("executing setAutoAttach: %w", err)
	}

	// Target.setAutoAttach has a bug where it does not wait for new Targets being attached.
	// However making a dummy call afterwards fixes this.
	// This can be removed after https://chromium-review.googlesource.com/c/chromium/src/+/2885888 lands in stable.
	action2 := cdpt.GetTargetInfo()
	if _, err := action2.Do(cdp.WithExecutor(ctx, t.exec)); err != nil {
		return fmt.Errorf("executing getTargetInfo: %w", err)
	}

	return nil
}
