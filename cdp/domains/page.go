package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpp "github.com/chromedp/cdproto/page"
)

// Page exposes the CDP Page domain actions the module uses.
type Page interface {
	Enable(ctx context.Context) error
	Navigate(ctx context.Context, url, referrer, frameID string) (docID string, err error)
	AddScriptToEvaluateOnNewDocument(ctx context.Context, source string) (id string, err error)
	CaptureScreenshot(ctx context.Context) ([]byte, error)
}

var _ Page = &page{}

type page struct {
	exec cdp.Executor
}

// NewPage returns a new CDP Page domain wrapper.
func NewPage(exec cdp.Executor) Page {
	return &page{exec}
}

func (p *page) Enable(ctx context.Context) error {
	action := cdpp.Enable()
	if err := action.Do(cdp.WithExecutor(ctx, p.exec)); err != nil {
		return fmt.Errorf("enabling page CDP domain: %w", err)
	}

	return nil
}

func (p *page) Navigate(ctx context.Context, url, referrer, frameID string) (string, error) {
	action := cdpp.Navigate(url).WithReferrer(referrer).WithFrameID(cdp.FrameID(frameID))

	_, documentID, errorText, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return "", fmt.Errorf("%s at %q: %w", errorText, url, err)
	}

	return documentID.String(), nil
}

func (p *page) AddScriptToEvaluateOnNewDocument(ctx context.Context, source string) (string, error) {
	action := cdpp.AddScriptToEvaluateOnNewDocument(source)
	id, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return "", fmt.Errorf("adding script to evaluate on new document: %w", err)
	}
	return string(id), nil
}

func (p *page) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	action := cdpp.CaptureScreenshot().WithFormat(cdpp.CaptureScreenshotFormatPng)
	buf, err := action.Do(cdp.WithExecutor(ctx, p.exec))
	if err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}
