package domains

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdpdom "github.com/chromedp/cdproto/dom"
)

// DOM exposes the CDP DOM domain actions the module uses.
type DOM interface {
	GetDocumentOuterHTML(ctx context.Context) (string, error)
}

var _ DOM = &dom{}

type dom struct {
	exec cdp.Executor
}

// NewDOM returns a new CDP DOM domain wrapper.
func NewDOM(exec cdp.Executor) DOM {
	return &dom{exec}
}

// GetDocumentOuterHTML returns the serialized HTML of the whole document.
func (d *dom) GetDocumentOuterHTML(ctx context.Context) (string, error) {
	ctx = cdp.WithExecutor(ctx, d.exec)

	node, err := cdpdom.GetDocument().Do(ctx)
	if err != nil {
		return "", fmt.Errorf("getting the document root: %w", err)
	}

	html, err := cdpdom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
	if err != nil {
		return "", fmt.Errorf("getting the document HTML: %w", err)
	}

	return html, nil
}
