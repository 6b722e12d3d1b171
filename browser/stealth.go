package browser

import (
	"context"
	_ "embed"
	"fmt"
)

//go:embed js/stealth.js
var stealthScript string

// installStealth registers the masking script to run in the page before any
// of its own scripts. Must happen while the page is still blank.
func (p *Page) installStealth(ctx context.Context) error {
	_, err := p.session.client.Page.AddScriptToEvaluateOnNewDocument(p.sctx(ctx), stealthScript)
	if err != nil {
		return fmt.Errorf("installing masking script: %w", err)
	}
	return nil
}
