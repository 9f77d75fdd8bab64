package automation

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// typeSlowly inserts text one character at a time so the page's autocomplete
// sees each keystroke.
func typeSlowly(ctx context.Context, page *rod.Page, text string, delay time.Duration) error {
	p := page.Context(ctx)
	for _, r := range text {
		if err := p.InsertText(string(r)); err != nil {
			return err
		}
		if err := sleepCtx(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
