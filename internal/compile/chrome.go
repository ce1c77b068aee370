package compile

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// chromeExecutables are the binary names searched for on PATH.
var chromeExecutables = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// Letter paper in inches.
const (
	paperWidth  = 8.5
	paperHeight = 11.0
)

// ChromePrinter prints an HTML document to PDF with a headless browser.
// It satisfies Compiler, taking HTML as the source.
type ChromePrinter struct {
	timeout time.Duration
}

// NewChromePrinter creates a printer. A non-positive timeout uses DefaultTimeout.
func NewChromePrinter(timeout time.Duration) *ChromePrinter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChromePrinter{timeout: timeout}
}

// Available reports ErrUnavailable when no Chrome binary is on PATH.
func (p *ChromePrinter) Available() error {
	for _, name := range chromeExecutables {
		if _, err := exec.LookPath(name); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no Chrome or Chromium binary found in PATH", ErrUnavailable)
}

// Compile loads html into a blank page and prints it.
func (p *ChromePrinter) Compile(ctx context.Context, html string) ([]byte, error) {
	if err := p.Available(); err != nil {
		return nil, err
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, p.timeout)
	defer cancel()

	var pdf []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, &Error{Message: "browser printing failed", Cause: err}
	}
	return pdf, nil
}
