package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultChromeTimeout bounds one rasterization.
const DefaultChromeTimeout = 60 * time.Second

// Rasterizer turns an SVG document into PNG or PDF bytes.
type Rasterizer interface {
	PNG(ctx context.Context, svg string, width, height int) ([]byte, error)
	PDF(ctx context.Context, svg string, width, height int) ([]byte, error)
}

// Chrome rasterizes with a headless Chrome started per call.
type Chrome struct {
	// Timeout bounds each call. Zero means DefaultChromeTimeout.
	Timeout time.Duration

	// NoSandbox disables Chrome's sandbox, needed when running as root in
	// containers.
	NoSandbox bool
}

func (c *Chrome) run(ctx context.Context, svg string, width, height int, action chromedp.Action) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultChromeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Headless)
	if c.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
	tasks := chromedp.Tasks{
		chromedp.EmulateViewport(int64(width), int64(height)),
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		action,
	}
	if err := chromedp.Run(browserCtx, tasks); err != nil {
		return fmt.Errorf("chromedp execution failed: %w", err)
	}
	return nil
}

// PNG screenshots the svg element.
func (c *Chrome) PNG(ctx context.Context, svg string, width, height int) ([]byte, error) {
	var buf []byte
	if err := c.run(ctx, svg, width, height, chromedp.Screenshot(`svg`, &buf, chromedp.ByQuery)); err != nil {
		return nil, err
	}
	if len(buf) == 0 {
		return nil, fmt.Errorf("screenshot buffer is empty, screenshot failed")
	}
	return buf, nil
}

// PDF prints the document on a single page of the document's size.
func (c *Chrome) PDF(ctx context.Context, svg string, width, height int) ([]byte, error) {
	var buf []byte
	printPDF := chromedp.ActionFunc(func(ctx context.Context) error {
		data, _, err := page.PrintToPDF().
			WithPrintBackground(true).
			WithPaperWidth(pxToInches(width)).
			WithPaperHeight(pxToInches(height)).
			WithMarginTop(0).
			WithMarginBottom(0).
			WithMarginLeft(0).
			WithMarginRight(0).
			WithPageRanges("1").
			Do(ctx)
		buf = data
		return err
	})
	if err := c.run(ctx, svg, width, height, printPDF); err != nil {
		return nil, err
	}
	return buf, nil
}

// pxToInches converts CSS pixels to inches at 96 dpi.
func pxToInches(v int) float64 {
	return float64(v) / 96
}
