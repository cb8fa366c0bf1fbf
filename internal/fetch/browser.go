package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultUserAgent is sent by both sources, the page serves a reduced
// document to unknown agents.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// BrowserSource renders the page in headless Chrome, the bounties page is a
// client rendered app so the static HTML carries no postings.
// Requires Chrome/Chromium to be installed on the system.
type BrowserSource struct {
	Timeout time.Duration
	// Settle is how long to wait after the DOM is ready for client side
	// rendering to finish.
	Settle    time.Duration
	UserAgent string
}

func (b BrowserSource) Render(ctx context.Context, url string) (string, error) {
	userAgent := b.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(userAgent),
			chromedp.WindowSize(1920, 1080),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	if b.Timeout > 0 {
		browserCtx, cancel = context.WithTimeout(browserCtx, b.Timeout)
		defer cancel()
	}

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(b.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}
