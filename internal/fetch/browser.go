package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
)

// settleDelay gives client-side rendering time when the board's markup is unknown
const settleDelay = 2 * time.Second

// Render loads a posting in headless Chrome and returns the rendered HTML. On a known board it
// waits for the description block itself; elsewhere it waits for the body and a short settle.
// Requires Chrome or Chromium on the system.
func Render(ctx context.Context, rawURL string, opts Options) (string, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx, renderActions(rawURL, &html)...)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "browser rendering failed", Cause: err}
	}
	return html, nil
}

// renderActions navigates and waits for the content the extractor will look for
func renderActions(rawURL string, html *string) []chromedp.Action {
	actions := []chromedp.Action{chromedp.Navigate(rawURL)}
	if p := DetectPlatform(rawURL); p != PlatformUnknown {
		actions = append(actions, chromedp.WaitReady(ContentSelectors(p)[0], chromedp.ByQuery))
	} else {
		actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery), chromedp.Sleep(settleDelay))
	}
	return append(actions, chromedp.OuterHTML("html", html, chromedp.ByQuery))
}
