// Package automation defines the capability surface this service needs from a
// headless browser. The scraping and audit code is written against these
// interfaces; the chromedp implementation lives in chromedp.go and a scripted
// in-memory fake lives in automationtest.
package automation

import (
	"context"
	"time"
)

// Link is an anchor collected from the current page.
type Link struct {
	Href  string
	Label string // accessible label (aria-label)
	Text  string // visible text
}

// Page is one browser tab. All operations are synchronous from the caller's
// point of view and respect ctx cancellation.
type Page interface {
	// Navigate loads url, failing if the load does not settle within timeout.
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// Location returns the page's current URL.
	Location(ctx context.Context) (string, error)
	// WaitVisible blocks until selector matches a visible element or timeout.
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	// Links returns every anchor matching selector, in document order.
	Links(ctx context.Context, selector string) ([]Link, error)
	// Exists reports whether selector matches any element.
	Exists(ctx context.Context, selector string) (bool, error)
	// Attr reads an attribute off the first element matching selector.
	// ok is false when no element matches.
	Attr(ctx context.Context, selector, name string) (value string, ok bool, err error)
	// Text reads the text content of the first element matching selector.
	Text(ctx context.Context, selector string) (value string, ok bool, err error)
	// Click clicks the first element matching selector.
	Click(ctx context.Context, selector string) error
	// ClickLink clicks the anchor whose resolved href equals href.
	ClickLink(ctx context.Context, href string) error
	// ScrollIntoView scrolls the anchor with the given href into view.
	ScrollIntoView(ctx context.Context, href string) error
	// ScrollFeed scrolls the container matching selector to its bottom.
	// Returns false when no such container exists.
	ScrollFeed(ctx context.Context, selector string) (bool, error)
	// BodyText returns the rendered text of the whole document.
	BodyText(ctx context.Context) (string, error)
	// HTML returns the rendered markup of the whole document.
	HTML(ctx context.Context) (string, error)
	// Screenshot captures the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Browser creates isolated pages. One job owns one page for discovery plus
// short-lived secondary pages for site audits.
type Browser interface {
	NewPage(ctx context.Context) (Page, context.CancelFunc, error)
}
