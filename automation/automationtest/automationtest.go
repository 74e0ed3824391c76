// Package automationtest provides a scripted in-memory automation.Page for
// exercising the scraping pipeline without a browser.
package automationtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bizradar/automation"
)

// Panel scripts the state of one detail view: what each selector's text and
// attributes read as while this panel is showing.
type Panel struct {
	Texts map[string]string            // selector → text content
	Attrs map[string]map[string]string // selector → attribute → value
	Body  string
}

// FakePage is a scripted automation.Page. Feed links are revealed batch by
// batch as the feed is scrolled; clicking a listing link swaps the current
// panel. Safe for use from the single goroutine driving a job.
type FakePage struct {
	mu sync.Mutex

	// FeedBatches[0] is visible immediately; each feed scroll reveals the
	// next batch.
	FeedBatches [][]automation.Link
	// Panels maps a listing href to the detail panel shown after clicking it.
	Panels map[string]*Panel
	// Current is the detail panel in view. Starts nil (no listing selected).
	Current *Panel

	// NavErr, when set, fails the next Navigate call.
	NavErr error
	// WaitErrs fails WaitVisible for specific selectors.
	WaitErrs map[string]error
	// NoFeed makes ScrollFeed report a missing container.
	NoFeed bool

	Markup string
	Shot   []byte

	URL          string
	Navigated    []string
	Clicked      []string
	ClickedLinks []string
	scrolls      int
}

var _ automation.Page = (*FakePage)(nil)

func (p *FakePage) Navigate(_ context.Context, url string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Navigated = append(p.Navigated, url)
	if p.NavErr != nil {
		err := p.NavErr
		p.NavErr = nil
		return err
	}
	p.URL = url
	return nil
}

func (p *FakePage) Location(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.URL, nil
}

func (p *FakePage) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.WaitErrs[selector]; ok {
		return err
	}
	return nil
}

func (p *FakePage) Links(context.Context, string) ([]automation.Link, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	visible := p.scrolls + 1
	if visible > len(p.FeedBatches) {
		visible = len(p.FeedBatches)
	}
	var links []automation.Link
	for _, batch := range p.FeedBatches[:visible] {
		links = append(links, batch...)
	}
	return links, nil
}

func (p *FakePage) Exists(_ context.Context, selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Current == nil {
		return false, nil
	}
	if _, ok := p.Current.Texts[selector]; ok {
		return true, nil
	}
	_, ok := p.Current.Attrs[selector]
	return ok, nil
}

func (p *FakePage) Attr(_ context.Context, selector, name string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Current == nil {
		return "", false, nil
	}
	attrs, ok := p.Current.Attrs[selector]
	if !ok {
		return "", false, nil
	}
	value, ok := attrs[name]
	return value, ok, nil
}

func (p *FakePage) Text(_ context.Context, selector string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Current == nil {
		return "", false, nil
	}
	value, ok := p.Current.Texts[selector]
	return value, ok, nil
}

func (p *FakePage) Click(_ context.Context, selector string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Clicked = append(p.Clicked, selector)
	return nil
}

func (p *FakePage) ClickLink(_ context.Context, href string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ClickedLinks = append(p.ClickedLinks, href)
	panel, ok := p.Panels[href]
	if !ok {
		return fmt.Errorf("no link with href %q", href)
	}
	p.Current = panel
	return nil
}

func (p *FakePage) ScrollIntoView(context.Context, string) error {
	return nil
}

func (p *FakePage) ScrollFeed(context.Context, string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.NoFeed {
		return false, nil
	}
	p.scrolls++
	return true, nil
}

func (p *FakePage) BodyText(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Current == nil {
		return "", nil
	}
	return p.Current.Body, nil
}

func (p *FakePage) HTML(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Markup, nil
}

func (p *FakePage) Screenshot(context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Shot == nil {
		return []byte("fake-png"), nil
	}
	return p.Shot, nil
}

// SetPanel swaps the current panel directly, bypassing link clicks. Useful
// together with an injected sleep hook to simulate a late panel update.
func (p *FakePage) SetPanel(panel *Panel) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Current = panel
}

// FakeBrowser hands out pages from a fixed queue.
type FakeBrowser struct {
	mu    sync.Mutex
	Pages []*FakePage
}

var _ automation.Browser = (*FakeBrowser)(nil)

func (b *FakeBrowser) NewPage(context.Context) (automation.Page, context.CancelFunc, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.Pages) == 0 {
		return nil, nil, fmt.Errorf("no scripted pages left")
	}
	page := b.Pages[0]
	b.Pages = b.Pages[1:]
	return page, func() {}, nil
}
