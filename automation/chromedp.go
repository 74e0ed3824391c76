package automation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
)

// ChromeBrowser implements Browser on top of a chromedp exec allocator
// context. Each NewPage call opens an isolated tab.
type ChromeBrowser struct {
	allocCtx context.Context
}

// NewChromeBrowser wraps an allocator context (see utils.NewAllocator).
func NewChromeBrowser(allocCtx context.Context) *ChromeBrowser {
	return &ChromeBrowser{allocCtx: allocCtx}
}

func (b *ChromeBrowser) NewPage(ctx context.Context) (Page, context.CancelFunc, error) {
	tabCtx, cancel := chromedp.NewContext(b.allocCtx)
	// Materialize the tab so navigation failures surface as navigation
	// errors rather than lazy-start errors later.
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("open browser tab: %w", err)
	}
	return &chromePage{tabCtx: tabCtx}, cancel, nil
}

type chromePage struct {
	tabCtx context.Context
}

type evalResult struct {
	OK    bool   `json:"ok"`
	Value string `json:"value"`
}

func (p *chromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := p.tabCtx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(p.tabCtx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.run(navCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *chromePage) Location(ctx context.Context) (string, error) {
	var loc string
	if err := p.run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return loc, nil
}

func (p *chromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.run(waitCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *chromePage) Links(ctx context.Context, selector string) ([]Link, error) {
	script := fmt.Sprintf(`
		Array.from(document.querySelectorAll(%s)).map(a => ({
			href: a.href || '',
			label: a.getAttribute('aria-label') || '',
			text: (a.innerText || '').trim()
		}))`, strconv.Quote(selector))

	var raw []struct {
		Href  string `json:"href"`
		Label string `json:"label"`
		Text  string `json:"text"`
	}
	if err := p.run(ctx, chromedp.Evaluate(script, &raw)); err != nil {
		return nil, fmt.Errorf("collect links %q: %w", selector, err)
	}
	out := make([]Link, 0, len(raw))
	for _, r := range raw {
		out = append(out, Link{Href: r.Href, Label: r.Label, Text: r.Text})
	}
	return out, nil
}

func (p *chromePage) Exists(ctx context.Context, selector string) (bool, error) {
	script := fmt.Sprintf(`document.querySelector(%s) !== null`, strconv.Quote(selector))
	var found bool
	if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, fmt.Errorf("query %q: %w", selector, err)
	}
	return found, nil
}

func (p *chromePage) Attr(ctx context.Context, selector, name string) (string, bool, error) {
	script := fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%s);
			if (!el) return { ok: false, value: '' };
			let v;
			if (%s === 'href') {
				v = el.href || el.getAttribute('href') || '';
			} else {
				v = el.getAttribute(%s) || '';
			}
			return { ok: true, value: v };
		})()`, strconv.Quote(selector), strconv.Quote(name), strconv.Quote(name))

	var res evalResult
	if err := p.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, fmt.Errorf("read attr %s of %q: %w", name, selector, err)
	}
	return res.Value, res.OK, nil
}

func (p *chromePage) Text(ctx context.Context, selector string) (string, bool, error) {
	script := fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%s);
			if (!el) return { ok: false, value: '' };
			return { ok: true, value: (el.textContent || '').trim() };
		})()`, strconv.Quote(selector))

	var res evalResult
	if err := p.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, fmt.Errorf("read text of %q: %w", selector, err)
	}
	return res.Value, res.OK, nil
}

func (p *chromePage) Click(ctx context.Context, selector string) error {
	script := fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%s);
			if (!el) return false;
			el.click();
			return true;
		})()`, strconv.Quote(selector))

	var clicked bool
	if err := p.run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	if !clicked {
		return fmt.Errorf("click %q: no matching element", selector)
	}
	return nil
}

func (p *chromePage) ClickLink(ctx context.Context, href string) error {
	script := fmt.Sprintf(`
		(() => {
			const el = Array.from(document.querySelectorAll('a[href]')).find(a => a.href === %s);
			if (!el) return false;
			el.click();
			return true;
		})()`, strconv.Quote(href))

	var clicked bool
	if err := p.run(ctx, chromedp.Evaluate(script, &clicked)); err != nil {
		return fmt.Errorf("click link: %w", err)
	}
	if !clicked {
		return fmt.Errorf("click link: no anchor with href %q", href)
	}
	return nil
}

func (p *chromePage) ScrollIntoView(ctx context.Context, href string) error {
	script := fmt.Sprintf(`
		(() => {
			const el = Array.from(document.querySelectorAll('a[href]')).find(a => a.href === %s);
			if (el) el.scrollIntoView({ block: 'center' });
		})()`, strconv.Quote(href))
	if err := p.run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scroll link into view: %w", err)
	}
	return nil
}

func (p *chromePage) ScrollFeed(ctx context.Context, selector string) (bool, error) {
	script := fmt.Sprintf(`
		(() => {
			const el = document.querySelector(%s);
			if (!el) return false;
			el.scrollTop = el.scrollHeight;
			return true;
		})()`, strconv.Quote(selector))

	var found bool
	if err := p.run(ctx, chromedp.Evaluate(script, &found)); err != nil {
		return false, fmt.Errorf("scroll feed: %w", err)
	}
	return found, nil
}

func (p *chromePage) BodyText(ctx context.Context) (string, error) {
	var text string
	if err := p.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text)); err != nil {
		return "", fmt.Errorf("read body text: %w", err)
	}
	return text, nil
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.Evaluate(`document.documentElement ? document.documentElement.outerHTML : ''`, &html)); err != nil {
		return "", fmt.Errorf("read markup: %w", err)
	}
	return html, nil
}

func (p *chromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return buf, nil
}
