package scraper

import (
	"context"
	"log/slog"
	"strings"

	"bizradar/automation"
)

// maxScrollAttempts bounds how many times the results feed is scrolled before
// discovery gives up, independent of the result cap.
const maxScrollAttempts = 20

// ListingHandle is one discovered candidate: its permalink (the stable
// per-listing identifier used for dedupe) and the name read off the feed
// entry before any navigation.
type ListingHandle struct {
	Href string
	Name string
}

// Discoverer walks the results feed, yielding listing handles one at a time.
// Discovery and extraction are interleaved: opening a detail view is a
// navigation side effect that must settle before the next handle is trusted,
// so handles are never prefetched in bulk.
type Discoverer struct {
	page automation.Page
	log  *slog.Logger
	seen map[string]struct{}
}

func NewDiscoverer(page automation.Page, log *slog.Logger) *Discoverer {
	return &Discoverer{
		page: page,
		log:  log,
		seen: make(map[string]struct{}),
	}
}

// Run yields handles to process until maxResults have been accepted, the feed
// is exhausted, or the scroll cap is hit. process returns whether the handle
// produced a record; per-listing failures are contained inside process.
func (d *Discoverer) Run(ctx context.Context, maxResults int, process func(ListingHandle) bool) error {
	found := 0

	for attempts := 0; found < maxResults; attempts++ {
		links, err := d.page.Links(ctx, PlaceLinkSelector)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			break
		}

		for _, link := range links {
			if found >= maxResults {
				break
			}
			if link.Href == "" {
				continue
			}
			if _, dup := d.seen[link.Href]; dup {
				continue
			}
			d.seen[link.Href] = struct{}{}

			handle := ListingHandle{Href: link.Href, Name: handleName(link)}
			if handle.Name == "" {
				continue
			}

			if err := d.page.ScrollIntoView(ctx, link.Href); err != nil {
				d.log.Debug("scroll into view failed", "err", err)
			}
			if process(handle) {
				found++
			}
		}

		if found >= maxResults || attempts+1 >= maxScrollAttempts {
			break
		}
		hasFeed, err := d.page.ScrollFeed(ctx, FeedSelector)
		if err != nil {
			return err
		}
		if !hasFeed {
			break
		}
	}

	return nil
}

// handleName reads the listing name from the feed entry itself, preferring
// the accessible label. Entries whose only name contains the "·" separator
// are ads or category rows, not listings.
func handleName(link automation.Link) string {
	name := strings.TrimSpace(link.Label)
	if name == "" {
		name = strings.TrimSpace(strings.Split(link.Text, "\n")[0])
	}
	if name == "" || strings.Contains(name, "·") {
		return ""
	}
	return name
}
