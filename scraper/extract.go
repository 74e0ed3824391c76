package scraper

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bizradar/automation"
	"bizradar/models"
)

// The detail panel is a single shared view that can lag behind navigation
// clicks. A freshly read field identical to the previous listing's value is
// suspicious; it gets one bounded re-read before being accepted as final.
const (
	websiteStaleWait = 1 * time.Second
	contactStaleWait = 500 * time.Millisecond

	panelPollInterval   = 500 * time.Millisecond
	panelSettleDelay    = 1500 * time.Millisecond
	panelFailSafeSettle = 3 * time.Second
)

const (
	minReviewCount = 0
	maxReviewCount = 10_000_000
)

// blockedWebsiteHosts are never genuine business websites: the map provider's
// own domains and the major social/review platforms.
var blockedWebsiteHosts = []string{
	"google.com",
	"google.co.in",
	"gstatic.com",
	"facebook.com",
	"twitter.com",
	"instagram.com",
	"linkedin.com",
	"youtube.com",
	"yelp.com",
}

var (
	ratingRe = regexp.MustCompile(`(\d+\.?\d*)`)

	// Review-count patterns tried against a control's accessible label, most
	// to least specific: "(1,234 reviews)", "1,234 reviews", "reviews: 1,234".
	labelCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\((\d+(?:[,.]\d+)*)\s*(?:reviews?|ratings?)?\)`),
		regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)*)\s+(?:reviews?|ratings?)`),
		regexp.MustCompile(`(?i)(?:reviews?|ratings?)[\s:]*(\d+(?:[,.]\d+)*)`),
	}

	// The page-text fallback needs the "reviews" keyword in every variant to
	// avoid grabbing arbitrary numbers off the page.
	bodyCountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\((\d+(?:[,.]\d+)*)\s+reviews?\)`),
		regexp.MustCompile(`(?i)\b(\d+(?:[,.]\d+)*)\s+reviews?\b`),
		regexp.MustCompile(`(?i)reviews?[\s:(]*(\d+(?:[,.]\d+)*)`),
	}

	starBucketPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\((\d+(?:[,.]\d+)*)\)`),
		regexp.MustCompile(`(?i)(\d+(?:[,.]\d+)*)\s+(?:reviews?|ratings?)`),
		regexp.MustCompile(`(?i)(?:reviews?|ratings?)[\s:]*(\d+(?:[,.]\d+)*)`),
	}
)

// LastValues carries the previous listing's extracted fields for stale-DOM
// detection. Scoped to one job's extractor, reset at each extraction.
type LastValues struct {
	Website string
	Phone   string
	Address string
	Rating  string
	Count   string
}

// Details is the raw outcome of one panel extraction. Strategies records, per
// field, which strategy produced the accepted value.
type Details struct {
	Website    string
	Phone      string
	Address    string
	Reviews    models.ReviewSummary
	Strategies map[string]string
}

// Extractor pulls structured fields out of the detail panel. One extractor
// serves one job; it is not safe for concurrent use.
type Extractor struct {
	page         automation.Page
	log          *slog.Logger
	panelTimeout time.Duration
	last         LastValues

	// sleep is swapped out in tests.
	sleep func(time.Duration)
}

func NewExtractor(page automation.Page, log *slog.Logger, panelTimeout time.Duration) *Extractor {
	if panelTimeout <= 0 {
		panelTimeout = 10 * time.Second
	}
	return &Extractor{
		page:         page,
		log:          log,
		panelTimeout: panelTimeout,
		sleep:        time.Sleep,
	}
}

// WaitForPanel polls the detail panel's heading until it contains a
// normalized prefix of the expected listing name. On timeout it settles for a
// fixed fail-safe delay and reports false; extraction proceeds either way.
func (e *Extractor) WaitForPanel(ctx context.Context, expectedName string) bool {
	target := normalizedPrefix(expectedName)
	matched := false

	for waited := time.Duration(0); waited < e.panelTimeout; waited += panelPollInterval {
		heading, ok, err := e.page.Text(ctx, PanelHeadingSelector)
		if err == nil && ok && target != "" && strings.Contains(strings.ToLower(heading), target) {
			matched = true
			break
		}
		e.sleep(panelPollInterval)
	}

	if matched {
		// The contact controls often lag behind the heading swap.
		e.sleep(panelSettleDelay)
	} else {
		e.log.Warn("panel heading transition unverified", "name", expectedName)
		e.sleep(panelFailSafeSettle)
	}
	return matched
}

// Extract reads all fields from the current detail panel. Each field is
// fault-isolated: a failed read leaves that field at its default and never
// aborts the rest.
func (e *Extractor) Extract(ctx context.Context) Details {
	prev := e.last
	e.last = LastValues{}

	d := Details{
		Reviews:    models.NewReviewSummary(),
		Strategies: map[string]string{},
	}

	d.Website = e.extractWebsite(ctx, prev.Website, d.Strategies)
	d.Phone = e.extractLabeled(ctx, "phone", PhoneSelector, "Call", prev.Phone, d.Strategies)
	d.Address = e.extractLabeled(ctx, "address", AddressSelector, "Address: ", prev.Address, d.Strategies)
	e.extractReviews(ctx, &d)

	e.last = LastValues{
		Website: d.Website,
		Phone:   d.Phone,
		Address: d.Address,
		Rating:  d.Reviews.Rating,
		Count:   d.Reviews.Count,
	}
	return d
}

// reReadOnStale re-reads a freshly extracted value once, after a bounded
// wait, when it exactly matches the previous listing's value. After the wait
// the re-read value is accepted regardless: fail open, not fail closed.
func (e *Extractor) reReadOnStale(read func() (string, bool), prev string, wait time.Duration) (string, bool) {
	value, ok := read()
	if !ok {
		return "", false
	}
	if value != "" && value == prev {
		e.log.Debug("stale value suspected, re-reading", "value", value)
		e.sleep(wait)
		if again, ok2 := read(); ok2 {
			value = again
		}
	}
	return value, true
}

func (e *Extractor) extractWebsite(ctx context.Context, prev string, strategies map[string]string) string {
	readAuthority := func() (string, bool) {
		href, ok, err := e.page.Attr(ctx, WebsiteAuthoritySelector, "href")
		if err != nil || !ok {
			return "", false
		}
		return strings.TrimSpace(href), true
	}

	if href, ok := e.reReadOnStale(readAuthority, prev, websiteStaleWait); ok && ValidWebsite(href) {
		strategies["website"] = "authority-link"
		return href
	}

	href, ok, err := e.page.Attr(ctx, WebsiteFallbackSelector, "href")
	if err == nil && ok {
		href = strings.TrimSpace(href)
		if ValidWebsite(href) && href != prev {
			strategies["website"] = "labeled-website-link"
			return href
		}
	}
	return ""
}

// extractLabeled reads a labeled control's accessible text, stripped of its
// known prefix, with one stale re-read.
func (e *Extractor) extractLabeled(ctx context.Context, field, selector, prefix, prev string, strategies map[string]string) string {
	read := func() (string, bool) {
		label, ok, err := e.page.Attr(ctx, selector, "aria-label")
		if err != nil || !ok {
			return "", false
		}
		return strings.TrimSpace(strings.TrimPrefix(label, prefix)), true
	}

	value, ok := e.reReadOnStale(read, prev, contactStaleWait)
	if !ok || value == "" {
		return ""
	}
	strategies[field] = "labeled-control"
	return value
}

func (e *Extractor) extractReviews(ctx context.Context, d *Details) {
	if label, ok, err := e.page.Attr(ctx, RatingStarSelector, "aria-label"); err == nil && ok {
		if m := ratingRe.FindStringSubmatch(label); m != nil {
			d.Reviews.Rating = m[1]
			d.Strategies["rating"] = "star-label"
		}
	}

	count, strategy := e.extractReviewCount(ctx)
	d.Reviews.Count = count
	if strategy != "" {
		d.Strategies["count"] = strategy
	}

	e.extractStarBreakdown(ctx, d)
}

// extractReviewCount tries, in order: the rating control's label, a dedicated
// reviews control's label, then a full-page text scan. The first value inside
// (0, 10M) wins; with no validated match the count is "0", an explicit
// unknown-treated-as-zero policy.
func (e *Extractor) extractReviewCount(ctx context.Context) (string, string) {
	for _, sel := range []string{RatingButtonSelector, RatingAnySelector} {
		if label, ok, err := e.page.Attr(ctx, sel, "aria-label"); err == nil && ok {
			if n, ok := matchCount(label, labelCountPatterns); ok {
				return strconv.Itoa(n), "rating-label"
			}
		}
	}

	for _, sel := range []string{ReviewsButtonSelector, ReviewsLinkSelector} {
		if label, ok, err := e.page.Attr(ctx, sel, "aria-label"); err == nil && ok {
			if n, ok := matchCount(label, labelCountPatterns); ok {
				return strconv.Itoa(n), "reviews-control"
			}
		}
	}

	if text, err := e.page.BodyText(ctx); err == nil {
		if n, ok := matchCount(text, bodyCountPatterns); ok {
			return strconv.Itoa(n), "page-text"
		}
	}

	return "0", ""
}

// extractStarBreakdown fills the per-star distribution. Only attempted when
// the total count is known; each bucket is accepted only within the
// count-derived sanity bound, and an implausible total discards the whole
// breakdown rather than reporting it as fact.
func (e *Extractor) extractStarBreakdown(ctx context.Context, d *Details) {
	total, err := strconv.Atoi(d.Reviews.Count)
	if err != nil || total <= 0 {
		return
	}
	bound := float64(total) * 1.5

	sum := 0
	for stars := 5; stars >= 1; stars-- {
		for _, sel := range StarBucketSelectors(stars) {
			label, ok, err := e.page.Attr(ctx, sel, "aria-label")
			if err != nil || !ok {
				continue
			}
			value, matched := matchFirst(label, starBucketPatterns)
			if !matched {
				continue
			}
			if value > 0 && float64(value) <= bound {
				d.Reviews.StarBreakdown[stars] = value
				sum += value
			}
			break
		}
	}

	if float64(sum) > bound {
		e.log.Warn("star breakdown sum implausible, discarding", "sum", sum, "count", total)
		d.Reviews.StarBreakdown = map[int]int{5: 0, 4: 0, 3: 0, 2: 0, 1: 0}
	}
}

// ValidWebsite reports whether url is an absolute http(s) URL whose host is
// outside the exclusion set.
func ValidWebsite(raw string) bool {
	low := strings.ToLower(strings.TrimSpace(raw))
	if !strings.HasPrefix(low, "http") {
		return false
	}
	parsed, err := url.Parse(low)
	if err != nil || parsed.Hostname() == "" {
		return false
	}
	host := parsed.Hostname()
	for _, blocked := range blockedWebsiteHosts {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return false
		}
	}
	return true
}

// matchCount returns the first pattern match that parses to a count inside
// the valid range. All pattern variants yield the same integer for the same
// numeric token.
func matchCount(label string, patterns []*regexp.Regexp) (int, bool) {
	n, ok := matchFirst(label, patterns)
	if !ok {
		return 0, false
	}
	if n <= minReviewCount || n >= maxReviewCount {
		return 0, false
	}
	return n, true
}

func matchFirst(label string, patterns []*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(label)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(cleanNumber(m[1]))
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// cleanNumber strips thousands separators ("1,234" and "1.234" both → 1234).
func cleanNumber(s string) string {
	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, ".", "")
}

// normalizedPrefix is the comparison key for panel-transition verification: a
// lowercase prefix of the name ahead of any "·" separator.
func normalizedPrefix(name string) string {
	name = strings.TrimSpace(strings.Split(name, "·")[0])
	name = strings.ToLower(name)
	if r := []rune(name); len(r) > 10 {
		name = string(r[:10])
	}
	return name
}
