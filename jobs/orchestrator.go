package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"bizradar/audit"
	"bizradar/automation"
	"bizradar/models"
	"bizradar/scraper"
)

// Geocoder resolves free-text locations. A nil coordinate with a nil error
// means the index had no candidates.
type Geocoder interface {
	Resolve(ctx context.Context, locationText string) (*models.Coordinate, error)
}

// Auditor grades a business website, returning the assessment and any
// harvested contact emails.
type Auditor interface {
	Audit(ctx context.Context, page automation.Page, rawURL, jobID string, sequence int) (models.AuditResult, []string)
}

var (
	ErrMissingBusinessType = errors.New("businessType is required")
	ErrMissingLocation     = errors.New("location or coordinates are required")
)

// Options tune the orchestrator independently of the global config surface.
type Options struct {
	DefaultMaxResults int
	MaxConcurrentJobs int64
	NavTimeout        time.Duration
	PanelTimeout      time.Duration
	GlobalTimeout     time.Duration
}

// Orchestrator accepts job submissions and drives each one through the
// pipeline: resolve location, discover listings, extract, score, audit.
type Orchestrator struct {
	store    *Store
	browser  automation.Browser
	geocoder Geocoder
	auditor  Auditor
	log      *slog.Logger
	opts     Options

	// sem bounds how many jobs scrape concurrently; each holds a browser
	// context for its whole run.
	sem *semaphore.Weighted
}

func NewOrchestrator(store *Store, browser automation.Browser, geocoder Geocoder, auditor Auditor, log *slog.Logger, opts Options) *Orchestrator {
	if opts.DefaultMaxResults <= 0 {
		opts.DefaultMaxResults = 50
	}
	if opts.MaxConcurrentJobs <= 0 {
		opts.MaxConcurrentJobs = 1
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = 60 * time.Second
	}
	if opts.GlobalTimeout <= 0 {
		opts.GlobalTimeout = 90 * time.Minute
	}
	return &Orchestrator{
		store:    store,
		browser:  browser,
		geocoder: geocoder,
		auditor:  auditor,
		log:      log,
		opts:     opts,
		sem:      semaphore.NewWeighted(opts.MaxConcurrentJobs),
	}
}

// Submit validates the request, registers a queued job and starts its
// pipeline asynchronously. It never blocks on the scrape itself.
func (o *Orchestrator) Submit(req models.SubmitRequest) (string, error) {
	if req.BusinessType == "" {
		return "", ErrMissingBusinessType
	}
	if req.Location == "" && !req.HasCoordinates() {
		return "", ErrMissingLocation
	}

	id := uuid.NewString()
	o.store.Create(id)
	o.log.Info("job submitted", "job", id, "businessType", req.BusinessType, "location", req.Location)

	go o.run(id, req)
	return id, nil
}

// Status returns a snapshot of the job, or false for an unknown id.
func (o *Orchestrator) Status(id string) (models.Job, bool) {
	return o.store.Snapshot(id)
}

// run drives one job to a terminal state. All panics and errors end in
// Fail; a caller polling the store never observes a stuck job.
func (o *Orchestrator) run(id string, req models.SubmitRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.GlobalTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.log.Error("job panicked", "job", id, "panic", r)
			o.store.Fail(id, fmt.Sprintf("internal error: %v", r))
		}
	}()

	if err := o.sem.Acquire(ctx, 1); err != nil {
		o.store.Fail(id, "queue wait cancelled")
		return
	}
	defer o.sem.Release(1)

	if err := o.pipeline(ctx, id, req); err != nil {
		o.log.Error("job failed", "job", id, "error", err)
		o.store.Fail(id, err.Error())
		return
	}
	o.store.Complete(id)
	o.log.Info("job completed", "job", id)
}

func (o *Orchestrator) pipeline(ctx context.Context, id string, req models.SubmitRequest) error {
	maxResults := req.Options.MaxResults
	if maxResults <= 0 {
		maxResults = o.opts.DefaultMaxResults
	}

	o.store.SetStatus(id, models.StatusResolvingLocation, "Resolving location")
	center := o.resolveCenter(ctx, req)
	o.store.SetCenter(id, center)

	o.store.SetStatus(id, models.StatusDiscovering, "Opening listings feed")

	page, closePage, err := o.browser.NewPage(ctx)
	if err != nil {
		return fmt.Errorf("launch browser context: %w", err)
	}
	defer closePage()

	// Only caller-supplied coordinates pin the search; a geocoded center is
	// dashboard metadata, the search itself stays the free-text form so a
	// misresolved geocode cannot redirect the whole scrape.
	var pinned *models.Coordinate
	if req.HasCoordinates() {
		pinned = center
	}
	searchURL := scraper.BuildSearchURL(req.BusinessType, req.Location, pinned, req.Options.Radius)
	if err := page.Navigate(ctx, searchURL, o.opts.NavTimeout); err != nil {
		return fmt.Errorf("open listings feed: %w", err)
	}

	o.dismissConsent(ctx, page)

	if err := page.WaitVisible(ctx, scraper.FeedReadySelector, 20*time.Second); err != nil {
		// Sparse areas sometimes render results without the feed container.
		o.log.Warn("results feed not confirmed visible", "job", id, "error", err)
	}
	o.store.SetProgress(id, 10)

	extractor := scraper.NewExtractor(page, o.log, o.opts.PanelTimeout)
	discoverer := scraper.NewDiscoverer(page, o.log)

	centerKnown := center != nil
	err = discoverer.Run(ctx, maxResults, func(handle scraper.ListingHandle) bool {
		record, ok := o.processListing(ctx, id, page, extractor, handle, o.store.ResultCount(id))
		if !ok {
			return false
		}
		if !centerKnown && record.Coordinate != nil {
			// No resolved center: adopt the first discovered listing's
			// position so the dashboard has somewhere to look.
			centerKnown = true
			o.store.SetCenter(id, record.Coordinate)
		}
		o.store.AppendResult(id, record, maxResults)
		return true
	})
	if err != nil {
		return fmt.Errorf("listing discovery: %w", err)
	}
	return nil
}

// resolveCenter picks the map center: explicit coordinates win, then
// geocoding; with neither, discovery starts without a known center.
func (o *Orchestrator) resolveCenter(ctx context.Context, req models.SubmitRequest) *models.Coordinate {
	if req.HasCoordinates() {
		return &models.Coordinate{Lat: req.Options.Lat, Lng: req.Options.Lng}
	}
	if req.Location == "" || o.geocoder == nil {
		return nil
	}
	center, err := o.geocoder.Resolve(ctx, req.Location)
	if err != nil {
		o.log.Warn("geocoding failed, continuing without center", "location", req.Location, "error", err)
		return nil
	}
	return center
}

func (o *Orchestrator) dismissConsent(ctx context.Context, page automation.Page) {
	for _, sel := range scraper.ConsentSelectors {
		ok, err := page.Exists(ctx, sel)
		if err != nil || !ok {
			continue
		}
		if err := page.Click(ctx, sel); err == nil {
			o.log.Debug("dismissed consent dialog", "selector", sel)
			return
		}
	}
}

// processListing opens one listing's detail panel and builds its record.
// Failures are contained: a false return skips the listing, nothing more.
func (o *Orchestrator) processListing(ctx context.Context, jobID string, page automation.Page, extractor *scraper.Extractor, handle scraper.ListingHandle, sequence int) (models.BusinessRecord, bool) {
	o.store.SetAction(jobID, fmt.Sprintf("Analyzing %s", handle.Name))

	if err := page.ClickLink(ctx, handle.Href); err != nil {
		o.log.Warn("listing click failed, skipping", "job", jobID, "name", handle.Name, "error", err)
		return models.BusinessRecord{}, false
	}

	if !extractor.WaitForPanel(ctx, handle.Name) {
		o.log.Debug("panel transition unverified, extracting anyway", "job", jobID, "name", handle.Name)
	}

	details := extractor.Extract(ctx)

	record := models.BusinessRecord{
		Name:       handle.Name,
		Website:    details.Website,
		Phone:      details.Phone,
		Address:    details.Address,
		Reviews:    details.Reviews,
		SourceLink: handle.Href,
		Coordinate: listingCoordinate(ctx, page, handle.Href),
	}
	record.CompletenessScore = scraper.Completeness(record.Name, record.Website, record.Phone, record.Address, record.SourceLink)

	o.auditRecord(ctx, jobID, &record, sequence)
	return record, true
}

// auditRecord attaches the website assessment. Records without a website get
// the skipped placeholder; the audit runs on its own short-lived page so the
// detail panel's state survives.
func (o *Orchestrator) auditRecord(ctx context.Context, jobID string, record *models.BusinessRecord, sequence int) {
	if record.Website == "" {
		record.Audit = audit.Skipped()
		return
	}
	if o.auditor == nil {
		return
	}

	auditPage, closePage, err := o.browser.NewPage(ctx)
	if err != nil {
		o.log.Warn("audit page launch failed", "job", jobID, "error", err)
		result := models.AuditResult{Summary: "Could not access site.", Findings: []string{err.Error()}}
		record.Audit = &result
		return
	}
	defer closePage()

	result, emails := o.auditor.Audit(ctx, auditPage, record.Website, jobID, sequence)
	record.Audit = &result
	if len(emails) > 0 {
		record.Email = emails[0]
		record.AllEmails = emails
	}
}

// listingCoordinate derives the listing's own position, preferring the page
// URL the detail click navigated to over the feed href.
func listingCoordinate(ctx context.Context, page automation.Page, href string) *models.Coordinate {
	if current, err := page.Location(ctx); err == nil {
		if c := scraper.ParseCoords(current); c != nil {
			return c
		}
	}
	return scraper.ParseCoords(href)
}
