// Package audit performs the secondary visit for records that carry a
// website: capture a screenshot artifact, harvest contact emails from the
// rendered markup, and grade basic UX signals into a 1-10 quality score.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"bizradar/automation"
	"bizradar/models"
)

// ArtifactSink stores one captured screenshot per audited record.
type ArtifactSink interface {
	Save(jobID string, sequence int, data []byte) (ref string, err error)
}

const (
	fastLoadThreshold = 1500 * time.Millisecond
	slowLoadThreshold = 3 * time.Second
)

// Auditor visits business websites on a short-lived page and grades them.
// Audit failures degrade the result, they never propagate.
type Auditor struct {
	artifacts ArtifactSink
	timeout   time.Duration
	verifyMX  bool
	log       *slog.Logger

	// lookupMX is swapped out in tests.
	lookupMX func(domain string) bool
}

func New(artifacts ArtifactSink, timeout time.Duration, verifyMX bool, log *slog.Logger) *Auditor {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &Auditor{
		artifacts: artifacts,
		timeout:   timeout,
		verifyMX:  verifyMX,
		log:       log,
		lookupMX:  hasMXRecord,
	}
}

// Skipped is the placeholder result for records without a website. The audit
// runs at most once per record, so this stands in permanently.
func Skipped() *models.AuditResult {
	return &models.AuditResult{
		QualityScore: 0,
		Summary:      "No website available.",
		Findings:     []string{},
	}
}

// Audit visits rawURL and returns the quality assessment along with any
// contact emails found in the markup.
func (a *Auditor) Audit(ctx context.Context, page automation.Page, rawURL, jobID string, sequence int) (models.AuditResult, []string) {
	result := models.AuditResult{Findings: []string{}}

	start := time.Now()
	if err := page.Navigate(ctx, rawURL, a.timeout); err != nil {
		a.log.Warn("audit navigation failed", "url", rawURL, "error", err)
		result.Summary = "Could not access site."
		result.Findings = append(result.Findings, fmt.Sprintf("Navigation failed: %v", err))
		return result, nil
	}
	loadTime := time.Since(start)

	if shot, err := page.Screenshot(ctx); err != nil {
		a.log.Warn("screenshot failed", "url", rawURL, "error", err)
	} else if ref, err := a.artifacts.Save(jobID, sequence, shot); err != nil {
		a.log.Warn("artifact store failed", "url", rawURL, "error", err)
	} else {
		result.ArtifactRef = ref
	}

	markup, err := page.HTML(ctx)
	if err != nil {
		result.Summary = "Evaluation failed due to technical error."
		result.Findings = []string{err.Error()}
		return result, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		result.Summary = "Evaluation failed due to technical error."
		result.Findings = []string{err.Error()}
		return result, nil
	}

	result.QualityScore, result.Findings = a.grade(doc, rawURL, loadTime)
	result.Summary = strings.Join(result.Findings, " ")

	emails := ExtractEmails(doc, markup)
	if a.verifyMX {
		emails = a.filterByMX(emails)
	}
	return result, emails
}

// grade starts from a neutral 5 and applies fixed deltas per signal,
// clamped to [1,10].
func (a *Auditor) grade(doc *goquery.Document, rawURL string, loadTime time.Duration) (int, []string) {
	score := 5
	var findings []string

	if doc.Find(`meta[name="viewport"]`).Length() > 0 {
		score += 2
		findings = append(findings, "Site declares a mobile viewport.")
	} else {
		score--
		findings = append(findings, "Missing viewport tag; may not be mobile-friendly.")
	}

	if strings.HasPrefix(strings.ToLower(rawURL), "https://") {
		score++
		findings = append(findings, "Secure connection (HTTPS).")
	} else {
		score -= 2
		findings = append(findings, "Insecure connection (HTTP only).")
	}

	switch h1s := doc.Find("h1").Length(); {
	case h1s == 1:
		score++
		findings = append(findings, "Good heading hierarchy (single H1).")
	case h1s == 0:
		score--
		findings = append(findings, "No H1 heading found.")
	default:
		findings = append(findings, fmt.Sprintf("%d H1 tags found; check semantic structure.", h1s))
	}

	if loadTime < fastLoadThreshold {
		score++
		findings = append(findings, "Fast page load.")
	} else if loadTime > slowLoadThreshold {
		score--
		findings = append(findings, "Slow page load; consider optimizing assets.")
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}
	return score, findings
}

func (a *Auditor) filterByMX(emails []string) []string {
	var kept []string
	for _, email := range emails {
		at := strings.LastIndex(email, "@")
		if at < 0 {
			continue
		}
		domain := email[at+1:]
		if a.lookupMX(domain) {
			kept = append(kept, email)
		} else {
			a.log.Debug("dropping email without MX", "email", email)
		}
	}
	return kept
}
