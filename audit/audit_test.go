package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"bizradar/automation/automationtest"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

type memorySink struct {
	saved map[string][]byte
	err   error
}

func (s *memorySink) Save(jobID string, sequence int, data []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	name := fmt.Sprintf("%s_%d.png", jobID, sequence)
	s.saved[name] = data
	return "/screenshots/" + name, nil
}

const goodSite = `<!DOCTYPE html>
<html><head>
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Alpha Cafe</title>
</head><body>
<h1>Alpha Cafe</h1>
<p>Reach us at <a href="mailto:hello@alphacafe.example.com">hello@alphacafe.example.com</a>
or press@alphacafe.example.com.</p>
<img src="logo@2x.png">
</body></html>`

func TestAuditGoodSite(t *testing.T) {
	page := &automationtest.FakePage{Markup: goodSite}
	sink := &memorySink{}
	a := New(sink, time.Second, false, testLogger())

	result, emails := a.Audit(context.Background(), page, "https://alphacafe.example.com", "job1", 0)

	// 5 base, +2 viewport, +1 https, +1 single h1, +1 fast load
	if result.QualityScore != 10 {
		t.Errorf("qualityScore = %d, want 10: %v", result.QualityScore, result.Findings)
	}
	if result.ArtifactRef != "/screenshots/job1_0.png" {
		t.Errorf("artifactRef = %q", result.ArtifactRef)
	}
	if _, ok := sink.saved["job1_0.png"]; !ok {
		t.Error("screenshot never reached the artifact sink")
	}

	want := []string{"hello@alphacafe.example.com", "press@alphacafe.example.com"}
	if diff := cmp.Diff(want, emails); diff != "" {
		t.Errorf("emails mismatch (-want +got):\n%s", diff)
	}
}

func TestAuditPenalties(t *testing.T) {
	markup := `<html><head><title>Bare</title></head><body><p>nothing here</p></body></html>`
	page := &automationtest.FakePage{Markup: markup}
	a := New(&memorySink{}, time.Second, false, testLogger())

	result, _ := a.Audit(context.Background(), page, "http://bare.example.com", "job1", 0)

	// 5 base, -1 no viewport, -2 no https, -1 no h1, +1 fast load
	if result.QualityScore != 2 {
		t.Errorf("qualityScore = %d, want 2: %v", result.QualityScore, result.Findings)
	}
}

func TestGradeClampedToFloor(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><body></body></html>`))
	if err != nil {
		t.Fatal(err)
	}
	a := New(&memorySink{}, time.Second, false, testLogger())

	// -1 viewport, -2 https, -1 heading, -1 slow: raw 0, clamped to 1.
	score, _ := a.grade(doc, "http://bad.example.com", 10*time.Second)
	if score != 1 {
		t.Errorf("score = %d, want the floor of 1", score)
	}
}

func TestGradeSlowLoad(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(goodSite))
	if err != nil {
		t.Fatal(err)
	}
	a := New(&memorySink{}, time.Second, false, testLogger())

	fast, _ := a.grade(doc, "https://x.example.com", time.Second)
	slow, _ := a.grade(doc, "https://x.example.com", 10*time.Second)
	if slow >= fast {
		t.Errorf("slow load scored %d, fast %d; want a penalty", slow, fast)
	}
}

func TestAuditNavigationFailure(t *testing.T) {
	page := &automationtest.FakePage{NavErr: errors.New("net::ERR_NAME_NOT_RESOLVED")}
	a := New(&memorySink{}, time.Second, false, testLogger())

	result, emails := a.Audit(context.Background(), page, "https://gone.example.com", "job1", 0)

	if result.QualityScore != 0 {
		t.Errorf("qualityScore = %d, want 0", result.QualityScore)
	}
	if result.Summary != "Could not access site." {
		t.Errorf("summary = %q", result.Summary)
	}
	if len(result.Findings) != 1 {
		t.Errorf("findings = %v, want the navigation error alone", result.Findings)
	}
	if emails != nil {
		t.Errorf("emails = %v, want none", emails)
	}
}

func TestAuditSurvivesSinkFailure(t *testing.T) {
	page := &automationtest.FakePage{Markup: goodSite}
	a := New(&memorySink{err: errors.New("disk full")}, time.Second, false, testLogger())

	result, _ := a.Audit(context.Background(), page, "https://alphacafe.example.com", "job1", 0)
	if result.ArtifactRef != "" {
		t.Errorf("artifactRef = %q, want empty on sink failure", result.ArtifactRef)
	}
	if result.QualityScore == 0 {
		t.Error("sink failure must not zero the quality score")
	}
}

func TestSkippedPlaceholder(t *testing.T) {
	s := Skipped()
	if s.QualityScore != 0 || s.Summary != "No website available." {
		t.Errorf("Skipped() = %+v", s)
	}
}

func TestAuditMXFilter(t *testing.T) {
	page := &automationtest.FakePage{Markup: goodSite}
	a := New(&memorySink{}, time.Second, true, testLogger())
	a.lookupMX = func(domain string) bool { return domain == "alphacafe.example.com" }

	_, emails := a.Audit(context.Background(), page, "https://alphacafe.example.com", "job1", 0)
	for _, e := range emails {
		if !strings.HasSuffix(e, "@alphacafe.example.com") {
			t.Errorf("email %q slipped past the MX filter", e)
		}
	}
	if len(emails) != 2 {
		t.Errorf("got %d emails, want 2", len(emails))
	}
}
