package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizradar/automation"
	"bizradar/automation/automationtest"
	"bizradar/jobs"
	"bizradar/scraper"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discard{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newTestServer(t *testing.T) *Server {
	t.Helper()

	const href = "https://maps.example/maps/place/Alpha/@41.9,-87.7,17z"
	page := &automationtest.FakePage{
		FeedBatches: [][]automation.Link{{{Href: href, Label: "Alpha Cafe"}}},
		Panels: map[string]*automationtest.Panel{
			href: {
				Texts: map[string]string{scraper.PanelHeadingSelector: "Alpha Cafe"},
				Attrs: map[string]map[string]string{},
			},
		},
	}
	browser := &automationtest.FakeBrowser{Pages: []*automationtest.FakePage{page}}

	o := jobs.NewOrchestrator(jobs.NewStore(), browser, nil, nil, testLogger(), jobs.Options{
		DefaultMaxResults: 1,
		MaxConcurrentJobs: 1,
		NavTimeout:        time.Second,
		PanelTimeout:      time.Second,
		GlobalTimeout:     time.Minute,
	})
	return New(o, t.TempDir(), testLogger())
}

func TestAnalyzeAndPoll(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/analyze", "application/json",
		strings.NewReader(`{"businessType":"cafes","location":"Chicago","options":{"maxResults":1}}`))
	if err != nil {
		t.Fatalf("POST /api/analyze: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}

	var submitted struct {
		Success bool   `json:"success"`
		JobID   string `json:"jobId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !submitted.Success || submitted.JobID == "" {
		t.Fatalf("response = %+v", submitted)
	}

	statusResp, err := http.Get(srv.URL + "/api/status/" + submitted.JobID)
	if err != nil {
		t.Fatalf("GET status: %v", err)
	}
	defer statusResp.Body.Close()
	if statusResp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", statusResp.StatusCode)
	}

	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(statusResp.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.ID != submitted.JobID {
		t.Errorf("job id = %q, want %q", job.ID, submitted.JobID)
	}
	if job.Status == "" {
		t.Error("job status missing")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	tests := []struct {
		name string
		body string
	}{
		{"missing businessType", `{"location":"Chicago"}`},
		{"missing location", `{"businessType":"cafes"}`},
		{"malformed json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/analyze", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestStatusNotFound(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/status/no-such-job")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	var payload map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload["error"] != "Job not found" {
		t.Errorf("error = %q", payload["error"])
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
