package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func geocodeServer(t *testing.T, candidates []Candidate) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("format = %q, want json", got)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("request missing User-Agent")
		}
		_ = json.NewEncoder(w).Encode(candidates)
	}))
}

func TestResolvePicksBestCandidate(t *testing.T) {
	srv := geocodeServer(t, []Candidate{
		{Lat: "41.8781", Lon: "-87.6298", Type: "administrative", Importance: 0.9, DisplayName: "Chicago, Illinois, USA"},
		{Lat: "41.8339", Lon: "-87.8720", Type: "city", Importance: 0.8, DisplayName: "Chicago, Cook County, IL"},
	})
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", "", testLogger())
	coord, err := client.Resolve(context.Background(), "Chicago")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coord == nil {
		t.Fatal("Resolve returned nil coordinate")
	}
	if coord.Lat != 41.8339 || coord.Lng != -87.8720 {
		t.Errorf("coordinate = (%v, %v), want the city candidate", coord.Lat, coord.Lng)
	}
	if coord.DisplayName != "Chicago, Cook County, IL" {
		t.Errorf("displayName = %q", coord.DisplayName)
	}
	if coord.MatchScore == 0 {
		t.Error("matchScore not annotated")
	}
}

func TestResolveNoCandidates(t *testing.T) {
	srv := geocodeServer(t, []Candidate{})
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", "", testLogger())
	coord, err := client.Resolve(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if coord != nil {
		t.Fatalf("Resolve = %+v, want nil for empty candidate set", coord)
	}
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-agent/1.0", "", testLogger())
	if _, err := client.Resolve(context.Background(), "Chicago"); err == nil {
		t.Fatal("Resolve succeeded against a failing index")
	}
}
