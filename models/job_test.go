package models

import "testing"

func TestHasCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"both set", 41.88, -87.63, true},
		{"neither set", 0, 0, false},
		{"lat only", 41.88, 0, false},
		{"lng only", 0, -87.63, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := SubmitRequest{Options: SubmitOptions{Lat: tt.lat, Lng: tt.lng}}
			if got := req.HasCoordinates(); got != tt.want {
				t.Errorf("HasCoordinates(%v, %v) = %v, want %v", tt.lat, tt.lng, got, tt.want)
			}
		})
	}
}

func TestJobStatusTerminal(t *testing.T) {
	for _, s := range []JobStatus{StatusQueued, StatusResolvingLocation, StatusDiscovering} {
		if s.Terminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusCompleted, StatusFailed} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
