package models

// JobStatus is the lifecycle state of a scrape job. Transitions are monotonic:
// queued → resolving_location → discovering → completed | failed.
type JobStatus string

const (
	StatusQueued            JobStatus = "queued"
	StatusResolvingLocation JobStatus = "resolving_location"
	StatusDiscovering       JobStatus = "discovering"
	StatusCompleted         JobStatus = "completed"
	StatusFailed            JobStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one end-to-end scrape-and-audit run. It is mutated only by the
// pipeline goroutine that owns it; pollers read snapshots.
type Job struct {
	ID            string           `json:"id"`
	Status        JobStatus        `json:"status"`
	Progress      float64          `json:"progress"`
	CurrentAction string           `json:"currentAction"`
	Center        *Coordinate      `json:"center,omitempty"`
	Results       []BusinessRecord `json:"results"`
	Error         string           `json:"error,omitempty"`
}

// SubmitOptions tune a single job.
type SubmitOptions struct {
	MaxResults int     `json:"maxResults,omitempty"`
	Lat        float64 `json:"lat,omitempty"`
	Lng        float64 `json:"lng,omitempty"`
	Radius     int     `json:"radius,omitempty"`
}

// SubmitRequest is the job-submission payload. Either BusinessType+Location
// or BusinessType+coordinates must be present.
type SubmitRequest struct {
	BusinessType string        `json:"businessType"`
	Location     string        `json:"location"`
	Options      SubmitOptions `json:"options"`
}

// HasCoordinates reports whether the caller pinned an explicit map center.
// Both coordinates must be present; a lone latitude or longitude is not a
// usable center.
func (r SubmitRequest) HasCoordinates() bool {
	return r.Options.Lat != 0 && r.Options.Lng != 0
}
