package models

// Coordinate is a map position. DisplayName and MatchScore are set when the
// position came out of geocoding rather than being supplied directly.
type Coordinate struct {
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	DisplayName string  `json:"displayName,omitempty"`
	MatchScore  float64 `json:"matchScore,omitempty"`
}

// ReviewSummary holds the rating data read from a listing's detail panel.
// Rating and Count are kept as strings — they are display values scraped from
// accessible labels, not numbers we computed.
type ReviewSummary struct {
	Rating        string      `json:"rating,omitempty"`
	Count         string      `json:"count,omitempty"`
	StarBreakdown map[int]int `json:"starBreakdown,omitempty"`
}

// NewReviewSummary returns a summary with an all-zero star breakdown.
func NewReviewSummary() ReviewSummary {
	return ReviewSummary{
		StarBreakdown: map[int]int{5: 0, 4: 0, 3: 0, 2: 0, 1: 0},
	}
}

// AuditResult is the outcome of the secondary website visit. Produced at most
// once per record; a navigation failure yields a degraded result, not an error.
type AuditResult struct {
	ArtifactRef  string   `json:"artifactRef,omitempty"`
	QualityScore int      `json:"qualityScore"`
	Summary      string   `json:"summary"`
	Findings     []string `json:"findings,omitempty"`
}

// BusinessRecord is one discovered business after extraction and audit.
// Immutable once appended to a Job's results.
type BusinessRecord struct {
	Name              string        `json:"name"`
	Website           string        `json:"website,omitempty"`
	Phone             string        `json:"phone,omitempty"`
	Address           string        `json:"address,omitempty"`
	Reviews           ReviewSummary `json:"reviews"`
	SourceLink        string        `json:"sourceLink"`
	Email             string        `json:"email,omitempty"`
	AllEmails         []string      `json:"allEmails,omitempty"`
	Coordinate        *Coordinate   `json:"coordinate,omitempty"`
	CompletenessScore int           `json:"completenessScore"`
	Audit             *AuditResult  `json:"audit,omitempty"`
}
