package geocode

import (
	"regexp"
	"strings"
)

// Candidate is one geocoding result as returned by the index.
type Candidate struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Type        string  `json:"type"`
	Category    string  `json:"category"`
	AddressType string  `json:"addresstype"`
	Importance  float64 `json:"importance"`
}

// Upstream importance favours broad administrative regions over the specific
// places users actually search for, so candidates are re-ranked locally
// instead of trusting the upstream order.

var settlementTypes = map[string]struct{}{
	"neighbourhood": {},
	"suburb":        {},
	"village":       {},
	"town":          {},
	"city":          {},
	"residential":   {},
	"commercial":    {},
	"building":      {},
	"house":         {},
	"apartment":     {},
}

var (
	cityishRe     = regexp.MustCompile(`(?i)city|county|district`)
	regionStartRe = regexp.MustCompile(`(?i)^(state|province|country|region)\s`)
	regionEndRe   = regexp.MustCompile(`(?i),\s*(state|province|country)\s*$`)
	wordSplitRe   = regexp.MustCompile(`[\s,]+`)
)

// Score grades one candidate against the query text. Higher is better.
func Score(query string, c Candidate) float64 {
	score := 0.0

	if _, ok := settlementTypes[c.Type]; ok {
		score += 30
	}

	switch c.Category {
	case "historic", "tourism", "amenity", "leisure":
		score += 25
	case "place", "landuse":
		score += 15
	}

	if c.Type == "administrative" || c.Type == "boundary" {
		if cityishRe.MatchString(c.DisplayName) {
			score += 5
		} else {
			score -= 30
		}
	}

	if regionStartRe.MatchString(c.DisplayName) || regionEndRe.MatchString(c.DisplayName) {
		score -= 40
	}

	score += c.Importance * 50

	queryLower := strings.ToLower(query)
	displayLower := strings.ToLower(c.DisplayName)

	if strings.HasPrefix(displayLower, queryLower) {
		score += 20
	}

	resultWords := wordSplitRe.Split(displayLower, -1)
	for _, w := range wordSplitRe.Split(queryLower, -1) {
		if len(w) <= 2 {
			continue
		}
		for _, r := range resultWords {
			if strings.Contains(r, w) || strings.Contains(w, r) {
				score += 5
				break
			}
		}
	}

	segments := strings.Count(c.DisplayName, ",") + 1
	if segments <= 3 {
		score += 5
	} else if segments > 5 {
		score -= 5
	}

	return score
}

// Best returns the index of the strictly highest-scoring candidate; ties
// resolve to the earliest in upstream order. Returns -1 for an empty set.
func Best(query string, candidates []Candidate) (int, float64) {
	bestIdx := -1
	bestScore := 0.0
	for i, c := range candidates {
		s := Score(query, c)
		if bestIdx == -1 || s > bestScore {
			bestIdx = i
			bestScore = s
		}
	}
	return bestIdx, bestScore
}
