package scraper

// Completeness grades a record purely on field presence: +2 name, +3 website,
// +2 phone, +2 address, +1 source link, capped at 10. No partial credit.
func Completeness(name, website, phone, address, sourceLink string) int {
	score := 0
	if name != "" {
		score += 2
	}
	if website != "" {
		score += 3
	}
	if phone != "" {
		score += 2
	}
	if address != "" {
		score += 2
	}
	if sourceLink != "" {
		score++
	}
	if score > 10 {
		score = 10
	}
	return score
}
