package utils

import (
	"sort"

	"bizradar/models"
)

type SummaryStats struct {
	TotalBusinesses     int
	WithWebsite         int
	WithPhone           int
	WithEmail           int
	AverageCompleteness float64
	AverageQuality      float64
	TopQualitySites     []models.BusinessRecord
}

func BuildSummaryStats(records []models.BusinessRecord) SummaryStats {
	stats := SummaryStats{TotalBusinesses: len(records)}
	if len(records) == 0 {
		return stats
	}

	totalCompleteness := 0
	totalQuality := 0
	audited := 0

	for _, record := range records {
		totalCompleteness += record.CompletenessScore
		if record.Website != "" {
			stats.WithWebsite++
		}
		if record.Phone != "" {
			stats.WithPhone++
		}
		if record.Email != "" {
			stats.WithEmail++
		}
		if record.Audit != nil && record.Audit.QualityScore > 0 {
			totalQuality += record.Audit.QualityScore
			audited++
		}
	}

	stats.AverageCompleteness = float64(totalCompleteness) / float64(len(records))
	if audited > 0 {
		stats.AverageQuality = float64(totalQuality) / float64(audited)
	}

	top := make([]models.BusinessRecord, 0, len(records))
	for _, record := range records {
		if record.Audit != nil && record.Audit.QualityScore > 0 {
			top = append(top, record)
		}
	}
	sort.Slice(top, func(i, j int) bool {
		qi, qj := top[i].Audit.QualityScore, top[j].Audit.QualityScore
		if qi == qj {
			return top[i].CompletenessScore > top[j].CompletenessScore
		}
		return qi > qj
	})
	if len(top) > 5 {
		top = top[:5]
	}
	stats.TopQualitySites = top

	return stats
}
