package search

import "github.com/hyperjump/patsearch/internal/models"

// ComputeStatistics aggregates the similarity scores of results. An empty input yields
// Count 0 and no aggregates.
func ComputeStatistics(results []*models.SearchResult) models.Statistics {
	if len(results) == 0 {
		return models.Statistics{Count: 0}
	}
	sum := 0.0
	maxScore, minScore := results[0].Score, results[0].Score
	for _, r := range results {
		sum += r.Score
		maxScore = max(maxScore, r.Score)
		minScore = min(minScore, r.Score)
	}
	avg := sum / float64(len(results))
	return models.Statistics{
		Count: len(results),
		Avg:   &avg,
		Max:   &maxScore,
		Min:   &minScore,
	}
}
