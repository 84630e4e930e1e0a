package questions

import (
	"strings"

	"github.com/joseph-ayodele/pyq-analyzer/constants"
	"github.com/joseph-ayodele/pyq-analyzer/internal/entity"
)

// Aggregate merges per-document extraction results into exact-match entries.
// Each occurrence pushes its paper's year, so Years may hold repeats. Output is in
// first-insertion order; the function does no I/O and runs in linear time.
func Aggregate(results []entity.ExtractionResult) []entity.AggregatedQuestion {
	index := make(map[string]int)
	var out []entity.AggregatedQuestion

	for _, res := range results {
		year := strings.TrimSpace(res.Year)
		if year == "" {
			year = constants.UnknownYear
		}
		for _, q := range res.Questions {
			if IsNoise(q) {
				continue
			}
			k := Key(q)
			if i, ok := index[k]; ok {
				out[i].Years = append(out[i].Years, year)
				continue
			}
			index[k] = len(out)
			out = append(out, entity.AggregatedQuestion{
				Key:   k,
				Text:  Clean(q),
				Years: []string{year},
			})
		}
	}
	return out
}

// Occurrences maps each key to its occurrence count.
func Occurrences(agg []entity.AggregatedQuestion) map[string]int {
	m := make(map[string]int, len(agg))
	for _, q := range agg {
		m[q.Key] += q.Occurrences()
	}
	return m
}

// TotalOccurrences sums the occurrences of every entry.
func TotalOccurrences(agg []entity.AggregatedQuestion) int {
	n := 0
	for _, q := range agg {
		n += q.Occurrences()
	}
	return n
}
