package insight

import "sort"

// Rank sorts insights by impact score, highest first. Ties go to the more
// urgent priority and then keep rule order.
func Rank(insights []Insight) []Insight {
	sorted := make([]Insight, len(insights))
	copy(sorted, insights)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].ImpactScore != sorted[j].ImpactScore {
			return sorted[i].ImpactScore > sorted[j].ImpactScore
		}
		return sorted[i].Priority < sorted[j].Priority
	})
	return sorted
}

// ComputeImpact scores an insight as affected * share * weight, where
// affected counts the days or sessions involved, share is the fraction of
// the timeline they make up (clamped to [0, 1]), and weight reflects how
// much the finding matters.
func ComputeImpact(affected int, share, weight float64) float64 {
	if affected <= 0 || weight <= 0 {
		return 0
	}
	share = min(max(share, 0), 1)
	return float64(affected) * share * weight
}
