package store

import (
	"fmt"
	"sort"
)

// CompareSnapshots diffs the aggregate metrics and anomalies of two
// snapshots. higherIsBetter maps metric names to their preferred direction;
// unknown metrics are assumed to improve upward.
func (db *DB) CompareSnapshots(prevID, currID int64, higherIsBetter map[string]bool) (*SnapshotDiff, error) {
	prev, err := db.GetSnapshot(prevID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot #%d: %w", prevID, err)
	}
	curr, err := db.GetSnapshot(currID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot #%d: %w", currID, err)
	}
	if prev == nil || curr == nil {
		return nil, fmt.Errorf("comparing snapshots #%d and #%d: snapshot not found", prevID, currID)
	}

	prevMetrics, err := db.GetAggregateMetrics(prevID)
	if err != nil {
		return nil, fmt.Errorf("loading previous metrics: %w", err)
	}
	currMetrics, err := db.GetAggregateMetrics(currID)
	if err != nil {
		return nil, fmt.Errorf("loading current metrics: %w", err)
	}

	prevAnomalies, err := db.GetAnomalies(prevID)
	if err != nil {
		return nil, fmt.Errorf("loading previous anomalies: %w", err)
	}
	currAnomalies, err := db.GetAnomalies(currID)
	if err != nil {
		return nil, fmt.Errorf("loading current anomalies: %w", err)
	}

	return &SnapshotDiff{
		Previous:        prev,
		Current:         curr,
		Deltas:          ComputeDeltas(prevMetrics, currMetrics, higherIsBetter),
		NewAnomalyDates: newAnomalyDates(prevAnomalies, currAnomalies),
	}, nil
}

// ComputeDeltas compares two sets of aggregate metrics. A metric missing
// from prev counts as zero there.
func ComputeDeltas(prev, curr []AggregateMetric, higherIsBetter map[string]bool) []MetricDelta {
	prevMap := make(map[string]float64)
	for _, m := range prev {
		prevMap[m.MetricName] = m.MetricValue
	}

	deltas := make([]MetricDelta, 0, len(curr))
	for _, m := range curr {
		prevVal := prevMap[m.MetricName]
		delta := m.MetricValue - prevVal

		direction := DirectionUnchanged
		if delta != 0 {
			up, known := higherIsBetter[m.MetricName]
			if !known {
				up = true
			}
			if (delta > 0) == up {
				direction = DirectionImproved
			} else {
				direction = DirectionRegressed
			}
		}

		deltas = append(deltas, MetricDelta{
			Name:      m.MetricName,
			Previous:  prevVal,
			Current:   m.MetricValue,
			Delta:     delta,
			Direction: direction,
		})
	}
	return deltas
}

func newAnomalyDates(prev, curr []AnomalyRow) []string {
	seen := make(map[string]bool, len(prev))
	for _, a := range prev {
		seen[a.Date] = true
	}
	dates := []string{}
	for _, a := range curr {
		if !seen[a.Date] {
			dates = append(dates, a.Date)
		}
	}
	sort.Strings(dates)
	return dates
}
