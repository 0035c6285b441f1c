package trainer

import "strings"

// Metric name prefixes whose scores improve upward. Everything else is
// treated as a loss.
var higherBetterPrefixes = []string{"auc", "ndcg@", "map@"}

// HigherIsBetter reports the improvement direction for a metric by name
// convention.
func HigherIsBetter(metric string) bool {
	for _, p := range higherBetterPrefixes {
		if strings.HasPrefix(metric, p) {
			return true
		}
	}

	return false
}

// BestScoreTracker keeps, per metric, the best validation score seen, the
// iteration it occurred at and a snapshot of all metric scores at that
// iteration. It is mutated once per iteration and never reset mid-run.
type BestScoreTracker struct {
	tolerance float64
	best      map[string]float64
	bestIter  map[string]int
	snapshots map[string]map[string]float64
}

func NewBestScoreTracker(tolerance float64) *BestScoreTracker {
	return &BestScoreTracker{
		tolerance: tolerance,
		best:      make(map[string]float64),
		bestIter:  make(map[string]int),
		snapshots: make(map[string]map[string]float64),
	}
}

// Record offers a new score for metric at iteration. The first score always
// becomes the best; afterwards the tolerance-compared improvement test in
// the metric's direction decides. It returns whether the best was updated.
func (t *BestScoreTracker) Record(metric string, score float64, iteration int, allScores map[string]float64) bool {
	prev, seen := t.best[metric]
	if seen && !improved(metric, score, prev, t.tolerance) {
		return false
	}

	t.best[metric] = score
	t.bestIter[metric] = iteration
	snapshot := make(map[string]float64, len(allScores))
	for k, v := range allScores {
		snapshot[k] = v
	}
	t.snapshots[metric] = snapshot

	return true
}

func improved(metric string, score, best, tolerance float64) bool {
	if HigherIsBetter(metric) {
		return score-best > tolerance
	}

	return score-best < tolerance
}

// Best returns the best score recorded for metric.
func (t *BestScoreTracker) Best(metric string) (float64, bool) {
	v, ok := t.best[metric]

	return v, ok
}

// BestIteration returns the iteration the best score for metric occurred at.
func (t *BestScoreTracker) BestIteration(metric string) (int, bool) {
	v, ok := t.bestIter[metric]

	return v, ok
}

// SnapshotAt returns all metric scores captured at metric's best iteration.
func (t *BestScoreTracker) SnapshotAt(metric string) map[string]float64 {
	return t.snapshots[metric]
}
