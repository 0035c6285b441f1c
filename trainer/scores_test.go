package trainer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boostmesh/boostmesh/trainer"
)

func TestHigherIsBetter(t *testing.T) {
	assert.True(t, trainer.HigherIsBetter("auc"))
	assert.True(t, trainer.HigherIsBetter("auc_mu"))
	assert.True(t, trainer.HigherIsBetter("ndcg@5"))
	assert.True(t, trainer.HigherIsBetter("map@10"))
	assert.False(t, trainer.HigherIsBetter("l2"))
	assert.False(t, trainer.HigherIsBetter("binary_logloss"))
	assert.False(t, trainer.HigherIsBetter("mape"))
}

func TestBestScoreTrackerTolerance(t *testing.T) {
	tr := trainer.NewBestScoreTracker(0.5)

	assert.True(t, tr.Record("l2", 10, 0, map[string]float64{"l2": 10}))

	// Improvement smaller than the tolerance does not move the best.
	assert.False(t, tr.Record("l2", 9.6, 1, map[string]float64{"l2": 9.6}))
	best, _ := tr.Best("l2")
	assert.InDelta(t, 10.0, best, 1e-9)

	assert.True(t, tr.Record("l2", 9.0, 2, map[string]float64{"l2": 9.0}))
	iter, ok := tr.BestIteration("l2")
	assert.True(t, ok)
	assert.Equal(t, 2, iter)
}

func TestBestScoreTrackerSnapshot(t *testing.T) {
	tr := trainer.NewBestScoreTracker(0)

	all := map[string]float64{"auc": 0.7, "binary_logloss": 0.4}
	assert.True(t, tr.Record("auc", 0.7, 3, all))

	// Mutating the caller's map must not change the captured snapshot.
	all["auc"] = 0.1
	snap := tr.SnapshotAt("auc")
	assert.InDelta(t, 0.7, snap["auc"], 1e-9)
	assert.InDelta(t, 0.4, snap["binary_logloss"], 1e-9)
}
