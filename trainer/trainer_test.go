package trainer_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostmesh/boostmesh/engine"
	"github.com/boostmesh/boostmesh/engine/mocks"
	"github.com/boostmesh/boostmesh/trainer"
)

func newBooster(t *testing.T, eng *mocks.Engine) *engine.Booster {
	t.Helper()

	ds := engine.NewDatasetHandle("train", nil)
	b, err := engine.NewBooster(context.Background(), eng, engine.TrainParams{NumIterations: 10, LearningRate: 0.1, NumMachines: 1}, ds)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	return b
}

func scoresPerIteration(scores ...float64) [][]float64 {
	out := make([][]float64, len(scores))
	for i, s := range scores {
		out[i] = []float64{s}
	}

	return out
}

func TestRunStopsWhenLossStopsImproving(t *testing.T) {
	eng := &mocks.Engine{
		Names:       []string{"l2"},
		ValidScores: scoresPerIteration(10, 8, 8.5, 9, 9.5),
	}
	c := trainer.New(trainer.Config{
		MaxIterations:      10,
		LearningRate:       0.1,
		EarlyStoppingRound: 2,
		HasValidation:      true,
	}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	// Best at iteration 1 (score 8); iterations 2 and 3 fail to improve,
	// exhausting the patience window of 2 during iteration 3.
	assert.Equal(t, 4, res.Iterations)
	assert.Equal(t, 4, eng.UpdateCalls)
	assert.Equal(t, 1, res.BestIterations["l2"])
	assert.InDelta(t, 8.0, res.BestScores["l2"], 1e-9)
}

func TestRunStopsWhenAUCStopsImproving(t *testing.T) {
	eng := &mocks.Engine{
		Names:       []string{"auc"},
		ValidScores: scoresPerIteration(0.5, 0.7, 0.65),
	}
	c := trainer.New(trainer.Config{
		MaxIterations:      10,
		LearningRate:       0.1,
		EarlyStoppingRound: 1,
		HasValidation:      true,
	}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	// auc is higher-is-better: the drop at iteration 2 exceeds the
	// patience window of 1 immediately.
	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 1, res.BestIterations["auc"])
	assert.InDelta(t, 0.7, res.BestScores["auc"], 1e-9)
}

func TestRunWithoutMetricsRunsToMaxIterations(t *testing.T) {
	eng := &mocks.Engine{}
	c := trainer.New(trainer.Config{
		MaxIterations:      5,
		LearningRate:       0.1,
		EarlyStoppingRound: 2,
	}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	assert.Equal(t, 5, res.Iterations)
	assert.Equal(t, 5, eng.UpdateCalls)
	assert.Empty(t, res.BestScores)
}

func TestRunStopsOnEngineConvergence(t *testing.T) {
	eng := &mocks.Engine{
		Updates: []mocks.UpdateResult{{}, {Finished: true}},
	}
	c := trainer.New(trainer.Config{MaxIterations: 10, LearningRate: 0.1}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
}

func TestRunDowngradesUpdateErrorToEarlyStop(t *testing.T) {
	eng := &mocks.Engine{
		Updates: []mocks.UpdateResult{{}, {}, {Err: errors.New("engine stopped internally")}},
	}
	c := trainer.New(trainer.Config{MaxIterations: 10, LearningRate: 0.1}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Iterations)
	assert.Equal(t, 3, eng.UpdateCalls)
}

type schedulingDelegate struct {
	trainer.NopDelegate

	rateFrom  int
	rate      float64
	afterSeen []bool
}

func (d *schedulingDelegate) LearningRate(iteration int, current float64) float64 {
	if iteration >= d.rateFrom {
		return d.rate
	}

	return current
}

func (d *schedulingDelegate) AfterTrainIteration(_ context.Context, _ int, _, _ map[string]float64, finished bool) {
	d.afterSeen = append(d.afterSeen, finished)
}

func TestRunAppliesLearningRateChangeExactlyOnce(t *testing.T) {
	eng := &mocks.Engine{}
	d := &schedulingDelegate{rateFrom: 2, rate: 0.05}
	c := trainer.New(trainer.Config{MaxIterations: 6, LearningRate: 0.1}, d, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	// The new rate is pushed before iteration 2 and never re-applied while
	// unchanged.
	assert.Equal(t, []float64{0.05}, eng.ResetRates)
	assert.Equal(t, 6, res.Iterations)
	assert.Len(t, d.afterSeen, 6)
	assert.False(t, d.afterSeen[0])
	assert.True(t, d.afterSeen[5])
}

func TestRunVisitsMetricsInEngineOrder(t *testing.T) {
	// Both metrics plateau; the first metric in engine order must be the
	// one that stops the loop, deterministically across runs.
	eng := &mocks.Engine{
		Names: []string{"l2", "l1"},
		ValidScores: [][]float64{
			{10, 100},
			{11, 90},
			{12, 80},
		},
	}
	c := trainer.New(trainer.Config{
		MaxIterations:      10,
		LearningRate:       0.1,
		EarlyStoppingRound: 1,
		HasValidation:      true,
	}, nil, slog.Default())

	res, err := c.Run(context.Background(), newBooster(t, eng))
	require.NoError(t, err)

	assert.Equal(t, 2, res.Iterations)
	assert.Equal(t, 0, res.BestIterations["l2"])
	assert.Equal(t, 1, res.BestIterations["l1"])
}
