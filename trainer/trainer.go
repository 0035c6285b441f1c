// Package trainer drives the boosting engine iteration by iteration. Every
// worker runs an identical controller over its own booster; the engine's
// network layer synchronizes the actual gradient exchange, so the loop here
// must make the same decisions on every worker without communicating.
package trainer

import (
	"context"
	"log/slog"

	"github.com/boostmesh/boostmesh/engine"
)

// Config bounds one training run.
type Config struct {
	MaxIterations      int
	LearningRate       float64
	EarlyStoppingRound int
	Tolerance          float64

	// EvalTrainMetrics pulls training-set scores each iteration.
	EvalTrainMetrics bool

	// HasValidation enables validation scoring and early stopping.
	HasValidation bool
}

// Result summarizes a finished run.
type Result struct {
	// Iterations is the number of update steps executed.
	Iterations int

	// BestIterations maps each validation metric to the iteration its best
	// score occurred at.
	BestIterations map[string]int

	// BestScores maps each validation metric to its best score.
	BestScores map[string]float64
}

// Controller owns the sequential iteration loop state for one worker.
type Controller struct {
	cfg      Config
	delegate Delegate
	tracker  *BestScoreTracker
	logger   *slog.Logger
}

// New builds a controller. A nil delegate defaults to NopDelegate.
func New(cfg Config, delegate Delegate, logger *slog.Logger) *Controller {
	if delegate == nil {
		delegate = NopDelegate{}
	}

	return &Controller{
		cfg:      cfg,
		delegate: delegate,
		tracker:  NewBestScoreTracker(cfg.Tolerance),
		logger:   logger,
	}
}

// Run executes update steps until the engine converges, a validation metric
// exceeds its patience window, or MaxIterations is reached. An engine error
// raised by the update step is an early termination signal, not a failure:
// the model built so far is still usable. Errors from evaluation or
// learning-rate calls do propagate.
func (c *Controller) Run(ctx context.Context, booster *engine.Booster) (Result, error) {
	names, err := booster.EvalNames(ctx)
	if err != nil {
		return Result{}, err
	}

	learningRate := c.cfg.LearningRate
	finished := false
	iteration := 0

	for !finished && iteration < c.cfg.MaxIterations {
		c.delegate.BeforeTrainIteration(ctx, iteration)

		if rate := c.delegate.LearningRate(iteration, learningRate); rate != learningRate {
			if err := booster.ResetLearningRate(ctx, rate); err != nil {
				return Result{}, err
			}
			c.logger.Info("learning rate updated",
				slog.Int("iteration", iteration),
				slog.Float64("old", learningRate),
				slog.Float64("new", rate),
			)
			learningRate = rate
		}

		converged, err := booster.UpdateOneIteration(ctx)
		switch {
		case err != nil:
			c.logger.Warn("update step failed, stopping early",
				slog.Int("iteration", iteration),
				slog.Any("error", err),
			)
			finished = true
		case converged:
			c.logger.Info("boosting converged", slog.Int("iteration", iteration))
			finished = true
		}

		var trainScores, validScores map[string]float64

		if c.cfg.EvalTrainMetrics && !finished {
			trainScores, err = booster.Eval(ctx, engine.TrainDataIndex)
			if err != nil {
				return Result{}, err
			}
		}

		if c.cfg.HasValidation && !finished {
			validScores, err = booster.Eval(ctx, engine.ValidationDataIndex)
			if err != nil {
				return Result{}, err
			}
			finished = c.recordValidation(names, validScores, iteration)
		}

		c.delegate.AfterTrainIteration(ctx, iteration, trainScores, validScores, finished)
		iteration++
	}

	result := Result{
		Iterations:     iteration,
		BestIterations: make(map[string]int),
		BestScores:     make(map[string]float64),
	}
	for _, name := range names {
		if best, ok := c.tracker.Best(name); ok {
			result.BestScores[name] = best
			result.BestIterations[name], _ = c.tracker.BestIteration(name)
		}
	}

	return result, nil
}

// recordValidation updates the per-metric bests and reports whether any
// metric has gone earlyStoppingRound iterations without improving. Metrics
// are visited in engine order so every worker stops on the same one. The
// first metric to exceed its patience window stops the whole loop, even if
// others are still improving.
func (c *Controller) recordValidation(names []string, scores map[string]float64, iteration int) bool {
	if c.cfg.EarlyStoppingRound <= 0 {
		for _, name := range names {
			c.tracker.Record(name, scores[name], iteration, scores)
		}

		return false
	}

	stop := false
	for _, name := range names {
		if c.tracker.Record(name, scores[name], iteration, scores) {
			continue
		}

		bestIteration, _ := c.tracker.BestIteration(name)
		if !stop && iteration-bestIteration >= c.cfg.EarlyStoppingRound {
			c.logger.Info("early stopping",
				slog.String("metric", name),
				slog.Int("iteration", iteration),
				slog.Int("best_iteration", bestIteration),
			)
			stop = true
		}
	}

	return stop
}

// Tracker exposes the best-score state, e.g. for delegates that export it
// after the run.
func (c *Controller) Tracker() *BestScoreTracker {
	return c.tracker
}
