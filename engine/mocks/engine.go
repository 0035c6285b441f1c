// Package mocks provides a scripted in-memory engine for tests. Iteration
// results, evaluation scores and injected failures are configured up front;
// every call is recorded so tests can assert on resource lifecycles.
package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/boostmesh/boostmesh/engine"
)

// UpdateResult scripts one UpdateOneIteration call.
type UpdateResult struct {
	Finished bool
	Err      error
}

type Engine struct {
	mu sync.Mutex

	// Scripted behaviour.
	Names           []string
	Updates         []UpdateResult
	TrainScores     [][]float64
	ValidScores     [][]float64
	CreateErr       error
	SaveErr         error
	NetworkInitErrs []error
	Model           string

	// Recorded calls.
	CreateCalls      int
	UpdateCalls      int
	ResetRates       []float64
	MergedModels     []string
	ValidationAdded  int
	FreedBoosters    int
	FreedDatasets    int
	NetworkInitCalls int
	NetworkFreeCalls int
	InitPeers        []string
	InitLocalPort    int
}

var _ engine.Engine = (*Engine)(nil)

func (e *Engine) CreateBooster(_ context.Context, _ string, _ engine.DatasetRef) (engine.BoosterRef, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.CreateCalls++
	if e.CreateErr != nil {
		return nil, e.CreateErr
	}

	return "booster", nil
}

func (e *Engine) MergeModel(_ context.Context, _ engine.BoosterRef, model string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.MergedModels = append(e.MergedModels, model)

	return nil
}

func (e *Engine) AddValidationData(_ context.Context, _ engine.BoosterRef, _ engine.DatasetRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ValidationAdded++

	return nil
}

func (e *Engine) UpdateOneIteration(_ context.Context, _ engine.BoosterRef) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.UpdateCalls
	e.UpdateCalls++
	if i < len(e.Updates) {
		return e.Updates[i].Finished, e.Updates[i].Err
	}

	return false, nil
}

func (e *Engine) GetEvalNames(_ context.Context, _ engine.BoosterRef) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.Names, nil
}

func (e *Engine) GetEval(_ context.Context, _ engine.BoosterRef, datasetIndex, metricIndex int) (float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	scores := e.TrainScores
	if datasetIndex == engine.ValidationDataIndex {
		scores = e.ValidScores
	}

	iter := e.UpdateCalls - 1
	if iter < 0 || iter >= len(scores) || metricIndex >= len(scores[iter]) {
		return 0, errors.New("no scripted score")
	}

	return scores[iter][metricIndex], nil
}

func (e *Engine) ResetLearningRate(_ context.Context, _ engine.BoosterRef, rate float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ResetRates = append(e.ResetRates, rate)

	return nil
}

func (e *Engine) SaveModelToString(_ context.Context, _ engine.BoosterRef) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.SaveErr != nil {
		return "", e.SaveErr
	}

	return e.Model, nil
}

func (e *Engine) FreeBooster(_ context.Context, _ engine.BoosterRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.FreedBoosters++

	return nil
}

func (e *Engine) FreeDataset(_ context.Context, _ engine.DatasetRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.FreedDatasets++

	return nil
}

func (e *Engine) NetworkInit(_ context.Context, machines []string, localPort, _, _ int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.NetworkInitCalls
	e.NetworkInitCalls++
	e.InitPeers = machines
	e.InitLocalPort = localPort
	if i < len(e.NetworkInitErrs) {
		return e.NetworkInitErrs[i]
	}

	return nil
}

func (e *Engine) NetworkFree(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.NetworkFreeCalls++

	return nil
}
