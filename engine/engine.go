// Package engine defines the boundary to the external boosting engine. The
// engine owns all native training state; this package only holds opaque
// references to it and translates its failures into typed errors.
package engine

import (
	"context"
	"fmt"
)

// Dataset indices the engine assigns when validation data is attached after
// the training set.
const (
	TrainDataIndex      = 0
	ValidationDataIndex = 1
)

// DatasetRef and BoosterRef are opaque tokens minted by the engine. They
// carry no meaning outside engine calls.
type (
	DatasetRef any
	BoosterRef any
)

// Engine is the opaque computational service driving all boosting math.
// Every call may fail with an engine-specific error, which callers receive
// wrapped in *Error.
type Engine interface {
	CreateBooster(ctx context.Context, params string, train DatasetRef) (BoosterRef, error)
	MergeModel(ctx context.Context, booster BoosterRef, model string) error
	AddValidationData(ctx context.Context, booster BoosterRef, valid DatasetRef) error
	UpdateOneIteration(ctx context.Context, booster BoosterRef) (finished bool, err error)
	GetEvalNames(ctx context.Context, booster BoosterRef) ([]string, error)
	GetEval(ctx context.Context, booster BoosterRef, datasetIndex, metricIndex int) (float64, error)
	ResetLearningRate(ctx context.Context, booster BoosterRef, rate float64) error
	SaveModelToString(ctx context.Context, booster BoosterRef) (string, error)
	FreeBooster(ctx context.Context, booster BoosterRef) error
	FreeDataset(ctx context.Context, dataset DatasetRef) error
	NetworkInit(ctx context.Context, machines []string, localPort, listenTimeout, numMachines int) error
	NetworkFree(ctx context.Context) error
}

// Error wraps a failed engine call with the stage it failed at.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %s", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrap(stage string, err error) error {
	if err == nil {
		return nil
	}

	return &Error{Stage: stage, Err: err}
}
