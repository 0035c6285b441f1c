// Package dataset names the boundary to the external dataset builder and
// carries the column configuration and group-column handling that must be
// validated before any engine resources exist.
package dataset

import (
	"context"

	"github.com/boostmesh/boostmesh/engine"
)

// Row is one partitioned input record as handed over by the host framework.
// Group is only set for ranking objectives and must hold an int32, int64,
// int or string key.
type Row struct {
	Label     float64
	Features  []float64
	Weight    float64
	InitScore float64
	Group     any
}

// ColumnParams names the schema columns the builder reads from.
type ColumnParams struct {
	LabelColumn     string
	FeaturesColumn  string
	WeightColumn    string
	InitScoreColumn string
	GroupColumn     string
}

func (c ColumnParams) HasWeight() bool {
	return c.WeightColumn != ""
}

func (c ColumnParams) HasInitScore() bool {
	return c.InitScoreColumn != ""
}

func (c ColumnParams) HasGroup() bool {
	return c.GroupColumn != ""
}

// Builder converts partitioned rows into the engine's native dataset
// representation. Implementations set label/weight/init-score/group fields
// and validate the dataset before returning; reference, when non-nil, is
// the training dataset a validation dataset must align its bin mappers to.
type Builder interface {
	Build(ctx context.Context, rows []Row, cols ColumnParams, reference *engine.DatasetHandle) (*engine.DatasetHandle, error)
}
