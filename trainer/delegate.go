package trainer

import "context"

// Delegate is the pluggable lifecycle hook set invoked synchronously at the
// controller's extension points. Each worker holds its own instance; none of
// the hooks may assume cross-worker thread safety.
type Delegate interface {
	BeforeGenerateTrainDataset(ctx context.Context)
	AfterGenerateTrainDataset(ctx context.Context)
	BeforeGenerateValidDataset(ctx context.Context)
	AfterGenerateValidDataset(ctx context.Context)
	BeforeTrainIteration(ctx context.Context, iteration int)
	AfterTrainIteration(ctx context.Context, iteration int, trainScores, validScores map[string]float64, finished bool)

	// LearningRate may return a new rate for the coming iteration. Returning
	// current leaves the live engine parameters untouched.
	LearningRate(iteration int, current float64) float64
}

// NopDelegate is the default hook set: every extension point is a no-op and
// the learning rate is never changed. Embed it to implement only the hooks
// you care about.
type NopDelegate struct{}

var _ Delegate = NopDelegate{}

func (NopDelegate) BeforeGenerateTrainDataset(context.Context) {}

func (NopDelegate) AfterGenerateTrainDataset(context.Context) {}

func (NopDelegate) BeforeGenerateValidDataset(context.Context) {}

func (NopDelegate) AfterGenerateValidDataset(context.Context) {}

func (NopDelegate) BeforeTrainIteration(context.Context, int) {}

func (NopDelegate) AfterTrainIteration(context.Context, int, map[string]float64, map[string]float64, bool) {
}

func (NopDelegate) LearningRate(_ int, current float64) float64 {
	return current
}
