package engine

import "context"

// Booster pairs an Engine with the handle of one live booster and exposes
// the per-iteration operations the training loop needs. It owns the booster
// reference; Close frees it exactly once.
type Booster struct {
	eng       Engine
	handle    *BoosterHandle
	evalNames []string
}

// NewBooster creates an engine booster over the training dataset. The
// returned Booster must be closed by the caller on every exit path.
func NewBooster(ctx context.Context, eng Engine, params TrainParams, train *DatasetHandle) (*Booster, error) {
	ref, err := eng.CreateBooster(ctx, params.String(), train.Ref())
	if err != nil {
		return nil, wrap("create booster", err)
	}

	handle := NewBoosterHandle(ref, func() error {
		return eng.FreeBooster(context.Background(), ref)
	})

	return &Booster{eng: eng, handle: handle}, nil
}

// MergeModel folds a serialized pre-trained model into this booster.
func (b *Booster) MergeModel(ctx context.Context, model string) error {
	return wrap("merge model", b.eng.MergeModel(ctx, b.handle.Ref(), model))
}

// AddValidationData attaches the validation dataset; it is scored at
// ValidationDataIndex from then on.
func (b *Booster) AddValidationData(ctx context.Context, valid *DatasetHandle) error {
	return wrap("add validation data", b.eng.AddValidationData(ctx, b.handle.Ref(), valid.Ref()))
}

// UpdateOneIteration performs one boosting step. finished reports that the
// engine considers boosting naturally converged.
func (b *Booster) UpdateOneIteration(ctx context.Context) (bool, error) {
	finished, err := b.eng.UpdateOneIteration(ctx, b.handle.Ref())

	return finished, wrap("update iteration", err)
}

// EvalNames returns the configured metric names. The engine's answer is
// cached after the first call; the set is fixed for the booster's lifetime.
func (b *Booster) EvalNames(ctx context.Context) ([]string, error) {
	if b.evalNames != nil {
		return b.evalNames, nil
	}

	names, err := b.eng.GetEvalNames(ctx, b.handle.Ref())
	if err != nil {
		return nil, wrap("get eval names", err)
	}
	b.evalNames = names

	return names, nil
}

// Eval pulls one score per configured metric for the given dataset index.
func (b *Booster) Eval(ctx context.Context, datasetIndex int) (map[string]float64, error) {
	names, err := b.EvalNames(ctx)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(names))
	for i, name := range names {
		score, err := b.eng.GetEval(ctx, b.handle.Ref(), datasetIndex, i)
		if err != nil {
			return nil, wrap("get eval", err)
		}
		scores[name] = score
	}

	return scores, nil
}

// ResetLearningRate pushes a new learning rate into the live engine
// parameters without restarting training.
func (b *Booster) ResetLearningRate(ctx context.Context, rate float64) error {
	return wrap("reset learning rate", b.eng.ResetLearningRate(ctx, b.handle.Ref(), rate))
}

// SaveToString extracts the serialized model.
func (b *Booster) SaveToString(ctx context.Context) (string, error) {
	model, err := b.eng.SaveModelToString(ctx, b.handle.Ref())
	if err != nil {
		return "", wrap("save model", err)
	}

	return model, nil
}

// Close frees the engine booster. Safe to call more than once.
func (b *Booster) Close() error {
	return b.handle.Close()
}
