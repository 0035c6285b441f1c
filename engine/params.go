package engine

import (
	"sort"
	"strconv"
	"strings"
)

// TrainParams is the immutable training configuration serialized into the
// engine's flat parameter string. The engine parses key=value pairs in any
// order; keys are still emitted sorted so every worker sends identical bytes.
type TrainParams struct {
	Objective            string
	Metrics              []string
	NumIterations        int
	LearningRate         float64
	NumLeaves            int
	MaxDepth             int
	MinDataInLeaf        int
	BaggingFraction      float64
	BaggingFreq          int
	FeatureFraction      float64
	LambdaL1             float64
	LambdaL2             float64
	EarlyStoppingRound   int
	ImprovementTolerance float64
	CategoricalFeatures  []int
	NumMachines          int
	Seed                 int

	// ModelString is an optional pre-trained model merged into the booster
	// after creation. It never appears in the parameter string.
	ModelString string

	// IsProvideTrainingMetric asks the engine to score the training set each
	// iteration in addition to validation data.
	IsProvideTrainingMetric bool

	// Extra carries engine parameters this record has no field for.
	Extra map[string]string
}

// String renders the flat parameter string the engine consumes. Unset
// optionals are omitted; defaults are the engine's business.
func (p TrainParams) String() string {
	kv := map[string]string{
		"num_iterations": strconv.Itoa(p.NumIterations),
		"learning_rate":  formatFloat(p.LearningRate),
		"num_machines":   strconv.Itoa(p.NumMachines),
	}

	if p.Objective != "" {
		kv["objective"] = p.Objective
	}
	if len(p.Metrics) > 0 {
		kv["metric"] = strings.Join(p.Metrics, ",")
	}
	if p.NumLeaves > 0 {
		kv["num_leaves"] = strconv.Itoa(p.NumLeaves)
	}
	if p.MaxDepth != 0 {
		kv["max_depth"] = strconv.Itoa(p.MaxDepth)
	}
	if p.MinDataInLeaf > 0 {
		kv["min_data_in_leaf"] = strconv.Itoa(p.MinDataInLeaf)
	}
	if p.BaggingFraction > 0 {
		kv["bagging_fraction"] = formatFloat(p.BaggingFraction)
	}
	if p.BaggingFreq > 0 {
		kv["bagging_freq"] = strconv.Itoa(p.BaggingFreq)
	}
	if p.FeatureFraction > 0 {
		kv["feature_fraction"] = formatFloat(p.FeatureFraction)
	}
	if p.LambdaL1 > 0 {
		kv["lambda_l1"] = formatFloat(p.LambdaL1)
	}
	if p.LambdaL2 > 0 {
		kv["lambda_l2"] = formatFloat(p.LambdaL2)
	}
	if p.EarlyStoppingRound > 0 {
		kv["early_stopping_round"] = strconv.Itoa(p.EarlyStoppingRound)
	}
	if len(p.CategoricalFeatures) > 0 {
		idx := make([]string, len(p.CategoricalFeatures))
		for i, c := range p.CategoricalFeatures {
			idx[i] = strconv.Itoa(c)
		}
		kv["categorical_feature"] = strings.Join(idx, ",")
	}
	if p.Seed != 0 {
		kv["seed"] = strconv.Itoa(p.Seed)
	}
	if p.IsProvideTrainingMetric {
		kv["is_provide_training_metric"] = "true"
	}

	for k, v := range p.Extra {
		kv[k] = v
	}

	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+kv[k])
	}

	return strings.Join(pairs, " ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
