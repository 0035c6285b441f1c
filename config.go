// Package boostmesh holds the job configuration file shared by the host
// framework and the worker pipeline.
package boostmesh

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/boostmesh/boostmesh/dataset"
	"github.com/boostmesh/boostmesh/engine"
	"github.com/boostmesh/boostmesh/worker"
)

type Config struct {
	Network NetworkConfig `toml:"network"`
	Columns ColumnsConfig `toml:"columns"`
	Train   TrainConfig   `toml:"train"`
}

type NetworkConfig struct {
	DefaultListenPort  int    `toml:"default_listen_port"`
	CoordinatorAddress string `toml:"coordinator_address"`
	CoordinatorPort    int    `toml:"coordinator_port"`
	UseBarrier         bool   `toml:"use_barrier"`
	DialTimeoutMS      int    `toml:"dial_timeout_ms"`
	ReadTimeoutMS      int    `toml:"read_timeout_ms"`
	NetworkRetries     uint64 `toml:"network_retries"`
	NetworkRetryMS     int    `toml:"network_retry_ms"`
}

type ColumnsConfig struct {
	Label     string `toml:"label"`
	Features  string `toml:"features"`
	Weight    string `toml:"weight"`
	InitScore string `toml:"init_score"`
	Group     string `toml:"group"`
}

type TrainConfig struct {
	Objective            string   `toml:"objective"`
	Metrics              []string `toml:"metrics"`
	NumIterations        int      `toml:"num_iterations"`
	LearningRate         float64  `toml:"learning_rate"`
	NumLeaves            int      `toml:"num_leaves"`
	MaxDepth             int      `toml:"max_depth"`
	EarlyStoppingRound   int      `toml:"early_stopping_round"`
	ImprovementTolerance float64  `toml:"improvement_tolerance"`
	CategoricalFeatures  []int    `toml:"categorical_features"`
	Seed                 int      `toml:"seed"`
	ModelFile            string   `toml:"model_file"`
	TrainingMetric       bool     `toml:"training_metric"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	var cfg Config
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Network.CoordinatorAddress == "" {
		return errors.New("network.coordinator_address is required")
	}
	if c.Network.CoordinatorPort <= 0 {
		return errors.New("network.coordinator_port is required")
	}
	if c.Network.DefaultListenPort <= 0 {
		return errors.New("network.default_listen_port is required")
	}
	if c.Columns.Label == "" {
		return errors.New("columns.label is required")
	}
	if c.Columns.Features == "" {
		return errors.New("columns.features is required")
	}
	if c.Train.NumIterations <= 0 {
		return errors.New("train.num_iterations must be positive")
	}
	if c.Train.LearningRate <= 0 {
		return errors.New("train.learning_rate must be positive")
	}

	return nil
}

func (c *Config) NetworkParams() worker.NetworkParams {
	return worker.NetworkParams{
		DefaultListenPort:  c.Network.DefaultListenPort,
		CoordinatorAddress: c.Network.CoordinatorAddress,
		CoordinatorPort:    c.Network.CoordinatorPort,
		UseBarrier:         c.Network.UseBarrier,
		DialTimeout:        time.Duration(c.Network.DialTimeoutMS) * time.Millisecond,
		ReadTimeout:        time.Duration(c.Network.ReadTimeoutMS) * time.Millisecond,
		NetworkRetries:     c.Network.NetworkRetries,
		NetworkRetryDelay:  time.Duration(c.Network.NetworkRetryMS) * time.Millisecond,
	}
}

func (c *Config) ColumnParams() dataset.ColumnParams {
	return dataset.ColumnParams{
		LabelColumn:     c.Columns.Label,
		FeaturesColumn:  c.Columns.Features,
		WeightColumn:    c.Columns.Weight,
		InitScoreColumn: c.Columns.InitScore,
		GroupColumn:     c.Columns.Group,
	}
}

func (c *Config) TrainParams() (engine.TrainParams, error) {
	params := engine.TrainParams{
		Objective:               c.Train.Objective,
		Metrics:                 c.Train.Metrics,
		NumIterations:           c.Train.NumIterations,
		LearningRate:            c.Train.LearningRate,
		NumLeaves:               c.Train.NumLeaves,
		MaxDepth:                c.Train.MaxDepth,
		EarlyStoppingRound:      c.Train.EarlyStoppingRound,
		ImprovementTolerance:    c.Train.ImprovementTolerance,
		CategoricalFeatures:     c.Train.CategoricalFeatures,
		Seed:                    c.Train.Seed,
		IsProvideTrainingMetric: c.Train.TrainingMetric,
	}

	if c.Train.ModelFile != "" {
		model, err := os.ReadFile(c.Train.ModelFile)
		if err != nil {
			return engine.TrainParams{}, fmt.Errorf("error reading model file: %w", err)
		}
		params.ModelString = string(model)
	}

	return params, nil
}
