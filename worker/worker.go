// Package worker runs the per-partition training pipeline: port allocation,
// rendezvous, engine network bring-up, dataset construction and the
// iteration loop, returning the serialized model. Each worker executes the
// pipeline independently; rendezvous is the only cross-worker
// synchronization before training starts.
package worker

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/boostmesh/boostmesh/dataset"
	"github.com/boostmesh/boostmesh/engine"
	"github.com/boostmesh/boostmesh/pkg/ports"
	"github.com/boostmesh/boostmesh/rendezvous"
	"github.com/boostmesh/boostmesh/trainer"
)

// NetworkParams locates the coordinator and the local listen range for one
// job. Immutable, supplied per job.
type NetworkParams struct {
	DefaultListenPort  int
	CoordinatorAddress string
	CoordinatorPort    int
	UseBarrier         bool

	// DialTimeout and ReadTimeout bound the rendezvous handshake; zero
	// falls back to transport defaults.
	DialTimeout time.Duration
	ReadTimeout time.Duration

	// NetworkRetries and NetworkRetryDelay bound the engine network
	// bring-up, which may race residual socket state from the probe
	// listener.
	NetworkRetries    uint64
	NetworkRetryDelay time.Duration
}

func (p NetworkParams) coordinatorAddr() string {
	return fmt.Sprintf("%s:%d", p.CoordinatorAddress, p.CoordinatorPort)
}

// Partition is one worker's share of the job, handed over by the host
// framework.
type Partition struct {
	// ID is the partition identity across the whole job; the worker holding
	// partition zero reports FINISHED in barrier mode.
	ID int

	// WorkerSlot and SlotsPerMachine offset port probing for workers
	// sharing a host.
	WorkerSlot      int
	SlotsPerMachine int

	Rows []dataset.Row

	// ValidationRows is the broadcast validation set; empty means no
	// validation and no early stopping.
	ValidationRows []dataset.Row

	// Barrier is the host framework's collective sync, required when the
	// job runs with UseBarrier.
	Barrier rendezvous.Barrier
}

// Service trains one model per partition.
type Service struct {
	network  NetworkParams
	columns  dataset.ColumnParams
	params   engine.TrainParams
	eng      engine.Engine
	builder  dataset.Builder
	delegate trainer.Delegate
	logger   *slog.Logger
}

func New(network NetworkParams, columns dataset.ColumnParams, params engine.TrainParams, eng engine.Engine, builder dataset.Builder, delegate trainer.Delegate, logger *slog.Logger) *Service {
	if delegate == nil {
		delegate = trainer.NopDelegate{}
	}

	return &Service{
		network:  network,
		columns:  columns,
		params:   params,
		eng:      eng,
		builder:  builder,
		delegate: delegate,
		logger:   logger,
	}
}

// Train runs the full pipeline and returns the serialized model, or an
// empty string for an empty partition. All engine resources are released on
// every exit path.
func (s *Service) Train(ctx context.Context, p Partition) (string, error) {
	logger := s.logger.With(slog.Int("partition", p.ID))

	// Configuration and type errors fail before any network or engine
	// resource exists.
	if s.columns.HasGroup() {
		if _, err := dataset.GroupsFromRows(p.Rows); err != nil {
			return "", err
		}
	}

	peers, localPort, err := s.rendezvous(ctx, p, logger)
	if err != nil {
		return "", err
	}
	if len(p.Rows) == 0 {
		logger.Info("empty partition, no model to train")

		return "", nil
	}

	if err := rendezvous.InitNetwork(ctx, s.eng, peers, localPort, rendezvous.InitOptions{
		MaxRetries:   s.network.NetworkRetries,
		InitialDelay: s.network.NetworkRetryDelay,
	}, logger); err != nil {
		return "", err
	}
	defer func() {
		if err := s.eng.NetworkFree(context.Background()); err != nil {
			logger.Warn("failed to free engine network", slog.Any("error", err))
		}
	}()

	return s.buildAndTrain(ctx, p, len(peers), logger)
}

// rendezvous allocates the listen port, announces it and returns the peer
// list. The probe listener is closed before returning so the engine can
// rebind the port.
func (s *Service) rendezvous(ctx context.Context, p Partition, logger *slog.Logger) ([]string, int, error) {
	empty := len(p.Rows) == 0

	var localPort int
	if !empty {
		probe, port, err := ports.Find(s.network.DefaultListenPort, p.WorkerSlot, p.SlotsPerMachine, logger)
		if err != nil {
			return nil, 0, err
		}
		defer probe.Close()
		localPort = port
	}

	client := rendezvous.NewClient(s.network.coordinatorAddr(), rendezvous.ClientConfig{
		DialTimeout: s.network.DialTimeout,
		ReadTimeout: s.network.ReadTimeout,
	}, logger)

	var barrier rendezvous.Barrier
	if s.network.UseBarrier {
		barrier = p.Barrier
	}

	peers, err := client.Announce(ctx, rendezvous.Announcement{
		LocalPort:      localPort,
		EmptyPartition: empty,
		PartitionZero:  p.ID == 0,
		Barrier:        barrier,
	})
	if err != nil {
		return nil, 0, err
	}

	return peers, localPort, nil
}

// buildAndTrain constructs the datasets and booster, runs the loop and
// extracts the model. Handles close exactly once on all paths.
func (s *Service) buildAndTrain(ctx context.Context, p Partition, numMachines int, logger *slog.Logger) (string, error) {
	s.delegate.BeforeGenerateTrainDataset(ctx)
	train, err := s.builder.Build(ctx, p.Rows, s.columns, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build training dataset: %w", err)
	}
	defer train.Close()
	s.delegate.AfterGenerateTrainDataset(ctx)

	var valid *engine.DatasetHandle
	if len(p.ValidationRows) > 0 {
		s.delegate.BeforeGenerateValidDataset(ctx)
		valid, err = s.builder.Build(ctx, p.ValidationRows, s.columns, train)
		if err != nil {
			return "", fmt.Errorf("failed to build validation dataset: %w", err)
		}
		defer valid.Close()
		s.delegate.AfterGenerateValidDataset(ctx)
	}

	params := s.params
	params.NumMachines = numMachines

	booster, err := engine.NewBooster(ctx, s.eng, params, train)
	if err != nil {
		return "", err
	}
	defer booster.Close()

	if params.ModelString != "" {
		if err := booster.MergeModel(ctx, params.ModelString); err != nil {
			return "", err
		}
	}
	if valid != nil {
		if err := booster.AddValidationData(ctx, valid); err != nil {
			return "", err
		}
	}

	controller := trainer.New(trainer.Config{
		MaxIterations:      params.NumIterations,
		LearningRate:       params.LearningRate,
		EarlyStoppingRound: params.EarlyStoppingRound,
		Tolerance:          params.ImprovementTolerance,
		EvalTrainMetrics:   params.IsProvideTrainingMetric,
		HasValidation:      valid != nil,
	}, s.delegate, logger)

	result, err := controller.Run(ctx, booster)
	if err != nil {
		return "", err
	}
	logger.Info("training finished",
		slog.Int("iterations", result.Iterations),
		slog.Any("best_scores", result.BestScores),
	)

	model, err := booster.SaveToString(ctx)
	if err != nil {
		return "", err
	}
	if model == "" {
		return "", stderrors.New("engine returned an empty model")
	}

	return model, nil
}
