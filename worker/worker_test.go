package worker_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostmesh/boostmesh/coordinator"
	"github.com/boostmesh/boostmesh/dataset"
	"github.com/boostmesh/boostmesh/engine"
	"github.com/boostmesh/boostmesh/engine/mocks"
	"github.com/boostmesh/boostmesh/pkg/errors"
	"github.com/boostmesh/boostmesh/pkg/storage"
	"github.com/boostmesh/boostmesh/worker"
)

// fakeBuilder mints dataset handles whose release is counted by the fake
// engine. failOn selects a 1-based Build call to fail.
type fakeBuilder struct {
	eng    *mocks.Engine
	failOn int
	calls  int
}

func (b *fakeBuilder) Build(_ context.Context, _ []dataset.Row, _ dataset.ColumnParams, _ *engine.DatasetHandle) (*engine.DatasetHandle, error) {
	b.calls++
	if b.calls == b.failOn {
		return nil, stderrors.New("injected build failure")
	}

	ref := fmt.Sprintf("ds-%d", b.calls)

	return engine.NewDatasetHandle(ref, func() error {
		return b.eng.FreeDataset(context.Background(), ref)
	}), nil
}

func startCoordinator(t *testing.T, expected int) worker.NetworkParams {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	svc := coordinator.NewService(coordinator.Config{ExpectedWorkers: expected}, storage.NewInMemoryStorage(), slog.Default())
	srv := coordinator.NewTCPServer(addr, svc, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		_ = srv.Listen(ctx)
	}()

	host, portStr, err := net.SplitHostPort(addr)
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()

		return true
	}, 2*time.Second, 20*time.Millisecond)

	return worker.NetworkParams{
		DefaultListenPort:  20000,
		CoordinatorAddress: host,
		CoordinatorPort:    port,
		ReadTimeout:        5 * time.Second,
		NetworkRetries:     2,
		NetworkRetryDelay:  time.Millisecond,
	}
}

func rows(n int) []dataset.Row {
	out := make([]dataset.Row, n)
	for i := range out {
		out[i] = dataset.Row{Label: float64(i % 2), Features: []float64{float64(i), 1}}
	}

	return out
}

func TestTrainEndToEnd(t *testing.T) {
	// The probe connection in startCoordinator never announces, so the
	// session counts a single expected worker.
	network := startCoordinator(t, 1)

	eng := &mocks.Engine{Model: "serialized-model"}
	builder := &fakeBuilder{eng: eng}
	svc := worker.New(network, dataset.ColumnParams{LabelColumn: "label", FeaturesColumn: "features"}, engine.TrainParams{
		NumIterations: 3,
		LearningRate:  0.1,
	}, eng, builder, nil, slog.Default())

	model, err := svc.Train(context.Background(), worker.Partition{
		Rows:            rows(10),
		ValidationRows:  rows(4),
		SlotsPerMachine: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, "serialized-model", model)

	assert.Equal(t, 1, eng.NetworkInitCalls)
	assert.Equal(t, 1, eng.NetworkFreeCalls)
	assert.Equal(t, 3, eng.UpdateCalls)
	assert.Equal(t, 1, eng.ValidationAdded)
	assert.Equal(t, 2, eng.FreedDatasets, "train and validation handles released exactly once")
	assert.Equal(t, 1, eng.FreedBoosters)
	require.Len(t, eng.InitPeers, 1)
	assert.GreaterOrEqual(t, eng.InitLocalPort, 20000)
}

func TestTrainEmptyPartitionReturnsNoModel(t *testing.T) {
	network := startCoordinator(t, 1)

	eng := &mocks.Engine{}
	svc := worker.New(network, dataset.ColumnParams{}, engine.TrainParams{NumIterations: 1, LearningRate: 0.1}, eng, &fakeBuilder{eng: eng}, nil, slog.Default())

	model, err := svc.Train(context.Background(), worker.Partition{Rows: nil, SlotsPerMachine: 1})
	require.NoError(t, err)
	assert.Empty(t, model)

	assert.Equal(t, 0, eng.CreateCalls)
	assert.Equal(t, 0, eng.NetworkInitCalls)
}

func TestTrainFailsFastOnInvalidGroupColumn(t *testing.T) {
	eng := &mocks.Engine{}
	// The coordinator address is never dialed: validation fails first.
	network := worker.NetworkParams{
		DefaultListenPort:  20000,
		CoordinatorAddress: "127.0.0.1",
		CoordinatorPort:    1,
	}
	svc := worker.New(network, dataset.ColumnParams{GroupColumn: "query"}, engine.TrainParams{NumIterations: 1, LearningRate: 0.1}, eng, &fakeBuilder{eng: eng}, nil, slog.Default())

	badRows := rows(2)
	badRows[0].Group = 1.5
	badRows[1].Group = 1.5

	_, err := svc.Train(context.Background(), worker.Partition{Rows: badRows, SlotsPerMachine: 1})
	assert.ErrorIs(t, err, errors.ErrInvalidGroupColumn)
	assert.Equal(t, 0, eng.CreateCalls)
	assert.Equal(t, 0, eng.NetworkInitCalls)
}

func TestTrainReleasesHandlesWhenValidationBuildFails(t *testing.T) {
	network := startCoordinator(t, 1)

	eng := &mocks.Engine{}
	builder := &fakeBuilder{eng: eng, failOn: 2}
	svc := worker.New(network, dataset.ColumnParams{}, engine.TrainParams{NumIterations: 1, LearningRate: 0.1}, eng, builder, nil, slog.Default())

	_, err := svc.Train(context.Background(), worker.Partition{
		Rows:            rows(4),
		ValidationRows:  rows(2),
		SlotsPerMachine: 1,
	})
	require.Error(t, err)

	assert.Equal(t, 1, eng.FreedDatasets, "training handle released despite the failure")
	assert.Equal(t, 0, eng.FreedBoosters)
	assert.Equal(t, 1, eng.NetworkFreeCalls)
}

func TestTrainReleasesHandlesWhenSaveFails(t *testing.T) {
	network := startCoordinator(t, 1)

	eng := &mocks.Engine{SaveErr: stderrors.New("save exploded")}
	builder := &fakeBuilder{eng: eng}
	svc := worker.New(network, dataset.ColumnParams{}, engine.TrainParams{NumIterations: 1, LearningRate: 0.1}, eng, builder, nil, slog.Default())

	_, err := svc.Train(context.Background(), worker.Partition{Rows: rows(4), SlotsPerMachine: 1})
	require.Error(t, err)

	assert.Equal(t, 1, eng.FreedDatasets)
	assert.Equal(t, 1, eng.FreedBoosters)
	assert.Equal(t, 1, eng.NetworkFreeCalls)
}
