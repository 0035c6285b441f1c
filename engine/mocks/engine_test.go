package mocks_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostmesh/boostmesh/engine/mocks"
)

// Concurrent workers share one fake engine in pipeline tests, so every
// method must be safe under the race detector.
func TestEngineIsSafeForConcurrentUse(t *testing.T) {
	ctx := context.Background()
	eng := &mocks.Engine{
		Names: []string{"l2"},
		Model: "model",
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := eng.UpdateOneIteration(ctx, "booster")
			assert.NoError(t, err)

			names, err := eng.GetEvalNames(ctx, "booster")
			assert.NoError(t, err)
			assert.Equal(t, []string{"l2"}, names)

			model, err := eng.SaveModelToString(ctx, "booster")
			assert.NoError(t, err)
			assert.Equal(t, "model", model)

			assert.NoError(t, eng.FreeBooster(ctx, "booster"))
		}()
	}
	wg.Wait()

	require.Equal(t, 4, eng.UpdateCalls)
	require.Equal(t, 4, eng.FreedBoosters)
}
