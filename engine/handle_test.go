package engine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/boostmesh/boostmesh/engine"
)

func TestDatasetHandleReleasesExactlyOnce(t *testing.T) {
	released := 0
	h := engine.NewDatasetHandle("ds", func() error {
		released++

		return nil
	})

	assert.Equal(t, "ds", h.Ref())
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	assert.NoError(t, h.Close())
	assert.Equal(t, 1, released)
}

func TestDatasetHandleReleaseErrorSurfacesOnce(t *testing.T) {
	boom := errors.New("release failed")
	h := engine.NewDatasetHandle("ds", func() error {
		return boom
	})

	assert.ErrorIs(t, h.Close(), boom)
	assert.NoError(t, h.Close())
}

func TestBoosterHandleReleasesExactlyOnce(t *testing.T) {
	released := 0
	h := engine.NewBoosterHandle("b", func() error {
		released++

		return nil
	})

	for i := 0; i < 5; i++ {
		assert.NoError(t, h.Close())
	}
	assert.Equal(t, 1, released)
}
