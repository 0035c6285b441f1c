package boostmesh_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	boostmesh "github.com/boostmesh/boostmesh"
)

const sampleConfig = `
[network]
default_listen_port = 12400
coordinator_address = "10.0.0.100"
coordinator_port = 9000
use_barrier = true
read_timeout_ms = 30000
network_retries = 3
network_retry_ms = 1000

[columns]
label = "label"
features = "features"
group = "query_id"

[train]
objective = "lambdarank"
metrics = ["ndcg@5"]
num_iterations = 100
learning_rate = 0.05
early_stopping_round = 10
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := boostmesh.LoadConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	network := cfg.NetworkParams()
	assert.Equal(t, 12400, network.DefaultListenPort)
	assert.Equal(t, "10.0.0.100", network.CoordinatorAddress)
	assert.True(t, network.UseBarrier)

	columns := cfg.ColumnParams()
	assert.Equal(t, "label", columns.LabelColumn)
	assert.True(t, columns.HasGroup())
	assert.False(t, columns.HasWeight())

	params, err := cfg.TrainParams()
	require.NoError(t, err)
	assert.Equal(t, 100, params.NumIterations)
	assert.Equal(t, []string{"ndcg@5"}, params.Metrics)
	assert.Contains(t, params.String(), "objective=lambdarank")
}

func TestLoadConfigRejectsMissingFields(t *testing.T) {
	cases := []struct {
		name string
		blob string
	}{
		{"missing coordinator", "[train]\nnum_iterations = 1\nlearning_rate = 0.1"},
		{
			"missing label column",
			"[network]\ndefault_listen_port = 1\ncoordinator_address = \"x\"\ncoordinator_port = 1\n[train]\nnum_iterations = 1\nlearning_rate = 0.1",
		},
		{
			"zero iterations",
			"[network]\ndefault_listen_port = 1\ncoordinator_address = \"x\"\ncoordinator_port = 1\n[columns]\nlabel = \"l\"\nfeatures = \"f\"\n[train]\nlearning_rate = 0.1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := boostmesh.LoadConfig(writeConfig(t, tc.blob))
			assert.Error(t, err)
		})
	}
}
