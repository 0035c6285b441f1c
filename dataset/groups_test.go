package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boostmesh/boostmesh/dataset"
	"github.com/boostmesh/boostmesh/pkg/errors"
)

func rowsWithGroups(keys ...any) []dataset.Row {
	rows := make([]dataset.Row, len(keys))
	for i, k := range keys {
		rows[i] = dataset.Row{Group: k}
	}

	return rows
}

func TestGroupsFromRows(t *testing.T) {
	cases := []struct {
		name  string
		rows  []dataset.Row
		kind  dataset.GroupKind
		sizes []int32
		err   bool
	}{
		{
			name:  "int32 keys",
			rows:  rowsWithGroups(int32(1), int32(1), int32(2), int32(2), int32(2)),
			kind:  dataset.GroupInt,
			sizes: []int32{2, 3},
		},
		{
			name:  "int64 keys",
			rows:  rowsWithGroups(int64(7), int64(7), int64(7)),
			kind:  dataset.GroupLong,
			sizes: []int32{3},
		},
		{
			name:  "native int widens to long",
			rows:  rowsWithGroups(1, 2, 2, 3),
			kind:  dataset.GroupLong,
			sizes: []int32{1, 2, 1},
		},
		{
			name:  "string keys",
			rows:  rowsWithGroups("q1", "q1", "q2", "q1"),
			kind:  dataset.GroupString,
			sizes: []int32{2, 1, 1},
		},
		{
			name: "unsupported key type",
			rows: rowsWithGroups(1.5, 1.5),
			err:  true,
		},
		{
			name: "mixed key types",
			rows: rowsWithGroups("q1", int32(2)),
			err:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := dataset.GroupsFromRows(tc.rows)
			if tc.err {
				assert.ErrorIs(t, err, errors.ErrInvalidGroupColumn)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.kind, g.Kind())
			assert.Equal(t, len(tc.rows), g.Len())
			assert.Equal(t, tc.sizes, g.Sizes())
		})
	}
}

func TestGroupsFromRowsEmpty(t *testing.T) {
	g, err := dataset.GroupsFromRows(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Nil(t, g.Sizes())
}
