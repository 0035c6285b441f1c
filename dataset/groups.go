package dataset

import (
	"fmt"

	"github.com/boostmesh/boostmesh/pkg/errors"
)

// GroupKind tags the key type of a ranking group column.
type GroupKind uint8

const (
	GroupInt GroupKind = iota
	GroupLong
	GroupString
)

func (k GroupKind) String() string {
	switch k {
	case GroupInt:
		return "int"
	case GroupLong:
		return "long"
	case GroupString:
		return "string"
	default:
		return "unknown"
	}
}

// GroupColumn is a tagged variant over the supported group key types.
// Exactly one of the typed slices is populated, selected by kind.
type GroupColumn struct {
	kind    GroupKind
	ints    []int32
	longs   []int64
	strings []string
}

// GroupsFromRows extracts the group column from rows, failing fast with
// ErrInvalidGroupColumn before any network or engine resource is allocated.
// The key type is fixed by the first row; int widens to long.
func GroupsFromRows(rows []Row) (GroupColumn, error) {
	if len(rows) == 0 {
		return GroupColumn{}, nil
	}

	switch rows[0].Group.(type) {
	case int32:
		g := GroupColumn{kind: GroupInt, ints: make([]int32, 0, len(rows))}
		for i, r := range rows {
			v, ok := r.Group.(int32)
			if !ok {
				return GroupColumn{}, mixedKey(i, r.Group)
			}
			g.ints = append(g.ints, v)
		}

		return g, nil
	case int64, int:
		g := GroupColumn{kind: GroupLong, longs: make([]int64, 0, len(rows))}
		for i, r := range rows {
			switch v := r.Group.(type) {
			case int64:
				g.longs = append(g.longs, v)
			case int:
				g.longs = append(g.longs, int64(v))
			default:
				return GroupColumn{}, mixedKey(i, r.Group)
			}
		}

		return g, nil
	case string:
		g := GroupColumn{kind: GroupString, strings: make([]string, 0, len(rows))}
		for i, r := range rows {
			v, ok := r.Group.(string)
			if !ok {
				return GroupColumn{}, mixedKey(i, r.Group)
			}
			g.strings = append(g.strings, v)
		}

		return g, nil
	default:
		return GroupColumn{}, fmt.Errorf("group key %T: %w", rows[0].Group, errors.ErrInvalidGroupColumn)
	}
}

func mixedKey(row int, v any) error {
	return fmt.Errorf("row %d has group key %T, differs from first row: %w", row, v, errors.ErrInvalidGroupColumn)
}

func (g GroupColumn) Kind() GroupKind {
	return g.kind
}

func (g GroupColumn) Len() int {
	switch g.kind {
	case GroupLong:
		return len(g.longs)
	case GroupString:
		return len(g.strings)
	default:
		return len(g.ints)
	}
}

// Sizes folds the column into ranking group sizes: the run lengths of
// consecutive equal keys, in order. Rows must already be grouped.
func (g GroupColumn) Sizes() []int32 {
	switch g.kind {
	case GroupLong:
		return runLengths(g.longs)
	case GroupString:
		return runLengths(g.strings)
	default:
		return runLengths(g.ints)
	}
}

func runLengths[T comparable](keys []T) []int32 {
	if len(keys) == 0 {
		return nil
	}

	sizes := []int32{}
	current := keys[0]
	count := int32(0)
	for _, k := range keys {
		if k == current {
			count++

			continue
		}
		sizes = append(sizes, count)
		current = k
		count = 1
	}

	return append(sizes, count)
}
