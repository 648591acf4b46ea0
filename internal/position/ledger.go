// Package position maintains the dense 1-based ordering of items within a container.
//
// A sequence is the display order of item IDs. Reindex turns a sequence into
// the positions that must be persisted; PlaceAt relocates a single item.
// Both are pure and never fail.
package position

import (
	"sort"

	"github.com/google/uuid"
)

// Sequence is an ordered list of item IDs, first element displayed first
type Sequence []uuid.UUID

// Reindex assigns 1-based positions matching the order of seq
func Reindex(seq Sequence) map[uuid.UUID]int {
	positions := make(map[uuid.UUID]int, len(seq))
	for i, id := range seq {
		positions[id] = i + 1
	}
	return positions
}

// PlaceAt returns a new sequence with id removed from its current slot (if any)
// and inserted at targetIndex. targetIndex is 0-based and clamped into
// [0, len(seq without id)]: negative values insert at the front, values past
// the end append.
func PlaceAt(seq Sequence, id uuid.UUID, targetIndex int) Sequence {
	out := Without(seq, id)
	idx := Clamp(targetIndex, len(out))

	out = append(out, uuid.Nil)
	copy(out[idx+1:], out[idx:])
	out[idx] = id
	return out
}

// IndexOf returns the 0-based slot of id, or -1 when absent
func (s Sequence) IndexOf(id uuid.UUID) int {
	for i, v := range s {
		if v == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of seq with every occurrence of id removed
func Without(seq Sequence, id uuid.UUID) Sequence {
	out := make(Sequence, 0, len(seq)+1)
	for _, v := range seq {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Clamp bounds index into [0, length]
func Clamp(index, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}

// IndexFromPosition converts a 1-based requested position into a 0-based insertion index.
// No bounds are applied here; PlaceAt clamps.
func IndexFromPosition(requested int) int {
	// guard against overflow when requested is math.MinInt
	if requested <= 0 {
		return -1
	}
	return requested - 1
}

// IsDense reports whether positions is exactly {1..n}
func IsDense(positions []int) bool {
	seen := make([]bool, len(positions)+1)
	for _, p := range positions {
		if p < 1 || p > len(positions) || seen[p] {
			return false
		}
		seen[p] = true
	}
	return true
}

// FromPositions orders ids by their current positions. Ties keep input order,
// which lets callers pass rows already sorted by (position, created_at).
func FromPositions(ids []uuid.UUID, positions []int) Sequence {
	idx := make([]int, len(ids))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return positions[idx[a]] < positions[idx[b]]
	})
	seq := make(Sequence, len(ids))
	for i, j := range idx {
		seq[i] = ids[j]
	}
	return seq
}
