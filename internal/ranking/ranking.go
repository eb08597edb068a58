// Package ranking implements manual list ordering: moving a list to a new
// position and rewriting priorities so they strictly decrease along the
// visible order, apart from a trailing run of zeros.
package ranking

import (
	"slices"

	"github.com/google/uuid"

	"github.com/pscheid92/tasklists/internal/domain"
)

// placeholder marks the moved list while the walk recomputes priorities.
// It must be non-zero so the moved list never joins the zero tail.
const placeholder = 1

// Move returns a copy of lists with the element at from moved to to.
// Out-of-range indices return an unchanged copy.
func Move(lists []domain.List, from, to int) []domain.List {
	out := slices.Clone(lists)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}

// Renormalize rewrites priorities in place after the list at moved was
// dropped into its new position.
func Renormalize(lists []domain.List, moved int) {
	if moved >= 0 && moved < len(lists) {
		lists[moved].Priority = placeholder
	}

	last := len(lists) - 1
	for i := last; i >= 0; i-- {
		if i == last {
			if lists[i].Priority != 0 {
				lists[i].Priority = 1
			}
			continue
		}
		if lists[i].Priority == 0 && lists[i+1].Priority == 0 {
			continue
		}
		lists[i].Priority = lists[i+1].Priority + 1
	}
}

// Reorder combines Move and Renormalize.
func Reorder(lists []domain.List, from, to int) []domain.List {
	out := Move(lists, from, to)
	if from < 0 || from >= len(lists) || to < 0 || to >= len(lists) {
		return out
	}
	Renormalize(out, to)
	return out
}

// Sort orders lists by priority descending, then least recently updated first.
func Sort(lists []domain.List) {
	slices.SortStableFunc(lists, Compare)
}

// Compare orders by priority descending, then updated_at ascending.
func Compare(a, b domain.List) int {
	if a.Priority != b.Priority {
		return b.Priority - a.Priority
	}
	return a.UpdatedAt.Compare(b.UpdatedAt)
}

// Priorities extracts the (id, priority) pairs persisted by a batch update.
func Priorities(lists []domain.List) []domain.PriorityUpdate {
	out := make([]domain.PriorityUpdate, len(lists))
	for i, l := range lists {
		out[i] = domain.PriorityUpdate{ID: l.ID, Priority: l.Priority}
	}
	return out
}

// Snapshot records every list's priority keyed by ID.
func Snapshot(lists []domain.List) map[uuid.UUID]int {
	out := make(map[uuid.UUID]int, len(lists))
	for _, l := range lists {
		out[l.ID] = l.Priority
	}
	return out
}

// Restore resets priorities from a snapshot. Lists absent from the snapshot
// fall back to 0.
func Restore(lists []domain.List, snap map[uuid.UUID]int) {
	for i := range lists {
		lists[i].Priority = snap[lists[i].ID]
	}
}
