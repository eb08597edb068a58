package ranking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/tasklists/internal/domain"
)

func makeLists(names ...string) []domain.List {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]domain.List, len(names))
	for i, n := range names {
		out[i] = domain.List{ID: uuid.New(), Name: n, UpdatedAt: base.Add(time.Duration(i) * time.Minute)}
	}
	return out
}

func names(lists []domain.List) []string {
	out := make([]string, len(lists))
	for i, l := range lists {
		out[i] = l.Name
	}
	return out
}

func priorities(lists []domain.List) []int {
	out := make([]int, len(lists))
	for i, l := range lists {
		out[i] = l.Priority
	}
	return out
}

func TestMove(t *testing.T) {
	lists := makeLists("A", "B", "C", "D")

	assert.Equal(t, []string{"B", "C", "A", "D"}, names(Move(lists, 0, 2)))
	assert.Equal(t, []string{"D", "A", "B", "C"}, names(Move(lists, 3, 0)))
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(Move(lists, 1, 1)))
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(Move(lists, 5, 0)))
	assert.Equal(t, []string{"A", "B", "C", "D"}, names(lists), "input must not be mutated")
}

func TestReorder_MoveFirstToThird(t *testing.T) {
	lists := makeLists("A", "B", "C", "D")

	got := Reorder(lists, 0, 2)

	assert.Equal(t, []string{"B", "C", "A", "D"}, names(got))
	assert.Equal(t, []int{3, 2, 1, 0}, priorities(got))
	assert.Equal(t, []int{0, 0, 0, 0}, priorities(lists))
}

func TestReorder_StrictlyDecreasingAfterAnyMoveFromZeros(t *testing.T) {
	for from := range 4 {
		for to := range 4 {
			if from == to {
				continue
			}
			got := Reorder(makeLists("A", "B", "C", "D"), from, to)
			p := priorities(got)
			for i := 0; i < len(p)-1; i++ {
				if p[i] == 0 && p[i+1] == 0 {
					continue
				}
				assert.Greater(t, p[i], p[i+1], "from=%d to=%d priorities=%v", from, to, p)
			}
		}
	}
}

func TestRenormalize_PreservesZeroTail(t *testing.T) {
	lists := makeLists("A", "B", "C", "D", "E")
	for i, p := range []int{3, 2, 1, 0, 0} {
		lists[i].Priority = p
	}

	got := Reorder(lists, 4, 0)

	assert.Equal(t, []string{"E", "A", "B", "C", "D"}, names(got))
	assert.Equal(t, []int{4, 3, 2, 1, 0}, priorities(got))
}

func TestRenormalize_MoveToEnd(t *testing.T) {
	got := Reorder(makeLists("A", "B", "C"), 0, 2)

	assert.Equal(t, []string{"B", "C", "A"}, names(got))
	assert.Equal(t, []int{3, 2, 1}, priorities(got))
}

func TestRenormalize_SingleList(t *testing.T) {
	lists := makeLists("A")
	Renormalize(lists, 0)
	assert.Equal(t, []int{1}, priorities(lists))
}

func TestSort(t *testing.T) {
	lists := makeLists("old", "new", "top")
	lists[0].Priority = 1
	lists[1].Priority = 1
	lists[2].Priority = 5
	lists[0], lists[1] = lists[1], lists[0]

	Sort(lists)

	assert.Equal(t, []string{"top", "old", "new"}, names(lists))
}

func TestSnapshotRestore(t *testing.T) {
	lists := makeLists("A", "B", "C")
	lists[0].Priority = 2
	lists[1].Priority = 1
	snap := Snapshot(lists)

	reordered := Reorder(lists, 2, 0)
	require.NotEqual(t, priorities(lists), priorities(reordered))

	Restore(reordered, snap)
	assert.Equal(t, []int{0, 2, 1}, priorities(reordered))
}

func TestPriorities(t *testing.T) {
	lists := makeLists("A", "B")
	lists[0].Priority = 4

	got := Priorities(lists)

	require.Len(t, got, 2)
	assert.Equal(t, domain.PriorityUpdate{ID: lists[0].ID, Priority: 4}, got[0])
	assert.Equal(t, lists[1].ID, got[1].ID)
}
