package tpht

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRejectsInvalidTimeoutSlots(t *testing.T) {
	_, err := Create[string, int](0.8, 16, false, nil)
	require.ErrorIs(t, err, ErrInvalidTimeoutSlots)

	tooMany := make([]int64, MaxTimeoutSlots+1)
	_, err = Create[string, int](0.8, 16, false, tooMany)
	require.ErrorIs(t, err, ErrInvalidTimeoutSlots)
}

// Scenario 8: two timeout classes; the entry assigned to the shorter
// interval resolves first, and re-timestamping can change which entry is
// next.
func TestNextTimeoutEntryAcrossClasses(t *testing.T) {
	table, err := Create[string, int](0.8, 16, false, []int64{10, 100})
	require.NoError(t, err)

	vp, isNew := table.Insert("a", 0)
	require.True(t, isNew)
	*vp = 1
	vp, isNew = table.Insert("b", 0)
	require.True(t, isNew)
	*vp = 2

	_, ok := table.SetTimeoutSlot("a", 0)
	require.True(t, ok)
	_, ok = table.SetTimeoutSlot("b", 1)
	require.True(t, ok)

	k, v, ok := table.NextTimeoutEntry()
	require.True(t, ok)
	require.Equal(t, "a", k)
	require.Equal(t, 1, *v)

	_, ok = table.UpdateTimeForEntry("a", 200)
	require.True(t, ok)

	k, v, ok = table.NextTimeoutEntry()
	require.True(t, ok)
	require.Equal(t, "b", k)
	require.Equal(t, 2, *v)
}

func TestSetTimeoutSlotReassignmentRemovesFromPreviousClass(t *testing.T) {
	table, err := Create[int, int](0.8, 16, false, []int64{5, 50})
	require.NoError(t, err)

	vp, _ := table.Insert(1, 0)
	*vp = 100

	_, ok := table.SetTimeoutSlot(1, 0)
	require.True(t, ok)
	require.Equal(t, 1, table.classes[0].Len())

	_, ok = table.SetTimeoutSlot(1, 1)
	require.True(t, ok)
	require.Equal(t, 0, table.classes[0].Len())
	require.Equal(t, 1, table.classes[1].Len())
}

func TestSetTimeoutSlotRejectsInvalidSlot(t *testing.T) {
	table, err := Create[int, int](0.8, 16, false, []int64{5})
	require.NoError(t, err)
	table.Insert(1, 0)

	_, ok := table.SetTimeoutSlot(1, 5)
	require.False(t, ok)
	_, ok = table.SetTimeoutSlot(1, -1)
	require.False(t, ok)
}

func TestRemoveEvictsFromAssignedClass(t *testing.T) {
	table, err := Create[int, int](0.8, 16, false, []int64{5})
	require.NoError(t, err)

	table.Insert(1, 0)
	table.SetTimeoutSlot(1, 0)
	require.Equal(t, 1, table.classes[0].Len())

	_, ok := table.Remove(1)
	require.True(t, ok)
	require.Equal(t, 0, table.classes[0].Len())

	_, ok = table.Lookup(1)
	require.False(t, ok)
}

func TestNextTimeoutEntryFalseWhenNothingAssigned(t *testing.T) {
	table, err := Create[int, int](0.8, 16, false, []int64{5})
	require.NoError(t, err)
	table.Insert(1, 0)

	_, _, ok := table.NextTimeoutEntry()
	require.False(t, ok)
}

func TestDuplicateInsertLeavesTimestampUntouched(t *testing.T) {
	table, err := Create[int, int](0.8, 16, false, []int64{5})
	require.NoError(t, err)

	vp, isNew := table.Insert(1, 10)
	require.True(t, isNew)
	*vp = 1

	vp2, isNew := table.Insert(1, 999)
	require.False(t, isNew)
	require.Equal(t, 1, *vp2)

	_, ok := table.SetTimeoutSlot(1, 0)
	require.True(t, ok)
	k, _, ok := table.classes[0].PeekMin()
	require.True(t, ok)
	require.Equal(t, int64(15), k)
}
