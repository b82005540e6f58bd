package bh

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateRejectsInvalidConfig(t *testing.T) {
	_, err := Create[int](0)
	require.ErrorIs(t, err, ErrInvalidMaxElems)
}

func TestInsertFindMinDeleteMinBasic(t *testing.T) {
	h, err := Create[string](4)
	require.NoError(t, err)

	vp := h.Insert(5)
	*vp = "five"
	vp = h.Insert(1)
	*vp = "one"
	vp = h.Insert(3)
	*vp = "three"

	require.Equal(t, int64(1), h.FindMin())
	require.Equal(t, "one", *h.DeleteMin())
	require.Equal(t, int64(3), h.FindMin())
	require.Equal(t, "three", *h.DeleteMin())
	require.Equal(t, "five", *h.DeleteMin())
	require.Equal(t, int64(0), h.FindMin())
	require.Nil(t, h.DeleteMin())
}

// Scenario 5: a large random sequence of keys extracted via repeated
// FindMin/DeleteMin comes out in non-decreasing order, matching sort().
func TestExtractionOrderMatchesSort(t *testing.T) {
	const n = 100000
	h, err := Create[int](n)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(42))
	keys := make([]int64, n)
	for i := range keys {
		k := rng.Int63n(1 << 40)
		keys[i] = k
		vp := h.Insert(k)
		*vp = i
	}

	sorted := append([]int64(nil), keys...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for i := 0; i < n; i++ {
		require.Equal(t, sorted[i], h.FindMin())
		vp := h.DeleteMin()
		require.NotNil(t, vp)
	}
}

// Scenario 6: change_key moves an entry's pointer identity correctly
// through decrease-key operations; DeleteMin always returns the pointer
// originally assigned to that key by Insert.
func TestChangeKeyDecreaseAndPointerStability(t *testing.T) {
	h, err := Create[int](5)
	require.NoError(t, err)

	ptrs := make([]*int, 6)
	for i := 1; i <= 5; i++ {
		p := h.Insert(int64(i))
		*p = i
		ptrs[i] = p
	}

	h.ChangeKey(ptrs[3], 0)
	require.Equal(t, int64(0), h.FindMin())
	require.Same(t, ptrs[3], h.DeleteMin())

	h.ChangeKey(ptrs[5], 1)
	require.Equal(t, int64(1), h.FindMin())
	require.Same(t, ptrs[5], h.DeleteMin())

	// Remaining keys 1, 2, 4 pop in order.
	require.Same(t, ptrs[1], h.DeleteMin())
	require.Same(t, ptrs[2], h.DeleteMin())
	require.Same(t, ptrs[4], h.DeleteMin())
}

// Scenario 7: increase-key exercises the previously-buggy sift-down path;
// a single increase of the smallest key to a value larger than everything
// else results in it popping last, with every other entry popping in
// order ahead of it — this would desynchronize under the original's
// left(index) bug.
func TestChangeKeyIncreaseSiftDownCorrectness(t *testing.T) {
	const n = 80
	h, err := Create[int](n)
	require.NoError(t, err)

	ptrs := make([]*int, n+1)
	for i := 1; i <= n; i++ {
		p := h.Insert(int64(i))
		*p = i
		ptrs[i] = p
	}

	h.ChangeKey(ptrs[1], 100)

	for i := 2; i <= n; i++ {
		vp := h.DeleteMin()
		require.Same(t, ptrs[i], vp, "expected key %d's pointer at extraction step %d", i, i-1)
	}
	last := h.DeleteMin()
	require.Same(t, ptrs[1], last)
	require.Nil(t, h.DeleteMin())
}

func TestPeekMinDoesNotRemove(t *testing.T) {
	h, err := Create[int](3)
	require.NoError(t, err)
	h.Insert(9)
	h.Insert(2)

	k, vp, ok := h.PeekMin()
	require.True(t, ok)
	require.Equal(t, int64(2), k)
	require.NotNil(t, vp)
	require.Equal(t, 2, h.Len())

	require.Equal(t, int64(2), h.FindMin())
}

func TestChangeKeyPanicsOnForeignPointer(t *testing.T) {
	h1, _ := Create[int](4)
	h2, _ := Create[int](4)
	h1.Insert(1)
	foreign := h2.Insert(2)

	require.Panics(t, func() {
		h1.ChangeKey(foreign, 5)
	})
}

// Property test: heap order and back-reference consistency hold after a
// long random sequence of Insert/DeleteMin/ChangeKey.
func TestHeapInvariants(t *testing.T) {
	const maxElems = 150
	h, err := Create[int](maxElems)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		switch rng.Intn(3) {
		case 0:
			if h.Len() < maxElems {
				k := rng.Int63n(1000)
				p := h.Insert(k)
				*p = int(k)
			}
		case 1:
			if h.Len() > 0 {
				h.DeleteMin()
			}
		case 2:
			if h.Len() > 0 {
				idx := rng.Intn(h.Len())
				newKey := rng.Int63n(1000)
				h.ChangeKey(h.valuePtrAt(idx), newKey)
			}
		}

		for j := 1; j < h.Len(); j++ {
			require.LessOrEqual(t, h.keys[parent(j)].key, h.keys[j].key)
		}
		for j := 0; j < h.Len(); j++ {
			require.Equal(t, int32(j), h.values.At(int(h.keys[j].valueIdx)).backRef)
		}
	}
}
