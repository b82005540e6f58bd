// Package bh implements a fixed-capacity, array-backed binary min-heap
// whose values have stable addresses: the pointer returned by Insert for a
// given entry remains valid — and keeps referring to that same entry —
// until DeleteMin pops it, regardless of how many sift-up/sift-down swaps
// relocate the entry within the heap array in the meantime.
//
// © 2025 oha authors. MIT License.
package bh

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"

	"github.com/rudimeier/oha/internal/arena"
	"github.com/rudimeier/oha/internal/unsafehelpers"
)

// heapSlot is one position in the heap array.
type heapSlot struct {
	key      int64
	valueIdx int32
}

// valueSlot is one entry in the parallel value arena. backRef is the heap
// position currently holding this value's (key, valueIdx) pair.
type valueSlot[V any] struct {
	backRef int32
	value   V
}

// BH is a generic fixed-capacity binary min-heap. The zero value is not
// usable; construct with Create.
type BH[V any] struct {
	keys   []heapSlot
	values *arena.Arena[valueSlot[V]]

	elems    int
	maxElems int

	logger  *zap.Logger
	metrics metricsSink
}

// Create allocates a heap with room for exactly maxElems entries.
func Create[V any](maxElems int, opts ...Option) (*BH[V], error) {
	if maxElems <= 0 {
		return nil, ErrInvalidMaxElems
	}
	cfg := applyOptions(opts)

	h := &BH[V]{
		keys:     make([]heapSlot, maxElems),
		values:   arena.New[valueSlot[V]](maxElems),
		maxElems: maxElems,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
	}
	for i := 0; i < maxElems; i++ {
		h.keys[i].valueIdx = int32(i)
		h.values.At(i).backRef = int32(i)
	}
	h.logger.Info("bh created", zap.Int("max_elems", maxElems))
	return h, nil
}

func parent(i int) int { return (i - 1) / 2 }
func left(i int) int   { return 2*i + 1 }
func right(i int) int  { return 2*i + 2 }

func (h *BH[V]) valuePtrAt(i int) *V {
	return &h.values.At(int(h.keys[i].valueIdx)).value
}

func (h *BH[V]) swap(a, b int) {
	h.keys[a].key, h.keys[b].key = h.keys[b].key, h.keys[a].key
	h.keys[a].valueIdx, h.keys[b].valueIdx = h.keys[b].valueIdx, h.keys[a].valueIdx
	h.values.At(int(h.keys[a].valueIdx)).backRef = int32(a)
	h.values.At(int(h.keys[b].valueIdx)).backRef = int32(b)
}

func (h *BH[V]) heapifyUp(i int) {
	for i != 0 {
		p := parent(i)
		if h.keys[p].key <= h.keys[i].key {
			return
		}
		h.swap(p, i)
		i = p
	}
}

// heapifyDown is the single sift-down routine shared by DeleteMin and
// ChangeKey's increase-key path. Ties favor the left child.
func (h *BH[V]) heapifyDown(i int) {
	for {
		l, r := left(i), right(i)
		smallest := i
		if l < h.elems && h.keys[l].key < h.keys[smallest].key {
			smallest = l
		}
		if r < h.elems && h.keys[r].key < h.keys[smallest].key {
			smallest = r
		}
		if smallest == i {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// Insert places key into the heap and returns a pointer to its value slot,
// ready for the caller to populate. Returns nil when the heap is full. The
// returned pointer identifies this entry for the rest of its lifetime,
// independent of later sift operations moving the (key, valueIdx) pair to
// other heap positions.
func (h *BH[V]) Insert(key int64) *V {
	if h.elems >= h.maxElems {
		h.logger.Warn("bh capacity exhausted", zap.Int("max_elems", h.maxElems))
		return nil
	}
	i := h.elems
	h.elems++
	h.keys[i].key = key
	vp := h.valuePtrAt(i)
	h.heapifyUp(i)
	h.metrics.incInsert()
	h.metrics.setElems(h.elems)
	return vp
}

// FindMin returns the smallest key in the heap, or 0 if the heap is empty.
// Because 0 is also a legal key, callers that need to distinguish "empty"
// from "minimum key is 0" should use PeekMin or Len instead.
func (h *BH[V]) FindMin() int64 {
	if h.elems == 0 {
		return 0
	}
	return h.keys[0].key
}

// PeekMin returns the minimum key and its value pointer without removing
// it. The third return value is false on an empty heap.
func (h *BH[V]) PeekMin() (int64, *V, bool) {
	if h.elems == 0 {
		return 0, nil, false
	}
	return h.keys[0].key, h.valuePtrAt(0), true
}

// DeleteMin removes and returns the value pointer of the minimum entry, or
// nil if the heap is empty. The pointer remains readable until a future
// Insert reuses its slot.
func (h *BH[V]) DeleteMin() *V {
	if h.elems == 0 {
		return nil
	}
	last := h.elems - 1
	h.swap(0, last)
	h.elems--
	vp := h.valuePtrAt(h.elems)
	h.heapifyDown(0)
	h.metrics.incDelete()
	h.metrics.setElems(h.elems)
	return vp
}

// Len reports the number of entries currently in the heap.
func (h *BH[V]) Len() int {
	return h.elems
}

// ChangeKey updates the key of the entry identified by valuePtr (a pointer
// previously returned by Insert or PeekMin for an entry that is still in
// the heap, i.e. not yet popped by DeleteMin) and restores the heap
// invariant, sifting up on a decrease and down on an increase. A decreased
// key also moves above parents holding an equal key, so the changed entry
// is popped first among entries sharing its key. It panics if valuePtr was
// not produced by this heap — an invalid pointer here is a programmer
// error, not a recoverable failure.
func (h *BH[V]) ChangeKey(valuePtr *V, newKey int64) int64 {
	slotZero := unsafe.Pointer(&h.values.At(0).value)
	stride := unsafe.Sizeof(valueSlot[V]{})
	idx := unsafehelpers.SlotIndex(slotZero, unsafe.Pointer(valuePtr), stride)
	if idx < 0 || idx >= h.values.Len() {
		panic("bh: ChangeKey called with a pointer not produced by this heap")
	}
	pos := int(h.values.At(idx).backRef)
	if pos < 0 || pos >= h.maxElems || int(h.keys[pos].valueIdx) != idx {
		panic(fmt.Sprintf("bh: ChangeKey pointer/slot inconsistency at value index %d", idx))
	}

	oldKey := h.keys[pos].key
	h.keys[pos].key = newKey
	switch {
	case newKey < oldKey:
		for pos != 0 && h.keys[parent(pos)].key >= newKey {
			h.swap(parent(pos), pos)
			pos = parent(pos)
		}
	case newKey > oldKey:
		h.heapifyDown(pos)
	}
	h.metrics.incChangeKey()
	return newKey
}
