// Package lpht implements a linear-probing, open-addressing hash table with
// backward-shift deletion and stable value addresses: the pointer returned
// by Insert for a given key remains valid, and keeps pointing at that key's
// value, until the key is removed or the table grows.
//
// © 2025 oha authors. MIT License.
package lpht

import (
	"math"
	"unsafe"

	"go.uber.org/zap"

	"github.com/rudimeier/oha/internal/arena"
	"github.com/rudimeier/oha/internal/keyhash"
	"github.com/rudimeier/oha/internal/unsafehelpers"
)

// keySlot is one entry in the table's open-addressing index.
type keySlot[K comparable] struct {
	valueIdx    int32
	probeOffset uint32
	occupied    bool
	key         K
}

// valueSlot is one entry in the parallel value arena. backRef is the
// index of the keySlot currently pointing at this slot; it is kept in
// sync on every swap performed by probify/Remove.
type valueSlot[V any] struct {
	backRef int32
	value   V
}

// Status reports point-in-time occupancy and sizing information, mirroring
// oha_lpht_get_status from the original implementation.
type Status struct {
	MaxElems      int
	ElemsInUse    int
	ValueSlotSize uintptr
}

// LPHT is a generic linear-probing hash table. The zero value is not
// usable; construct with Create.
type LPHT[K comparable, V any] struct {
	keys   []keySlot[K]
	values *arena.Arena[valueSlot[V]]

	m          int // physical slot count (len(keys))
	elems      int
	maxElems   int
	loadFactor float64
	resizable  bool

	draining    bool
	drainCursor int

	logger  *zap.Logger
	metrics metricsSink
}

// Create builds a table sized for maxElems entries at the given load
// factor. loadFactor must lie strictly between 0 and 1; maxElems must be
// positive. When resizable, Insert transparently doubles capacity instead
// of failing once the table is full.
func Create[K comparable, V any](loadFactor float64, maxElems int, resizable bool, opts ...Option) (*LPHT[K, V], error) {
	if loadFactor <= 0.0 || loadFactor >= 1.0 {
		return nil, ErrInvalidLoadFactor
	}
	if maxElems <= 0 {
		return nil, ErrInvalidMaxElems
	}
	cfg := applyOptions(opts)
	t := newTable[K, V](loadFactor, maxElems, resizable, cfg.logger, cfg.metrics)
	t.logger.Info("lpht created", zap.Int("max_elems", maxElems), zap.Float64("load_factor", loadFactor), zap.Bool("resizable", resizable))
	return t, nil
}

func newTable[K comparable, V any](loadFactor float64, maxElems int, resizable bool, logger *zap.Logger, metrics metricsSink) *LPHT[K, V] {
	m := int(math.Ceil((1.0/loadFactor)*float64(maxElems))) + 1
	t := &LPHT[K, V]{
		keys:       make([]keySlot[K], m),
		values:     arena.New[valueSlot[V]](m),
		m:          m,
		maxElems:   maxElems,
		loadFactor: loadFactor,
		resizable:  resizable,
		logger:     logger,
		metrics:    metrics,
	}
	// Every key slot starts wired to the value slot of the same index; a
	// slot's valueIdx is never reassigned to that identity again after
	// being touched by probify/Remove's swaps — it instead keeps
	// whatever value slot last ended up parked there, exactly like the
	// reference implementation's bucket->value field, which is set once
	// at creation and thereafter only ever swapped, never reset.
	for i := 0; i < m; i++ {
		t.keys[i].valueIdx = int32(i)
		t.values.At(i).backRef = int32(i)
	}
	return t
}

func (t *LPHT[K, V]) home(key K) int {
	return int(keyhash.Sum64(key) % uint64(t.m))
}

func (t *LPHT[K, V]) next(i int) int {
	i++
	if i == t.m {
		return 0
	}
	return i
}

func (t *LPHT[K, V]) valuePtr(idx int32) *V {
	return &t.values.At(int(idx)).value
}

// Lookup returns the value pointer associated with key, or (nil, false) if
// key is absent.
func (t *LPHT[K, V]) Lookup(key K) (*V, bool) {
	i := t.home(key)
	for {
		slot := &t.keys[i]
		if !slot.occupied {
			t.metrics.incMiss()
			return nil, false
		}
		if slot.key == key {
			t.metrics.incHit()
			return t.valuePtr(slot.valueIdx), true
		}
		i = t.next(i)
	}
}

// Insert ensures key is present, growing the table first if it is full and
// resizable. The second return value is true iff a new slot was created;
// it is false both on a duplicate-key hit and — preserving the reference
// implementation's behavior — when the table is full and non-resizable,
// even for a key that is already present (capacity is checked before the
// duplicate-key scan, not after).
func (t *LPHT[K, V]) Insert(key K) (*V, bool) {
	if t.elems >= t.maxElems {
		if !t.resizable {
			t.logger.Warn("lpht capacity exhausted", zap.Int("max_elems", t.maxElems))
			return nil, false
		}
		t.grow()
	}

	i := t.home(key)
	var steps uint32
	for {
		slot := &t.keys[i]
		if !slot.occupied {
			slot.key = key
			slot.occupied = true
			slot.probeOffset = steps
			// slot.valueIdx is left as-is: whatever value slot is
			// currently parked at this key slot (its own identity slot,
			// if never touched by a swap, or a residual one left behind
			// by a prior probify/Remove) is the value this entry gets.
			vs := t.values.At(int(slot.valueIdx))
			t.elems++
			t.metrics.incInsert()
			t.metrics.setElems(t.elems)
			return &vs.value, true
		}
		if slot.key == key {
			return t.valuePtr(slot.valueIdx), false
		}
		i = t.next(i)
		steps++
	}
}

// find walks the probe chain for key and returns its slot index.
func (t *LPHT[K, V]) find(key K) (int, bool) {
	i := t.home(key)
	for {
		slot := &t.keys[i]
		if !slot.occupied {
			return 0, false
		}
		if slot.key == key {
			return i, true
		}
		i = t.next(i)
	}
}

func (t *LPHT[K, V]) swapValueRefs(a, b int) {
	t.keys[a].valueIdx, t.keys[b].valueIdx = t.keys[b].valueIdx, t.keys[a].valueIdx
	t.values.At(int(t.keys[a].valueIdx)).backRef = int32(a)
	t.values.At(int(t.keys[b].valueIdx)).backRef = int32(b)
}

// Remove deletes key and returns the value pointer that key was associated
// with, captured before any backward-shift swap — i.e. the pointer
// identifies the original slot the removed entry lived in, not wherever a
// displaced neighbor ends up afterward.
func (t *LPHT[K, V]) Remove(key K) (*V, bool) {
	i, found := t.find(key)
	if !found {
		t.metrics.incMiss()
		return nil, false
	}
	removed := t.valuePtr(t.keys[i].valueIdx)

	startOffset := t.keys[i].probeOffset
	collision := -1
	j := t.next(i)
	var steps uint32 = 1
	for t.keys[j].occupied {
		if t.keys[j].probeOffset == startOffset+steps {
			collision = j
		}
		j = t.next(j)
		steps++
	}

	if collision >= 0 {
		t.keys[i].key = t.keys[collision].key
		t.swapValueRefs(i, collision)
		t.keys[collision].occupied = false
		t.keys[collision].probeOffset = 0
		t.probify(collision)
	} else {
		t.keys[i].occupied = false
		t.keys[i].probeOffset = 0
		t.probify(i)
	}

	t.elems--
	t.metrics.incRemove()
	t.metrics.setElems(t.elems)
	return removed, true
}

// probify restores the no-hole invariant starting from an emptied slot,
// pulling displaced entries backward along their probe chains. Implemented
// iteratively: each outer iteration corresponds to one "recursive" step of
// the original algorithm, with the inner loop scanning forward until it
// either finds an entry that may legally move into start or runs off the
// end of the occupied run.
func (t *LPHT[K, V]) probify(start int) {
	offset := uint32(0)
	for {
		var i uint32
		cur := start
		moved := -1
		for {
			cur = t.next(cur)
			i++
			if !t.keys[cur].occupied {
				return
			}
			if t.keys[cur].probeOffset >= offset+i || t.keys[cur].probeOffset >= i {
				moved = cur
				break
			}
		}

		newOffset := t.keys[moved].probeOffset - i
		t.keys[start].key = t.keys[moved].key
		t.swapValueRefs(start, moved)
		t.keys[start].occupied = true
		t.keys[start].probeOffset = newOffset
		t.keys[moved].occupied = false
		t.keys[moved].probeOffset = 0

		start = moved
		offset = newOffset
	}
}

// GetKeyFromValue recovers the key associated with a value pointer
// previously returned by Insert/Lookup for an entry that is still in the
// table, mirroring oha_lpht_get_key_from_value's offsetof-based reverse
// lookup. The second return value is false for a pointer whose entry has
// been removed or drained (as returned by Remove/NextElementToRemove).
func (t *LPHT[K, V]) GetKeyFromValue(vp *V) (K, bool) {
	var zero K
	slotZero := unsafe.Pointer(&t.values.At(0).value)
	stride := unsafe.Sizeof(valueSlot[V]{})
	idx := unsafehelpers.SlotIndex(slotZero, unsafe.Pointer(vp), stride)
	if idx < 0 || idx >= t.values.Len() {
		return zero, false
	}
	backRef := t.values.At(idx).backRef
	if int(backRef) < 0 || int(backRef) >= t.m {
		return zero, false
	}
	ks := &t.keys[backRef]
	if !ks.occupied || int(ks.valueIdx) != idx {
		return zero, false
	}
	return ks.key, true
}

// Clear enters drain mode: the only way to enumerate entries. After Clear,
// repeated calls to NextElementToRemove walk every occupied slot exactly
// once, removing each as it is yielded.
func (t *LPHT[K, V]) Clear() {
	t.draining = true
	t.drainCursor = 0
}

// NextElementToRemove advances the drain cursor to the next occupied slot,
// removes it, and returns its key and value pointer. The third return
// value is false once every slot has been consumed.
func (t *LPHT[K, V]) NextElementToRemove() (K, *V, bool) {
	var zero K
	for t.drainCursor < t.m {
		idx := t.drainCursor
		t.drainCursor++
		if t.keys[idx].occupied {
			k := t.keys[idx].key
			vp := t.valuePtr(t.keys[idx].valueIdx)
			t.keys[idx].occupied = false
			t.keys[idx].probeOffset = 0
			t.elems--
			t.metrics.setElems(t.elems)
			return k, vp, true
		}
	}
	t.draining = false
	return zero, nil, false
}

// Status reports current occupancy and sizing.
func (t *LPHT[K, V]) Status() Status {
	return Status{
		MaxElems:      t.maxElems,
		ElemsInUse:    t.elems,
		ValueSlotSize: unsafe.Sizeof(valueSlot[V]{}),
	}
}

// grow doubles capacity by building a fresh table, fully draining the
// receiver into it, and adopting the fresh table's storage. If the fresh
// table cannot be constructed, the receiver is left untouched.
func (t *LPHT[K, V]) grow() {
	newMax := t.maxElems * 2
	if newMax <= t.maxElems {
		newMax = t.maxElems + 1
	}
	tmp := newTable[K, V](t.loadFactor, newMax, true, t.logger, noopMetrics{})

	t.Clear()
	for {
		k, vp, ok := t.NextElementToRemove()
		if !ok {
			break
		}
		nvp, _ := tmp.Insert(k)
		*nvp = *vp
	}

	t.keys = tmp.keys
	t.values = tmp.values
	t.m = tmp.m
	t.elems = tmp.elems
	t.maxElems = tmp.maxElems
	t.draining = false
	t.drainCursor = 0

	t.metrics.incGrow()
	t.logger.Info("lpht grown", zap.Int("new_max_elems", newMax))
}
