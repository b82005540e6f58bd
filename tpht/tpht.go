// Package tpht composes an lpht and a set of bh instances into a table
// that associates every key with one of a small number of timeout
// classes, ordering each class's members by timestamp + class interval
// and exposing the entry closest to timing out.
//
// The original reference implementation leaves every tpht operation but
// Create/Destroy as a literal stub; the behavior here is derived from this
// package's own operation contracts plus the one substantive line Create
// does implement upstream (the per-class heap's value payload is sized to
// hold an lpht key) — see DESIGN.md.
//
// © 2025 oha authors. MIT License.
package tpht

import (
	"errors"
	"math"

	"go.uber.org/zap"

	"github.com/rudimeier/oha/bh"
	"github.com/rudimeier/oha/lpht"
)

// ErrInvalidSlot names the error of a slotID out of range for the table's
// configured timeout classes. SetTimeoutSlot reports that case by returning
// (nil, false); it does not return this error value.
var ErrInvalidSlot = errors.New("tpht: slot id out of range")

// entry is the payload stored in the underlying lpht for every key.
type entry[K comparable, V any] struct {
	value     V
	timestamp int64
	slotID    int // -1 when unassigned to any timeout class
	bhValue   *K  // value pointer inside classes[slotID], valid iff slotID >= 0
}

// TPHT associates keys of type K with values of type V and an assignment
// to one of a fixed set of timeout classes.
type TPHT[K comparable, V any] struct {
	table     *lpht.LPHT[K, entry[K, V]]
	classes   []*bh.BH[K]
	intervals []int64

	logger  *zap.Logger
	metrics metricsSink
}

// Create builds a table whose underlying lpht is sized/configured by
// lphtLoadFactor/lphtMaxElems/lphtResizable, with one timeout class per
// entry in timeoutSlots (each value is that class's interval, added to an
// entry's timestamp to compute its position in the class's heap).
// len(timeoutSlots) must be between 1 and MaxTimeoutSlots.
func Create[K comparable, V any](lphtLoadFactor float64, lphtMaxElems int, lphtResizable bool, timeoutSlots []int64, opts ...Option) (*TPHT[K, V], error) {
	if len(timeoutSlots) == 0 || len(timeoutSlots) > MaxTimeoutSlots {
		return nil, ErrInvalidTimeoutSlots
	}
	cfg := applyOptions(opts)

	table, err := lpht.Create[K, entry[K, V]](lphtLoadFactor, lphtMaxElems, lphtResizable, lpht.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	classes := make([]*bh.BH[K], len(timeoutSlots))
	for i := range timeoutSlots {
		h, err := bh.Create[K](lphtMaxElems, bh.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
		classes[i] = h
	}

	t := &TPHT[K, V]{
		table:     table,
		classes:   classes,
		intervals: append([]int64(nil), timeoutSlots...),
		logger:    cfg.logger,
		metrics:   cfg.metrics,
	}
	t.logger.Info("tpht created", zap.Int("timeout_slots", len(timeoutSlots)))
	return t, nil
}

// Insert ensures key is present with value; on a freshly created entry it
// also records timestamp and leaves the entry unassigned to any timeout
// class. A duplicate key is left untouched, mirroring lpht's own
// duplicate-key semantics.
func (t *TPHT[K, V]) Insert(key K, timestamp int64) (*V, bool) {
	e, isNew := t.table.Insert(key)
	if e == nil {
		return nil, false
	}
	if isNew {
		e.timestamp = timestamp
		e.slotID = -1
		e.bhValue = nil
	}
	return &e.value, isNew
}

// Lookup returns the value associated with key, if present.
func (t *TPHT[K, V]) Lookup(key K) (*V, bool) {
	e, ok := t.table.Lookup(key)
	if !ok {
		return nil, false
	}
	return &e.value, true
}

func (t *TPHT[K, V]) evict(e *entry[K, V]) {
	if e.slotID < 0 {
		return
	}
	c := t.classes[e.slotID]
	c.ChangeKey(e.bhValue, math.MinInt64)
	c.DeleteMin()
	e.slotID = -1
	e.bhValue = nil
}

// Remove deletes key, first removing it from its assigned timeout class
// if any.
func (t *TPHT[K, V]) Remove(key K) (*V, bool) {
	e, ok := t.table.Lookup(key)
	if !ok {
		return nil, false
	}
	t.evict(e)
	removed, ok := t.table.Remove(key)
	if !ok {
		return nil, false
	}
	return &removed.value, true
}

// SetTimeoutSlot (re)assigns key to timeout class slotID, removing it from
// any previous class first. The class's heap key is the entry's current
// timestamp plus that class's configured interval. Fails if key is absent,
// slotID is out of range, or the target class's heap is full.
func (t *TPHT[K, V]) SetTimeoutSlot(key K, slotID int) (*V, bool) {
	if slotID < 0 || slotID >= len(t.classes) {
		t.logger.Warn("tpht invalid timeout slot", zap.Int("slot_id", slotID))
		return nil, false
	}
	e, ok := t.table.Lookup(key)
	if !ok {
		return nil, false
	}
	t.evict(e)

	bv := t.classes[slotID].Insert(e.timestamp + t.intervals[slotID])
	if bv == nil {
		return nil, false
	}
	*bv = key
	e.slotID = slotID
	e.bhValue = bv
	t.metrics.incAssignment()
	return &e.value, true
}

// UpdateTimeForEntry updates key's timestamp and, if it is currently
// assigned to a timeout class, re-orders it within that class's heap.
func (t *TPHT[K, V]) UpdateTimeForEntry(key K, newTimestamp int64) (*V, bool) {
	e, ok := t.table.Lookup(key)
	if !ok {
		return nil, false
	}
	e.timestamp = newTimestamp
	if e.slotID >= 0 {
		t.classes[e.slotID].ChangeKey(e.bhValue, newTimestamp+t.intervals[e.slotID])
	}
	return &e.value, true
}

// NextTimeoutEntry returns the key and value of the entry closest to
// timing out across all timeout classes, without removing it from its
// class. The third return value is false if no entry is currently
// assigned to any class.
func (t *TPHT[K, V]) NextTimeoutEntry() (K, *V, bool) {
	var zero K
	bestClass := -1
	var bestKey int64
	for i, c := range t.classes {
		if k, _, ok := c.PeekMin(); ok {
			if bestClass == -1 || k < bestKey {
				bestClass = i
				bestKey = k
			}
		}
	}
	if bestClass == -1 {
		return zero, nil, false
	}

	_, bv, _ := t.classes[bestClass].PeekMin()
	key := *bv
	e, ok := t.table.Lookup(key)
	if !ok {
		return zero, nil, false
	}
	t.metrics.incExpiration()
	return key, &e.value, true
}
