// Package flowtable implements the per-port time-triggered flow table: a
// dense, flow-id-indexed table of schedule parameters published for
// lock-free concurrent reads while a single writer inserts and deletes
// entries.
//
// The table is grounded on datapath/tt.c's tt_table_* family: growth
// reallocates to flow_id+TableMin, shrink happens once occupancy falls
// to a third of capacity, and a deleted or displaced entry is only
// freed once no reader can still observe it. The kernel module achieves
// that with RCU grace periods; here the equivalent is an
// atomic.Pointer[table] publish — a reader that has already loaded the
// pointer holds an ordinary Go reference to the old table, so the
// garbage collector cannot reclaim it (or the entries it solely
// referenced) until that reader is done with it.
package flowtable

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// TableMin is the minimum capacity a table is allocated or shrunk to,
// matching TT_TABLE_SIZE_MIN in tt.h.
const TableMin = 16

// ErrNotFound is returned by Delete when flowID names no entry.
var ErrNotFound = errors.New("flowtable: flow id not found")

// Entry holds the schedule parameters for one time-triggered flow, the
// Go shape of struct tt_table_item.
type Entry struct {
	FlowID     uint32
	BufferID   uint32
	Period     uint64 // nanoseconds
	BaseOffset uint64 // nanoseconds
	PacketSize uint32
}

// table is the immutable snapshot published through Table.cur. Every
// mutation builds a new table value rather than editing this one in
// place, so any reader holding a *table is guaranteed a torn-free view.
type table struct {
	items []*Entry // indexed by flow id, nil where absent
	count uint32
}

// Table is a concurrent flow table: any number of readers may call
// Lookup/NumItems concurrently with a single writer calling
// Insert/Delete. Readers never block and never observe a partially
// updated table.
type Table struct {
	cur atomic.Pointer[table]
	mu  sync.Mutex // serializes writers; readers never take it

	countGauge prometheus.Gauge
	maxGauge   prometheus.Gauge
}

// New creates an empty table with capacity TableMin. name labels the
// table's Prometheus gauges (typically the switch port name) and may be
// empty to run without metrics registration.
func New(name string) *Table {
	t := &Table{}
	t.cur.Store(&table{items: make([]*Entry, TableMin)})

	t.countGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "ttsw",
		Subsystem:   "flowtable",
		Name:        "entries",
		Help:        "Number of active time-triggered flow entries.",
		ConstLabels: prometheus.Labels{"port": name},
	})
	t.maxGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   "ttsw",
		Subsystem:   "flowtable",
		Name:        "capacity",
		Help:        "Allocated capacity of the flow table.",
		ConstLabels: prometheus.Labels{"port": name},
	})
	t.countGauge.Set(0)
	t.maxGauge.Set(TableMin)

	return t
}

// Collectors returns the table's Prometheus collectors, for registration
// by the caller (a *Table never registers itself against the default
// registry).
func (t *Table) Collectors() []prometheus.Collector {
	return []prometheus.Collector{t.countGauge, t.maxGauge}
}

// Lookup returns the entry for flowID and reports whether it exists.
// Lookup never blocks on a concurrent Insert or Delete.
func (t *Table) Lookup(flowID uint32) (Entry, bool) {
	snap := t.cur.Load()
	if int(flowID) >= len(snap.items) {
		return Entry{}, false
	}

	item := snap.items[flowID]
	if item == nil {
		return Entry{}, false
	}
	return *item, true
}

// NumItems returns the number of active entries, matching
// tt_table_num_items.
func (t *Table) NumItems() uint32 {
	return t.cur.Load().count
}

// Max returns the table's current allocated capacity.
func (t *Table) Max() uint32 {
	return uint32(len(t.cur.Load().items))
}

// Entries returns a snapshot of every active entry, in ascending flow-id
// order, the input the scheduler's dispatch walk needs in place of tt.c
// looping directly over send_table->tt_items.
func (t *Table) Entries() []Entry {
	snap := t.cur.Load()
	out := make([]Entry, 0, snap.count)
	for _, item := range snap.items {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

// Insert adds or replaces the entry for e.FlowID, growing the table if
// flow id falls outside the current capacity. Growth reallocates to
// FlowID+TableMin entries, matching tt_table_insert_item.
func (t *Table) Insert(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.cur.Load()
	next := old

	if int(e.FlowID) >= len(old.items) {
		next = grow(old, e.FlowID+TableMin)
	} else {
		next = &table{items: append([]*Entry(nil), old.items...), count: old.count}
	}

	item := e
	if next.items[e.FlowID] == nil {
		next.count++
	}
	next.items[e.FlowID] = &item

	t.cur.Store(next)
	t.countGauge.Set(float64(next.count))
	t.maxGauge.Set(float64(len(next.items)))
}

// Delete removes the entry for flowID, shrinking the table to half its
// capacity once occupancy falls to a third of it or below — matching
// tt_table_delete_item's policy. Unlike the original C, the shrunk
// capacity is never allowed to truncate an entry that is still in use:
// tt_table_realloc's loop writes into the new, smaller array using the
// old array's indices, which overruns the new allocation whenever a
// surviving entry's flow id is itself >= the shrunk capacity. That is
// safe here only because shrink is skipped in that case.
func (t *Table) Delete(flowID uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	old := t.cur.Load()
	if int(flowID) >= len(old.items) || old.items[flowID] == nil {
		return ErrNotFound
	}

	next := &table{items: append([]*Entry(nil), old.items...), count: old.count - 1}
	next.items[flowID] = nil

	if shrunk, ok := maybeShrink(next); ok {
		next = shrunk
	}

	t.cur.Store(next)
	t.countGauge.Set(float64(next.count))
	t.maxGauge.Set(float64(len(next.items)))
	return nil
}

// grow reallocates old to hold at least size entries, preserving every
// existing entry's slot.
func grow(old *table, size uint32) *table {
	if size < TableMin {
		size = TableMin
	}

	next := &table{items: make([]*Entry, size)}
	if old != nil {
		copy(next.items, old.items)
		next.count = old.count
	}
	return next
}

// maybeShrink halves t's capacity when occupancy has fallen to a third
// of it, provided every remaining entry still fits in the smaller
// array.
func maybeShrink(t *table) (*table, bool) {
	max := uint32(len(t.items))
	if max < TableMin*2 || t.count > max/3 {
		return nil, false
	}

	newMax := max / 2
	for flowID, item := range t.items {
		if item != nil && uint32(flowID) >= newMax {
			return nil, false
		}
	}

	shrunk := &table{items: make([]*Entry, newMax), count: t.count}
	copy(shrunk.items, t.items[:newMax])
	return shrunk, true
}
