package ctrlmsg

import (
	"fmt"
	"io"
	"sync"

	"github.com/qijinzhi/ovs/internal/flowtable"
)

// TableSet is the pair of tables a single port's schedule context
// exposes — tt_schedule_info's send_tt_table and arrive_tt_table — that
// a Dispatcher mutates as flow-mod records for that port arrive.
type TableSet struct {
	Send   *flowtable.Table
	Arrive *flowtable.Table
}

func (ts TableSet) apply(command Command, fm FlowMod) error {
	var tbl *flowtable.Table
	switch fm.EType {
	case EntrySend:
		tbl = ts.Send
	case EntryReceive:
		tbl = ts.Arrive
	default:
		return fmt.Errorf("ctrlmsg: unknown entry type %d", fm.EType)
	}

	switch command {
	case CommandAdd:
		tbl.Insert(flowtable.Entry{
			FlowID:     uint32(fm.FlowID),
			BufferID:   fm.BufferID,
			Period:     uint64(fm.Period),
			BaseOffset: uint64(fm.ScheduledTime),
			PacketSize: fm.PacketSize,
		})
		return nil
	case CommandDelete:
		err := tbl.Delete(uint32(fm.FlowID))
		if err == flowtable.ErrNotFound {
			return nil
		}
		return err
	default:
		return fmt.Errorf("ctrlmsg: unknown command %d", command)
	}
}

// Dispatcher routes the flow-mod records of a decoded DownloadBatch to
// the TableSet registered for each record's port, the Go equivalent of
// ofproto/tt.c's tt_table_mod entry point — adapted from the teacher's
// ServeMux/Dispatcher registration pattern in mux.go/dispatch.go, with
// ports in place of OpenFlow message types as the dispatch key.
type Dispatcher struct {
	mu    sync.RWMutex
	ports map[uint8]TableSet
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{ports: make(map[uint8]TableSet)}
}

// Register associates port with the tables its flow-mod records
// mutate. Registering the same port again replaces its TableSet.
func (d *Dispatcher) Register(port uint8, ts TableSet) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ports[port] = ts
}

func (d *Dispatcher) lookup(port uint8) (TableSet, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ts, ok := d.ports[port]
	return ts, ok
}

// Dispatch decodes a DownloadBatch from r and applies each of its
// flow-mod records to the registered TableSet for that record's port.
func (d *Dispatcher) Dispatch(r io.Reader) error {
	var batch DownloadBatch
	if _, err := batch.ReadFrom(r); err != nil {
		return err
	}

	for _, fm := range batch.Flows {
		ts, ok := d.lookup(fm.Port)
		if !ok {
			return fmt.Errorf("ctrlmsg: no table registered for port %d", fm.Port)
		}
		if err := ts.apply(batch.Command, fm); err != nil {
			return err
		}
	}

	return nil
}
