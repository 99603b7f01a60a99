package ctrlmsg

import (
	"bytes"
	"testing"

	"github.com/qijinzhi/ovs/internal/flowtable"
)

func TestDownloadBatchRoundTrip(t *testing.T) {
	batch := DownloadBatch{
		Command: CommandAdd,
		Flows: []FlowMod{
			{Port: 1, EType: EntrySend, FlowID: 1, ScheduledTime: 0, Period: 1000, BufferID: 1, PacketSize: 64},
			{Port: 1, EType: EntryReceive, FlowID: 2, ScheduledTime: 500, Period: 2000, BufferID: 2, PacketSize: 128},
		},
	}

	var buf bytes.Buffer
	if _, err := batch.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	var got DownloadBatch
	if _, err := got.ReadFrom(&buf); err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}

	if got.Command != batch.Command || len(got.Flows) != len(batch.Flows) {
		t.Fatalf("got %+v, want %+v", got, batch)
	}
	for i := range batch.Flows {
		if got.Flows[i] != batch.Flows[i] {
			t.Fatalf("flow %d = %+v, want %+v", i, got.Flows[i], batch.Flows[i])
		}
	}
}

func TestDownloadBatchRejectsTruncatedFraming(t *testing.T) {
	batch := DownloadBatch{Command: CommandAdd, Flows: []FlowMod{{Port: 1, FlowID: 1, Period: 1000}}}

	var buf bytes.Buffer
	if _, err := batch.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	truncated := buf.Bytes()[:buf.Len()-8] // drop the end record
	var got DownloadBatch
	if _, err := got.ReadFrom(bytes.NewReader(truncated)); err == nil {
		t.Fatalf("ReadFrom() = nil error, want an error on truncated framing")
	}
}

func TestDispatcherAppliesFlowMods(t *testing.T) {
	d := NewDispatcher()
	send := flowtable.New("")
	arrive := flowtable.New("")
	d.Register(1, TableSet{Send: send, Arrive: arrive})

	batch := DownloadBatch{
		Command: CommandAdd,
		Flows: []FlowMod{
			{Port: 1, EType: EntrySend, FlowID: 10, Period: 1000, BufferID: 3, PacketSize: 64},
			{Port: 1, EType: EntryReceive, FlowID: 20, Period: 2000, BufferID: 4, PacketSize: 128},
		},
	}

	var buf bytes.Buffer
	if _, err := batch.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if err := d.Dispatch(&buf); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if _, ok := send.Lookup(10); !ok {
		t.Fatalf("expected send table to contain flow 10")
	}
	if _, ok := arrive.Lookup(20); !ok {
		t.Fatalf("expected arrive table to contain flow 20")
	}

	del := DownloadBatch{Command: CommandDelete, Flows: []FlowMod{{Port: 1, EType: EntrySend, FlowID: 10}}}
	buf.Reset()
	if _, err := del.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if err := d.Dispatch(&buf); err != nil {
		t.Fatalf("Dispatch delete: %v", err)
	}
	if _, ok := send.Lookup(10); ok {
		t.Fatalf("expected flow 10 to be deleted")
	}
}

func TestDispatcherUnknownPort(t *testing.T) {
	d := NewDispatcher()
	batch := DownloadBatch{Command: CommandAdd, Flows: []FlowMod{{Port: 9, FlowID: 1, Period: 1000}}}

	var buf bytes.Buffer
	if _, err := batch.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if err := d.Dispatch(&buf); err == nil {
		t.Fatalf("Dispatch() = nil error, want error for unregistered port")
	}
}
