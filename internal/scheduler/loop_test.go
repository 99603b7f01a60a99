package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/qijinzhi/ovs/internal/flowtable"
)

func TestLoopFiresAndStops(t *testing.T) {
	ctx := NewContext("port0", func() uint64 { return 0 })
	ctx.SendTable.Insert(flowtable.Entry{FlowID: 7, Period: 1000, BaseOffset: 0})
	ctx.Dispatch()
	if err := ctx.Arm(); err != nil {
		t.Fatalf("Arm(): %v", err)
	}

	var fired int64
	loop := NewLoop(ctx, SequentialRunner{}, func(flowID uint32) {
		if flowID != 7 {
			t.Errorf("send callback got flow %d, want 7", flowID)
		}
		atomic.AddInt64(&fired, 1)
	})

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	for i := 0; i < 50 && atomic.LoadInt64(&fired) == 0; i++ {
		time.Sleep(time.Millisecond)
	}
	loop.Stop()

	if err := <-done; err != nil {
		t.Fatalf("Run() returned %v, want nil after Stop", err)
	}
	if atomic.LoadInt64(&fired) == 0 {
		t.Fatalf("expected at least one send callback to fire")
	}
}

func TestLoopStopsWhenDisarmed(t *testing.T) {
	ctx := NewContext("port1", func() uint64 { return 0 })
	ctx.SendTable.Insert(flowtable.Entry{FlowID: 1, Period: 1000, BaseOffset: 0})
	ctx.Dispatch()
	if err := ctx.Arm(); err != nil {
		t.Fatalf("Arm(): %v", err)
	}

	loop := NewLoop(ctx, SequentialRunner{}, func(uint32) {})

	done := make(chan error, 1)
	go func() { done <- loop.Run() }()

	time.Sleep(time.Millisecond)
	ctx.Disarm()

	select {
	case err := <-done:
		if err != ErrNotArmed {
			t.Fatalf("Run() = %v, want ErrNotArmed", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run() did not return after Disarm")
	}
}
