package scheduler

import "testing"

func TestDispatchSingleFlow(t *testing.T) {
	plan := Dispatch([]Flow{{FlowID: 1, Period: 1000, BaseOffset: 0}})

	if plan.MacroPeriod != 1000 {
		t.Fatalf("MacroPeriod = %d, want 1000", plan.MacroPeriod)
	}
	if len(plan.SendTimes) != 1 || plan.SendTimes[0] != 0 || plan.FlowIDs[0] != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestDispatchTwoFlowsLCM(t *testing.T) {
	flows := []Flow{
		{FlowID: 1, Period: 1000, BaseOffset: 0},
		{FlowID: 2, Period: 1500, BaseOffset: 750},
	}
	plan := Dispatch(flows)

	if plan.MacroPeriod != 3000 {
		t.Fatalf("MacroPeriod = %d, want 3000", plan.MacroPeriod)
	}

	wantTimes := []uint64{0, 750, 1000, 2000, 2250}
	wantFlows := []uint32{1, 2, 1, 1, 2}

	if len(plan.SendTimes) != len(wantTimes) {
		t.Fatalf("len(SendTimes) = %d, want %d: %+v", len(plan.SendTimes), len(wantTimes), plan)
	}
	for i := range wantTimes {
		if plan.SendTimes[i] != wantTimes[i] || plan.FlowIDs[i] != wantFlows[i] {
			t.Fatalf("event %d = (%d, flow %d), want (%d, flow %d)",
				i, plan.SendTimes[i], plan.FlowIDs[i], wantTimes[i], wantFlows[i])
		}
	}
}

func TestDispatchBreaksTiesByFlowID(t *testing.T) {
	flows := []Flow{
		{FlowID: 5, Period: 2000, BaseOffset: 0},
		{FlowID: 2, Period: 1000, BaseOffset: 0},
	}
	plan := Dispatch(flows)

	if plan.MacroPeriod != 2000 {
		t.Fatalf("MacroPeriod = %d, want 2000", plan.MacroPeriod)
	}
	// Both flows fire at t=0; flow 2 must sort before flow 5.
	if plan.SendTimes[0] != 0 || plan.FlowIDs[0] != 2 {
		t.Fatalf("first event = (%d, flow %d), want (0, flow 2)", plan.SendTimes[0], plan.FlowIDs[0])
	}
	if plan.SendTimes[1] != 0 || plan.FlowIDs[1] != 5 {
		t.Fatalf("second event = (%d, flow %d), want (0, flow 5)", plan.SendTimes[1], plan.FlowIDs[1])
	}
}

func TestDispatchEmptyTable(t *testing.T) {
	plan := Dispatch(nil)

	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
	if _, _, _, err := plan.NextEvent(0); err != ErrEmptyPlan {
		t.Fatalf("NextEvent() = %v, want ErrEmptyPlan", err)
	}
}

func TestNextEventMidCycle(t *testing.T) {
	plan := Dispatch([]Flow{
		{FlowID: 1, Period: 1000, BaseOffset: 0},
		{FlowID: 2, Period: 1500, BaseOffset: 750},
	})

	// At t=800, just after flow 2's event at t=750, the next event is
	// flow 1 at t=1000 (200ns away), followed by flow 1 again at t=2000
	// (1000ns after that).
	wait, flowID, sendTime, err := plan.NextEvent(800)
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if flowID != 1 || sendTime != 200 || wait != 1000 {
		t.Fatalf("NextEvent(800) = (wait=%d, flow=%d, send=%d), want (1000, 1, 200)", wait, flowID, sendTime)
	}
}

func TestNextEventWrapsAcrossMacroPeriod(t *testing.T) {
	plan := Dispatch([]Flow{{FlowID: 1, Period: 1000, BaseOffset: 0}})

	// Immediately after the only event in a single-flow cycle, the next
	// one is a full period later, wrapping around the macro period.
	wait, flowID, sendTime, err := plan.NextEvent(1)
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if flowID != 1 || sendTime != 999 || wait != 1000 {
		t.Fatalf("NextEvent(1) = (wait=%d, flow=%d, send=%d), want (1000, 1, 999)", wait, flowID, sendTime)
	}
}

func TestNextEventAtExactSendTime(t *testing.T) {
	plan := Dispatch([]Flow{
		{FlowID: 1, Period: 1000, BaseOffset: 0},
		{FlowID: 2, Period: 2000, BaseOffset: 500},
	})
	// events: (0, flow1), (500, flow2), (1000, flow1); macro period 2000.

	// At t=1000 exactly, binarySearch's `<=` condition counts the event
	// at 1000 as already sent, so the next upcoming event is flow 1's
	// own occurrence one macro period later (at t=2000), 1000ns away.
	_, flowID, sendTime, err := plan.NextEvent(1000)
	if err != nil {
		t.Fatalf("NextEvent: %v", err)
	}
	if flowID != 1 || sendTime != 1000 {
		t.Fatalf("NextEvent(1000) = (flow=%d, send=%d), want (flow=1, send=1000)", flowID, sendTime)
	}
}

func TestGCDAndLCM(t *testing.T) {
	if got := gcd(12, 18); got != 6 {
		t.Fatalf("gcd(12,18) = %d, want 6", got)
	}
	if got := lcm(4, 6); got != 12 {
		t.Fatalf("lcm(4,6) = %d, want 12", got)
	}
}
