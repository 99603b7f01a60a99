// Package scheduler computes and queries the time-triggered send plan
// for a port: the macro period over which every flow's period divides
// evenly, the sorted sequence of (send_time, flow_id) events within
// that period, and the next-event lookup a timer loop drives off of.
//
// The algorithm is grounded on datapath/tt.c's dispatch, binarySearch
// and get_next_time. Two latent bugs in that C code are deliberately
// not reproduced here: dispatching an empty table computes size - 1 on
// an unsigned size of 0, which wraps and would walk off the end of the
// (non-existent) arrays; and sort is never called at all when size is
// 0 in a way that's safe in C only by accident. Both are replaced with
// an explicit empty Plan.
package scheduler

import "sort"

// Flow is the subset of a flow table entry the dispatch walk needs:
// a flow id, its period, and the base offset within the period its
// first transmission falls on.
type Flow struct {
	FlowID     uint32
	Period     uint64 // nanoseconds, must be > 0
	BaseOffset uint64 // nanoseconds, 0 <= BaseOffset < Period
}

// Plan is the sorted transmission schedule built by Dispatch: every
// (SendTimes[i], FlowIDs[i]) pair is one transmission within
// [0, MacroPeriod), ascending by send time.
type Plan struct {
	MacroPeriod uint64
	SendTimes   []uint64
	FlowIDs     []uint32
}

// Empty reports whether the plan carries no events, the case a table
// with no flows dispatches to.
func (p *Plan) Empty() bool {
	return len(p.SendTimes) == 0
}

// Dispatch builds the send plan for flows, the Go equivalent of
// dispatch(): the macro period is the LCM of every flow's period, and
// each flow contributes one event per multiple of its period that
// falls inside the macro period, starting from its base offset.
func Dispatch(flows []Flow) *Plan {
	macroPeriod := uint64(1)
	for _, f := range flows {
		macroPeriod = lcm(macroPeriod, f.Period)
	}

	var sendTimes []uint64
	var flowIDs []uint32
	for _, f := range flows {
		for offset := f.BaseOffset; offset < macroPeriod; offset += f.Period {
			sendTimes = append(sendTimes, offset)
			flowIDs = append(flowIDs, f.FlowID)
		}
	}

	sortPlan(sendTimes, flowIDs)

	return &Plan{MacroPeriod: macroPeriod, SendTimes: sendTimes, FlowIDs: flowIDs}
}

// sortPlan orders events ascending by send time, breaking ties by flow
// id. tt.c's quicksort leaves same-send-time ties in whatever order the
// pivot partitioning happens to produce; breaking ties deterministically
// by flow id instead makes Dispatch's output reproducible across calls
// with the same input, which the original's recursive partitioning
// cannot promise.
func sortPlan(sendTimes []uint64, flowIDs []uint32) {
	idx := make([]int, len(sendTimes))
	for i := range idx {
		idx[i] = i
	}

	sort.Slice(idx, func(i, j int) bool {
		a, b := idx[i], idx[j]
		if sendTimes[a] != sendTimes[b] {
			return sendTimes[a] < sendTimes[b]
		}
		return flowIDs[a] < flowIDs[b]
	})

	sortedTimes := make([]uint64, len(sendTimes))
	sortedFlows := make([]uint32, len(flowIDs))
	for i, j := range idx {
		sortedTimes[i] = sendTimes[j]
		sortedFlows[i] = flowIDs[j]
	}
	copy(sendTimes, sortedTimes)
	copy(flowIDs, sortedFlows)
}

// NextEvent returns the next scheduled transmission after curTime: the
// flow to send, how long from now its send time falls (sendTime), and
// how long after that the event following it falls (waitTime) — the Go
// equivalent of get_next_time built on binarySearch.
func (p *Plan) NextEvent(curTime uint64) (waitTime uint64, flowID uint32, sendTime uint64, err error) {
	if p.Empty() {
		return 0, 0, 0, ErrEmptyPlan
	}

	modTime := curTime % p.MacroPeriod
	idx := p.search(modTime)
	nextIdx := (idx + 1) % len(p.SendTimes)

	flowID = p.FlowIDs[idx]

	if nextIdx == 0 {
		waitTime = p.SendTimes[nextIdx] + p.MacroPeriod - p.SendTimes[idx]
	} else {
		waitTime = p.SendTimes[nextIdx] - p.SendTimes[idx]
	}

	if modTime > p.SendTimes[idx] {
		sendTime = p.MacroPeriod - modTime + p.SendTimes[idx]
	} else {
		sendTime = p.SendTimes[idx] - modTime
	}

	return waitTime, flowID, sendTime, nil
}

// search returns the index of the first event strictly after modTime,
// wrapping to 0 when no event falls after modTime — binarySearch
// translated directly, including its final `% size` wrap.
func (p *Plan) search(modTime uint64) int {
	left, right := 0, len(p.SendTimes)

	for left < right {
		mid := left + (right-left)/2
		if p.SendTimes[mid] <= modTime {
			left = mid + 1
		} else {
			right = mid
		}
	}

	return left % len(p.SendTimes)
}

// gcd is Euclid's algorithm, the iterative shape of tt.c's recursive
// gcd (Go has no tail-call elimination guarantee, so the loop avoids
// unbounded recursion for pathological period sets).
func gcd(a, b uint64) uint64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// lcm is the least common multiple of a and b, matching tt.c's lcm.
func lcm(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	return a / gcd(a, b) * b
}
