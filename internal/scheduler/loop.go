package scheduler

import "time"

// SendFunc transmits the time-triggered frame belonging to flowID. The
// scheduler itself never touches a packet buffer — that collaborator is
// handed in by the caller (typically wiring shim.PushTT's output to the
// outbound port).
type SendFunc func(flowID uint32)

// Loop drives a Context's NextEvent in a cycle: sleep until the next
// send time, fire the callback through the configured Runner, then
// recompute the following event against the live clock. This is the Go
// shape of tt_schedule_info's hrtimer callback, which re-arms itself
// with get_next_time's wait_time on every fire instead of scheduling
// the whole macro period up front.
type Loop struct {
	ctx    *Context
	runner Runner
	send   SendFunc
	done   chan struct{}
}

// NewLoop creates a Loop over ctx. runner defaults to
// OnDemandRoutineRunner if nil.
func NewLoop(ctx *Context, runner Runner, send SendFunc) *Loop {
	if runner == nil {
		runner = OnDemandRoutineRunner{}
	}
	return &Loop{ctx: ctx, runner: runner, send: send, done: make(chan struct{})}
}

// Run blocks, firing send for each scheduled event, until Stop is
// called or the context's NextEvent fails: ErrNotArmed once the context
// is disarmed, or ErrEmptyPlan after a Dispatch that leaves it with no
// events.
func (l *Loop) Run() error {
	for {
		select {
		case <-l.done:
			return nil
		default:
		}

		_, flowID, sendTime, err := l.ctx.NextEvent()
		if err != nil {
			return err
		}

		timer := time.NewTimer(time.Duration(sendTime))
		select {
		case <-timer.C:
			id := flowID
			l.runner.Run(func() { l.send(id) })
		case <-l.done:
			timer.Stop()
			return nil
		}
	}
}

// Stop ends the loop; a blocked Run call returns nil shortly after.
func (l *Loop) Stop() {
	close(l.done)
}
