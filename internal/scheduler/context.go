package scheduler

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qijinzhi/ovs/internal/flowtable"
)

// State is the Schedule Context's lifecycle, carried over from tt.h's
// tt_schedule_info but made explicit: a context starts Empty, gains a
// Plan once Dispatch runs (Planned), and starts driving a timer loop
// once Arm is called (Armed). Dispatching again at any point rebuilds
// the plan without changing the state: an Armed context stays Armed and
// its next NextEvent call uses the new plan.
type State int

const (
	// StateEmpty is a context with no plan: NextEvent is not callable.
	StateEmpty State = iota
	// StatePlanned has a current Plan but no running timer loop.
	StatePlanned
	// StateArmed has a current Plan and a running timer loop.
	StateArmed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePlanned:
		return "planned"
	case StateArmed:
		return "armed"
	default:
		return "unknown"
	}
}

// Context is the per-port scheduling state: the arrive and send flow
// tables (tt_schedule_info.arrive_tt_table / send_tt_table), the
// edge-vport flag, and the current send Plan.
type Context struct {
	mu sync.Mutex

	// ArriveTable holds the receive-side flow parameters (buffer id,
	// packet size) an egress collaborator looks up by flow id when a
	// time-triggered frame arrives. Dispatch never reads it; it exists
	// because tt_schedule_info carries it alongside send_tt_table.
	ArriveTable *flowtable.Table
	SendTable   *flowtable.Table

	// EdgePort marks a port that also carries TRDP-to-TT shim
	// conversion duties, tt.h's is_edge_vport.
	EdgePort bool

	clock Clock
	state State
	plan  *Plan

	macroPeriodGauge prometheus.Gauge
	planSizeGauge    prometheus.Gauge
	dispatchLatency  prometheus.Histogram
}

// NewContext creates an empty Context for the port named name. clock
// defaults to Now if nil.
func NewContext(name string, clock Clock) *Context {
	if clock == nil {
		clock = Now
	}

	return &Context{
		ArriveTable: flowtable.New(name + ".arrive"),
		SendTable:   flowtable.New(name + ".send"),
		clock:       clock,
		state:       StateEmpty,

		macroPeriodGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ttsw",
			Subsystem:   "scheduler",
			Name:        "macro_period_ns",
			Help:        "Current macro period of the dispatched send plan, in nanoseconds.",
			ConstLabels: prometheus.Labels{"port": name},
		}),
		planSizeGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ttsw",
			Subsystem:   "scheduler",
			Name:        "plan_events",
			Help:        "Number of transmission events in the current send plan.",
			ConstLabels: prometheus.Labels{"port": name},
		}),
		dispatchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "ttsw",
			Subsystem:   "scheduler",
			Name:        "dispatch_seconds",
			Help:        "Time spent building a send plan in Dispatch.",
			ConstLabels: prometheus.Labels{"port": name},
			Buckets:     prometheus.DefBuckets,
		}),
	}
}

// Collectors returns the context's Prometheus collectors, for
// registration by the caller.
func (c *Context) Collectors() []prometheus.Collector {
	return []prometheus.Collector{c.macroPeriodGauge, c.planSizeGauge, c.dispatchLatency}
}

// State returns the context's current lifecycle state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch rebuilds the send plan from the current contents of
// SendTable, the Go equivalent of calling dispatch(vport). It may be
// called from any state, including Armed — a running timer loop picks
// up the new plan on its next NextEvent call.
func (c *Context) Dispatch() {
	start := time.Now()

	entries := c.SendTable.Entries()
	flows := make([]Flow, len(entries))
	for i, e := range entries {
		flows[i] = Flow{FlowID: e.FlowID, Period: e.Period, BaseOffset: e.BaseOffset}
	}
	plan := Dispatch(flows)

	c.mu.Lock()
	c.plan = plan
	if c.state == StateEmpty {
		c.state = StatePlanned
	}
	c.mu.Unlock()

	c.dispatchLatency.Observe(time.Since(start).Seconds())
	c.macroPeriodGauge.Set(float64(plan.MacroPeriod))
	c.planSizeGauge.Set(float64(len(plan.SendTimes)))
}

// Arm transitions a Planned context to Armed, allowing NextEvent calls
// to proceed. It fails if Dispatch has not run yet.
func (c *Context) Arm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateEmpty {
		return ErrNotArmed
	}
	c.state = StateArmed
	return nil
}

// Disarm transitions back to Planned, stopping NextEvent calls without
// discarding the current plan.
func (c *Context) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateArmed {
		c.state = StatePlanned
	}
}

// NextEvent reports the next scheduled transmission relative to the
// clock's current reading, the Go equivalent of get_next_time. It
// requires the context to be Armed.
func (c *Context) NextEvent() (waitTime uint64, flowID uint32, sendTime uint64, err error) {
	c.mu.Lock()
	plan, state := c.plan, c.state
	c.mu.Unlock()

	if state != StateArmed {
		return 0, 0, 0, ErrNotArmed
	}

	return plan.NextEvent(c.clock())
}
