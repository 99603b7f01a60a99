package scheduler

import "time"

// Clock reports the current time as nanoseconds on whatever clock base
// the flow table's BaseOffset/Period values are themselves expressed
// against (global_time_read in tt.c — a clock the time-triggered
// network has already synchronized, out of scope for this package per
// the Non-goals).
type Clock func() uint64

// Now is the default Clock, the package-level injection point tests
// replace to drive deterministic scenarios — the same shape
// etalazz-vsa/plugin/tfd/types.go uses for its `var Now = func()
// time.Time { return time.Now() }`.
var Now Clock = func() uint64 {
	return uint64(time.Now().UnixNano())
}
