package scheduler

// Runner describes types that execute a send callback according to a
// chosen concurrency model, adapted from the teacher library's handler
// Runner so the timer Loop below can fire each transmission either
// concurrently or in lock-step with the caller.
type Runner interface {
	Run(func())
}

// OnDemandRoutineRunner starts each callback in its own goroutine, so a
// slow send never delays the timer loop's next wakeup.
type OnDemandRoutineRunner struct{}

// Run implements Runner.
func (OnDemandRoutineRunner) Run(fn func()) {
	go fn()
}

// SequentialRunner runs each callback in the timer loop's own
// goroutine, blocking the next wakeup until it returns. Useful for
// tests that need a deterministic send order.
type SequentialRunner struct{}

// Run implements Runner.
func (SequentialRunner) Run(fn func()) {
	fn()
}
