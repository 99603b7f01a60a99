package scheduler

import "errors"

// ErrEmptyPlan is returned by Plan.NextEvent and Context.NextEvent when
// no flow is scheduled to send anything.
var ErrEmptyPlan = errors.New("scheduler: plan has no events")

// ErrNotArmed is returned by Context.NextEvent when the context has not
// transitioned past Dispatch/Arm into the Armed state.
var ErrNotArmed = errors.New("scheduler: context is not armed")
