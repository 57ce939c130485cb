package queue

import "time"

// DefaultCloseReason is used when Close is called without a reason.
const DefaultCloseReason = "Manually closed by queue administrator"

type Options struct {
	// AllowReopen makes Open on an already open queue start a new session,
	// discarding the previous wait list. When false Open returns ErrAlreadyOpen.
	AllowReopen bool
	// PropagationTimeout bounds each notifier/store round.
	PropagationTimeout time.Duration
	Now                func() time.Time
}

func DefaultOptions() Options {
	return Options{
		AllowReopen:        true,
		PropagationTimeout: 15 * time.Second,
		Now:                time.Now,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PropagationTimeout <= 0 {
		o.PropagationTimeout = d.PropagationTimeout
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	return o
}
