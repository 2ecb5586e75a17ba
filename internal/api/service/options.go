package service

import "time"

type options struct {
	now func() time.Time
}

// Option customises a service.
type Option func(*options)

// WithClock replaces time.Now as the source of timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// timestamp returns the current time in UTC at the precision every
// supported store keeps.
func (o options) timestamp() time.Time {
	return o.now().UTC().Truncate(time.Microsecond)
}
