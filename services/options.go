package services

import (
	"github.com/thejerf/abtime"

	"github.com/lborres/bantay/core"
	"github.com/lborres/bantay/internal/logging"
	"github.com/lborres/bantay/pkg/cache"
)

type options struct {
	clock  abtime.AbstractTime
	logger logging.Logger
	cache  *cache.Memory[*core.Session]
}

// Option configures a session store or service
type Option func(*options)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c abtime.AbstractTime) Option {
	return func(o *options) { o.clock = c }
}

func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithCache puts a read-through cache in front of persisted session
// records. Only PersistentStore uses it. A cached record outlives its
// removal by another store sharing the same storage until it expires from
// the cache.
func WithCache(c *cache.Memory[*core.Session]) Option {
	return func(o *options) { o.cache = c }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.clock == nil {
		o.clock = abtime.NewRealTime()
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	return o
}
