// Package identity implements the user and role stores of an identity framework
// on top of a document collection.
package identity

import (
	"fmt"
	"time"

	"github.com/pilab-dev/shadow-identity/docstore"
	"github.com/pilab-dev/shadow-identity/log"
	"github.com/pilab-dev/shadow-identity/metrics"
)

// Option configures a UserStore or RoleStore.
type Option func(*options)

type options struct {
	logger       log.Logger
	metrics      *metrics.Recorder
	idGenerator  any
	stamp        func() string
	roleCacheTTL time.Duration
}

func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(o *options) { o.metrics = r }
}

// WithIDGenerator fills the key of entities created without one. String keyed
// stores default to ObjectID hex strings.
func WithIDGenerator[K comparable](fn func() K) Option {
	return func(o *options) { o.idGenerator = fn }
}

// WithStampGenerator replaces the random UUID concurrency and security stamps.
func WithStampGenerator(fn func() string) Option {
	return func(o *options) { o.stamp = fn }
}

// WithRoleCache caches role lookups by normalized name for ttl. The cache is
// local to the store instance, so a role renamed or deleted elsewhere can still
// resolve until its entry expires.
func WithRoleCache(ttl time.Duration) Option {
	return func(o *options) { o.roleCacheTTL = ttl }
}

func buildOptions(opts []Option) options {
	o := options{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) storeOptions() []docstore.Option {
	so := []docstore.Option{docstore.WithLogger(o.logger), docstore.WithMetrics(o.metrics)}
	if o.stamp != nil {
		so = append(so, docstore.WithStampGenerator(o.stamp))
	}
	return so
}

func idGenerator[K comparable](o options) func() K {
	if o.idGenerator == nil {
		gen, _ := any(docstore.NewObjectIDHex).(func() K)
		return gen
	}
	gen, ok := o.idGenerator.(func() K)
	if !ok {
		panic(fmt.Sprintf("identity: id generator %T does not produce the store key type", o.idGenerator))
	}
	return gen
}
