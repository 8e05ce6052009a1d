// Package query fetches data by key, shares results through a cache store,
// retries failures with linear backoff and revalidates on a timer or on
// window focus.
//
// A Client bundles the collaborators every consumer needs: the shared
// store, a clock, a focus source and observability hooks. Use mounts a
// consumer; Close unmounts it and releases its timers and listeners.
package query

import (
	"context"

	"github.com/rs/zerolog"

	"edu-dashboard-api/internal/cache"
	"edu-dashboard-api/internal/clock"
	"edu-dashboard-api/internal/focus"
)

// Client is the shared runtime for query consumers.
type Client struct {
	ctx      context.Context
	store    *cache.Store[any]
	clock    clock.Clock
	focus    focus.Source
	logger   zerolog.Logger
	metrics  Metrics
	policy   cache.CommitPolicy
	defaults []Option
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithContext sets the context handed to fetchers. Unmounting a consumer
// never cancels it.
func WithContext(ctx context.Context) ClientOption {
	return func(c *Client) { c.ctx = ctx }
}

func WithClock(clk clock.Clock) ClientOption {
	return func(c *Client) { c.clock = clk }
}

// WithFocusSource subscribes focus-revalidating consumers to src.
func WithFocusSource(src focus.Source) ClientOption {
	return func(c *Client) { c.focus = src }
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m Metrics) ClientOption {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithCommitPolicy chooses how concurrent completions for a key are ordered.
func WithCommitPolicy(p cache.CommitPolicy) ClientOption {
	return func(c *Client) { c.policy = p }
}

// WithDefaultOptions applies opts to every consumer before its own options.
func WithDefaultOptions(opts ...Option) ClientOption {
	return func(c *Client) { c.defaults = append(c.defaults, opts...) }
}

// NewClient returns a Client over store. A nil store gets a private one.
func NewClient(store *cache.Store[any], opts ...ClientOption) *Client {
	if store == nil {
		store = cache.NewStore[any]()
	}
	c := &Client{
		ctx:     context.Background(),
		store:   store,
		clock:   clock.Real(),
		logger:  zerolog.Nop(),
		metrics: NoopMetrics{},
		policy:  cache.CommitLatestIssued,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c sharing its store, with opts applied on top.
// A dashboard window uses it to attach its own focus source.
func (c *Client) With(opts ...ClientOption) *Client {
	cp := *c
	cp.defaults = append([]Option(nil), c.defaults...)
	for _, opt := range opts {
		opt(&cp)
	}
	return &cp
}

// Store returns the shared store.
func (c *Client) Store() *cache.Store[any] { return c.store }

// CommitPolicy returns the client's ordering policy.
func (c *Client) CommitPolicy() cache.CommitPolicy { return c.policy }

func (c *Client) options(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range c.defaults {
		opt(&o)
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
