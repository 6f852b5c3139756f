// Package generation produces customers, menus and consequences from an LLM.
//
// Every generator asks for one named-field JSON object, validates its shape and
// falls back to a deterministic value when the call errors, times out or returns
// anything unexpected. Generation failures never reach the caller.
package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"foodgame/internal/models/providers"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds a single generation call
const DefaultTimeout = 20 * time.Second

// DefaultCacheSize is large enough to hold every restriction combination
const DefaultCacheSize = 256

var errNoProvider = errors.New("no text generation provider configured")

// Recorder receives generation and cache metrics
type Recorder interface {
	RecordGeneration(kind string, fallback bool, duration time.Duration)
	RecordCacheLookup(cache string, hit bool)
}

type nopRecorder struct{}

func (nopRecorder) RecordGeneration(string, bool, time.Duration) {}
func (nopRecorder) RecordCacheLookup(string, bool)               {}

// Options configures the generators. A nil Provider makes every call fall back.
type Options struct {
	Provider  providers.Provider
	Timeout   time.Duration
	CacheSize int
	Logger    logrus.FieldLogger
	Recorder  Recorder
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	if o.Recorder == nil {
		o.Recorder = nopRecorder{}
	}
	return o
}

// client performs the structured completion call shared by all generators
type client struct {
	provider providers.Provider
	timeout  time.Duration
	log      logrus.FieldLogger
	recorder Recorder
}

func newClient(opts Options) *client {
	return &client{
		provider: opts.Provider,
		timeout:  opts.Timeout,
		log:      opts.Logger,
		recorder: opts.Recorder,
	}
}

// complete returns the raw JSON object produced for the prompt
func (c *client) complete(ctx context.Context, system, prompt string) (gjson.Result, error) {
	if c.provider == nil {
		return gjson.Result{}, errNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.provider.Complete(ctx, []providers.Message{
		providers.System(system),
		providers.User(prompt),
	})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("completion: %w", err)
	}

	if !gjson.Valid(raw) {
		return gjson.Result{}, fmt.Errorf("completion is not valid JSON")
	}
	doc := gjson.Parse(raw)
	if !doc.IsObject() {
		return gjson.Result{}, fmt.Errorf("completion is not a JSON object")
	}
	return doc, nil
}
