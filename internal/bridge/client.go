package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trtbridge/internal/metrics"
	"trtbridge/internal/wire"
	"trtbridge/pkg/types"
)

const (
	defaultLoadTimeout  = 2 * time.Minute
	defaultPollInterval = 100 * time.Millisecond
	defaultQueueDepth   = 64
)

// Options configures a Client. Zero values fall back to package defaults.
type Options struct {
	// Model is the server-side model name requests are issued against.
	Model string
	// LoadTimeout bounds the readiness wait after a load request.
	LoadTimeout time.Duration
	// PollInterval is the sleep between readiness probes.
	PollInterval time.Duration
	// QueueDepth is the token queue capacity per open stream.
	QueueDepth int
	// ForceBatch applies the batch trimming rule to each streamed fragment,
	// emulating batch semantics over the streamed transport.
	ForceBatch bool
	// Logger receives structured client events; defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Client wraps a connection to one inference server instance. It owns
// model-readiness coordination, request construction, and the streaming
// bridge; the Transport owns the wire protocol.
type Client struct {
	tr           Transport
	model        string
	loadTimeout  time.Duration
	pollInterval time.Duration
	queueDepth   int
	forceBatch   bool
	log          zerolog.Logger

	// Injectable for readiness-wait tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Client over the given transport.
func New(tr Transport, opts Options) *Client {
	c := &Client{
		tr:           tr,
		model:        opts.Model,
		loadTimeout:  opts.LoadTimeout,
		pollInterval: opts.PollInterval,
		queueDepth:   opts.QueueDepth,
		forceBatch:   opts.ForceBatch,
		log:          zerolog.Nop(),
		now:          time.Now,
		sleep:        sleepCtx,
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if c.loadTimeout <= 0 {
		c.loadTimeout = defaultLoadTimeout
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	if c.queueDepth <= 0 {
		c.queueDepth = defaultQueueDepth
	}
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// ModelList returns the names of all models in the server's repository.
func (c *Client) ModelList(ctx context.Context) ([]string, error) {
	idx, err := c.tr.ModelRepositoryIndex(ctx)
	if err != nil {
		return nil, ErrConnectionFailure("model list", err)
	}
	names := make([]string, 0, len(idx))
	for _, e := range idx {
		names = append(names, e.Name)
	}
	return names, nil
}

// ModelConcurrency loads the model, then reports how many generations the
// server can run in parallel for it, derived from its instance groups.
func (c *Client) ModelConcurrency(ctx context.Context, model string) (int, error) {
	if err := c.Load(ctx, model); err != nil {
		return 0, err
	}
	cfg, err := c.tr.ModelConfig(ctx, model)
	if err != nil {
		return 0, ErrConnectionFailure("model config", err)
	}
	return cfg.Concurrency(), nil
}

// Generate performs one blocking batch generation and returns the trimmed
// continuation. Fails fast with a not-ready error rather than queueing
// against an unloaded model.
func (c *Client) Generate(ctx context.Context, p types.GenerationParameters) (string, error) {
	if err := c.Load(ctx, c.model); err != nil {
		return "", err
	}
	ready, err := c.tr.IsModelReady(ctx, c.model)
	if err != nil {
		return "", ErrConnectionFailure("readiness check", err)
	}
	if !ready {
		metrics.Error("infer")
		return "", ErrStreamNotReady(c.model)
	}

	p.Stream = false
	batch, err := wire.BuildGenerate(p)
	if err != nil {
		metrics.Error("build")
		return "", err
	}
	resp, err := c.tr.Infer(ctx, c.model, batch)
	if err != nil {
		metrics.Error("infer")
		return "", ErrConnectionFailure("batch infer", err)
	}
	text, _, err := wire.Decode(resp)
	if err != nil {
		metrics.Error("decode")
		return "", fmt.Errorf("batch response: %w", err)
	}
	return wire.TrimBatch(text), nil
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
