package bridge

import (
	"context"
	"sync"
	"time"

	"trtbridge/internal/wire"
	"trtbridge/pkg/types"
)

// fakeTransport is a scriptable in-memory Transport.
type fakeTransport struct {
	mu sync.Mutex

	// readySeq scripts successive IsModelReady results; once exhausted the
	// last value repeats. Empty means always ready.
	readySeq   []bool
	readyErr   error
	readyCalls int

	loadCalls int
	loadErr   error

	inferResp  *wire.Response
	inferErr   error
	inferCalls []*wire.Batch

	sinks       map[string]Sink
	submits     map[string][]*wire.Batch
	stopSignals map[string]int
	stopped     map[string]int

	index  []types.ModelIndexEntry
	config types.ModelConfig
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		sinks:       make(map[string]Sink),
		submits:     make(map[string][]*wire.Batch),
		stopSignals: make(map[string]int),
		stopped:     make(map[string]int),
	}
}

func (f *fakeTransport) IsModelReady(ctx context.Context, model string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readyErr != nil {
		return false, f.readyErr
	}
	i := f.readyCalls
	f.readyCalls++
	if len(f.readySeq) == 0 {
		return true, nil
	}
	if i >= len(f.readySeq) {
		i = len(f.readySeq) - 1
	}
	return f.readySeq[i], nil
}

func (f *fakeTransport) LoadModel(ctx context.Context, model string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	return f.loadErr
}

func (f *fakeTransport) Infer(ctx context.Context, model string, in *wire.Batch) (*wire.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inferCalls = append(f.inferCalls, in)
	return f.inferResp, f.inferErr
}

func (f *fakeTransport) StartStream(ctx context.Context, requestID string, sink Sink) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks[requestID] = sink
	return nil
}

func (f *fakeTransport) StreamInfer(ctx context.Context, model, requestID string, in *wire.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if in.Control {
		f.stopSignals[requestID]++
		return nil
	}
	f.submits[requestID] = append(f.submits[requestID], in)
	return nil
}

func (f *fakeTransport) StopStream(requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped[requestID]++
	return nil
}

func (f *fakeTransport) ModelRepositoryIndex(ctx context.Context) ([]types.ModelIndexEntry, error) {
	return f.index, nil
}

func (f *fakeTransport) ModelConfig(ctx context.Context, model string) (types.ModelConfig, error) {
	return f.config, nil
}

// send delivers a chunk to the sink registered for requestID, as the
// transport's own goroutine would.
func (f *fakeTransport) send(requestID string, resp *wire.Response, err error) {
	f.mu.Lock()
	sink := f.sinks[requestID]
	f.mu.Unlock()
	if sink != nil {
		sink(resp, err)
	}
}

func (f *fakeTransport) stopCount(requestID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopSignals[requestID]
}

// fakeClock drives the readiness wait without real sleeping: each sleep
// advances the clock by the requested duration.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
	return ctx.Err()
}

// newTestClient wires a Client to the fake transport with a fake clock.
func newTestClient(tr Transport, opts Options) (*Client, *fakeClock) {
	c := New(tr, opts)
	clk := &fakeClock{t: time.Unix(1700000000, 0)}
	c.now = clk.now
	c.sleep = clk.sleep
	return c, clk
}
