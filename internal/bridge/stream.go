package bridge

import (
	"context"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"trtbridge/internal/metrics"
	"trtbridge/internal/wire"
	"trtbridge/pkg/types"
)

// stopSignalTimeout bounds the best-effort stop request sent on stream exit.
const stopSignalTimeout = 5 * time.Second

// streamState tracks the bridge lifecycle for one request identifier.
type streamState string

const (
	stateRequested streamState = "requested"
	stateStreaming streamState = "streaming"
	stateDraining  streamState = "draining"
	stateClosed    streamState = "closed"
	stateErrored   streamState = "errored"
)

// token is one unit travelling from the transport callback to the consumer:
// a text fragment, a terminal sentinel, or an error value.
type token struct {
	text   string
	err    error
	eos    bool
	reason string
}

// Stream bridges asynchronous chunk delivery into a synchronous pull
// iterator. The transport callback is the single producer, the Recv loop the
// single consumer; tokens arrive strictly in delivery order.
//
// A Stream is a scoped resource: every exit path (natural end, stop word,
// error, early abandonment via Close) releases the server-side generation by
// sending at most one stop signal for its request identifier. A finished
// Stream is terminal and never reused.
type Stream struct {
	client     *Client
	model      string
	requestID  string
	stopWords  map[string]struct{}
	forceBatch bool
	log        zerolog.Logger

	ch   chan token    // FIFO queue, single producer / single consumer
	done chan struct{} // closed on release; unblocks both sides

	stopOnce sync.Once
	relOnce  sync.Once

	mu      sync.Mutex
	state   streamState
	term    bool
	termErr error
}

// OpenStream starts a streaming generation for the configured model. The
// delivery sink is armed on the transport before the call is submitted, so
// no chunk can arrive before the bridge is ready to queue it.
func (c *Client) OpenStream(ctx context.Context, p types.GenerationParameters) (*Stream, error) {
	if err := c.Load(ctx, c.model); err != nil {
		return nil, err
	}
	p.Stream = true
	batch, err := wire.BuildGenerate(p)
	if err != nil {
		metrics.Error("build")
		return nil, err
	}

	s := &Stream{
		client:     c,
		model:      c.model,
		requestID:  uuid.NewString(),
		stopWords:  make(map[string]struct{}, len(p.StopWords)),
		forceBatch: c.forceBatch,
		ch:         make(chan token, c.queueDepth),
		done:       make(chan struct{}),
		state:      stateRequested,
	}
	s.log = c.log.With().Str("request_id", s.requestID).Str("model", c.model).Logger()
	for _, w := range p.StopWords {
		s.stopWords[w] = struct{}{}
	}

	if err := c.tr.StartStream(ctx, s.requestID, s.deliver); err != nil {
		metrics.Error("stream")
		return nil, ErrConnectionFailure("stream start", err)
	}
	if err := c.tr.StreamInfer(ctx, c.model, s.requestID, batch); err != nil {
		metrics.Error("stream")
		_ = c.tr.StopStream(s.requestID)
		return nil, ErrConnectionFailure("stream submit", err)
	}
	s.setState(stateStreaming)
	metrics.StreamOpened()
	s.log.Debug().Msg("stream opened")
	return s, nil
}

// RequestID returns the identifier correlating this stream's requests.
func (s *Stream) RequestID() string { return s.requestID }

// State reports the current lifecycle state of the stream.
func (s *Stream) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return string(s.state)
}

// deliver is the transport callback. It runs on a transport-owned goroutine
// and only ever pushes onto the queue; all terminal bookkeeping happens on
// the consumer side.
func (s *Stream) deliver(resp *wire.Response, err error) {
	if err != nil {
		s.push(token{err: ErrTransportDelivered(err), reason: "error"})
		return
	}
	text, ok, derr := wire.Decode(resp)
	if derr != nil {
		metrics.Error("decode")
		s.push(token{err: derr, reason: "error"})
		return
	}
	if ok {
		if s.forceBatch {
			text = wire.TrimBatch(text)
		}
		if _, stop := s.stopWords[text]; stop {
			// The stop word itself is never delivered to the consumer.
			s.push(token{eos: true, reason: "stop_word"})
		} else {
			s.push(token{text: text})
		}
	}
	// A final-flagged chunk ends the stream even when it carried no text.
	if resp.Final {
		s.push(token{eos: true, reason: "eos"})
	}
}

func (s *Stream) push(t token) {
	select {
	case s.ch <- t:
	case <-s.done:
		// Consumer already released the stream; drop.
	}
}

// Recv blocks until the next token is available and returns it. It returns
// io.EOF on clean end of stream, and the propagated error on errored end.
// After either, the stream is closed and further calls return the same
// terminal result.
func (s *Stream) Recv() (string, error) {
	s.mu.Lock()
	if s.term {
		err := s.termErr
		s.mu.Unlock()
		if err != nil {
			return "", err
		}
		return "", io.EOF
	}
	s.mu.Unlock()

	select {
	case t := <-s.ch:
		switch {
		case t.err != nil:
			s.terminate(stateErrored, t.reason, t.err, true)
			return "", t.err
		case t.eos:
			// In forced-batch mode the server already ran the request to
			// completion, so the stop signal is redundant on a natural end.
			s.terminate(stateDraining, t.reason, nil, !s.forceBatch)
			return "", io.EOF
		default:
			metrics.TokenDelivered()
			return t.text, nil
		}
	case <-s.done:
		return "", io.EOF
	}
}

// All returns a single-pass iterator over the stream's tokens. Iteration
// ends silently on clean end of stream and yields the error otherwise. The
// stream is closed when iteration stops for any reason.
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()
		for {
			text, err := s.Recv()
			if err == io.EOF {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(text, nil) {
				return
			}
		}
	}
}

// Close releases the stream. When the consumer abandons iteration before a
// terminal token, the server-side generation is still running, so Close
// forces the stop signal. Idempotent and safe on any exit path.
func (s *Stream) Close() error {
	s.mu.Lock()
	already := s.term
	s.term = true
	s.mu.Unlock()
	if !already {
		s.sendStop()
		s.release("cancel")
	}
	return nil
}

// terminate records the terminal outcome and releases the stream.
func (s *Stream) terminate(st streamState, reason string, err error, signal bool) {
	s.mu.Lock()
	if s.term {
		s.mu.Unlock()
		return
	}
	s.term = true
	s.termErr = err
	s.state = st
	s.mu.Unlock()
	if signal {
		s.sendStop()
	}
	s.release(reason)
}

// sendStop issues the streaming-stop control request, at most once per
// request identifier, regardless of which exit path got here first.
func (s *Stream) sendStop() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopSignalTimeout)
		defer cancel()
		if err := s.client.tr.StreamInfer(ctx, s.model, s.requestID, wire.BuildStop()); err != nil {
			s.log.Warn().Err(err).Msg("stop signal failed")
			return
		}
		metrics.StopSignalSent()
		s.log.Debug().Msg("stop signal sent")
	})
}

// release tears down the queue and the transport stream exactly once.
func (s *Stream) release(reason string) {
	s.relOnce.Do(func() {
		close(s.done)
		if err := s.client.tr.StopStream(s.requestID); err != nil {
			s.log.Warn().Err(err).Msg("stream teardown failed")
		}
		s.setState(stateClosed)
		metrics.StreamClosed(reason)
		s.log.Debug().Str("reason", reason).Msg("stream closed")
	})
}

func (s *Stream) setState(st streamState) {
	s.mu.Lock()
	if s.state != stateErrored {
		s.state = st
	}
	s.mu.Unlock()
}
