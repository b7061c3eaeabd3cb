package bridge

import (
	"context"

	"trtbridge/internal/wire"
	"trtbridge/pkg/types"
)

// Sink receives asynchronous stream deliveries on a transport-owned
// goroutine: either a raw response chunk or a transport error, never both.
type Sink func(resp *wire.Response, err error)

// Transport is the external collaborator carrying requests to one inference
// server. Implementations own serialization and the wire protocol; this
// package owns readiness, request construction, and the streaming bridge.
//
// StartStream must arm the sink before StreamInfer is called for the same
// request identifier, so no chunk can be delivered to an unarmed sink. A
// transport may multiplex concurrent streams over one connection; chunks are
// demultiplexed by request identifier before reaching each sink.
type Transport interface {
	// IsModelReady is a non-blocking readiness probe. It returns an error
	// only on transport failure, not on "not ready".
	IsModelReady(ctx context.Context, model string) (bool, error)
	// LoadModel asks the server to load a model. It does not wait for
	// readiness; callers poll IsModelReady.
	LoadModel(ctx context.Context, model string) error
	// Infer performs one blocking batch inference.
	Infer(ctx context.Context, model string, in *wire.Batch) (*wire.Response, error)
	// StartStream registers sink as the delivery target for requestID.
	StartStream(ctx context.Context, requestID string, sink Sink) error
	// StreamInfer submits an asynchronous streaming inference or control
	// request; results arrive on the registered sink.
	StreamInfer(ctx context.Context, model, requestID string, in *wire.Batch) error
	// StopStream tears down the streaming channel for requestID.
	StopStream(requestID string) error
	// ModelRepositoryIndex lists the models the server knows about.
	ModelRepositoryIndex(ctx context.Context) ([]types.ModelIndexEntry, error)
	// ModelConfig fetches the server-side configuration for one model.
	ModelConfig(ctx context.Context, model string) (types.ModelConfig, error)
}
