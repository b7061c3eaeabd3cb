// Package bridge drives text generation on a remote tensor-serving inference
// server, in batch and streaming modes. It is structured into small files by
// concern:
//
//   - client.go: Client (session handle), Options, batch Generate, model
//     list/concurrency helpers.
//   - ready.go: readiness probe, idempotent Load, bounded readiness wait.
//   - stream.go: the streaming bridge: callback delivery queued into a
//     blocking pull iterator, stop words, terminal sentinel, scoped stop
//     signaling.
//   - transport.go: the Transport collaborator interface; serialization and
//     the wire protocol live behind it.
//   - errors.go: typed errors and Is* predicates.
//
// Concurrency: each open stream has exactly two executions touching shared
// state, the transport's delivery goroutine (producer) and the caller
// (consumer), meeting only at the stream's FIFO queue. Tokens reach the
// consumer in delivery order; streams with distinct request identifiers never
// interleave.
package bridge
