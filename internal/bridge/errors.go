package bridge

// connectionFailureError signals that the transport cannot reach the server.
// Never retried automatically; surfaced immediately to the caller.
type connectionFailureError struct {
	phase string
	err   error
}

func (e connectionFailureError) Error() string {
	return "connection failure during " + e.phase + ": " + e.err.Error()
}

func (e connectionFailureError) Unwrap() error { return e.err }

// ErrConnectionFailure wraps a transport reachability error with its phase.
func ErrConnectionFailure(phase string, err error) error {
	return connectionFailureError{phase: phase, err: err}
}

// IsConnectionFailure reports whether err indicates an unreachable server.
func IsConnectionFailure(err error) bool {
	_, ok := err.(connectionFailureError)
	return ok
}

// modelLoadTimeoutError signals that readiness was not reached in the bound.
type modelLoadTimeoutError struct {
	model   string
	seconds float64
}

func (e modelLoadTimeoutError) Error() string {
	return "model load timeout: " + e.model + " not ready within bound"
}

// ErrModelLoadTimeout constructs a modelLoadTimeoutError.
func ErrModelLoadTimeout(model string, seconds float64) error {
	return modelLoadTimeoutError{model: model, seconds: seconds}
}

// IsModelLoadTimeout reports whether err indicates a readiness-wait expiry.
// The caller may retry by re-issuing the load.
func IsModelLoadTimeout(err error) bool {
	_, ok := err.(modelLoadTimeoutError)
	return ok
}

// streamNotReadyError signals an inference call against a model that is not
// ready; the call fails fast instead of queueing server-side.
type streamNotReadyError struct{ model string }

func (e streamNotReadyError) Error() string {
	return "cannot request inference, model not loaded: " + e.model
}

// ErrStreamNotReady constructs a streamNotReadyError.
func ErrStreamNotReady(model string) error { return streamNotReadyError{model: model} }

// IsStreamNotReady reports whether err indicates a not-yet-ready model.
func IsStreamNotReady(err error) bool {
	_, ok := err.(streamNotReadyError)
	return ok
}

// transportError carries an error value the transport delivered through the
// streaming callback instead of data.
type transportError struct{ err error }

func (e transportError) Error() string { return "transport delivered error: " + e.err.Error() }

func (e transportError) Unwrap() error { return e.err }

// ErrTransportDelivered wraps an error value received on the callback path.
func ErrTransportDelivered(err error) error { return transportError{err: err} }

// IsTransportDelivered reports whether err originated from the transport's
// own callback error channel.
func IsTransportDelivered(err error) bool {
	_, ok := err.(transportError)
	return ok
}
