package bridge

import (
	"context"
	"time"

	"trtbridge/internal/metrics"
)

// IsReady is a non-blocking readiness probe for the named model. It errors
// only on transport failure, never on "not ready".
func (c *Client) IsReady(ctx context.Context, model string) (bool, error) {
	ready, err := c.tr.IsModelReady(ctx, model)
	if err != nil {
		return false, ErrConnectionFailure("readiness check", err)
	}
	return ready, nil
}

// Load brings the named model to readiness. Idempotent: a no-op when the
// model is already ready; otherwise it issues a load request and blocks
// until readiness or the configured timeout.
func (c *Client) Load(ctx context.Context, model string) error {
	ready, err := c.IsReady(ctx, model)
	if err != nil {
		return err
	}
	if ready {
		return nil
	}
	if err := c.tr.LoadModel(ctx, model); err != nil {
		metrics.Error("load")
		return ErrConnectionFailure("model load", err)
	}
	return c.WaitUntilReady(ctx, model, c.loadTimeout)
}

// WaitUntilReady polls readiness until the model is ready or the wall-clock
// bound elapses. Polls are spaced by the configured interval; the sleep is
// interruptible through ctx. Returns a load-timeout error on expiry, which
// the caller may retry by re-issuing the load.
func (c *Client) WaitUntilReady(ctx context.Context, model string, timeout time.Duration) error {
	start := c.now()
	for {
		ready, err := c.tr.IsModelReady(ctx, model)
		if err != nil {
			return ErrConnectionFailure("readiness check", err)
		}
		if ready {
			elapsed := c.now().Sub(start)
			metrics.ObserveModelLoad(elapsed)
			c.log.Debug().Str("model", model).Dur("elapsed", elapsed).Msg("model ready")
			return nil
		}
		if c.now().Sub(start) >= timeout {
			metrics.Error("load")
			c.log.Error().Str("model", model).Dur("timeout", timeout).Msg("model load timed out")
			return ErrModelLoadTimeout(model, timeout.Seconds())
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return err
		}
	}
}
