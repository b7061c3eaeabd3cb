package bridge

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitUntilReady_Success(t *testing.T) {
	ft := newFakeTransport()
	ft.readySeq = []bool{false, false, false, true}
	c, _ := newTestClient(ft, Options{Model: "m"})

	if err := c.WaitUntilReady(context.Background(), "m", 10*time.Second); err != nil {
		t.Fatalf("WaitUntilReady: %v", err)
	}
	if ft.readyCalls != 4 {
		t.Fatalf("expected 4 readiness polls, got %d", ft.readyCalls)
	}
}

func TestWaitUntilReady_Timeout(t *testing.T) {
	ft := newFakeTransport()
	ft.readySeq = []bool{false}
	c, clk := newTestClient(ft, Options{Model: "m", PollInterval: 100 * time.Millisecond})

	start := clk.now()
	err := c.WaitUntilReady(context.Background(), "m", 1*time.Second)
	if !IsModelLoadTimeout(err) {
		t.Fatalf("expected model load timeout, got %v", err)
	}
	if elapsed := clk.now().Sub(start); elapsed < 1*time.Second {
		t.Fatalf("timed out before the bound: %v", elapsed)
	}
}

func TestWaitUntilReady_TransportError(t *testing.T) {
	ft := newFakeTransport()
	ft.readyErr = errors.New("connection refused")
	c, _ := newTestClient(ft, Options{Model: "m"})

	err := c.WaitUntilReady(context.Background(), "m", time.Second)
	if !IsConnectionFailure(err) {
		t.Fatalf("expected connection failure, got %v", err)
	}
}

func TestLoad_NoopWhenReady(t *testing.T) {
	ft := newFakeTransport()
	c, _ := newTestClient(ft, Options{Model: "m"})

	if err := c.Load(context.Background(), "m"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ft.loadCalls != 0 {
		t.Fatalf("Load should be a no-op for a ready model, got %d load calls", ft.loadCalls)
	}
}

func TestLoad_WaitsForReadiness(t *testing.T) {
	ft := newFakeTransport()
	ft.readySeq = []bool{false, false, true}
	c, _ := newTestClient(ft, Options{Model: "m"})

	if err := c.Load(context.Background(), "m"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ft.loadCalls != 1 {
		t.Fatalf("expected exactly one load request, got %d", ft.loadCalls)
	}
}

func TestLoad_TimeoutSurfaced(t *testing.T) {
	ft := newFakeTransport()
	ft.readySeq = []bool{false}
	c, _ := newTestClient(ft, Options{Model: "m", LoadTimeout: time.Second})

	err := c.Load(context.Background(), "m")
	if !IsModelLoadTimeout(err) {
		t.Fatalf("expected model load timeout, got %v", err)
	}
}

func TestIsReady_ProbeDoesNotBlock(t *testing.T) {
	ft := newFakeTransport()
	ft.readySeq = []bool{false}
	c, _ := newTestClient(ft, Options{Model: "m"})

	ready, err := c.IsReady(context.Background(), "m")
	if err != nil || ready {
		t.Fatalf("IsReady = %v, %v; want false, nil", ready, err)
	}
	if ft.readyCalls != 1 {
		t.Fatalf("probe should poll exactly once, got %d", ft.readyCalls)
	}
}
