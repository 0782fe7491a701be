package cli

import (
	"context"
	"testing"
	"time"
)

func TestSpinner_StartStop(t *testing.T) {
	s := newSpinner(context.Background(), "working")
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
	// a second Stop must not panic or hang
	s.Stop()
}

func TestSpinner_ContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, "working")
	s.Start()
	cancel()

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() did not return after context cancellation")
	}
}
