package utils

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWaitFor(t *testing.T) {
	var slept []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = orig })

	if err := WaitFor(context.Background(), 0); err != nil {
		t.Fatalf("zero wait: %v", err)
	}
	if err := WaitFor(context.Background(), time.Second); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("unexpected sleeps %v", slept)
	}
}

func TestWaitForCancelled(t *testing.T) {
	block := make(chan struct{})
	orig := sleep
	sleep = func(time.Duration) { <-block }
	t.Cleanup(func() {
		close(block)
		sleep = orig
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitFor(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
