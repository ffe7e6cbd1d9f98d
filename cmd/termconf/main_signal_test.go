package main

import (
	"context"
	"os"
	osSignal "os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestSignalContextCancelsOnSignal(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(ch chan<- os.Signal, sig ...os.Signal) {
		go func() {
			ch <- syscall.SIGTERM
		}()
	}

	ctx, cancel := signalContext(context.Background(), zaptest.NewLogger(t))
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected context to be cancelled by signal")
	}
}

func TestSignalContextStopsWithParent(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
	})

	signalNotify = func(chan<- os.Signal, ...os.Signal) {}

	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := signalContext(parent, zaptest.NewLogger(t))
	defer cancel()

	cancelParent()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatalf("expected context to follow its parent")
	}
}

func TestSignalContextReleasesNotification(t *testing.T) {
	t.Cleanup(func() {
		signalNotify = osSignal.Notify
		signalStop = osSignal.Stop
	})

	var registered chan<- os.Signal
	signalNotify = func(ch chan<- os.Signal, _ ...os.Signal) {
		registered = ch
	}
	stopped := make(chan chan<- os.Signal, 1)
	signalStop = func(ch chan<- os.Signal) {
		stopped <- ch
	}

	_, cancel := signalContext(context.Background(), zaptest.NewLogger(t))
	cancel()

	select {
	case ch := <-stopped:
		assert.Equal(t, registered, ch)
	case <-time.After(time.Second):
		t.Fatalf("expected signal notification to be stopped after cancel")
	}
}
