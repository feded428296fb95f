//go:build linux
// +build linux

package tinyhttpd

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Shutdown is a one-way Running -> ShuttingDown flag. It is set from the
// signal path and read once per iteration by the server loop.
type Shutdown struct {
	requested int32
}

// NewShutdown returns a Shutdown in the running state.
func NewShutdown() *Shutdown {
	return &Shutdown{}
}

// Trigger requests shutdown. It returns true only for the call that changed
// the state.
func (s *Shutdown) Trigger() bool {
	return atomic.CompareAndSwapInt32(&s.requested, 0, 1)
}

// Requested reports whether shutdown has been requested.
func (s *Shutdown) Requested() bool {
	return atomic.LoadInt32(&s.requested) == 1
}

// Notify triggers the shutdown on delivery of any of sigs, SIGINT and SIGTERM
// when none are given. SIGPIPE is ignored for the whole process. The returned
// func stops the delivery.
func (s *Shutdown) Notify(sigs ...os.Signal) (stop func()) {
	if len(sigs) == 0 {
		sigs = []os.Signal{syscall.SIGINT, syscall.SIGTERM}
	}
	signal.Ignore(syscall.SIGPIPE)

	ch := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(ch, sigs...)
	go func() {
		for {
			select {
			case <-ch:
				s.Trigger()
			case <-done:
				return
			}
		}
	}()

	var once int32
	return func() {
		if atomic.CompareAndSwapInt32(&once, 0, 1) {
			signal.Stop(ch)
			close(done)
		}
	}
}
