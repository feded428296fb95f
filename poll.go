//go:build linux
// +build linux

package tinyhttpd

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Multiplexer waits for read readiness on a listener and a set of client
// descriptors.
type Multiplexer interface {
	// Wait blocks until at least one descriptor is readable or timeout
	// elapses. A signal interruption returns ErrInterrupted.
	Wait(listener int, conns []int, timeout time.Duration) (ReadySet, error)
}

// ReadySet is the result of a single Wait.
type ReadySet struct {
	listener bool
	fds      map[int]struct{}
}

// NewReadySet returns a ReadySet, used by Multiplexer implementations.
func NewReadySet(listener bool, fds ...int) ReadySet {
	rs := ReadySet{listener: listener}
	for _, fd := range fds {
		rs.add(fd)
	}
	return rs
}

func (rs *ReadySet) add(fd int) {
	if rs.fds == nil {
		rs.fds = map[int]struct{}{}
	}
	rs.fds[fd] = struct{}{}
}

// Listener reports whether the listener has a pending connection.
func (rs ReadySet) Listener() bool {
	return rs.listener
}

// Has reports whether the client descriptor fd is readable.
func (rs ReadySet) Has(fd int) bool {
	_, ok := rs.fds[fd]
	return ok
}

// Len returns the number of ready client descriptors.
func (rs ReadySet) Len() int {
	return len(rs.fds)
}

// Empty reports whether the wait ended without any readiness.
func (rs ReadySet) Empty() bool {
	return !rs.listener && len(rs.fds) == 0
}

// Poller is a Multiplexer backed by poll(2). The wait set is rebuilt on every
// call, only the backing array is reused.
type Poller struct {
	pfds []unix.PollFd
}

// NewPoller returns a Poller sized for capacity client descriptors.
func NewPoller(capacity int) *Poller {
	return &Poller{pfds: make([]unix.PollFd, 0, capacity+1)}
}

// Wait implements the Multiplexer interface.
func (p *Poller) Wait(listener int, conns []int, timeout time.Duration) (ReadySet, error) {
	p.pfds = p.pfds[:0]
	p.pfds = append(p.pfds, unix.PollFd{Fd: int32(listener), Events: unix.POLLIN})
	for _, fd := range conns {
		p.pfds = append(p.pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}

	n, err := unix.Poll(p.pfds, int(timeout/time.Millisecond))
	if err == unix.EINTR {
		return ReadySet{}, ErrInterrupted
	}
	if err != nil {
		return ReadySet{}, errors.Wrap(err, "poll")
	}

	var rs ReadySet
	if n == 0 {
		return rs, nil
	}
	if p.pfds[0].Revents&pollReadable != 0 {
		rs.listener = true
	}
	for _, pfd := range p.pfds[1:] {
		if pfd.Revents&pollReadable != 0 {
			rs.add(int(pfd.Fd))
		}
	}
	return rs, nil
}
