//go:build linux
// +build linux

package tinyhttpd

import (
	"net"
	"strconv"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Listener owns a bound, listening TCP socket.
type Listener struct {
	fd     int
	port   int
	a      *addr
	closed int32
}

// ValidPort reports whether port is usable as a listening port.
func ValidPort(port int) bool {
	return port > 0 && port <= MaxPort
}

// Listen creates a socket with SO_REUSEADDR set, binds it to port on every
// IPv4 interface and marks it listening. The socket is non-blocking so that
// an accept after a spurious readiness report returns ErrWouldBlock.
func Listen(port int) (*Listener, error) {
	if !ValidPort(port) {
		return nil, errors.Wrapf(ErrInvalidPort, "port %d", port)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, errors.Wrap(err, "can not get a server socket")
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "failed to set SO_REUSEADDR")
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port}); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "binding port %d to server socket failed", port)
	}

	if err := unix.Listen(fd, Backlog); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "marking server socket as listener failed")
	}

	return &Listener{
		fd:   fd,
		port: port,
		a: &addr{
			net: "tcp",
			s:   net.JoinHostPort("0.0.0.0", strconv.Itoa(port)),
		},
	}, nil
}

// Fd returns the file descriptor of the listening socket.
func (l *Listener) Fd() int {
	return l.fd
}

// Port returns the bound port.
func (l *Listener) Port() int {
	return l.port
}

// Addr returns the listening address.
func (l *Listener) Addr() net.Addr {
	return l.a
}

// Accept accepts one pending connection. A signal interruption yields
// ErrInterrupted and an empty backlog yields ErrWouldBlock, neither of which
// is a failure.
func (l *Listener) Accept() (*Conn, error) {
	fd, sa, err := unix.Accept4(l.fd, unix.SOCK_CLOEXEC)
	switch err {
	case nil:
		return newConn(fd, sa), nil
	case unix.EINTR:
		return nil, ErrInterrupted
	case unix.EAGAIN, unix.ECONNABORTED:
		return nil, ErrWouldBlock
	}
	return nil, errors.Wrap(err, "accept")
}

// Close closes the listening socket. Only the first call has an effect.
func (l *Listener) Close() error {
	if !atomic.CompareAndSwapInt32(&l.closed, 0, 1) {
		return nil
	}
	return unix.Close(l.fd)
}
