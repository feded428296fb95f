//go:build linux
// +build linux

package tinyhttpd

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// addr is the net.Addr of a listening or accepted socket.
type addr struct {
	net string
	s   string
}

// Network implements the net.Addr interface.
func (a *addr) Network() string {
	return a.net
}

// String implements the net.Addr interface.
func (a *addr) String() string {
	return a.s
}

// sockaddrString formats the peer address returned by accept4.
func sockaddrString(sa unix.Sockaddr) string {
	switch sockType := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%s:%d", net.IP(sockType.Addr[:]), sockType.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%s]:%d", net.IP(sockType.Addr[:]), sockType.Port)
	case *unix.SockaddrUnix:
		return sockType.Name
	}
	return "unknown"
}

// Conn is an accepted client connection. It is owned by the server loop and
// lent to a Handler for one exchange.
type Conn struct {
	fd     int
	id     uuid.UUID
	raddr  *addr
	closed int32
}

func newConn(fd int, sa unix.Sockaddr) *Conn {
	return &Conn{
		fd: fd,
		id: uuid.New(),
		raddr: &addr{
			net: "tcp",
			s:   sockaddrString(sa),
		},
	}
}

// Fd returns the file descriptor of the connection.
func (c *Conn) Fd() int {
	return c.fd
}

// ID returns the identifier used to correlate log lines of one connection.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.raddr
}

// SetIOTimeout bounds every subsequent read and write on the connection.
func (c *Conn) SetIOTimeout(d time.Duration) error {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return errors.Wrap(err, "failed to set receive timeout")
	}
	if err := unix.SetsockoptTimeval(c.fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return errors.Wrap(err, "failed to set send timeout")
	}
	return nil
}

// Read implements the io.Reader interface. A peer that closed its side
// yields io.EOF.
func (c *Conn) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	for {
		n, err := unix.Read(c.fd, b)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, errors.Wrap(err, "read")
		}
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	}
}

// Write implements the io.Writer interface. It keeps writing until all of b
// is sent or a hard error occurs.
func (c *Conn) Write(b []byte) (int, error) {
	written := 0
	for written < len(b) {
		n, err := unix.Write(c.fd, b[written:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return written, errors.Wrap(err, "write")
		}
		if n == 0 {
			return written, io.ErrShortWrite
		}
		written += n
	}
	return written, nil
}

// Close closes the connection. Only the first call closes the descriptor.
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return unix.Close(c.fd)
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}
