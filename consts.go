//go:build linux
// +build linux

package tinyhttpd

import (
	"time"

	"golang.org/x/sys/unix"
)

const (
	// DefaultPort is the listening port used when none is configured.
	DefaultPort = 4000

	// DefaultCapacity is the number of client slots.
	DefaultCapacity = 10

	// DefaultWaitTimeout bounds a single readiness wait, which is also the
	// latency for observing a shutdown request on an idle server.
	DefaultWaitTimeout = time.Second

	// DefaultIOTimeout bounds every read and write on a client connection.
	DefaultIOTimeout = 5 * time.Second

	// ReadBufferSize is the size of the request buffer. At most
	// ReadBufferSize-1 bytes are consumed per exchange.
	ReadBufferSize = 1024

	// MaxPort is the largest valid listening port.
	MaxPort = 65535

	// Backlog is the listen(2) backlog.
	Backlog = unix.SOMAXCONN

	// pollReadable is the revents mask that counts as "ready for reading".
	// Hangups and errors are included so that the slot is serviced and
	// released instead of lingering.
	pollReadable = unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL
)
