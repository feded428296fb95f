//go:build linux
// +build linux

package tinyhttpd

import "github.com/pkg/errors"

var (
	// ErrInvalidPort is returned when a listening port is outside of
	// (0, 65535].
	ErrInvalidPort = errors.New("illegal port number")

	// ErrInterrupted is returned by a wait or accept that was interrupted by
	// a signal. It is not a failure, callers should re-check the shutdown
	// flag and carry on.
	ErrInterrupted = errors.New("interrupted by signal")

	// ErrWouldBlock is returned by Accept when the listener was reported
	// ready but no connection was pending anymore.
	ErrWouldBlock = errors.New("no pending connection")

	// ErrTableFull is returned when every slot is occupied.
	ErrTableFull = errors.New("slot table full")

	// ErrDuplicateConn is returned when a connection is already held by a
	// slot.
	ErrDuplicateConn = errors.New("connection already holds a slot")

	// ErrNotListening is returned by Serve when Listen was not called.
	ErrNotListening = errors.New("server is not listening")

	// ErrServerClosed is returned when a closed server is reused.
	ErrServerClosed = errors.New("server closed")
)

