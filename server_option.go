//go:build linux
// +build linux

package tinyhttpd

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ServerOption is an option for configuring a Server.
type ServerOption func(*Server) error

// WithCapacity sets the number of client slots.
func WithCapacity(n int) ServerOption {
	return func(s *Server) error {
		if n < 1 {
			return errors.Errorf("invalid capacity %d", n)
		}
		s.capacity = n
		return nil
	}
}

// WithWaitTimeout sets the timeout of a single readiness wait.
func WithWaitTimeout(d time.Duration) ServerOption {
	return func(s *Server) error {
		if d <= 0 {
			return errors.Errorf("invalid wait timeout %s", d)
		}
		s.waitTimeout = d
		return nil
	}
}

// WithIOTimeout sets the read and write timeout of client connections.
func WithIOTimeout(d time.Duration) ServerOption {
	return func(s *Server) error {
		if d <= 0 {
			return errors.Errorf("invalid io timeout %s", d)
		}
		s.ioTimeout = d
		return nil
	}
}

// WithHandler sets the Handler invoked for every readable client.
func WithHandler(h Handler) ServerOption {
	return func(s *Server) error {
		if h == nil {
			return errors.New("nil handler")
		}
		s.handler = h
		return nil
	}
}

// WithOverflowHandler sets a Handler that is given a connection which could
// not get a slot, right before it is closed.
func WithOverflowHandler(h Handler) ServerOption {
	return func(s *Server) error {
		s.overflow = h
		return nil
	}
}

// WithMultiplexer replaces the poll(2) based Multiplexer.
func WithMultiplexer(m Multiplexer) ServerOption {
	return func(s *Server) error {
		if m == nil {
			return errors.New("nil multiplexer")
		}
		s.mux = m
		return nil
	}
}

// WithShutdown shares a Shutdown, typically one bound to process signals.
func WithShutdown(sd *Shutdown) ServerOption {
	return func(s *Server) error {
		if sd == nil {
			return errors.New("nil shutdown")
		}
		s.shutdown = sd
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ServerOption {
	return func(s *Server) error {
		s.log = l
		return nil
	}
}

// WithErrHandler is used to handle transient errors that do not stop the
// server.
func WithErrHandler(f func(error)) ServerOption {
	return func(s *Server) error {
		s.errHandler = f
		return nil
	}
}
