//go:build linux
// +build linux

package tinyhttpd

import (
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// State is the lifecycle state of a Server.
type State int32

const (
	// StateInit is the state before Listen.
	StateInit State = iota
	// StateListening is the state of the readiness loop.
	StateListening
	// StateDraining is the state while open connections are closed.
	StateDraining
	// StateClosed is the terminal state.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Stats is a snapshot of the server counters.
type Stats struct {
	Accepted     uint64
	Served       uint64
	Dropped      uint64
	AcceptErrors uint64
	Active       int64
}

// Server multiplexes a listener and a fixed number of client slots over a
// single poll loop. Accepting and servicing happen sequentially on the
// goroutine running Serve.
type Server struct {
	port        int
	capacity    int
	waitTimeout time.Duration
	ioTimeout   time.Duration
	handler     Handler
	overflow    Handler
	mux         Multiplexer
	shutdown    *Shutdown
	log         zerolog.Logger
	errHandler  func(error)

	listener *Listener
	slots    *SlotTable
	state    int32

	accepted     uint64
	served       uint64
	dropped      uint64
	acceptErrors uint64
	active       int64
}

// New returns a Server for port. No socket is created until Listen.
func New(port int, opts ...ServerOption) (*Server, error) {
	if !ValidPort(port) {
		return nil, errors.Wrapf(ErrInvalidPort, "port %d", port)
	}
	s := &Server{
		port:        port,
		capacity:    DefaultCapacity,
		waitTimeout: DefaultWaitTimeout,
		ioTimeout:   DefaultIOTimeout,
		handler:     DefaultResponse(),
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.shutdown == nil {
		s.shutdown = NewShutdown()
	}
	if s.mux == nil {
		s.mux = NewPoller(s.capacity)
	}
	return s, nil
}

// Listen opens the listening socket.
func (s *Server) Listen() error {
	if s.State() != StateInit {
		return ErrServerClosed
	}
	slots, err := NewSlotTable(s.capacity)
	if err != nil {
		return err
	}
	l, err := Listen(s.port)
	if err != nil {
		return err
	}
	s.listener = l
	s.slots = slots
	s.setState(StateListening)
	s.log.Info().Int("port", s.port).Int("capacity", s.capacity).Msg("listening")
	return nil
}

// ListenAndServe opens the listener and runs the loop until shutdown.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

// Serve runs the readiness loop until shutdown is requested or the wait
// fails, then closes every open connection and the listener. A nil error
// means a clean shutdown.
func (s *Server) Serve() error {
	switch s.State() {
	case StateInit:
		return ErrNotListening
	case StateListening:
	default:
		return ErrServerClosed
	}
	defer s.drain()

	for {
		occupied := s.slots.Occupied()
		fds := make([]int, len(occupied))
		for i, slot := range occupied {
			fds[i] = slot.Conn.Fd()
		}

		ready, err := s.mux.Wait(s.listener.Fd(), fds, s.waitTimeout)
		if s.shutdown.Requested() {
			s.log.Info().Msg("shutdown requested")
			return nil
		}
		if err == ErrInterrupted {
			s.log.Debug().Msg("wait interrupted")
			continue
		}
		if err != nil {
			s.log.Error().Err(err).Msg("readiness wait failed")
			return errors.Wrap(err, "readiness wait failed")
		}
		if ready.Empty() {
			continue
		}

		if ready.Listener() {
			s.acceptOnce()
		}
		for _, slot := range occupied {
			if ready.Has(slot.Conn.Fd()) {
				s.service(slot)
			}
		}
	}
}

func (s *Server) acceptOnce() {
	c, err := s.listener.Accept()
	switch {
	case err == ErrInterrupted, err == ErrWouldBlock:
		return
	case err != nil:
		atomic.AddUint64(&s.acceptErrors, 1)
		s.log.Warn().Err(err).Msg("accept failed")
		s.handleErr(err)
		return
	}
	atomic.AddUint64(&s.accepted, 1)
	log := s.log.With().
		Str("conn", c.ID().String()).
		Int("fd", c.Fd()).
		Str("remote", c.RemoteAddr().String()).
		Logger()

	if err := c.SetIOTimeout(s.ioTimeout); err != nil {
		log.Warn().Err(err).Msg("io timeout not set")
		s.handleErr(err)
	}

	idx, err := s.slots.TryAcquire(c)
	if err != nil {
		atomic.AddUint64(&s.dropped, 1)
		log.Warn().Err(err).Msg("connection dropped")
		if s.overflow != nil {
			if err := s.overflow.Serve(c); err != nil {
				log.Debug().Err(err).Msg("overflow reply failed")
			}
		}
		if err := c.Close(); err != nil {
			s.handleErr(err)
		}
		return
	}
	atomic.AddInt64(&s.active, 1)
	log.Info().Int("slot", idx).Msg("accepted")
}

// service runs one exchange on slot, then closes and releases it whatever
// the outcome.
func (s *Server) service(slot Slot) {
	log := s.log.With().
		Str("conn", slot.Conn.ID().String()).
		Int("fd", slot.Conn.Fd()).
		Int("slot", slot.Index).
		Logger()

	if err := s.handler.Serve(slot.Conn); err != nil {
		log.Warn().Err(err).Msg("exchange failed")
		s.handleErr(err)
	} else {
		atomic.AddUint64(&s.served, 1)
		log.Info().Msg("served")
	}
	s.release(slot.Index)
}

func (s *Server) release(idx int) {
	c, ok := s.slots.Release(idx)
	if !ok {
		return
	}
	atomic.AddInt64(&s.active, -1)
	if err := c.Close(); err != nil {
		s.log.Debug().Err(err).Int("slot", idx).Msg("close failed")
	}
}

func (s *Server) drain() {
	s.setState(StateDraining)
	occupied := s.slots.Occupied()
	for _, slot := range occupied {
		s.release(slot.Index)
	}
	if err := s.listener.Close(); err != nil {
		s.log.Error().Err(err).Msg("closing listener failed")
	}
	s.setState(StateClosed)
	s.log.Info().Int("drained", len(occupied)).Msg("server closed")
}

func (s *Server) handleErr(err error) {
	if s.errHandler != nil {
		s.errHandler(err)
	}
}

// Shutdown requests the loop to stop. It returns without waiting, the loop
// observes the request after its current wait.
func (s *Server) Shutdown() {
	s.shutdown.Trigger()
}

// Port returns the configured port.
func (s *Server) Port() int {
	return s.port
}

// State returns the lifecycle state.
func (s *Server) State() State {
	return State(atomic.LoadInt32(&s.state))
}

func (s *Server) setState(st State) {
	atomic.StoreInt32(&s.state, int32(st))
}

// Stats returns a snapshot of the counters. It is safe to call from any
// goroutine.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted:     atomic.LoadUint64(&s.accepted),
		Served:       atomic.LoadUint64(&s.served),
		Dropped:      atomic.LoadUint64(&s.dropped),
		AcceptErrors: atomic.LoadUint64(&s.acceptErrors),
		Active:       atomic.LoadInt64(&s.active),
	}
}
