package gameserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/alxayo/go-arcade/internal/bufpool"
	"github.com/alxayo/go-arcade/internal/dispatch"
	"github.com/alxayo/go-arcade/internal/events"
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/metrics"
	"github.com/alxayo/go-arcade/internal/playerregistry"
	"github.com/alxayo/go-arcade/internal/wire"
)

// readBufferSize is the fixed size of one socket read; the wire registry
// imposes no framing of its own, so one read is one packet.
const readBufferSize = 4096

// Server accepts TCP connections and drives each one's read/dispatch/write
// loop to completion.
type Server struct {
	cfg Config
	log *logging.Logger

	registry   *wire.Registry
	dispatcher *dispatch.Dispatcher
	players    playerregistry.Registry
	events     *events.Manager
	metrics    *metrics.Metrics

	mu          sync.RWMutex
	listener    net.Listener
	conns       map[string]*Connection
	closing     bool
	ctx         context.Context
	cancel      context.CancelFunc
	acceptingWg sync.WaitGroup
}

// New creates an unstarted Server wired to the given collaborators. players,
// evt, and m may be nil; nil substitutes a no-op or in-memory default.
func New(cfg Config, registry *wire.Registry, dispatcher *dispatch.Dispatcher,
	players playerregistry.Registry, evt *events.Manager, m *metrics.Metrics, log *logging.Logger) *Server {
	cfg.applyDefaults()
	if players == nil {
		players = playerregistry.NewInMemory()
	}
	if m == nil {
		m = metrics.Noop()
	}
	if log == nil {
		log = logging.NoOp()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:        cfg,
		log:        log.WithTag("gameserver.server"),
		registry:   registry,
		dispatcher: dispatcher,
		players:    players,
		events:     evt,
		metrics:    m,
		conns:      make(map[string]*Connection),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening and launches the accept loop. Safe to call once.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return errors.New("gameserver: already started")
	}
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("gameserver: listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.Info("gameserver listening", "addr", ln.Addr().String())
	s.acceptingWg.Add(1)
	go s.acceptLoop()
	return nil
}

func (s *Server) acceptLoop() {
	defer s.acceptingWg.Done()
	for {
		s.mu.RLock()
		ln := s.listener
		closing := s.closing
		s.mu.RUnlock()
		if ln == nil {
			return
		}

		raw, err := ln.Accept()
		if err != nil {
			if closing || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn("accept error", "error", err)
			return
		}

		conn := newConnection(s.ctx, raw, s.log)
		s.mu.Lock()
		s.conns[conn.ID()] = conn
		s.mu.Unlock()

		s.metrics.ActiveConnections.Inc()
		s.log.Info("connection accepted", "conn_id", conn.ID(), "remote", conn.RemoteAddress().String())
		s.fire(events.ConnectionAccept, conn)

		s.acceptingWg.Add(1)
		go s.serveConnection(conn)
	}
}

// serveConnection drives one connection's read → dispatch → write loop
// until the connection closes or the server shuts down. A panic anywhere in
// the loop is recovered here so one connection's failure never affects
// siblings.
func (s *Server) serveConnection(conn *Connection) {
	defer s.acceptingWg.Done()
	defer s.teardownConnection(conn)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("connection goroutine panicked", "conn_id", conn.ID(), "recovered", fmt.Sprintf("%v", r))
		}
	}()

	for {
		select {
		case <-conn.ctx.Done():
			return
		default:
		}

		n, packet, err := conn.Read(readBufferSize)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Debug(func() string { return fmt.Sprintf("read closed: %v", err) })
			}
			return
		}
		if n == 0 {
			bufpool.Put(packet)
			s.log.Debug(func() string { return "read returned no data, closing connection" })
			return
		}

		s.metrics.PacketsReceived.Inc()
		s.players.UpdateLastActivity(conn.PlayerID())
		s.handlePacket(conn, packet)
		bufpool.Put(packet)
	}
}

// handlePacket runs one packet through format identification, decode,
// materialization, and dispatch, in the order fixed by the Connection
// Server's data-flow contract.
func (s *Server) handlePacket(conn *Connection, packet []byte) {
	candidates := s.registry.IdentifyFormat(packet)

	var (
		format    wire.Format
		decoded   any
		succeeded []string
	)
	for _, f := range candidates {
		d, err := s.safeTryDecode(f, packet)
		if err != nil {
			s.metrics.DecodeFailures.Inc()
			continue
		}
		succeeded = append(succeeded, f.Name())
		if format == nil {
			format, decoded = f, d
		}
	}
	if len(succeeded) > 1 {
		s.metrics.AmbiguousDecodes.Inc()
		s.log.Warn("ambiguous decode, multiple formats succeeded; using first registered",
			"succeeded", succeeded, "winner", format.Name())
	}
	if format == nil {
		return
	}
	msg := format.Materialize(decoded)

	s.metrics.PacketsDispatched.Inc()
	handlers := s.dispatcher.FindHandlerFor(msg)
	if len(handlers) == 1 && handlers[0].MessageType() == "*" {
		s.metrics.DispatchMisses.Inc()
		s.fire(events.DispatchMiss, conn)
	}

	for _, h := range handlers {
		hctx := dispatch.NewHandlerContext(conn.ctx, conn.PlayerID(), msg, conn.sendRaw, conn.updatePlayerID)
		if err := s.invokeHandler(h, hctx); err != nil {
			s.log.Error("handler returned error", "conn_id", conn.ID(), "type", msg.Type(), "error", err)
		}
	}
}

// safeTryDecode calls f.TryDecode, recovering a panic into an error so one
// misbehaving format is skipped rather than unwinding into serveConnection's
// outer recover and killing the whole connection.
func (s *Server) safeTryDecode(f wire.Format, packet []byte) (decoded any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("format %q TryDecode panicked: %v", f.Name(), r)
			s.log.Error("format TryDecode panicked, skipping format", "format", f.Name(), "recovered", fmt.Sprintf("%v", r))
		}
	}()
	return f.TryDecode(packet)
}

// invokeHandler calls h.Handle. A panic is not recovered here: it unwinds
// into serveConnection's recover, which tears down only this connection.
func (s *Server) invokeHandler(h dispatch.Handler, ctx *dispatch.HandlerContext) error {
	return h.Handle(ctx)
}

func (s *Server) teardownConnection(conn *Connection) {
	_ = conn.netConn.Close()
	conn.cancel()

	s.mu.Lock()
	delete(s.conns, conn.ID())
	s.mu.Unlock()

	s.metrics.ActiveConnections.Dec()
	if playerID := conn.PlayerID(); playerID != UndeterminedPlayerID {
		s.players.MarkOffline(playerID)
		s.players.SetLastLogin(playerID, time.Now())
		s.players.ClearConnectionContext(playerID)
		s.players.CancelPlayerTasks(playerID)
	}
	s.log.Info("connection closed", "conn_id", conn.ID())
	s.fire(events.ConnectionClose, conn)
}

// Stop stops accepting new connections, closes every tracked connection,
// and waits for all connection goroutines and the accept loop to exit.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.listener == nil {
		s.mu.Unlock()
		return nil
	}
	s.closing = true
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	_ = ln.Close()
	s.cancel()

	s.mu.RLock()
	conns := make([]*Connection, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.RUnlock()
	for _, c := range conns {
		_ = c.netConn.Close()
	}

	s.acceptingWg.Wait()
	s.log.Info("gameserver stopped")
	return nil
}

// Addr returns the bound listener address, or nil if not started.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ConnectionCount reports the number of currently tracked connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conns)
}

func (s *Server) fire(t events.Type, conn *Connection) {
	if s.events == nil {
		return
	}
	s.events.Fire(context.Background(), events.New(t).WithPlayerID(conn.PlayerID()).WithData("conn_id", conn.ID()))
}
