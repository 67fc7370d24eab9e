// Package rpc implements spec.md §4.13's dispatch and the accept loop
// around it: a bounded worker-per-connection TCP server that decodes
// rpcenvelope frames and routes them into internal/node.
package rpc

import (
	"net"
	"sync"
	"time"

	"github.com/yobicash/yobinode/internal/node"
	"github.com/yobicash/yobinode/internal/rpcenvelope"
	"github.com/yobicash/yobinode/internal/yerrors"
	"github.com/yobicash/yobinode/pkg/logging"
)

// ReadTimeout and WriteTimeout bound every per-frame socket operation
// (spec.md §5 "Timeouts"); a deadline miss surfaces as IO and the
// connection is dropped.
const (
	ReadTimeout  = 30 * time.Second
	WriteTimeout = 30 * time.Second
)

// Server is the node's TCP front end: one goroutine per accepted
// connection, bounded by a counting semaphore sized to config.MaxConns
// (spec.md §5's MaxConnectionsReached, no queueing on overflow).
type Server struct {
	node *node.Node
	log  *logging.Logger

	listener net.Listener
	sem      chan struct{}

	wg   sync.WaitGroup
	quit chan struct{}
	once sync.Once
}

// NewServer builds a Server bounded to maxConns concurrent connections.
func NewServer(n *node.Node, maxConns uint16) *Server {
	if maxConns == 0 {
		maxConns = 1
	}
	return &Server{
		node: n,
		log:  logging.GetDefault().Component("rpc"),
		sem:  make(chan struct{}, maxConns),
		quit: make(chan struct{}),
	}
}

// Start opens addr and begins accepting connections in the background.
func (s *Server) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return yerrors.Wrap(yerrors.IO, "Server.Start", err)
	}
	s.listener = l
	s.wg.Add(1)
	go s.acceptLoop()
	s.log.Info("rpc server started", "addr", addr)
	return nil
}

// Addr returns the listener's bound address, useful when addr was
// passed as "host:0" for an ephemeral port (tests).
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				s.log.Warn("accept failed", "error", err)
				return
			}
		}
		select {
		case s.sem <- struct{}{}:
			s.wg.Add(1)
			go s.serve(conn)
		default:
			s.log.Warn("connection rejected",
				"error", yerrors.New(yerrors.MaxConnectionsReached, "Server.acceptLoop", "connection pool exhausted"))
			conn.Close()
		}
	}
}

// serve drives one connection's request/response loop until a
// protocol-level error or a closed connection ends it (spec.md §7:
// protocol-level errors close the connection without a response;
// logical errors become a normal Error response and the loop
// continues).
func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	defer func() { <-s.sem }()
	defer conn.Close()

	for {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))
		frame, err := rpcenvelope.ReadFrame(conn)
		if err != nil {
			if yerrors.KindOf(err) != yerrors.InvalidMessageKind {
				// Bad magic, bad status, or a short read: the stream is
				// unsynchronized, so there is no frame to answer on.
				return
			}
			// The frame itself decoded; only its KIND was out of range.
			// Answer on this connection and keep reading (spec.md §8 S6).
			conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
			if err := rpcenvelope.WriteFrame(conn, s.errorFrame(rpcenvelope.MethodUnknown, 0, err)); err != nil {
				return
			}
			continue
		}
		if frame.Status != rpcenvelope.StatusRequest {
			return
		}
		resp := s.dispatch(frame)
		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := rpcenvelope.WriteFrame(conn, resp); err != nil {
			return
		}
	}
}

// Stop closes the listener and waits for in-flight connections to
// drain before returning.
func (s *Server) Stop() error {
	s.once.Do(func() { close(s.quit) })
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	return nil
}
