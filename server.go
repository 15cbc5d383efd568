package redisdns

import (
	"bufio"
	"context"
	"expvar"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ServerOptions configures a Server. Zero values fall back to the same
// defaults the CLI config layer uses.
type ServerOptions struct {
	Addr             string
	SnapshotPath     string
	Workers          int
	SnapshotInterval time.Duration
	MaxRequestSize   int
}

type serverMetrics struct {
	connections *expvar.Int
	snapshots   *expvar.Int
}

// Server is the Connection Server: it owns the TCP listener, the worker
// pool connections are handed to, and the background snapshot goroutine.
// It implements Listener so it can be started and stopped uniformly.
type Server struct {
	ds   *Datastore
	disp *Dispatcher
	opts ServerOptions

	pool     *Pool
	listener net.Listener
	metrics  *serverMetrics

	mu       sync.Mutex
	stopping bool

	cancel context.CancelFunc
	snapWG sync.WaitGroup
}

// NewServer builds a Server bound to ds, with opts defaulted where unset.
func NewServer(ds *Datastore, opts ServerOptions) *Server {
	if opts.Addr == "" {
		opts.Addr = ":6379"
	}
	if opts.SnapshotPath == "" {
		opts.SnapshotPath = "dump.my_rdb"
	}
	if opts.SnapshotInterval <= 0 {
		opts.SnapshotInterval = 300 * time.Second
	}
	s := &Server{
		ds:   ds,
		disp: NewDispatcher(ds),
		opts: opts,
		metrics: &serverMetrics{
			connections: getVarInt("server", opts.Addr, "connections"),
			snapshots:   getVarInt("server", opts.Addr, "snapshots"),
		},
	}
	s.pool = NewPool(opts.Workers, 0, s.handleConn)
	return s
}

// String implements Listener.
func (s *Server) String() string {
	return fmt.Sprintf("redisdns(%s)", s.opts.Addr)
}

// Addr returns the address the listener is actually bound to, useful when
// ServerOptions.Addr requested an ephemeral port. It returns false until
// Start has bound the listener.
func (s *Server) Addr() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return "", false
	}
	return s.listener.Addr().String(), true
}

// Start loads any existing snapshot, binds the listener, launches the
// worker pool and the background snapshot goroutine, then runs the
// accept loop until Stop closes the listener.
func (s *Server) Start() error {
	if err := s.ds.LoadFromFile(s.opts.SnapshotPath); err != nil {
		Log.WithError(err).Warn("no snapshot loaded, starting empty")
	}

	lc := net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", s.opts.Addr)
	if err != nil {
		return wrapf(err, "listening on %s", s.opts.Addr)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	Log.WithField("addr", s.opts.Addr).Info("listening")

	s.pool.Start()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.snapWG.Add(1)
	go s.snapshotLoop(ctx)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopping := s.stopping
			s.mu.Unlock()
			if stopping {
				return nil
			}
			Log.WithError(err).Error("accept failed")
			continue
		}
		if err := s.pool.Submit(conn); err != nil {
			Log.WithError(err).Warn("rejecting connection, pool stopped")
			conn.Close()
		}
	}
}

// Stop closes the listener, cancels the snapshot loop, drains the worker
// pool, and writes a final snapshot before returning.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return nil
	}
	s.stopping = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		ln.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.snapWG.Wait()
	s.pool.Stop()

	if err := s.ds.DumpToFile(s.opts.SnapshotPath); err != nil {
		Log.WithError(err).Error("final snapshot failed")
		return err
	}
	s.metrics.snapshots.Add(1)
	return nil
}

// snapshotLoop periodically dumps the datastore until ctx is cancelled,
// grounded on the teacher's interval-save goroutine but cancellation-aware
// so Stop never leaves it running past shutdown.
func (s *Server) snapshotLoop(ctx context.Context) {
	defer s.snapWG.Done()
	ticker := time.NewTicker(s.opts.SnapshotInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.ds.DumpToFile(s.opts.SnapshotPath); err != nil {
				Log.WithError(err).Error("periodic snapshot failed")
			} else {
				s.metrics.snapshots.Add(1)
				Log.Debug("periodic snapshot written")
			}
		}
	}
}

// handleConn services one connection end to end: read a command, dispatch
// it, write the reply, repeat until the peer disconnects or a read or write
// fails. A malformed frame gets an error reply and the loop keeps reading.
func (s *Server) handleConn(conn net.Conn) {
	connID := uuid.NewString()
	log := Log.WithField("conn", connID)
	log.Debug("accepted connection")
	s.metrics.connections.Add(1)
	defer func() {
		conn.Close()
		s.metrics.connections.Add(-1)
		log.Debug("closed connection")
	}()

	rr := NewRequestReader(conn, s.opts.MaxRequestSize)
	w := bufio.NewWriter(conn)

	for {
		tokens, err := rr.ReadCommand()
		if err != nil {
			if protoErr, ok := err.(ProtocolError); ok {
				log.WithError(protoErr).Debug("protocol error")
				if werr := WriteReply(w, ErrorReplyFromError(protoErr)); werr != nil {
					log.WithError(werr).Debug("write error")
					return
				}
				continue
			}
			if err != io.EOF {
				log.WithError(err).Debug("read error")
			}
			return
		}
		reply := s.disp.Dispatch(tokens)
		if err := WriteReply(w, reply); err != nil {
			log.WithError(err).Debug("write error")
			return
		}
	}
}
