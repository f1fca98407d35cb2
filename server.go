package main

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"golang.org/x/net/netutil"
)

// Server accepts connections and hands each one to its own worker goroutine.
type Server struct {
	cfg     Config
	handler *Handler

	mu     sync.Mutex
	active map[net.Conn]struct{}
}

func NewServer(cfg Config, handler *Handler) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		active:  make(map[net.Conn]struct{}),
	}
}

// Serve runs the accept loop until ctx is cancelled or the listener fails,
// then waits for in-flight connections to finish. Connections still open
// after Config.ShutdownTimeout are interrupted.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.MaxConns > 0 {
		ln = netutil.LimitListener(ln, s.cfg.MaxConns)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			ln.Close()
		case <-stop:
		}
	}()

	var wg sync.WaitGroup
	defer s.drain(&wg)

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else if backoff *= 2; backoff > time.Second {
				backoff = time.Second
			}
			s.cfg.Logger.Printf("E accept error: %v; retrying in %v", err, backoff)
			time.Sleep(backoff)
			continue
		}
		backoff = 0
		if s.cfg.Verbose {
			s.cfg.Logger.Printf("I Connection opened. (%s)", conn.RemoteAddr())
		}

		s.track(conn, true)
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.track(conn, false)
			s.handler.Serve(conn) // handler takes the ownership of |conn|
		}()
	}
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.active[conn] = struct{}{}
	} else {
		delete(s.active, conn)
	}
}

func (s *Server) activeConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// interrupt expires the deadlines of every open connection, so blocked reads
// and writes fail and each worker runs its own cleanup. The connections are
// never closed from here.
func (s *Server) interrupt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for conn := range s.active {
		conn.SetDeadline(now)
	}
}

func (s *Server) drain(wg *sync.WaitGroup) {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return
	case <-timer.C:
	}

	s.cfg.Logger.Printf("W shutdown timeout, interrupting %d connections", s.activeConns())
	// A worker may set a fresh deadline after being interrupted, so keep
	// expiring them until every worker is gone.
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		s.interrupt()
		select {
		case <-done:
			return
		case <-ticker.C:
		}
	}
}
