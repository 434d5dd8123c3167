// Package daemon serves a link store over a Unix domain socket so that
// several processes can share one engine, and provides a client that
// implements links.Store by forwarding over the socket.
// See docs/ARCHITECTURE.md § Daemon.
package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/linkforge/doublets/pkg/links"
)

// Server accepts socket clients and applies their requests to one store.
type Server struct {
	store      links.Store
	socketPath string
	log        *slog.Logger

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer returns a server for the given store and socket path.
func NewServer(store links.Store, socketPath string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{store: store, socketPath: socketPath, log: log}
}

// Serve listens until ctx is cancelled. One goroutine per connection, all
// tracked under an errgroup; the socket file is removed on exit.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	// Owner-only socket.
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		ln.Close()
		return fmt.Errorf("chmod socket: %w", err)
	}
	defer os.Remove(s.socketPath)

	s.log.Info("daemon listening", "socket", s.socketPath)

	s.connMu.Lock()
	s.conns = make(map[net.Conn]struct{})
	s.connMu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Closing every active connection unblocks handlers parked in
		// scanner.Scan, so g.Wait cannot hang on an idle client.
		<-ctx.Done()
		err := ln.Close()
		s.connMu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.connMu.Unlock()
		return err
	})
	g.Go(func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("accept: %w", err)
			}
			s.connMu.Lock()
			s.conns[conn] = struct{}{}
			s.connMu.Unlock()
			g.Go(func() error {
				defer func() {
					conn.Close()
					s.connMu.Lock()
					delete(s.conns, conn)
					s.connMu.Unlock()
				}()
				s.handleConn(ctx, conn)
				return nil
			})
		}
	})

	err = g.Wait()
	s.log.Info("daemon stopped", "socket", s.socketPath)
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// handleConn processes one request line at a time until the client hangs up.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	s.log.Debug("client connected")
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.write(conn, Response{Error: fmt.Sprintf("invalid request: %v", err), Kind: KindInvalidArgument})
			continue
		}
		s.write(conn, s.dispatch(req))
	}
	if err := scanner.Err(); err != nil {
		s.log.Warn("client read failed", "error", err)
	}
	s.log.Debug("client disconnected")
}

// dispatch applies one request to the store.
func (s *Server) dispatch(req Request) Response {
	resp := Response{ReqID: req.ReqID}

	fail := func(err error) Response {
		s.log.Warn("request failed", "method", req.Method, "req_id", req.ReqID, "error", err)
		resp.Error = err.Error()
		resp.Kind = kindOf(err)
		return resp
	}

	switch req.Method {
	case MethodPing:
		resp.OK = true

	case MethodCreate:
		l, err := s.store.Create(links.LinkID(req.Source), links.LinkID(req.Target))
		if err != nil {
			return fail(err)
		}
		w := toWire(l)
		resp.OK = true
		resp.Link = &w

	case MethodRead:
		l, err := s.store.Read(links.LinkID(req.ID))
		if err != nil {
			return fail(err)
		}
		w := toWire(l)
		resp.OK = true
		resp.Link = &w

	case MethodScan:
		batch := []wireLink{}
		err := s.store.Scan(func(l links.Link) bool {
			batch = append(batch, toWire(l))
			return true
		})
		if err != nil {
			return fail(err)
		}
		resp.OK = true
		resp.Links = batch

	case MethodUpdate:
		l, err := s.store.Update(links.LinkID(req.ID), links.LinkID(req.Source), links.LinkID(req.Target))
		if err != nil {
			return fail(err)
		}
		w := toWire(l)
		resp.OK = true
		resp.Link = &w

	case MethodDelete:
		if err := s.store.Delete(links.LinkID(req.ID)); err != nil {
			return fail(err)
		}
		resp.OK = true

	default:
		return fail(fmt.Errorf("unknown method %q: %w", req.Method, links.ErrInvalidArgument))
	}
	return resp
}

// write sends one response line. A write failure aborts silently; the read
// loop notices the dead connection on its next scan.
func (s *Server) write(conn net.Conn, resp Response) {
	out, err := json.Marshal(resp)
	if err != nil {
		s.log.Error("marshal response", "error", err)
		return
	}
	out = append(out, '\n')
	if _, err := conn.Write(out); err != nil {
		s.log.Warn("client write failed", "error", err)
	}
}
