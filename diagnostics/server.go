// Package diagnostics exposes a client-side HTTP+WebSocket status surface:
// a JSON connection-pool snapshot and a streamed event feed, grounded on
// the teacher's HTTPServer (share/http_server.go) and its debug-level
// requestlog wrapping (share/server.go), generalized from "tunnel operator
// dashboard" to "gateway client operator dashboard". Not part of the wire
// protocol itself — purely an operational aid for embedding applications.
package diagnostics

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/jpillora/requestlog"
	"github.com/tomasen/realip"

	"github.com/sammck-go/rgate/gateway"
	"github.com/sammck-go/rgate/lifecycle"
	"github.com/sammck-go/rgate/logging"
)

// Event is one message broadcast by Publish to connected /events websocket
// clients. Kind is a short machine-readable label; Detail is a free-form
// human-readable message. No other package in this module calls Publish.
type Event struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server is an HTTP server exposing /stats (a JSON gateway.Pool snapshot)
// and /events (a websocket stream of Events), following the teacher's
// HTTPServer shape: an embedded lifecycle.Helper, a lazily-built listener,
// and shutdown-on-context.
type Server struct {
	lifecycle.Helper

	pool *gateway.Pool

	listener net.Listener
	server   *http.Server

	subsMu sync.Mutex
	subs   map[chan Event]struct{}
}

// NewServer constructs a diagnostics Server reporting on pool.
func NewServer(logger logging.Logger, pool *gateway.Pool) *Server {
	s := &Server{
		pool: pool,
		subs: make(map[chan Event]struct{}),
	}
	s.Init(logger.Fork("diagnostics"), s)
	return s
}

// HandleOnceShutdown closes the listener, unblocking ListenAndServe.
func (s *Server) HandleOnceShutdown(completionErr error) error {
	s.Lock.Lock()
	l := s.listener
	s.listener = nil
	s.Lock.Unlock()
	var err error
	if l != nil {
		err = l.Close()
	}
	if completionErr == nil {
		completionErr = err
	}
	return completionErr
}

// Publish broadcasts ev to every currently-connected /events subscriber.
// Slow subscribers are dropped rather than blocking the publisher.
func (s *Server) Publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) subscribe() chan Event {
	ch := make(chan Event, 16)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()
	return ch
}

func (s *Server) unsubscribe(ch chan Event) {
	s.subsMu.Lock()
	delete(s.subs, ch)
	s.subsMu.Unlock()
	close(ch)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	snap := s.pool.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.DLogf("events upgrade from %s failed: %s", realip.FromRequest(r), err)
		return
	}
	defer conn.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for ev := range ch {
		if err := conn.WriteJSON(ev); err != nil {
			return
		}
	}
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/events", s.handleEvents)

	h := http.Handler(mux)
	if s.GetLevel() >= logging.LevelDebug {
		h = requestlog.Wrap(h)
	}
	return h
}

// ListenAndServe binds addr and serves until ctx is cancelled or Close is
// called, matching the teacher's HTTPServer.ListenAndServe contract.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	err := s.DoOnceActivate(func() error {
		s.ShutdownOnContext(ctx)

		l, err := net.Listen("tcp", addr)
		if err != nil {
			return s.DLogErrorf("listen failed: %s", err)
		}
		s.Lock.Lock()
		s.listener = l
		s.Lock.Unlock()

		httpServer := &http.Server{Handler: s.handler()}
		s.server = httpServer

		go func() {
			s.Shutdown(httpServer.Serve(l))
		}()
		return nil
	}, true)
	if err == nil {
		err = s.WaitShutdown()
	}
	return err
}
