// File: internal/metrics/server.go
package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/iyunix/go-meddy/internal/logging"
)

// Server exposes a Recorder on its own listener, for processes that have no
// API router of their own (the task worker).
type Server struct {
	recorder *Recorder
	addr     string
	logger   logging.Logger

	server   *http.Server
	listener net.Listener
}

func NewServer(addr string, recorder *Recorder, logger logging.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:9091"
	}
	return &Server{recorder: recorder, addr: addr, logger: logging.OrNoOp(logger)}
}

// Handler serves /metrics and a plain /health.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.recorder.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		s.logger.Info("Metrics server starting", "addr", ln.Addr().String())
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", "error", err)
		}
	}()
	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
