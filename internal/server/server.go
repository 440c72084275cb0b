// Package server exposes the codec over HTTP.
//
// Routes:
//
//	GET  /health  service status, memory and spool usage
//	POST /encode  multipart "image" + "message", responds with the stego image
//	POST /decode  multipart "image", responds with {"message", "success"}
//
// Errors are JSON objects with "error", "details" and a stable "code".
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/spool"
)

const (
	DefaultMaxContentLength = 5 << 20
	DefaultMaxMemory        = 450 << 20
)

type Config struct {
	// MaxContentLength bounds the size of a request body, in bytes.
	MaxContentLength int64
	// MaxMemory makes the service answer 503 while the heap is larger, in bytes. 0 disables the check.
	MaxMemory uint64
	// AllowedOrigins lists the origins allowed by CORS. "*" allows any origin.
	AllowedOrigins []string
	Environment    string
}

type Server struct {
	codec  *stego.Codec
	spool  *spool.Dir
	cfg    Config
	logger *slog.Logger

	heapInUse func() uint64
}

func New(codec *stego.Codec, dir *spool.Dir, cfg Config, logger *slog.Logger) *Server {
	if cfg.MaxContentLength <= 0 {
		cfg.MaxContentLength = DefaultMaxContentLength
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		codec:     codec,
		spool:     dir,
		cfg:       cfg,
		logger:    logger,
		heapInUse: heapInUse,
	}
}

// Handler returns the routes wrapped in CORS and access logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /encode", s.handleEncode)
	mux.HandleFunc("POST /decode", s.handleDecode)
	return s.logRequests(cors(s.cfg.AllowedOrigins, mux))
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      2 * time.Minute,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr, "environment", s.cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) memoryOK() bool {
	return s.cfg.MaxMemory == 0 || s.heapInUse() < s.cfg.MaxMemory
}

func heapInUse() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.HeapInuse
}
