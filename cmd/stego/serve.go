package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/server"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/spool"
)

type ServeCmd struct {
	Host             string        `help:"Interface to listen on" default:"0.0.0.0" env:"HOST"`
	Port             int           `help:"Port to listen on" default:"5000" env:"PORT"`
	UploadDir        string        `help:"Directory for uploads in flight. Emptied at startup" default:"uploads" env:"UPLOAD_DIR"`
	MaxContentLength int64         `help:"Largest accepted request body, in bytes" default:"5242880" env:"MAX_CONTENT_LENGTH"`
	MaxMemoryUsage   uint64        `help:"Refuse work while the heap is larger, in bytes. 0 disables the check" default:"471859200" env:"MAX_MEMORY_USAGE"`
	MaxFileAge       time.Duration `help:"Remove uploads older than this" default:"30m" env:"MAX_FILE_AGE"`
	MaxUploadDirSize int64         `help:"Remove the oldest uploads beyond this many bytes" default:"52428800" env:"MAX_UPLOAD_DIR_SIZE"`
	CleanupInterval  time.Duration `help:"Time between upload directory sweeps" default:"5m" env:"CLEANUP_INTERVAL"`
	MaxDimension     int           `help:"Scale carriers down so that neither side exceeds this size, 0 keeps them" default:"0" env:"MAX_DIMENSION"`
	AllowedOrigins   []string      `help:"Origins allowed by CORS, * for any" default:"https://trabalho-esteganografia.onrender.com,http://localhost:8000,http://localhost:5000,http://127.0.0.1:5000,http://127.0.0.1:8000" env:"ALLOWED_ORIGINS"`
	Production       bool          `help:"Report the production environment on /health" env:"RENDER"`
}

func (c *ServeCmd) Validate() error {
	switch {
	case c.Port < 0 || c.Port > 65535:
		return fmt.Errorf("invalid port: %d", c.Port)
	case c.MaxContentLength <= 0:
		return fmt.Errorf("invalid max content length: %d", c.MaxContentLength)
	case c.MaxFileAge <= 0:
		return fmt.Errorf("invalid max file age: %s", c.MaxFileAge)
	case c.CleanupInterval <= 0:
		return fmt.Errorf("invalid cleanup interval: %s", c.CleanupInterval)
	case c.MaxDimension < 0:
		return fmt.Errorf("invalid max dimension: %d", c.MaxDimension)
	}
	return nil
}

func (c *ServeCmd) Run(ctx context.Context, g *Globals, logger *slog.Logger) error {
	codec, err := stego.New(g.options(
		stego.WithRequireMessage(),
		stego.WithMaxDimension(c.MaxDimension),
	)...)
	if err != nil {
		return err
	}

	dir, err := spool.Open(c.UploadDir,
		spool.WithMaxAge(c.MaxFileAge),
		spool.WithMaxSize(c.MaxUploadDirSize),
		spool.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	go dir.Run(ctx, c.CleanupInterval)

	env := "development"
	if c.Production {
		env = "production"
	}
	srv := server.New(codec, dir, server.Config{
		MaxContentLength: c.MaxContentLength,
		MaxMemory:        c.MaxMemoryUsage,
		AllowedOrigins:   c.AllowedOrigins,
		Environment:      env,
	}, logger)
	return srv.Run(ctx, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)))
}
