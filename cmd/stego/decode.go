package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/parallel"
)

type DecodeCmd struct {
	Files []string `arg:"" help:"Images to read" type:"existingfile"`
	Quiet bool     `short:"q" help:"Print only the messages, without file names"`
}

func (c *DecodeCmd) Run(ctx context.Context, g *Globals, logger *slog.Logger, pool *parallel.Pool) error {
	codec, err := stego.New(g.options()...)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	var foundCount, missingCount, errCount atomic.Uint64
	for _, name := range c.Files {
		if ctx.Err() != nil {
			break
		}
		pool.Go(func() {
			logger := logger.With("file", name)
			f, err := os.Open(name)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not open image", "error", err)
				return
			}
			defer f.Close()

			message, found, err := codec.DecodeStream(ctx, f)
			if err != nil {
				errCount.Add(1)
				logger.Error("could not decode image", "error", err)
				return
			}
			if !found {
				missingCount.Add(1)
				logger.Info("no hidden message")
				return
			}
			foundCount.Add(1)

			mu.Lock()
			defer mu.Unlock()
			if c.Quiet {
				fmt.Println(message)
			} else {
				fmt.Printf("%s: %s\n", name, message)
			}
		})
	}

	pool.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	errors := errCount.Load()
	logger.Debug("stats", "found", foundCount.Load(), "missing", missingCount.Load(), "errors", errors)
	if errors > 0 {
		return fmt.Errorf("error processing %d files", errors)
	}
	return nil
}
