package main

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/imageio"
)

type CapacityCmd struct {
	Files []string `arg:"" help:"Images to inspect" type:"existingfile"`
}

func (c *CapacityCmd) Run(logger *slog.Logger) error {
	var errCount int
	for _, name := range c.Files {
		f, err := os.Open(name)
		if err != nil {
			errCount++
			logger.Error("could not open image", "file", name, "error", err)
			continue
		}
		cfg, format, err := imageio.DecodeConfig(f)
		f.Close()
		if err != nil {
			errCount++
			logger.Error("could not read image", "file", name, "error", err)
			continue
		}
		rect := image.Rect(0, 0, cfg.Width, cfg.Height)
		fmt.Printf("%s: %s %dx%d, %d bits, %d characters\n",
			name, format, cfg.Width, cfg.Height, stego.Capacity(rect), stego.MaxMessageLen(rect))
	}
	if errCount > 0 {
		return fmt.Errorf("error processing %d files", errCount)
	}
	return nil
}
