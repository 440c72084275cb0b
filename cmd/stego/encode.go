package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/bitconv"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/imageio"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/quality"
)

type EncodeCmd struct {
	Input        string `arg:"" help:"Carrier image" type:"existingfile"`
	Output       string `short:"o" help:"Output file. Defaults to <input>_encoded.<ext> next to the input"`
	Message      string `short:"m" help:"Message to hide"`
	MessageFile  string `help:"Read the message from a file" type:"existingfile"`
	MaxDimension int    `help:"Scale the carrier down so that neither side exceeds this size, 0 keeps it" default:"0"`
	Report       bool   `help:"Log how much the carrier was changed"`
}

func (c *EncodeCmd) Validate() error {
	switch {
	case c.Message != "" && c.MessageFile != "":
		return fmt.Errorf("--message and --message-file are mutually exclusive")
	case c.MaxDimension < 0:
		return fmt.Errorf("invalid max dimension: %d", c.MaxDimension)
	}
	return nil
}

func (c *EncodeCmd) Run(ctx context.Context, g *Globals, logger *slog.Logger) error {
	logger = logger.With("file", c.Input)

	message := c.Message
	if c.MessageFile != "" {
		data, err := os.ReadFile(c.MessageFile)
		if err != nil {
			return fmt.Errorf("could not read message file %q: %w", c.MessageFile, err)
		}
		message = strings.TrimRight(string(data), "\r\n")
	}

	codec, err := stego.New(g.options(stego.WithRequireMessage())...)
	if err != nil {
		return err
	}

	src, format, err := readImage(c.Input, g.MaxPixels)
	if err != nil {
		return err
	}
	src = imageio.Fit(src, c.MaxDimension)
	logger.Debug("carrier loaded", "format", format, "bounds", src.Bounds(),
		"max_chars", stego.MaxMessageLen(src.Bounds()))

	size := src.Bounds().Size()
	if bits := bitconv.PayloadBits(message); !stego.CheckCapacity(size.X, size.Y, bits) {
		return fmt.Errorf("%w: %d characters, %dx%d holds at most %d",
			stego.ErrInsufficientCapacity, bits/8, size.X, size.Y, stego.MaxMessageLen(src.Bounds()))
	}

	dst, err := codec.Encode(ctx, src, message)
	if err != nil {
		return err
	}

	out := imageio.OutputFormat(format)
	output := c.Output
	if output == "" {
		base := strings.TrimSuffix(c.Input, filepath.Ext(c.Input))
		output = base + "_encoded." + out.Extension()
	} else if f, err := imageio.FormatFromFilename(output); err != nil || f != out {
		logger.Warn("output extension does not match the written format", "output", output, "format", out)
	}

	if err := writeImage(output, dst, out); err != nil {
		return err
	}
	logger.Info("message hidden", "output", output, "format", out, "chars", len(message))

	if c.Report {
		r, err := quality.Compare(src, dst)
		if err != nil {
			return err
		}
		logger.Info("distortion", "channels", r.Channels, "changed", r.Changed,
			"max_delta", r.MaxDelta, "mse", r.MSE, "psnr", r.PSNR)
	}
	return nil
}

func readImage(path string, maxPixels int) (image.Image, imageio.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()
	img, format, err := imageio.Decode(f, maxPixels)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", stego.ErrInvalidImage, err)
	}
	return img, format, nil
}

func writeImage(path string, img image.Image, format imageio.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}
	if err := imageio.Encode(f, img, format); err != nil {
		f.Close()
		return fmt.Errorf("could not write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %q: %w", path, err)
	}
	return nil
}
