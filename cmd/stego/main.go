package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/parallel"

	"github.com/alecthomas/kong"
)

// Version information, set by ldflags during build.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

type Globals struct {
	LogLevel  string           `help:"Log level" enum:"debug,info,warn,error" default:"info" env:"LOG_LEVEL"`
	BandRows  int              `help:"Image rows held in memory at a time" default:"64" env:"BAND_ROWS"`
	BitBudget int              `help:"Bits read while looking for a message, negative to scan whole images" default:"8388608" env:"BIT_BUDGET"`
	MaxPixels int              `help:"Reject images with more pixels, 0 for no limit" default:"0" env:"MAX_PIXELS"`
	Workers   int              `help:"Files processed concurrently, 0 for one per CPU" default:"0" env:"WORKERS"`
	Version   kong.VersionFlag `help:"Print version information and quit" short:"v"`
}

type CLI struct {
	Globals

	Encode   EncodeCmd   `cmd:"" help:"Hide a message in an image"`
	Decode   DecodeCmd   `cmd:"" help:"Recover messages hidden in images"`
	Capacity CapacityCmd `cmd:"" help:"Show how many characters images can hold"`
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP service"`
}

func (c *CLI) Validate() error {
	return c.Globals.validate()
}

func (g *Globals) validate() error {
	if g.BitBudget > 0 && g.BitBudget < stego.SentinelBits {
		return fmt.Errorf("bit budget must be at least %d bits: %d", stego.SentinelBits, g.BitBudget)
	}
	if g.MaxPixels < 0 {
		return fmt.Errorf("invalid max pixels: %d", g.MaxPixels)
	}
	return nil
}

// options returns the codec options shared by every command.
func (g *Globals) options(extra ...stego.Option) []stego.Option {
	return append([]stego.Option{
		stego.WithBandRows(g.BandRows),
		stego.WithBitBudget(g.BitBudget),
		stego.WithMaxPixels(g.MaxPixels),
	}, extra...)
}

func (g *Globals) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("stego"),
		kong.Description("Hide printable ASCII text in the least significant bits of RGB images."),
		kong.UsageOnError(),
		kong.Vars{"version": fmt.Sprintf("stego %s (built %s, commit %s)", Version, BuildTime, GitCommit)},
	)

	logger := cli.logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err := kctx.Run(&cli.Globals, logger, parallel.New(cli.Workers))
	if err != nil {
		logger.Error("command failed", "command", kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}
