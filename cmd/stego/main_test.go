package main

import (
	"context"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	stego "github.com/RobertoBuiatti/Trabalho-esteganografia"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/imageio"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/parallel"
	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCarrier(t *testing.T, dir, name string, format imageio.Format) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 48, 32))
	for y := range 32 {
		for x := range 48 {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 5), uint8(y * 7), uint8(x + y), 0xff})
		}
	}
	path := filepath.Join(dir, name)
	require.NoError(t, writeImage(path, img, format))
	return path
}

func parse(t *testing.T, args ...string) (*CLI, *kong.Context) {
	t.Helper()
	var cli CLI
	parser, err := kong.New(&cli, kong.Vars{"version": "test"})
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)
	return &cli, kctx
}

func TestParse(t *testing.T) {
	t.Setenv("BAND_ROWS", "7")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	cli, kctx := parse(t, "serve", "--port", "8080")
	assert.Equal(t, "serve", kctx.Command())
	assert.Equal(t, 7, cli.BandRows)
	assert.Equal(t, 1<<23, cli.BitBudget)
	assert.Equal(t, 8080, cli.Serve.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cli.Serve.AllowedOrigins)
	assert.Equal(t, "30m0s", cli.Serve.MaxFileAge.String())
}

func TestValidate(t *testing.T) {
	test := []struct {
		name string
		args []string
	}{
		{"budget below marker", []string{"--bit-budget", "8", "capacity", "main_test.go"}},
		{"bad log level", []string{"--log-level", "loud", "capacity", "main_test.go"}},
		{"two message sources", []string{"encode", "main_test.go", "-m", "a", "--message-file", "main_test.go"}},
		{"negative dimension", []string{"serve", "--max-dimension=-1"}},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": "test"})
			require.NoError(t, err)
			_, err = parser.Parse(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	g := &Globals{BandRows: 5, BitBudget: 1 << 23}

	input := writeCarrier(t, dir, "carrier.bmp", imageio.BMP)
	enc := &EncodeCmd{Input: input, Message: "over the hills", Report: true}
	require.NoError(t, enc.Run(ctx, g, discard()))
	output := filepath.Join(dir, "carrier_encoded.bmp")
	assert.FileExists(t, output)

	jpg := writeCarrier(t, dir, "photo.jpg", imageio.JPEG)
	enc = &EncodeCmd{Input: jpg, Message: "far away", MaxDimension: 16}
	require.NoError(t, enc.Run(ctx, g, discard()))
	assert.FileExists(t, filepath.Join(dir, "photo_encoded.png"))

	pool := parallel.New(2)
	dec := &DecodeCmd{Files: []string{output, filepath.Join(dir, "photo_encoded.png")}, Quiet: true}
	assert.NoError(t, dec.Run(ctx, g, discard(), pool))

	dec = &DecodeCmd{Files: []string{input, filepath.Join(dir, "missing.png")}}
	assert.Error(t, dec.Run(ctx, g, discard(), pool), "missing file is an error")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	dec = &DecodeCmd{Files: []string{output}}
	assert.ErrorIs(t, dec.Run(cancelled, g, discard(), pool), context.Canceled)
}

func TestEncodeErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	g := &Globals{BandRows: 5, BitBudget: 1 << 23}
	input := writeCarrier(t, dir, "carrier.png", imageio.PNG)

	enc := &EncodeCmd{Input: input, Message: "çã"}
	assert.ErrorIs(t, enc.Run(ctx, g, discard()), stego.ErrEmptyPayload)

	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'a'
	}
	enc = &EncodeCmd{Input: input, Message: string(long)}
	err := enc.Run(ctx, g, discard())
	assert.ErrorIs(t, err, stego.ErrInsufficientCapacity)
	assert.ErrorContains(t, err, "1000 characters, 48x32 holds at most 574")

	text := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(text, []byte("not an image"), 0o644))
	enc = &EncodeCmd{Input: text, Message: "x"}
	assert.Error(t, enc.Run(ctx, g, discard()))
}

func TestCapacity(t *testing.T) {
	dir := t.TempDir()
	input := writeCarrier(t, dir, "carrier.png", imageio.PNG)
	assert.NoError(t, (&CapacityCmd{Files: []string{input}}).Run(discard()))
	assert.Error(t, (&CapacityCmd{Files: []string{filepath.Join(dir, "nope.png")}}).Run(discard()))
}
