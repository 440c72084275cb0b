package stego

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/bitconv"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/imageio"
	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/lsb"
)

const (
	// DefaultBandRows is the number of rows read and written as one unit.
	DefaultBandRows = 64
	// DefaultBitBudget bounds how many bits Decode reads while looking for the
	// end of a message, about one million characters.
	DefaultBitBudget = 1 << 23
	// SentinelBits is the size of the end-of-message marker.
	SentinelBits = bitconv.SentinelLen
)

var (
	ErrInvalidImage         = errors.New("image cannot be read as an RGB pixel grid")
	ErrInsufficientCapacity = errors.New("image is too small for the message")
	ErrEmptyPayload         = errors.New("message has no printable ASCII characters")
)

// Format is the container format of an encoded image file.
type Format = imageio.Format

// Encode hides message in src with the specified options.
// This is a convenience function that creates a Codec instance and calls its Encode method.
func Encode(ctx context.Context, src image.Image, message string, opts ...Option) (image.Image, error) {
	c, err := New(opts...)
	if err != nil {
		return nil, err
	}
	return c.Encode(ctx, src, message)
}

// Decode recovers a message hidden in src with the specified options.
// This is a convenience function that creates a Codec instance and calls its Decode method.
func Decode(ctx context.Context, src image.Image, opts ...Option) (string, bool, error) {
	c, err := New(opts...)
	if err != nil {
		return "", false, err
	}
	return c.Decode(ctx, src)
}

// Capacity returns the number of bits an image with the given bounds can hold,
// the end-of-message marker included.
func Capacity(rect image.Rectangle) int {
	return lsb.Capacity(rect)
}

// CheckCapacity reports whether payloadBits of message data, plus the
// end-of-message marker, fit into a width x height image.
func CheckCapacity(width, height, payloadBits int) bool {
	return payloadBits+SentinelBits <= lsb.Capacity(image.Rect(0, 0, width, height))
}

// MaxMessageLen returns the longest message, in characters, that fits into an
// image with the given bounds.
func MaxMessageLen(rect image.Rectangle) int {
	return max(0, (lsb.Capacity(rect)-SentinelBits)/8)
}

type Codec struct {
	shape          lsb.BandShape
	budget         int
	maxDim         int
	requireMessage bool
	maxPixels      int
}

// New initializes a codec.
// For default values, refer to the init function.
func New(opts ...Option) (*Codec, error) {
	c := new(Codec)
	if err := c.init(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode hides message in the least significant bits of src.
//
// Process:
//  1. Drops every character outside printable ASCII.
//  2. Frames the characters as 8 bits each, followed by the 16-bit end marker.
//  3. Checks that the framed bits fit, before any pixel is written.
//  4. Writes one bit per R, G and B channel in raster order, band by band.
//
// Returns ErrInsufficientCapacity if the message does not fit, and
// ErrInvalidImage if src has no pixels.
func (c *Codec) Encode(ctx context.Context, src image.Image, message string) (image.Image, error) {
	if err := validImage(src); err != nil {
		return nil, err
	}
	filtered := bitconv.Filter(message)
	if c.requireMessage && filtered == "" {
		return nil, ErrEmptyPayload
	}
	src = imageio.Fit(src, c.maxDim)

	bits := bitconv.TextToBits(filtered)
	img := lsb.NewImageSource(src)
	if err := lsb.Enable(img, bits.Bits()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInsufficientCapacity, err)
	}
	if c.budget > 0 && bits.Bits() > c.budget {
		return nil, fmt.Errorf("%w: payload %d bits exceeds the decode budget of %d bits", ErrInsufficientCapacity, bits.Bits(), c.budget)
	}
	return lsb.Embed(ctx, img, bits, c.shape)
}

// Decode recovers a message hidden in the least significant bits of src.
//
// found is false, with an empty message, when no end marker exists within the
// bit budget. When the marker is found, the message holds the characters
// before it up to the first byte that is not printable ASCII.
//
// Returns ErrInvalidImage if src has no pixels.
func (c *Codec) Decode(ctx context.Context, src image.Image) (message string, found bool, err error) {
	if err := validImage(src); err != nil {
		return "", false, err
	}
	payload, found, err := lsb.Extract(ctx, lsb.NewImageSource(src), c.shape, c.budget)
	if err != nil || !found {
		return "", false, err
	}
	return bitconv.BitsToText(payload), true, nil
}

// EncodeStream reads an image file from r, hides message in it and writes
// the result to w. The output keeps the input format when it is lossless and
// is PNG otherwise; the written format is returned.
func (c *Codec) EncodeStream(ctx context.Context, r io.Reader, w io.Writer, message string) (Format, error) {
	src, format, err := imageio.Decode(r, c.maxPixels)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	dst, err := c.Encode(ctx, src, message)
	if err != nil {
		return "", err
	}
	out := imageio.OutputFormat(format)
	if err := imageio.Encode(w, dst, out); err != nil {
		return "", fmt.Errorf("failed to write %s image: %w", out, err)
	}
	return out, nil
}

// DecodeStream reads an image file from r and recovers the message hidden in it.
func (c *Codec) DecodeStream(ctx context.Context, r io.Reader) (string, bool, error) {
	src, _, err := imageio.Decode(r, c.maxPixels)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return c.Decode(ctx, src)
}

func (c *Codec) init(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	if c.shape.IsZero() {
		c.shape = lsb.NewBandShape(DefaultBandRows)
	}
	if c.budget == 0 {
		c.budget = DefaultBitBudget
	}
	return nil
}

func validImage(src image.Image) error {
	if src == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if b := src.Bounds(); b.Empty() {
		return fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	return nil
}
