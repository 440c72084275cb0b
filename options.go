package stego

import (
	"fmt"

	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/lsb"
)

type Option func(*Codec) error

// WithBandRows sets how many image rows are held in memory at a time.
// The output does not depend on it; it only trades memory for loop overhead.
// Values smaller than 1 are set to 1.
func WithBandRows(rows int) Option {
	return func(c *Codec) error {
		c.shape = lsb.NewBandShape(rows)
		return nil
	}
}

// WithBitBudget bounds how many bits Decode reads while looking for the end
// marker. A negative budget scans the whole image.
// Encode rejects messages whose framed size exceeds a positive budget.
func WithBitBudget(bits int) Option {
	return func(c *Codec) error {
		if bits > 0 && bits < SentinelBits {
			return fmt.Errorf("bit budget %d is smaller than the end marker", bits)
		}
		c.budget = bits
		return nil
	}
}

// WithMaxDimension scales carriers down before embedding so that neither side
// exceeds px. The scaled image is the one that carries the message.
// Decode never resizes.
func WithMaxDimension(px int) Option {
	return func(c *Codec) error {
		if px < 0 {
			return fmt.Errorf("invalid max dimension: %d", px)
		}
		c.maxDim = px
		return nil
	}
}

// WithMaxPixels rejects image files with more pixels than n before their pixel
// data is decoded. It applies to EncodeStream and DecodeStream.
func WithMaxPixels(n int) Option {
	return func(c *Codec) error {
		if n < 0 {
			return fmt.Errorf("invalid max pixels: %d", n)
		}
		c.maxPixels = n
		return nil
	}
}

// WithRequireMessage makes Encode fail with ErrEmptyPayload when no printable
// ASCII character is left after filtering. By default such a message is
// encoded as the end marker alone.
func WithRequireMessage() Option {
	return func(c *Codec) error {
		c.requireMessage = true
		return nil
	}
}
