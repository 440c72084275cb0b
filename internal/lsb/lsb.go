package lsb

import (
	"context"
	"fmt"
	"image"

	"github.com/RobertoBuiatti/Trabalho-esteganografia/internal/bitconv"
	"github.com/yyyoichi/bitstream-go"
)

// ChannelsPerPixel is the number of LSB slots in a pixel.
const ChannelsPerPixel = 3

// Capacity returns the number of LSB slots of an image with the given bounds.
func Capacity(rect image.Rectangle) int {
	return rect.Dx() * rect.Dy() * ChannelsPerPixel
}

// Enable checks that bits, sentinel included, fit into src.
func Enable(src ImageSource, bits int) error {
	if total := Capacity(src.bounds); total < bits {
		return fmt.Errorf("capacity %d bits < payload %d bits", total, bits)
	}
	return nil
}

// EmbedBand writes bits from cur into the R, G and B least significant bits of
// band, an NRGBA-layout buffer, until the band or the cursor is exhausted.
// It returns the number of channels written.
func EmbedBand(band []uint8, cur *Cursor) int {
	written := 0
	for i := range band {
		if i&3 == 3 {
			continue // alpha
		}
		bit, ok := cur.Next()
		if !ok {
			break
		}
		band[i] = band[i]&^1 | bit
		written++
	}
	return written
}

// Embed writes bits into the least significant bits of src in raster order and
// returns the resulting image. Pixels past the last bit are copied unchanged.
// The image is read and written one band of shape rows at a time.
func Embed(ctx context.Context, src ImageSource, bits *bitstream.BitReader[uint64], shape BandShape) (*image.NRGBA, error) {
	if err := Enable(src, bits.Bits()); err != nil {
		return nil, err
	}
	if shape.IsZero() {
		shape = NewBandShape(1)
	}
	var (
		dst  = image.NewNRGBA(src.bounds)
		buf  = make([]uint8, shape.bufferLen(src.width, src.height))
		cur  = NewCursor(bits)
		rows = shape.Rows()
	)
	for b := range shape.TotalBands(src.height) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		y0 := b * rows
		y1 := y0 + min(rows, src.height-y0)
		n := src.LoadBand(y0, y1, buf)
		if !cur.Done() {
			EmbedBand(buf[:n], cur)
		}
		off := dst.PixOffset(src.bounds.Min.X, src.bounds.Min.Y+y0)
		copy(dst.Pix[off:off+n], buf[:n])
	}
	if !cur.Done() {
		return nil, fmt.Errorf("wrote %d of %d bits", cur.Pos(), cur.Len())
	}
	return dst, nil
}

// Extract reads least significant bits of src in raster order until the
// sentinel is found or the bits run out. At most budget bits are read;
// budget <= 0 means no limit. The sentinel is matched on a rolling window,
// so it is found even when it spans two bands.
//
// When found, payload holds the bits that precede the sentinel.
func Extract(ctx context.Context, src ImageSource, shape BandShape, budget int) (payload *bitstream.BitReader[uint64], found bool, err error) {
	var (
		sc     = NewBitScanner(ctx, src, shape)
		w      = bitstream.NewBitWriter[uint64](0, 0)
		window uint16
		seen   int
	)
	for budget <= 0 || seen < budget {
		bit, ok := sc.Next()
		if !ok {
			break
		}
		out := window >> 15
		window = window<<1 | uint16(bit)
		seen++
		if seen > bitconv.SentinelLen {
			w.WriteBool(out == 1)
		}
		if seen >= bitconv.SentinelLen && window == bitconv.Sentinel {
			payload = bitstream.NewBitReader(w.Data(), 0, 0)
			payload.SetBits(seen - bitconv.SentinelLen)
			return payload, true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}
