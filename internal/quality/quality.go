package quality

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
)

var ErrSizeMismatch = errors.New("images have different sizes")

// Report describes how far a stego image is from its carrier, over the R, G
// and B channels.
type Report struct {
	Channels int
	Changed  int
	MaxDelta float64
	MSE      float64
	// PSNR in dB, +Inf for identical images.
	PSNR float64
}

func (r Report) String() string {
	return fmt.Sprintf("channels=%d changed=%d max_delta=%.0f mse=%.6f psnr=%.2fdB",
		r.Channels, r.Changed, r.MaxDelta, r.MSE, r.PSNR)
}

// Compare measures the per-channel difference between two images of the same size.
func Compare(carrier, stego image.Image) (Report, error) {
	cb, sb := carrier.Bounds(), stego.Bounds()
	if cb.Size() != sb.Size() {
		return Report{}, fmt.Errorf("%w: %v != %v", ErrSizeMismatch, cb.Size(), sb.Size())
	}
	diff := make([]float64, 0, cb.Dx()*cb.Dy()*3)
	for y := range cb.Dy() {
		for x := range cb.Dx() {
			c := color.NRGBAModel.Convert(carrier.At(cb.Min.X+x, cb.Min.Y+y)).(color.NRGBA)
			s := color.NRGBAModel.Convert(stego.At(sb.Min.X+x, sb.Min.Y+y)).(color.NRGBA)
			diff = append(diff,
				float64(c.R)-float64(s.R),
				float64(c.G)-float64(s.G),
				float64(c.B)-float64(s.B),
			)
		}
	}

	r := Report{Channels: len(diff), PSNR: math.Inf(1)}
	if len(diff) == 0 {
		return r, nil
	}
	r.Changed = floats.Count(func(v float64) bool { return v != 0 }, diff)
	r.MaxDelta = floats.Norm(diff, math.Inf(1))
	r.MSE = floats.Dot(diff, diff) / float64(len(diff))
	if r.MSE > 0 {
		r.PSNR = 10 * math.Log10(255*255/r.MSE)
	}
	return r, nil
}
