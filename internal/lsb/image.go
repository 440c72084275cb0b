package lsb

import (
	"image"
	"image/color"
)

// ImageSource reads the pixels of an image one band at a time as
// non-premultiplied 8-bit RGBA.
type ImageSource struct {
	src           image.Image
	bounds        image.Rectangle
	width, height int
}

func NewImageSource(src image.Image) ImageSource {
	var s ImageSource
	s.src = src
	s.bounds = src.Bounds()
	s.width, s.height = s.bounds.Dx(), s.bounds.Dy()
	return s
}

func (s ImageSource) Bounds() image.Rectangle {
	return s.bounds
}

// LoadBand copies rows [y0, y1) into buf using the NRGBA layout and returns
// the number of bytes written. Rows are relative to the image bounds.
func (s ImageSource) LoadBand(y0, y1 int, buf []uint8) int {
	stride := s.width * 4
	n := 0
	switch src := s.src.(type) {
	case *image.NRGBA:
		for y := y0; y < y1; y++ {
			off := src.PixOffset(s.bounds.Min.X, s.bounds.Min.Y+y)
			n += copy(buf[n:n+stride], src.Pix[off:off+stride])
		}
	case *image.RGBA:
		for y := y0; y < y1; y++ {
			off := src.PixOffset(s.bounds.Min.X, s.bounds.Min.Y+y)
			row := src.Pix[off : off+stride]
			for x := 0; x < stride; x += 4 {
				if row[x+3] == 0xff {
					copy(buf[n:n+4], row[x:x+4])
				} else {
					c := color.NRGBAModel.Convert(color.RGBA{row[x], row[x+1], row[x+2], row[x+3]}).(color.NRGBA)
					buf[n], buf[n+1], buf[n+2], buf[n+3] = c.R, c.G, c.B, c.A
				}
				n += 4
			}
		}
	default:
		for y := y0; y < y1; y++ {
			for x := range s.width {
				c := color.NRGBAModel.Convert(s.src.At(s.bounds.Min.X+x, s.bounds.Min.Y+y)).(color.NRGBA)
				buf[n], buf[n+1], buf[n+2], buf[n+3] = c.R, c.G, c.B, c.A
				n += 4
			}
		}
	}
	return n
}
