package lsb

import "context"

// BitScanner yields the least significant bit of every colour channel in
// raster order, R, G, B per pixel. Only one band of pixels is held at a time.
type BitScanner struct {
	ctx   context.Context
	src   ImageSource
	shape BandShape

	band []uint8
	y    int // next row to load
	i, n int
	err  error
}

func NewBitScanner(ctx context.Context, src ImageSource, shape BandShape) *BitScanner {
	if shape.IsZero() {
		shape = NewBandShape(1)
	}
	return &BitScanner{
		ctx:   ctx,
		src:   src,
		shape: shape,
		band:  make([]uint8, shape.bufferLen(src.width, src.height)),
	}
}

// Next returns the next bit. ok is false when the image is exhausted or the
// context is done; Err tells the two apart.
func (s *BitScanner) Next() (bit uint8, ok bool) {
	for {
		if s.i >= s.n && !s.fill() {
			return 0, false
		}
		i := s.i
		s.i++
		if i&3 == 3 {
			continue // alpha
		}
		return s.band[i] & 1, true
	}
}

// Err returns the context error that stopped the scanner, if any.
func (s *BitScanner) Err() error {
	return s.err
}

func (s *BitScanner) fill() bool {
	if s.err != nil || s.y >= s.src.height {
		return false
	}
	if err := s.ctx.Err(); err != nil {
		s.err = err
		return false
	}
	y1 := s.y + min(s.shape.Rows(), s.src.height-s.y)
	s.n = s.src.LoadBand(s.y, y1, s.band)
	s.i = 0
	s.y = y1
	return s.n > 0
}
