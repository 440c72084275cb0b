package lsb

// BandShape is the number of image rows processed as one unit.
type BandShape int

// NewBandShape returns a shape of the given rows. Values smaller than 1 are set to 1.
func NewBandShape(rows int) BandShape {
	if rows < 1 {
		rows = 1
	}
	return BandShape(rows)
}

func (s BandShape) IsZero() bool {
	return s < 1
}

func (s BandShape) Rows() int {
	return int(s)
}

// TotalBands returns how many bands cover height rows.
func (s BandShape) TotalBands(height int) int {
	if height <= 0 {
		return 0
	}
	return (height-1)/s.Rows() + 1
}

// bufferLen is the size of one band buffer for a width x height image.
// A band never holds more rows than the image has.
func (s BandShape) bufferLen(width, height int) int {
	return min(s.Rows(), max(height, 0)) * width * 4
}
