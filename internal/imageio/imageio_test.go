package imageio

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			img.Set(x, y, color.NRGBA{uint8(x * 7), uint8(y * 13), uint8(x + y), 0xff})
		}
	}
	return img
}

func samePixels(t *testing.T, exp, got image.Image) {
	t.Helper()
	require.Equal(t, exp.Bounds().Size(), got.Bounds().Size())
	eb, gb := exp.Bounds(), got.Bounds()
	for y := range eb.Dy() {
		for x := range eb.Dx() {
			e := color.NRGBAModel.Convert(exp.At(eb.Min.X+x, eb.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			require.Equal(t, e, g, "pixel %d,%d", x, y)
		}
	}
}

func TestLosslessRoundTrip(t *testing.T) {
	src := createImage(19, 11)
	for _, f := range []Format{PNG, BMP, TIFF} {
		t.Run(string(f), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, src, f))
			img, format, err := Decode(&buf, 0)
			require.NoError(t, err)
			assert.Equal(t, f, format)
			samePixels(t, src, img)
		})
	}
}

func TestDecode(t *testing.T) {
	t.Run("garbage", func(t *testing.T) {
		_, _, err := Decode(bytes.NewReader([]byte("definitely not an image")), 0)
		assert.ErrorIs(t, err, ErrUnreadable)
	})
	t.Run("truncated", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, createImage(40, 40), PNG))
		_, _, err := Decode(bytes.NewReader(buf.Bytes()[:buf.Len()/2]), 0)
		assert.ErrorIs(t, err, ErrUnreadable)
	})
	t.Run("pixel limit", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, createImage(10, 10), PNG))
		data := buf.Bytes()
		_, _, err := Decode(bytes.NewReader(data), 99)
		assert.ErrorIs(t, err, ErrTooLarge)
		_, _, err = Decode(bytes.NewReader(data), 100)
		assert.NoError(t, err)
	})
	t.Run("jpeg", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, createImage(16, 16), JPEG))
		_, format, err := Decode(&buf, 0)
		require.NoError(t, err)
		assert.Equal(t, JPEG, format)
	})
}

func TestDecodeConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, createImage(30, 12), BMP))
	cfg, format, err := DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, BMP, format)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 12, cfg.Height)

	_, _, err = DecodeConfig(bytes.NewReader([]byte("GIF89")))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestOutputFormat(t *testing.T) {
	test := []struct {
		in  Format
		exp Format
	}{
		{PNG, PNG},
		{BMP, BMP},
		{TIFF, TIFF},
		{JPEG, PNG},
		{GIF, PNG},
		{WEBP, PNG},
	}
	for _, tt := range test {
		assert.Equal(t, tt.exp, OutputFormat(tt.in))
	}
}

func TestFormatFromFilename(t *testing.T) {
	test := []struct {
		name string
		exp  Format
		err  bool
	}{
		{"a.png", PNG, false},
		{"a.JPG", JPEG, false},
		{"a.jpeg", JPEG, false},
		{"dir/b.bmp", BMP, false},
		{"c.tif", TIFF, false},
		{"d.webp", WEBP, false},
		{"e.gif", GIF, false},
		{"f.txt", "", true},
		{"noext", "", true},
	}
	for _, tt := range test {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FormatFromFilename(tt.name)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, f)
		})
	}
}

func TestFormatMeta(t *testing.T) {
	assert.Equal(t, "jpg", JPEG.Extension())
	assert.Equal(t, "png", PNG.Extension())
	assert.Equal(t, "image/bmp", BMP.ContentType())
	assert.Equal(t, "application/octet-stream", Format("xyz").ContentType())
	assert.Error(t, Encode(&bytes.Buffer{}, createImage(1, 1), WEBP))
}

func TestFit(t *testing.T) {
	img := createImage(200, 100)
	assert.Same(t, img, Fit(img, 0))
	assert.Same(t, img, Fit(img, 200))

	small := Fit(img, 50)
	assert.Equal(t, 50, small.Bounds().Dx())
	assert.Equal(t, 25, small.Bounds().Dy())
}
