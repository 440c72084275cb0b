// Package imageio converts between encoded image files and pixel grids.
//
// Carriers may arrive in any format with a registered decoder (PNG, JPEG,
// GIF, BMP, TIFF, WebP). Hidden data survives only lossless storage, so
// OutputFormat maps lossy or palette based inputs to PNG.
package imageio

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WEBP Format = "webp"
)

var (
	ErrUnreadable        = errors.New("image cannot be decoded")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrTooLarge          = errors.New("image dimensions exceed the limit")
)

var encodable = map[Format]imaging.Format{
	PNG:  imaging.PNG,
	JPEG: imaging.JPEG,
	GIF:  imaging.GIF,
	BMP:  imaging.BMP,
	TIFF: imaging.TIFF,
}

var contentTypes = map[Format]string{
	PNG:  "image/png",
	JPEG: "image/jpeg",
	GIF:  "image/gif",
	BMP:  "image/bmp",
	TIFF: "image/tiff",
	WEBP: "image/webp",
}

// Lossless reports whether pixel values survive a write and read in format f.
func (f Format) Lossless() bool {
	switch f {
	case PNG, BMP, TIFF:
		return true
	}
	return false
}

// Extension returns the usual file extension of f, without the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

func (f Format) ContentType() string {
	if ct, ok := contentTypes[f]; ok {
		return ct
	}
	return "application/octet-stream"
}

// OutputFormat returns the format a carrier read as f should be written in.
func OutputFormat(f Format) Format {
	if f.Lossless() {
		return f
	}
	return PNG
}

// FormatFromFilename returns the format implied by the file extension.
func FormatFromFilename(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ext == "webp" {
		return WEBP, nil
	}
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	for k, v := range encodable {
		if v == f {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// DecodeConfig reads the format and dimensions of an image without decoding its pixels.
func DecodeConfig(r io.Reader) (image.Config, Format, error) {
	cfg, name, err := image.DecodeConfig(r)
	if err != nil {
		return image.Config{}, "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	format := Format(name)
	if _, ok := contentTypes[format]; !ok {
		return image.Config{}, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return image.Config{}, "", fmt.Errorf("%w: empty image %dx%d", ErrUnreadable, cfg.Width, cfg.Height)
	}
	return cfg, format, nil
}

// Decode reads a whole image from r. When maxPixels is positive, images with
// more pixels are rejected from their header, before the pixel data is decoded.
func Decode(r io.Reader, maxPixels int) (image.Image, Format, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	cfg, format, err := DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	if maxPixels > 0 && cfg.Width*cfg.Height > maxPixels {
		return nil, "", fmt.Errorf("%w: %dx%d > %d pixels", ErrTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	return img, format, nil
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	format, ok := encodable[f]
	if !ok {
		return fmt.Errorf("%w: cannot write %q", ErrUnsupportedFormat, f)
	}
	return imaging.Encode(w, img, format)
}

// Fit scales img down so that neither side exceeds maxDim, keeping the aspect
// ratio. Images already within the limit, or a non-positive maxDim, are returned as is.
func Fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return img
	}
	return imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
}
