// Package imageio loads input images into a packed 8-bit RGB buffer.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// RGB is a row-major image with three bytes per pixel. Alpha is discarded.
type RGB struct {
	Width, Height int
	Pix           []byte
}

// At returns the color at (x, y). Coordinates must be in range.
func (m *RGB) At(x, y int) bowl.Color {
	i := (y*m.Width + x) * 3
	return bowl.Color{R: m.Pix[i], G: m.Pix[i+1], B: m.Pix[i+2]}
}

// Load decodes the file at path, detecting the format from its content.
func Load(path string) (*RGB, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f)
}

func LoadBytes(data []byte) (*RGB, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", bowl.ErrInvalidImage)
	}
	return Decode(bytes.NewReader(data))
}

func Decode(r io.Reader) (*RGB, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bowl.ErrInvalidImage, err)
	}
	bowl.Logger().Debug("decoded image", "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return FromImage(img)
}

// FromImage converts any image to packed RGB, dropping alpha without
// compositing.
func FromImage(img image.Image) (*RGB, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", bowl.ErrInvalidImage, b)
	}

	out := &RGB{Width: w, Height: h, Pix: make([]byte, w*h*3)}

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < h; y++ {
			src := nrgba.Pix[y*nrgba.Stride:]
			dst := out.Pix[y*w*3:]
			for x := 0; x < w; x++ {
				dst[x*3] = src[x*4]
				dst[x*3+1] = src[x*4+1]
				dst[x*3+2] = src[x*4+2]
			}
		}
		return out, nil
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix[i] = c.R
			out.Pix[i+1] = c.G
			out.Pix[i+2] = c.B
			i += 3
		}
	}
	return out, nil
}
