// Package encode writes rendered frames as an animated GIF.
package encode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// MaxColors is the GIF palette limit.
const MaxColors = 256

// Colors are bucketed to 5 bits per channel when building a palette.
const bucketBits = 5

var ErrNoFrames = errors.New("encode: no frames to encode")

// GIF encodes RGBA frames of width x height pixels. delay is in hundredths
// of a second; loop repeats forever, otherwise the animation plays once.
func GIF(w io.Writer, frames [][]byte, width, height, delay int, loop bool) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", bowl.ErrParameterBounds, width, height)
	}
	want := width * height * 4
	for i, f := range frames {
		if len(f) != want {
			return fmt.Errorf("encode: frame %d has %d bytes, want %d", i, len(f), want)
		}
	}

	out := &gif.GIF{
		Image:     make([]*image.Paletted, len(frames)),
		Delay:     make([]int, len(frames)),
		LoopCount: -1,
		Config:    image.Config{Width: width, Height: height},
	}
	if loop {
		out.LoopCount = 0
	}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range frames {
		out.Delay[i] = delay
		g.Go(func() error {
			out.Image[i] = quantize(f, width, height)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := gif.EncodeAll(w, out); err != nil {
		return fmt.Errorf("encode gif: %w", err)
	}
	bowl.Logger().Debug("gif encoded", "frames", len(frames), "loop", loop, "delay", delay)
	return nil
}

// quantize maps one RGBA frame onto its own palette with Floyd-Steinberg
// dithering.
func quantize(pix []byte, width, height int) *image.Paletted {
	src := &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	dst := image.NewPaletted(src.Rect, buildPalette(pix, MaxColors))
	draw.FloydSteinberg.Draw(dst, dst.Rect, src, image.Point{})
	return dst
}

// buildPalette picks the most frequent color buckets, each represented by
// the mean of its members. Ties break on bucket index so output is stable.
func buildPalette(pix []byte, limit int) color.Palette {
	const shift = 8 - bucketBits
	const buckets = 1 << (3 * bucketBits)

	counts := make([]int, buckets)
	sums := make([][3]int, buckets)
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		k := int(r>>shift)<<(2*bucketBits) | int(g>>shift)<<bucketBits | int(b>>shift)
		counts[k]++
		sums[k][0] += int(r)
		sums[k][1] += int(g)
		sums[k][2] += int(b)
	}

	used := make([]int, 0, 64)
	for k, n := range counts {
		if n > 0 {
			used = append(used, k)
		}
	}
	sort.SliceStable(used, func(a, b int) bool {
		return counts[used[a]] > counts[used[b]]
	})
	if len(used) > limit {
		used = used[:limit]
	}

	pal := make(color.Palette, 0, len(used)+1)
	for _, k := range used {
		n := counts[k]
		pal = append(pal, color.RGBA{
			R: uint8(sums[k][0] / n),
			G: uint8(sums[k][1] / n),
			B: uint8(sums[k][2] / n),
			A: 255,
		})
	}
	if len(pal) == 0 {
		pal = append(pal, color.RGBA{A: 255})
	}
	return pal
}
