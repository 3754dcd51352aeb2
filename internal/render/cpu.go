package render

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gg"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// CPU rasterizes frames in software with gogpu/gg.
type CPU struct {
	width, height int
	dc            *gg.Context
}

func NewCPU(width, height int) (*CPU, error) {
	if err := validateSize(width, height); err != nil {
		return nil, err
	}
	return &CPU{
		width:  width,
		height: height,
		dc:     gg.NewContext(width, height),
	}, nil
}

func (c *CPU) Name() string { return "cpu" }

func (c *CPU) Resize(width, height, _ int) error {
	if err := validateSize(width, height); err != nil {
		return err
	}
	if err := c.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize canvas: %w", err)
	}
	c.width, c.height = width, height
	return nil
}

func (c *CPU) Draw(circles []bowl.Circle) ([]byte, error) {
	c.dc.ClearWithColor(gg.Black)
	for i := range circles {
		ci := &circles[i]
		c.dc.SetColor(color.RGBA{R: ci.Color.R, G: ci.Color.G, B: ci.Color.B, A: 255})
		c.dc.DrawCircle(ci.Position.X, ci.Position.Y, ci.Radius)
		if err := c.dc.Fill(); err != nil {
			return nil, fmt.Errorf("fill circle %d: %w", i, err)
		}
	}

	src := c.dc.ResizeTarget().Data()
	out := make([]byte, c.width*c.height*4)
	copy(out, src)
	return out, nil
}

func (c *CPU) Close() {
	_ = c.dc.Close()
}
