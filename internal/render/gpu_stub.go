//go:build nogpu

package render

import (
	"fmt"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// GPU is unavailable in nogpu builds.
type GPU struct{}

func NewGPU(width, height, maxCircles int) (*GPU, error) {
	return nil, fmt.Errorf("%w: built without gpu support", bowl.ErrNoAdapter)
}

func (g *GPU) Name() string                        { return "gpu (not available)" }
func (g *GPU) Resize(width, height, max int) error { return bowl.ErrNoAdapter }
func (g *GPU) Draw([]bowl.Circle) ([]byte, error)  { return nil, bowl.ErrNoAdapter }
func (g *GPU) Close()                              {}
func (g *GPU) InstanceCapacity() int               { return 0 }
func (g *GPU) InstanceAllocations() int            { return 0 }
