package render

import (
	"fmt"
	"strings"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// Renderer turns a circle list into one RGBA frame. A Renderer serves one
// Draw at a time; callers own the returned slice.
type Renderer interface {
	Name() string
	Resize(width, height, maxCircles int) error
	Draw(circles []bowl.Circle) ([]byte, error)
	Close()
}

type Kind string

const (
	KindAuto Kind = "auto"
	KindGPU  Kind = "gpu"
	KindCPU  Kind = "cpu"
)

func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case KindAuto, KindGPU, KindCPU:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("%w: %q", bowl.ErrUnknownBackend, name)
	}
}

// New creates a renderer for a width x height canvas able to draw up to
// maxCircles circles without reallocating.
func New(kind Kind, width, height, maxCircles int) (Renderer, error) {
	switch kind {
	case KindCPU:
		cpu, err := NewCPU(width, height)
		if err != nil {
			return nil, err
		}
		return cpu, nil
	case KindGPU:
		gpu, err := NewGPU(width, height, maxCircles)
		if err != nil {
			return nil, err
		}
		return gpu, nil
	case KindAuto, "":
		return autoSelect(width, height, maxCircles)
	default:
		return nil, fmt.Errorf("%w: %q", bowl.ErrUnknownBackend, kind)
	}
}

func autoSelect(width, height, maxCircles int) (Renderer, error) {
	gpu, err := NewGPU(width, height, maxCircles)
	if err == nil {
		return gpu, nil
	}
	bowl.Logger().Warn("gpu backend unavailable, using cpu", "error", err)
	cpu, err := NewCPU(width, height)
	if err != nil {
		return nil, err
	}
	return cpu, nil
}

func validateSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: canvas must be positive, got %dx%d", bowl.ErrParameterBounds, width, height)
	}
	return nil
}
