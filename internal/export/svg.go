package export

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

// CirclesToSVG renders a frame's circles as an SVG document on a black
// background.
func CirclesToSVG(circles []bowl.Circle, width, height int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#000000"/>
`, width, height, width, height)

	for _, c := range circles {
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="#%02x%02x%02x"/>
`, c.Position.X, c.Position.Y, c.Radius, c.Color.R, c.Color.G, c.Color.B)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func WriteSVG(w io.Writer, circles []bowl.Circle, width, height int) error {
	_, err := io.WriteString(w, CirclesToSVG(circles, width, height))
	return err
}

func SaveSVG(path string, circles []bowl.Circle, width, height int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSVG(f, circles, width, height); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
