package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Xterminate1818/fishbowl/internal/bowl"
)

func TestCirclesToSVG(t *testing.T) {
	circles := []bowl.Circle{
		{Position: bowl.V(10, 20), Radius: 4, Color: bowl.Color{R: 255, G: 16, B: 0}},
		{Position: bowl.V(1.5, 2.25), Radius: 3.5, Color: bowl.White},
	}
	svg := CirclesToSVG(circles, 64, 32)

	if !strings.Contains(svg, `width="64" height="32"`) {
		t.Error("missing canvas size")
	}
	if !strings.Contains(svg, `<circle cx="10.00" cy="20.00" r="4.00" fill="#ff1000"/>`) {
		t.Errorf("missing first circle in\n%s", svg)
	}
	if !strings.Contains(svg, `fill="#ffffff"`) {
		t.Error("missing white circle")
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("document not closed")
	}
}

func TestSaveSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bowl.svg")
	if err := SaveSVG(path, nil, 8, 8); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "<circle") {
		t.Error("expected no circles")
	}
}
