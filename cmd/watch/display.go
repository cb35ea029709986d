package main

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/checkpoint"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/imageio"
)

// ramp runs from dark to bright
const ramp = " .:-=+*#%@"

// Display handles terminal rendering of checkpoint images
type Display struct {
	width   int
	preview bool
	redraw  bool
}

// NewDisplay creates a new display
func NewDisplay(width int, preview, redraw bool) *Display {
	if width < 1 {
		width = 1
	}
	return &Display{width: width, preview: preview, redraw: redraw}
}

// Show prints a title line and, when previews are on, the image at path
func (d *Display) Show(title, path string, skipped int) {
	if d.preview && d.redraw {
		clearScreen()
	}

	fmt.Printf("%s: %s\n", title, path)
	if skipped > 0 {
		fmt.Printf("  (%d earlier checkpoints not shown)\n", skipped)
	}
	if !d.preview {
		return
	}

	img, err := checkpoint.Load(path)
	if err != nil {
		fmt.Printf("  Warning: cannot load %s: %v\n", path, err)
		return
	}

	lines := Render(img, d.width)
	border := strings.Repeat("─", len([]rune(lines[0])))
	fmt.Println("┌" + border + "┐")
	for _, line := range lines {
		fmt.Println("│" + line + "│")
	}
	fmt.Println("└" + border + "┘")
}

// Render draws img as ASCII luminance, at most width characters wide.
// Each character covers two pixel rows since terminal cells are about twice as tall as wide.
func Render(img image.Image, width int) []string {
	fitted := imageio.Fit(img, width)
	b := fitted.Bounds()

	var lines []string
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		var sb strings.Builder
		for x := b.Min.X; x < b.Max.X; x++ {
			lum := color.GrayModel.Convert(fitted.At(x, y)).(color.Gray).Y
			sb.WriteByte(ramp[int(lum)*(len(ramp)-1)/255])
		}
		lines = append(lines, sb.String())
	}
	return lines
}
