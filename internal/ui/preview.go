package ui

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const halfBlock = "▀"

// renderPreview draws a JPEG with half-block cells, two pixel rows per line.
// Returns "" when the bytes are not a decodable JPEG.
func renderPreview(data []byte, maxWidth int) string {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return ""
	}
	return halfBlocks(img, maxWidth)
}

func halfBlocks(img image.Image, maxWidth int) string {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	step := 1
	if maxWidth > 0 && b.Dx() > maxWidth {
		step = (b.Dx() + maxWidth - 1) / maxWidth
	}

	var lines []string
	for y := b.Min.Y; y < b.Max.Y; y += 2 * step {
		var sb strings.Builder
		for x := b.Min.X; x < b.Max.X; x += step {
			top := hexColor(img.At(x, y))
			bottom := top
			if y+step < b.Max.Y {
				bottom = hexColor(img.At(x, y+step))
			}
			cell := lipgloss.NewStyle().
				Foreground(lipgloss.Color(top)).
				Background(lipgloss.Color(bottom))
			sb.WriteString(cell.Render(halfBlock))
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}

func hexColor(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
