package preview

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"

	"github.com/yildizm/RegionLens/internal/predict"
)

const (
	// DefaultWidth is the preview width in terminal cells
	DefaultWidth = 32

	halfBlock = "▀"
)

// asciiRamp maps luminance from dark to light
var asciiRamp = []rune(" .:-=+*#%@")

// Preview is a terminal rendering of a selected image
type Preview struct {
	Name   string
	Format string
	Width  int
	Height int
	Size   int64
	Lines  []string
}

// Build decodes the file and renders it at most maxWidth cells wide.
// With color each cell holds two vertical pixels as a half block; without
// color pixels are mapped to an ASCII luminance ramp.
func Build(file *predict.File, maxWidth int, useColor bool) (*Preview, error) {
	if file == nil {
		return nil, predict.ErrNoFile
	}
	if maxWidth <= 0 {
		maxWidth = DefaultWidth
	}

	img, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", file.Name, err)
	}

	bounds := img.Bounds()
	p := &Preview{
		Name:   file.Name,
		Format: formatName(file.Name),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Size:   file.Size(),
	}

	if useColor {
		// Two pixel rows per line keeps the aspect ratio of square cells
		thumb := imaging.Fit(img, maxWidth, maxWidth, imaging.Box)
		p.Lines = renderHalfBlocks(thumb)
	} else {
		// Terminal cells are roughly twice as tall as wide
		thumb := imaging.Fit(img, maxWidth, maxWidth, imaging.Box)
		thumb = imaging.Resize(thumb, thumb.Bounds().Dx(), max(1, thumb.Bounds().Dy()/2), imaging.Box)
		p.Lines = renderASCII(thumb)
	}

	return p, nil
}

// String joins the rendered lines
func (p *Preview) String() string {
	return strings.Join(p.Lines, "\n")
}

// Summary describes the image in one line
func (p *Preview) Summary() string {
	return fmt.Sprintf("%s · %d×%d %s · %s", p.Name, p.Width, p.Height, p.Format, humanize.Bytes(uint64(p.Size)))
}

func formatName(name string) string {
	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		return "IMAGE"
	}
	return format.String()
}

func renderHalfBlocks(img *image.NRGBA) []string {
	bounds := img.Bounds()
	lines := make([]string, 0, (bounds.Dy()+1)/2)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += 2 {
		var b strings.Builder
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.NRGBAAt(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(img.NRGBAAt(x, y+1)))
			}
			b.WriteString(style.Render(halfBlock))
		}
		lines = append(lines, b.String())
	}
	return lines
}

func renderASCII(img *image.NRGBA) []string {
	bounds := img.Bounds()
	lines := make([]string, 0, bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := make([]rune, 0, bounds.Dx())
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			row = append(row, rampChar(img.NRGBAAt(x, y)))
		}
		lines = append(lines, string(row))
	}
	return lines
}

func hexColor(c color.NRGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func rampChar(c color.NRGBA) rune {
	gray := color.GrayModel.Convert(c).(color.Gray)
	idx := int(gray.Y) * (len(asciiRamp) - 1) / 255
	return asciiRamp[idx]
}
