package preview

import (
	"fmt"
	"image"
	"io"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/ayusman/hanuman/internal/particle"
)

// PNG defaults.
const (
	DefaultWidth  = 960
	DefaultHeight = 720

	// referenceHeight is the viewport height point sizes are calibrated for.
	referenceHeight = 900.0
	fontSize        = 14.0
)

var (
	fontOnce sync.Once
	fontTTF  *truetype.Font
	fontErr  error
)

func monoFace(size float64) (font.Face, error) {
	fontOnce.Do(func() {
		fontTTF, fontErr = truetype.Parse(gomono.TTF)
	})
	if fontErr != nil {
		return nil, fmt.Errorf("failed to parse font: %w", fontErr)
	}
	return truetype.NewFace(fontTTF, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

// Render draws frame onto a dark width x height image with the status
// overlay in the top-left corner.
func Render(frame *particle.Frame, status Status, width, height int) (image.Image, error) {
	dc, err := draw(frame, status, width, height)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func draw(frame *particle.Frame, status Status, width, height int) (*gg.Context, error) {
	dc := gg.NewContext(width, height)
	dc.SetRGB(0.01, 0.01, 0.03)
	dc.Clear()

	proj := NewProjector(width, height, 1)
	sizeScale := float64(height) / referenceHeight
	for _, pt := range proj.Points(frame) {
		r := math.Max(0.6, float64(pt.Size)*sizeScale*0.5)
		c := pt.Color
		// Soft halo then a bright core, approximating additive blending.
		dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), 0.15)
		dc.DrawCircle(float64(pt.X), float64(pt.Y), r*2)
		dc.Fill()
		dc.SetRGBA(float64(c[0]), float64(c[1]), float64(c[2]), 0.85)
		dc.DrawCircle(float64(pt.X), float64(pt.Y), r)
		dc.Fill()
	}

	face, err := monoFace(fontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)
	dc.SetRGB(1, 0.75, 0.3)
	y := 12 + fontSize
	for _, line := range status.Lines() {
		dc.DrawString(line, 12, y)
		y += fontSize * 1.4
	}

	return dc, nil
}

// WritePNG renders frame and encodes it to w.
func WritePNG(w io.Writer, frame *particle.Frame, status Status, width, height int) error {
	dc, err := draw(frame, status, width, height)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

// SavePNG renders frame to a PNG file.
func SavePNG(path string, frame *particle.Frame, status Status, width, height int) error {
	dc, err := draw(frame, status, width, height)
	if err != nil {
		return err
	}
	return dc.SavePNG(path)
}
