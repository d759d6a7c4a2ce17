package export

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
)

// MaxImageSide bounds the longer side of a rendered layout in pixels.
const MaxImageSide = 2048

var (
	stripColor   = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
	outlineColor = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// RenderImage draws a layout with scale pixels per strip unit, y pointing
// up. Layouts larger than MaxImageSide are shrunk to fit.
func RenderImage(r Result, scale int) (*image.NRGBA, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	scale = max(scale, 1)
	in := r.Output.Instance
	width, height := in.StripWidth*scale, r.Height()*scale

	img := imaging.New(width, height, stripColor)
	for i, p := range r.Output.Placements {
		it := in.Items[i]
		rect := image.Rect(p.X*scale, p.Y*scale, (p.X+it.Width)*scale, (p.Y+it.Height)*scale)
		draw.Draw(img, rect, &image.Uniform{C: outlineColor}, image.Point{}, draw.Src)
		if scale > 2 {
			rect = rect.Inset(1)
		}
		c := colorOf(i)
		draw.Draw(img, rect, &image.Uniform{C: color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}}, image.Point{}, draw.Src)
	}

	// Image rows grow downwards, the strip grows upwards
	img = imaging.FlipV(img)
	if width > MaxImageSide || height > MaxImageSide {
		img = imaging.Fit(img, MaxImageSide, MaxImageSide, imaging.NearestNeighbor)
	}
	return img, nil
}

// ExportPNG renders a layout and saves it as PNG.
func ExportPNG(path string, r Result, scale int) error {
	img, err := RenderImage(r, scale)
	if err != nil {
		return err
	}
	return imaging.Save(img, path)
}
