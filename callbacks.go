package gifloop

import (
	"image"

	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/bodgit/gifloop/rgb565"
)

// callbacks binds a Source to a display so it can be handed to a decoder.
type callbacks struct {
	*Source
	sink      display.Sink
	converter *rgb565.Converter
	// origin is where the image's logical screen starts on the panel
	origin image.Point
}

var _ decoder.Callbacks = new(callbacks)

// place centres an image of the given bounds on the panel. Images larger
// than the panel are anchored to the top left corner and clipped. It reports
// whether the image leaves any of the panel uncovered.
func (c *callbacks) place(r image.Rectangle) bool {
	panel := c.sink.Bounds()
	c.origin = panel.Min.Sub(r.Min)
	if dx := panel.Dx() - r.Dx(); dx > 0 {
		c.origin.X += dx / 2
	}
	if dy := panel.Dy() - r.Dy(); dy > 0 {
		c.origin.Y += dy / 2
	}
	return !panel.In(r.Add(c.origin))
}

func (c *callbacks) Draw(line *decoder.Scanline) error {
	panel := c.sink.Bounds()
	x, y := c.origin.X+line.X, c.origin.Y+line.Y+line.Row
	if y < panel.Min.Y || y >= panel.Max.Y || x >= panel.Max.X {
		return nil
	}

	pixels := line.Pixels
	if x < panel.Min.X {
		skip := panel.Min.X - x
		if skip >= len(pixels) {
			return nil
		}
		pixels, x = pixels[skip:], panel.Min.X
	}
	if w := panel.Max.X - x; len(pixels) > w {
		pixels = pixels[:w]
	}
	if len(pixels) == 0 {
		return nil
	}

	return display.WriteRow(c.sink, x, y, c.converter.Convert(pixels, line.Palette))
}
