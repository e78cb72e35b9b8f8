package display

import (
	"image"

	"github.com/bodgit/gifloop/rgb565"
)

// Framebuffer is a Sink backed by memory. It is used when running headless
// and by the emulator, which shows its contents in a window.
type Framebuffer struct {
	img    *rgb565.Image
	window image.Rectangle
	cursor image.Point
	active bool
	bursts int
}

// NewFramebuffer returns a black width by height Framebuffer.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		img: rgb565.NewImage(image.Rect(0, 0, width, height)),
	}
}

// Image returns the framebuffer contents. It is updated in place.
func (f *Framebuffer) Image() *rgb565.Image {
	return f.img
}

// Bursts returns the number of completed transactions.
func (f *Framebuffer) Bursts() int {
	return f.bursts
}

// Bounds implements the Sink interface.
func (f *Framebuffer) Bounds() image.Rectangle {
	return f.img.Bounds()
}

// Begin implements the Sink interface.
func (f *Framebuffer) Begin() error {
	if f.active {
		return ErrBusy
	}
	f.active = true
	return nil
}

// End implements the Sink interface.
func (f *Framebuffer) End() error {
	if !f.active {
		return ErrNoTransaction
	}
	f.active = false
	f.window = image.Rectangle{}
	f.bursts++
	return nil
}

// SetWindow implements the Sink interface.
func (f *Framebuffer) SetWindow(r image.Rectangle) error {
	if !f.active {
		return ErrNoTransaction
	}
	if r.Empty() || !r.In(f.img.Bounds()) {
		return ErrWindow
	}
	f.window = r
	f.cursor = r.Min
	return nil
}

// WritePixels implements the Sink interface.
func (f *Framebuffer) WritePixels(p []uint16) error {
	if !f.active {
		return ErrNoTransaction
	}
	for _, c := range p {
		if f.window.Empty() || f.cursor.Y >= f.window.Max.Y {
			return ErrOverflow
		}
		f.img.Pix[f.img.PixOffset(f.cursor.X, f.cursor.Y)] = c
		f.cursor.X++
		if f.cursor.X == f.window.Max.X {
			f.cursor.X = f.window.Min.X
			f.cursor.Y++
		}
	}
	return nil
}
