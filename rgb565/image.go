package rgb565

import (
	"image"
	"image/color"
)

// Image is an in-memory image whose At method returns Color values.
type Image struct {
	// Pix holds the image's pixels in host order, one uint16 per pixel.
	Pix    []uint16
	Stride int
	Rect   image.Rectangle
}

// NewImage returns a new Image with the given bounds.
func NewImage(r image.Rectangle) *Image {
	return &Image{
		Pix:    make([]uint16, r.Dx()*r.Dy()),
		Stride: r.Dx(),
		Rect:   r,
	}
}

func (p *Image) ColorModel() color.Model { return Model }

func (p *Image) Bounds() image.Rectangle { return p.Rect }

func (p *Image) At(x, y int) color.Color {
	return p.RGB565At(x, y)
}

// RGB565At returns the colour at (x, y), or black outside the bounds.
func (p *Image) RGB565At(x, y int) Color {
	if !(image.Point{x, y}.In(p.Rect)) {
		return 0
	}
	return Color(p.Pix[p.PixOffset(x, y)])
}

// PixOffset returns the index of the element of Pix that corresponds to the
// pixel at (x, y).
func (p *Image) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x - p.Rect.Min.X)
}

func (p *Image) Set(x, y int, c color.Color) {
	p.SetRGB565(x, y, convert(c))
}

func (p *Image) SetRGB565(x, y int, c Color) {
	if !(image.Point{x, y}.In(p.Rect)) {
		return
	}
	p.Pix[p.PixOffset(x, y)] = uint16(c)
}

// Row returns the pixels of row y, or nil if y is outside the bounds.
func (p *Image) Row(y int) []uint16 {
	if y < p.Rect.Min.Y || y >= p.Rect.Max.Y {
		return nil
	}
	i := p.PixOffset(p.Rect.Min.X, y)
	return p.Pix[i : i+p.Rect.Dx()]
}

// Fill sets every pixel to c.
func (p *Image) Fill(c Color) {
	for i := range p.Pix {
		p.Pix[i] = uint16(c)
	}
}

// ToRGBA widens p into dst, which must have the same bounds.
func (p *Image) ToRGBA(dst *image.RGBA) {
	for y := p.Rect.Min.Y; y < p.Rect.Max.Y; y++ {
		i := dst.PixOffset(p.Rect.Min.X, y)
		for _, c := range p.Row(y) {
			dst.Pix[i+0] = uint8(expand(uint32(c>>11)&0x1f, 5))
			dst.Pix[i+1] = uint8(expand(uint32(c>>5)&0x3f, 6))
			dst.Pix[i+2] = uint8(expand(uint32(c)&0x1f, 5))
			dst.Pix[i+3] = 0xff
			i += 4
		}
	}
}
