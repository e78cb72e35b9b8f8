package rgb565

import "image/color"

// Converter turns rows of palette indices into rows of packed pixels. It owns
// a single row buffer which is reused by every call to Convert.
type Converter struct {
	buf []uint16
}

// NewConverter returns a Converter able to convert rows of up to width pixels.
func NewConverter(width int) *Converter {
	return &Converter{
		buf: make([]uint16, width),
	}
}

// Width returns the widest row the Converter can hold.
func (c *Converter) Width() int {
	return len(c.buf)
}

// Convert looks up each index in p and packs the result. Rows wider than the
// buffer are truncated and indices outside the palette become black. The
// returned slice is only valid until the next call to Convert.
func (c *Converter) Convert(indices []uint8, p color.Palette) []uint16 {
	n := len(indices)
	if n > len(c.buf) {
		n = len(c.buf)
	}
	row := c.buf[:n]
	for x, i := range indices[:n] {
		if int(i) >= len(p) {
			row[x] = 0
			continue
		}
		row[x] = uint16(convert(p[i]))
	}
	return row
}
