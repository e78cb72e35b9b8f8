/*
Package rgb565 implements the 16-bit colour format used by small TFT panels.

Each pixel is packed as RRRRRGGGGGGBBBBB, five bits of red, six of green and
five of blue. Packing truncates the low-order bits of each 8-bit channel, red
and blue lose three bits and green loses two.

The package also implements a trivial snapshot format for framebuffers: a four
byte "R565" signature, the width and height as big-endian 16-bit values,
followed by every pixel as a big-endian 16-bit value, row by row.
*/
package rgb565

import (
	"image"
	"image/color"
)

const (
	signature  = "R565"
	headerSize = len(signature) + 4
	maxSize    = 1<<16 - 1
)

// Color is a packed 16-bit colour. It implements the color.Color interface.
type Color uint16

// Pack truncates 8-bit red, green and blue channels into a Color.
func Pack(r, g, b uint8) Color {
	return Color(uint16(r&0xf8)<<8 | uint16(g&0xfc)<<3 | uint16(b>>3))
}

// expand widens an n-bit channel back to 8 bits by replicating the high bits
// into the low bits, so full intensity maps back to 0xff
func expand(v uint32, bits uint) uint32 {
	v <<= 8 - bits
	return v | v>>bits
}

// RGBA returns the alpha-premultiplied red, green, blue and alpha values.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = expand(uint32(c>>11)&0x1f, 5)
	g = expand(uint32(c>>5)&0x3f, 6)
	b = expand(uint32(c)&0x1f, 5)
	return r * 0x101, g * 0x101, b * 0x101, 0xffff
}

// Model can convert any color.Color to a Color.
var Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if _, ok := c.(Color); ok {
		return c
	}
	return convert(c)
}

func convert(c color.Color) Color {
	switch v := c.(type) {
	case Color:
		return v
	case color.RGBA:
		return Pack(v.R, v.G, v.B)
	case color.NRGBA:
		if v.A == 0xff {
			return Pack(v.R, v.G, v.B)
		}
	}
	r, g, b, _ := c.RGBA()
	return Pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
}

func init() {
	image.RegisterFormat("rgb565", signature, Decode, DecodeConfig)
}
