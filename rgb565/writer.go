package rgb565

import (
	"bufio"
	"encoding/binary"
	"errors"
	"image"
	"io"
)

type encoder struct {
	w *bufio.Writer
}

func (e *encoder) encode(m image.Image) error {
	b := m.Bounds()

	var header [headerSize]byte
	copy(header[:], signature)
	binary.BigEndian.PutUint16(header[4:], uint16(b.Dx()))
	binary.BigEndian.PutUint16(header[6:], uint16(b.Dy()))
	if _, err := e.w.Write(header[:]); err != nil {
		return err
	}

	var tmp [2]byte
	pm, _ := m.(*Image)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var c Color
			if pm != nil {
				c = pm.RGB565At(x, y)
			} else {
				c = convert(m.At(x, y))
			}
			binary.BigEndian.PutUint16(tmp[:], uint16(c))
			if _, err := e.w.Write(tmp[:]); err != nil {
				return err
			}
		}
	}

	return e.w.Flush()
}

// Encode writes the Image m to w as a framebuffer snapshot.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()
	if b.Empty() || b.Dx() > maxSize || b.Dy() > maxSize {
		return errors.New("rgb565: image is wrong size")
	}

	e := encoder{w: bufio.NewWriter(w)}

	return e.encode(m)
}
