package rgb565

import (
	"encoding/binary"
	"errors"
	"image"
	"io"
)

var (
	errBadSignature = errors.New("rgb565: invalid signature")
	errNotEnough    = errors.New("rgb565: not enough image data")
	errBadSize      = errors.New("rgb565: invalid dimensions")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width, height int

	image *Image

	tmp [headerSize]byte
}

func (d *decoder) readHeader() error {
	if err := readFull(d.r, d.tmp[:]); err != nil {
		return err
	}
	if string(d.tmp[:len(signature)]) != signature {
		return errBadSignature
	}
	d.width = int(binary.BigEndian.Uint16(d.tmp[4:]))
	d.height = int(binary.BigEndian.Uint16(d.tmp[6:]))
	if d.width == 0 || d.height == 0 {
		return errBadSize
	}
	return nil
}

func (d *decoder) readPixels() error {
	d.image = NewImage(image.Rect(0, 0, d.width, d.height))
	row := make([]byte, d.width<<1)
	for y := 0; y < d.height; y++ {
		if err := readFull(d.r, row); err != nil {
			return err
		}
		pix := d.image.Row(y)
		for x := range pix {
			pix[x] = binary.BigEndian.Uint16(row[x<<1:])
		}
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	if configOnly {
		return nil
	}

	if err := d.readPixels(); err != nil {
		if err != io.ErrUnexpectedEOF {
			return err
		}
		return errNotEnough
	}

	return nil
}

// Decode reads a framebuffer snapshot from r and returns it as an
// image.Image.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeConfig returns the color model and dimensions of a framebuffer
// snapshot without decoding the pixels.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: Model,
		Width:      d.width,
		Height:     d.height,
	}, nil
}
