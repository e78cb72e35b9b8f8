/*
Package decoder defines how the player drives an animated image decoder.

A Decoder never touches storage or the display directly. Everything goes
through the Callbacks supplied to Open: the decoder opens, reads, seeks and
closes its input through them and hands every decoded row back through Draw,
synchronously, from within PlayFrame.
*/
package decoder

import (
	"errors"
	"image"
	"image/color"
	"io"
)

var (
	// ErrNotOpen is returned by PlayFrame when no image is open.
	ErrNotOpen = errors.New("decoder: no image open")

	// ErrInvalid is returned by Open when the stream is not a playable image.
	ErrInvalid = errors.New("decoder: invalid image")

	// ErrStream is returned by PlayFrame when playback cannot continue.
	ErrStream = errors.New("decoder: stream error")
)

// Handle is an open input stream. It is owned by the decoder from the Open
// callback until it passes it to the Close callback.
type Handle interface{}

// Scanline is one decoded row of palette indices.
type Scanline struct {
	// X and Y position the frame on the logical screen
	X, Y int
	// Row is the row within the frame
	Row     int
	Pixels  []uint8
	Palette color.Palette
}

// Callbacks is the I/O contract a Decoder is driven through. Pixels and
// Palette passed to Draw are only valid for the duration of the call.
type Callbacks interface {
	Open(name string) (Handle, int64, error)
	Read(h Handle, p []byte) (int, error)
	Seek(h Handle, pos int64) (int64, error)
	Close(h Handle)
	Draw(line *Scanline) error
}

// Decoder decodes one animated image at a time.
type Decoder interface {
	// Open starts decoding the named image, closing any image already open.
	Open(name string, cb Callbacks) error
	// Bounds returns the logical screen of the open image.
	Bounds() image.Rectangle
	// PlayFrame performs one bounded unit of work and reports whether a
	// frame was completed by it.
	PlayFrame() (bool, error)
	// Close releases the open image, if any.
	Close()
}

type reader struct {
	cb Callbacks
	h  Handle
}

// NewReader returns an io.ReadSeeker reading h through cb.
func NewReader(cb Callbacks, h Handle) io.ReadSeeker {
	return &reader{cb: cb, h: h}
}

func (r *reader) Read(p []byte) (int, error) {
	n, err := r.cb.Read(r.h, p)
	if n == 0 && err == nil && len(p) > 0 {
		// A zero length read marks the end of the stream
		return 0, io.EOF
	}
	return n, err
}

func (r *reader) Seek(offset int64, whence int) (int64, error) {
	if whence != io.SeekStart {
		return 0, errors.New("decoder: only absolute seeks are supported")
	}
	return r.cb.Seek(r.h, offset)
}
