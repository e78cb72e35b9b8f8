package decoder

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"io"
)

const (
	// MaxFileSize is the largest file the GIF decoder will open.
	MaxFileSize = 8 << (10 * 2)

	// MaxFrameSize is the most compressed data a single frame may hold.
	MaxFrameSize = 1 << (10 * 2)
)

const (
	headerSize     = 13
	descriptorSize = 9

	fColorTable     = 0x80
	fColorTableBits = 0x07

	sExtension       = 0x21
	sImageDescriptor = 0x2c
	sTrailer         = 0x3b

	eGraphicControl = 0xf9
)

var (
	errSignature   = errors.New("not a GIF")
	errEmptyScreen = errors.New("empty logical screen")
	errNoFrames    = errors.New("no frames")
	errFrameSize   = errors.New("frame too large")
)

func colorTableSize(flags byte) int64 {
	return 3 * (1 << (flags&fColorTableBits + 1))
}

// frame is the byte range of one frame, from its graphic control extension
// or image descriptor up to the end of its image data.
type frame struct {
	start, end int64
}

// scanner walks the block structure of a GIF, seeking over image data
// rather than reading it.
type scanner struct {
	r   io.ReadSeeker
	pos int64
}

func (s *scanner) read(p []byte) error {
	n, err := io.ReadFull(s.r, p)
	s.pos += int64(n)
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func (s *scanner) readByte() (byte, error) {
	var b [1]byte
	err := s.read(b[:])
	return b[0], err
}

func (s *scanner) skip(n int64) error {
	pos, err := s.r.Seek(s.pos+n, io.SeekStart)
	if err != nil {
		return err
	}
	s.pos = pos
	return nil
}

func (s *scanner) skipBlocks() error {
	for {
		n, err := s.readByte()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if err := s.skip(int64(n)); err != nil {
			return err
		}
	}
}

// index returns the header, including any global colour table, and the
// position of every frame.
func index(r io.ReadSeeker) ([]byte, []frame, error) {
	s := &scanner{r: r}

	header := make([]byte, headerSize)
	if err := s.read(header); err != nil {
		return nil, nil, err
	}
	if sig := string(header[:6]); sig != "GIF87a" && sig != "GIF89a" {
		return nil, nil, errSignature
	}
	if binary.LittleEndian.Uint16(header[6:]) == 0 || binary.LittleEndian.Uint16(header[8:]) == 0 {
		return nil, nil, errEmptyScreen
	}
	if header[10]&fColorTable != 0 {
		table := make([]byte, colorTableSize(header[10]))
		if err := s.read(table); err != nil {
			return nil, nil, err
		}
		header = append(header, table...)
	}

	var frames []frame
	start := int64(-1)
	for {
		b, err := s.readByte()
		if err != nil {
			// Tolerate a missing trailer
			if errors.Is(err, io.ErrUnexpectedEOF) && start < 0 && len(frames) > 0 {
				return header, frames, nil
			}
			return nil, nil, err
		}

		switch b {
		case sExtension:
			label, err := s.readByte()
			if err != nil {
				return nil, nil, err
			}
			if label == eGraphicControl && start < 0 {
				start = s.pos - 2
			}
			if err := s.skipBlocks(); err != nil {
				return nil, nil, err
			}
		case sImageDescriptor:
			if start < 0 {
				start = s.pos - 1
			}
			var desc [descriptorSize]byte
			if err := s.read(desc[:]); err != nil {
				return nil, nil, err
			}
			if desc[8]&fColorTable != 0 {
				if err := s.skip(colorTableSize(desc[8])); err != nil {
					return nil, nil, err
				}
			}
			// LZW minimum code size
			if _, err := s.readByte(); err != nil {
				return nil, nil, err
			}
			if err := s.skipBlocks(); err != nil {
				return nil, nil, err
			}
			if s.pos-start > MaxFrameSize {
				return nil, nil, errFrameSize
			}
			frames = append(frames, frame{start: start, end: s.pos})
			start = -1
		case sTrailer:
			if len(frames) == 0 {
				return nil, nil, errNoFrames
			}
			return header, frames, nil
		default:
			return nil, nil, fmt.Errorf("unknown block type %#02x", b)
		}
	}
}

// GIF decodes GIF images one frame at a time. Open only walks the file to
// find where each frame starts. PlayFrame seeks to the current frame, reads
// and decodes it with image/gif and then draws it, looping back to the first
// frame after the last. Only one decoded frame is held in memory.
type GIF struct {
	rows int

	cb     Callbacks
	h      Handle
	r      io.ReadSeeker
	header []byte
	frames []frame
	bounds image.Rectangle

	buf   []byte
	m     *image.Paletted
	frame int
	row   int
	line  Scanline
}

// NewGIF returns a GIF decoder drawing at most rows rows per call to
// PlayFrame, or a whole frame if rows is zero.
func NewGIF(rows int) *GIF {
	return &GIF{
		rows: rows,
	}
}

// Open implements the Decoder interface.
func (d *GIF) Open(name string, cb Callbacks) error {
	d.Close()

	h, size, err := cb.Open(name)
	if err != nil {
		return err
	}

	if size > MaxFileSize {
		cb.Close(h)
		return fmt.Errorf("%w: %d bytes is too large", ErrInvalid, size)
	}

	r := NewReader(cb, h)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		cb.Close(h)
		return fmt.Errorf("%w: %w", ErrStream, err)
	}

	header, frames, err := index(r)
	if err != nil {
		cb.Close(h)
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	d.cb, d.h, d.r = cb, h, r
	d.header, d.frames = header, frames
	d.bounds = image.Rect(0, 0, int(binary.LittleEndian.Uint16(header[6:])), int(binary.LittleEndian.Uint16(header[8:])))
	d.m, d.frame, d.row = nil, 0, 0

	return nil
}

// Bounds implements the Decoder interface.
func (d *GIF) Bounds() image.Rectangle {
	return d.bounds
}

// Frames returns the number of frames in the open image.
func (d *GIF) Frames() int {
	return len(d.frames)
}

// decode reads the current frame and decodes it as a single frame GIF made
// from the header and the frame's blocks.
func (d *GIF) decode() error {
	f := d.frames[d.frame]

	n := len(d.header) + int(f.end-f.start) + 1
	if cap(d.buf) < n {
		d.buf = make([]byte, n)
	}
	b := d.buf[:n]
	copy(b, d.header)
	b[n-1] = sTrailer

	if _, err := d.r.Seek(f.start, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(d.r, b[len(d.header):n-1]); err != nil {
		return err
	}

	m, err := gif.Decode(bytes.NewReader(b))
	if err != nil {
		return err
	}

	p, ok := m.(*image.Paletted)
	if !ok {
		return errors.New("frame is not paletted")
	}
	d.m = p

	return nil
}

// PlayFrame implements the Decoder interface.
func (d *GIF) PlayFrame() (bool, error) {
	if d.cb == nil {
		return false, ErrNotOpen
	}

	if d.m == nil {
		if err := d.decode(); err != nil {
			return false, fmt.Errorf("%w: frame %d: %w", ErrStream, d.frame, err)
		}
	}

	m := d.m
	b := m.Bounds()

	n := b.Dy() - d.row
	if d.rows > 0 && d.rows < n {
		n = d.rows
	}

	d.line.X, d.line.Y = b.Min.X, b.Min.Y
	d.line.Palette = m.Palette
	for i := 0; i < n; i++ {
		off := m.PixOffset(b.Min.X, b.Min.Y+d.row)
		d.line.Row = d.row
		d.line.Pixels = m.Pix[off : off+b.Dx()]
		if err := d.cb.Draw(&d.line); err != nil {
			return false, fmt.Errorf("%w: %w", ErrStream, err)
		}
		d.row++
	}
	d.line.Pixels, d.line.Palette = nil, nil

	if d.row < b.Dy() {
		return false, nil
	}

	d.m, d.row = nil, 0
	d.frame = (d.frame + 1) % len(d.frames)

	return true, nil
}

// Close implements the Decoder interface.
func (d *GIF) Close() {
	if d.cb != nil {
		d.cb.Close(d.h)
	}
	d.cb, d.h, d.r = nil, nil, nil
	d.header, d.frames, d.m = nil, nil, nil
	d.bounds = image.Rectangle{}
	d.frame, d.row = 0, 0
}
