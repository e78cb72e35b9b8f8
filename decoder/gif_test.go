package decoder

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoFile = errors.New("no such file")

type memoryCallbacks struct {
	files map[string][]byte
	open  int
	lines []Scanline
	err   error
}

func (m *memoryCallbacks) Open(name string) (Handle, int64, error) {
	b, ok := m.files[name]
	if !ok {
		return nil, 0, errNoFile
	}
	m.open++
	return bytes.NewReader(b), int64(len(b)), nil
}

func (m *memoryCallbacks) Read(h Handle, p []byte) (int, error) {
	return h.(*bytes.Reader).Read(p)
}

func (m *memoryCallbacks) Seek(h Handle, pos int64) (int64, error) {
	return h.(*bytes.Reader).Seek(pos, io.SeekStart)
}

func (m *memoryCallbacks) Close(h Handle) {
	if h != nil {
		m.open--
	}
}

func (m *memoryCallbacks) Draw(line *Scanline) error {
	if m.err != nil {
		return m.err
	}
	l := *line
	l.Pixels = append([]uint8(nil), line.Pixels...)
	m.lines = append(m.lines, l)
	return nil
}

func testGIF(t *testing.T, frames, width, height int) []byte {
	t.Helper()

	p := color.Palette{color.Black, color.White, color.RGBA{0xff, 0x00, 0x00, 0xff}}
	g := &gif.GIF{
		Config: image.Config{ColorModel: p, Width: width, Height: height},
	}
	for i := 0; i < frames; i++ {
		m := image.NewPaletted(image.Rect(0, 0, width, height), p)
		for j := range m.Pix {
			m.Pix[j] = uint8(i % len(p))
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, 10)
	}

	b := new(bytes.Buffer)
	require.Nil(t, gif.EncodeAll(b, g))

	return b.Bytes()
}

func TestGIFPlayFrame(t *testing.T) {
	cb := &memoryCallbacks{
		files: map[string][]byte{
			"a.gif": testGIF(t, 2, 4, 3),
		},
	}

	d := NewGIF(0)
	require.Nil(t, d.Open("a.gif", cb))
	assert.Equal(t, 1, cb.open)
	assert.Equal(t, image.Rect(0, 0, 4, 3), d.Bounds())
	assert.Equal(t, 2, d.Frames())

	done, err := d.PlayFrame()
	require.Nil(t, err)
	assert.True(t, done)
	require.Len(t, cb.lines, 3)
	for i, l := range cb.lines {
		assert.Equal(t, i, l.Row)
		assert.Equal(t, []uint8{0, 0, 0, 0}, l.Pixels)
	}

	done, err = d.PlayFrame()
	require.Nil(t, err)
	assert.True(t, done)
	assert.Equal(t, []uint8{1, 1, 1, 1}, cb.lines[3].Pixels)

	// Wraps around to the first frame again
	_, err = d.PlayFrame()
	require.Nil(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 0}, cb.lines[6].Pixels)

	d.Close()
	assert.Equal(t, 0, cb.open)
	assert.Equal(t, 0, d.Frames())

	// Closing twice is harmless
	d.Close()
	assert.Equal(t, 0, cb.open)
}

func TestGIFRowsPerCall(t *testing.T) {
	cb := &memoryCallbacks{
		files: map[string][]byte{
			"a.gif": testGIF(t, 1, 2, 5),
		},
	}

	d := NewGIF(2)
	require.Nil(t, d.Open("a.gif", cb))
	defer d.Close()

	var results []bool
	for i := 0; i < 3; i++ {
		done, err := d.PlayFrame()
		require.Nil(t, err)
		results = append(results, done)
	}

	assert.Equal(t, []bool{false, false, true}, results)
	assert.Len(t, cb.lines, 5)
}

func TestGIFOpenErrors(t *testing.T) {
	truncated := testGIF(t, 2, 8, 8)
	cb := &memoryCallbacks{
		files: map[string][]byte{
			"bad.gif":       []byte("GIF89a garbage"),
			"empty.gif":     {},
			"truncated.gif": truncated[:len(truncated)-8],
		},
	}

	d := NewGIF(0)

	err := d.Open("missing.gif", cb)
	assert.True(t, errors.Is(err, errNoFile))
	assert.Equal(t, 0, cb.open)

	err = d.Open("bad.gif", cb)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Equal(t, 0, cb.open)

	err = d.Open("empty.gif", cb)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Equal(t, 0, cb.open)

	err = d.Open("truncated.gif", cb)
	assert.True(t, errors.Is(err, ErrInvalid))
	assert.Equal(t, 0, cb.open)

	_, err = d.PlayFrame()
	assert.Equal(t, ErrNotOpen, err)
}

func TestGIFDrawError(t *testing.T) {
	failed := errors.New("bus error")
	cb := &memoryCallbacks{
		files: map[string][]byte{
			"a.gif": testGIF(t, 1, 2, 2),
		},
		err: failed,
	}

	d := NewGIF(0)
	require.Nil(t, d.Open("a.gif", cb))

	_, err := d.PlayFrame()
	assert.True(t, errors.Is(err, ErrStream))
	assert.True(t, errors.Is(err, failed))

	d.Close()
	assert.Equal(t, 0, cb.open)
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader(zeroCallbacks{}, nil)

	n, err := r.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	_, err = r.Seek(1, io.SeekCurrent)
	assert.NotNil(t, err)
}

type zeroCallbacks struct{}

func (zeroCallbacks) Open(string) (Handle, int64, error) {
	return nil, 0, nil
}

func (zeroCallbacks) Read(Handle, []byte) (int, error) {
	return 0, nil
}

func (zeroCallbacks) Seek(Handle, int64) (int64, error) {
	return 0, nil
}

func (zeroCallbacks) Close(Handle) {
}

func (zeroCallbacks) Draw(*Scanline) error {
	return nil
}

type countingCallbacks struct {
	*memoryCallbacks
	read int
}

func (c *countingCallbacks) Read(h Handle, p []byte) (int, error) {
	n, err := c.memoryCallbacks.Read(h, p)
	c.read += n
	return n, err
}

func TestGIFReadsFramesAsTheyPlay(t *testing.T) {
	b := testGIF(t, 50, 32, 32)
	cb := &countingCallbacks{
		memoryCallbacks: &memoryCallbacks{
			files: map[string][]byte{
				"a.gif": b,
			},
		},
	}

	d := NewGIF(1)
	require.Nil(t, d.Open("a.gif", cb))
	defer d.Close()
	assert.Equal(t, 50, d.Frames())

	// Only the block structure is read when opening
	assert.Less(t, cb.read, len(b))

	for i := 0; i < d.Frames(); i++ {
		cb.read = 0
		done, err := d.PlayFrame()
		require.Nil(t, err)
		assert.False(t, done)
		assert.Greater(t, cb.read, 0)

		// The rest of the frame is drawn without touching storage
		cb.read = 0
		for row := 1; row < 32; row++ {
			done, err = d.PlayFrame()
			require.Nil(t, err)
		}
		assert.True(t, done)
		assert.Equal(t, 0, cb.read)
		assert.Equal(t, []uint8{uint8(i % 3)}, cb.lines[len(cb.lines)-1].Pixels[:1])
	}
	assert.Equal(t, 1, cb.open)
}

func TestGIFMissingTrailer(t *testing.T) {
	b := testGIF(t, 2, 4, 4)
	cb := &memoryCallbacks{
		files: map[string][]byte{
			"a.gif": b[:len(b)-1],
		},
	}

	d := NewGIF(0)
	require.Nil(t, d.Open("a.gif", cb))
	defer d.Close()
	assert.Equal(t, 2, d.Frames())

	for i := 0; i < 2; i++ {
		done, err := d.PlayFrame()
		require.Nil(t, err)
		assert.True(t, done)
	}
}
