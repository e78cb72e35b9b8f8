package gifloop

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"testing"
	"testing/fstest"
	"time"

	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/bodgit/gifloop/internal/mocks"
	"github.com/bodgit/gifloop/rgb565"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	ms uint32
}

func (c *fakeClock) Millis() uint32 {
	return c.ms
}

type memoryRecorder struct {
	plays []Play
}

func (r *memoryRecorder) Record(p Play) error {
	r.plays = append(r.plays, p)
	return nil
}

func (r *memoryRecorder) outcomes() []Outcome {
	var o []Outcome
	for _, p := range r.plays {
		o = append(o, p.Outcome)
	}
	return o
}

func testGIF(t *testing.T, c color.Color, frames, width, height int) []byte {
	t.Helper()

	p := color.Palette{color.Black, c}
	g := &gif.GIF{
		Config: image.Config{ColorModel: p, Width: width, Height: height},
	}
	for i := 0; i < frames; i++ {
		m := image.NewPaletted(image.Rect(0, 0, width, height), p)
		for j := range m.Pix {
			m.Pix[j] = 1
		}
		g.Image = append(g.Image, m)
		g.Delay = append(g.Delay, 10)
	}

	b := new(bytes.Buffer)
	require.Nil(t, gif.EncodeAll(b, g))

	return b.Bytes()
}

func TestCursorAdvancesOnOpenFailure(t *testing.T) {
	tables := []struct {
		n, initial, ticks, want int
	}{
		{1, 0, 5, 0},
		{3, 0, 1, 1},
		{3, 2, 1, 0},
		{3, 1, 7, 2},
		{20, 19, 21, 0},
	}

	for _, table := range tables {
		ctrl := gomock.NewController(t)
		dec := mocks.NewMockDecoder(ctrl)
		dec.EXPECT().Open(gomock.Any(), gomock.Any()).Return(decoder.ErrInvalid).Times(table.ticks)

		fsys := fstest.MapFS{}
		for i := 0; i < table.n; i++ {
			fsys[string(rune('a'+i))+".gif"] = &fstest.MapFile{}
		}

		p := New(fsys, display.NewFramebuffer(8, 8), dec, Config{Clock: new(fakeClock)})
		assert.Equal(t, Idle, p.Tick())
		require.Len(t, p.Playlist(), table.n)

		p.cursor = table.initial
		for i := 0; i < table.ticks; i++ {
			assert.Equal(t, Idle, p.Tick())
		}
		assert.Equal(t, table.want, p.Cursor())

		ctrl.Finish()
	}
}

func TestEmptyPlaylist(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No calls are expected on either the decoder or the sink
	dec := mocks.NewMockDecoder(ctrl)
	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Bounds().Return(image.Rect(0, 0, 8, 8)).AnyTimes()

	p := New(fstest.MapFS{"README": &fstest.MapFile{}}, sink, dec, Config{Clock: new(fakeClock)})
	for i := 0; i < 10; i++ {
		assert.Equal(t, Idle, p.Tick())
	}
	assert.Empty(t, p.Playlist())
	assert.Equal(t, 0, p.Cursor())
}

func TestMissingFileIsSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 1, 4, 4)},
		"b.gif": {Data: testGIF(t, color.White, 1, 4, 4)},
	}
	r := new(memoryRecorder)

	p := New(fsys, display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Clock: new(fakeClock), Recorder: r})
	assert.Equal(t, Idle, p.Tick())

	// The card changes underneath us
	delete(fsys, "a.gif")

	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, 0, p.Source().Handles())
	assert.Equal(t, 1, p.Cursor())

	require.Len(t, r.plays, 1)
	assert.Equal(t, "a.gif", r.plays[0].Name)
	assert.Equal(t, OpenFailed, r.plays[0].Outcome)
	assert.ErrorIs(t, r.plays[0].Err, ErrNotFound)

	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, "b.gif", p.Session().Name)
}

func TestCorruptFileIsSkipped(t *testing.T) {
	fsys := fstest.MapFS{
		"a.gif": {Data: []byte("GIF89a this is not really a GIF")},
		"b.gif": {Data: testGIF(t, color.White, 2, 4, 4)},
	}
	r := new(memoryRecorder)

	p := New(fsys, display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Clock: new(fakeClock), Recorder: r})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playlist{"a.gif", "b.gif"}, p.Playlist())

	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, 0, p.Source().Handles())
	assert.Equal(t, 1, p.Cursor())
	require.Len(t, r.plays, 1)
	assert.ErrorIs(t, r.plays[0].Err, decoder.ErrInvalid)

	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, "b.gif", p.Session().Name)
	assert.Equal(t, 1, p.Source().Handles())
}

func TestDwell(t *testing.T) {
	// Start close to the wrap around point of the counter
	clock := &fakeClock{ms: 0xffffffff - 1000}
	r := new(memoryRecorder)
	fb := display.NewFramebuffer(8, 4)

	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.RGBA{0xff, 0x00, 0x00, 0xff}, 1, 4, 2)},
	}

	p := New(fsys, fb, decoder.NewGIF(0), Config{Clock: clock, Recorder: r})
	assert.Equal(t, Idle, p.Tick())

	// The tick that opens the image does no decoding
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, 0, p.Session().Frames)

	clock.ms += 4999
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, 1, p.Session().Frames)

	// The image is centred on a cleared panel
	m := fb.Image()
	assert.Equal(t, rgb565.Color(0xf800), m.RGB565At(2, 1))
	assert.Equal(t, rgb565.Color(0xf800), m.RGB565At(5, 2))
	assert.Equal(t, rgb565.Color(0), m.RGB565At(1, 1))
	assert.Equal(t, rgb565.Color(0), m.RGB565At(2, 0))
	assert.Equal(t, rgb565.Color(0), m.RGB565At(6, 3))

	clock.ms++
	assert.Equal(t, Idle, p.Tick())
	assert.Nil(t, p.Session())
	assert.Equal(t, 0, p.Source().Handles())
	assert.Equal(t, 0, p.Cursor())

	require.Len(t, r.plays, 1)
	assert.Equal(t, Completed, r.plays[0].Outcome)
	assert.Equal(t, 2, r.plays[0].Frames)
	assert.Nil(t, r.plays[0].Err)

	// And round again
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, "a.gif", p.Session().Name)
}

func TestDwellWaitsForFrame(t *testing.T) {
	clock := new(fakeClock)

	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 1, 4, 4)},
	}

	p := New(fsys, display.NewFramebuffer(8, 8), decoder.NewGIF(1), Config{Clock: clock, Dwell: time.Second})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playing, p.Tick())

	clock.ms = 2000

	// Three partial frames, then the frame completes
	for i := 0; i < 3; i++ {
		assert.Equal(t, Playing, p.Tick())
	}
	assert.Equal(t, Idle, p.Tick())
}

func TestStreamError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	errBroken := errors.New("broken")

	dec := mocks.NewMockDecoder(ctrl)
	gomock.InOrder(
		dec.EXPECT().Open("a.gif", gomock.Any()).Return(nil),
		dec.EXPECT().Bounds().Return(image.Rect(0, 0, 8, 8)),
		dec.EXPECT().PlayFrame().Return(false, nil),
		dec.EXPECT().PlayFrame().Return(false, errBroken),
		dec.EXPECT().Close(),
		dec.EXPECT().Open("b.gif", gomock.Any()).Return(nil),
		dec.EXPECT().Bounds().Return(image.Rect(0, 0, 8, 8)),
	)

	r := new(memoryRecorder)
	fsys := fstest.MapFS{
		"a.gif": &fstest.MapFile{},
		"b.gif": &fstest.MapFile{},
	}

	p := New(fsys, display.NewFramebuffer(8, 8), dec, Config{Clock: new(fakeClock), Recorder: r})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, 1, p.Cursor())
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, "b.gif", p.Session().Name)

	require.Len(t, r.plays, 1)
	assert.Equal(t, StreamError, r.plays[0].Outcome)
	assert.ErrorIs(t, r.plays[0].Err, errBroken)
}

func TestSinkErrorSkipsImage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	sink := mocks.NewMockSink(ctrl)
	sink.EXPECT().Bounds().Return(image.Rect(0, 0, 4, 4)).AnyTimes()
	sink.EXPECT().Begin().Return(nil)
	sink.EXPECT().SetWindow(image.Rect(0, 0, 4, 1)).Return(nil)
	sink.EXPECT().WritePixels(gomock.Any()).Return(errors.New("bus error"))
	sink.EXPECT().End().Return(nil)

	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 1, 4, 4)},
	}
	r := new(memoryRecorder)

	p := New(fsys, sink, decoder.NewGIF(0), Config{Clock: new(fakeClock), Recorder: r})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, 0, p.Source().Handles())

	require.Len(t, r.plays, 1)
	assert.ErrorIs(t, r.plays[0].Err, decoder.ErrStream)
}

func TestClipping(t *testing.T) {
	fb := display.NewFramebuffer(4, 4)
	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 1, 6, 6)},
	}

	p := New(fsys, fb, decoder.NewGIF(0), Config{Clock: new(fakeClock)})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, Playing, p.Tick())

	for _, px := range fb.Image().Pix {
		assert.Equal(t, uint16(0xffff), px)
	}
}

func TestRescan(t *testing.T) {
	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 1, 4, 4)},
	}

	p := New(fsys, display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Clock: new(fakeClock)})
	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playlist{"a.gif"}, p.Playlist())

	assert.Equal(t, Playing, p.Tick())

	fsys["b.gif"] = &fstest.MapFile{Data: testGIF(t, color.White, 1, 4, 4)}
	p.RequestRescan()

	// Nothing happens until the current image is finished with
	assert.Equal(t, Playing, p.Tick())
	assert.Equal(t, Playlist{"a.gif"}, p.Playlist())

	p.Stop()
	assert.Equal(t, 0, p.Cursor())
	assert.Equal(t, 0, p.Source().Handles())

	assert.Equal(t, Idle, p.Tick())
	assert.Equal(t, Playlist{"a.gif", "b.gif"}, p.Playlist())
}

func TestRescanUnavailable(t *testing.T) {
	p := New(fstest.MapFS{}, display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Dir: "card", Clock: new(fakeClock)})
	assert.ErrorIs(t, p.Rescan(), ErrStorageUnavailable)
	assert.Equal(t, Idle, p.Tick())
}

func TestDiagnostics(t *testing.T) {
	tables := map[string]struct {
		fsys  fstest.MapFS
		lines []string
	}{
		"empty": {
			fstest.MapFS{"cards/README": &fstest.MapFile{}},
			[]string{"Storage OK", "No images found"},
		},
		"listed": {
			fstest.MapFS{"cards/a.gif": &fstest.MapFile{}},
			[]string{"Storage OK", "Images: 1", "a.gif"},
		},
		"truncated": {
			fstest.MapFS{"cards/a.gif": &fstest.MapFile{}, "cards/b.gif": &fstest.MapFile{}},
			[]string{"Storage OK", "Images: 2", "a.gif", "(1 not shown)"},
		},
		"error": {
			fstest.MapFS{},
			[]string{"Storage unavailable"},
		},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			want := display.NewFramebuffer(128, 64)
			require.Nil(t, display.Notice(want, 0xffff, 0, table.lines...))

			fb := display.NewFramebuffer(128, 64)
			p := New(table.fsys, fb, decoder.NewGIF(0), Config{Dir: "cards", Capacity: 1, Clock: new(fakeClock), Diagnostics: true})
			p.Rescan()

			assert.Equal(t, want.Image().Pix, fb.Image().Pix)
		})
	}
}

func TestRun(t *testing.T) {
	fsys := fstest.MapFS{
		"a.gif": {Data: testGIF(t, color.White, 2, 4, 4)},
	}
	r := new(memoryRecorder)

	p := New(fsys, display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Clock: new(fakeClock), Recorder: r, TickInterval: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, p.Run(ctx), context.DeadlineExceeded)
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, 0, p.Source().Handles())
	assert.Equal(t, []Outcome{Stopped}, r.outcomes())
}
