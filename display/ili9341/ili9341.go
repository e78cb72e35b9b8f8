/*
Package ili9341 drives an ILI9341 TFT controller over SPI.

The panel is used in 16-bit colour mode. Pixels are sent most significant
byte first, with a GPIO pin selecting between command and data bytes.

	host.Init()
	port, _ := spireg.Open("")
	dev, _ := ili9341.NewSPI(port, gpioreg.ByName("GPIO25"), &ili9341.Opts{
		W:   320,
		H:   240,
		RST: gpioreg.ByName("GPIO24"),
	})
	defer dev.Halt()
*/
package ili9341

import (
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/bodgit/gifloop/display"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	cmdSoftwareReset = 0x01
	cmdSleepIn       = 0x10
	cmdSleepOut      = 0x11
	cmdDisplayOff    = 0x28
	cmdDisplayOn     = 0x29
	cmdColumnAddress = 0x2a
	cmdPageAddress   = 0x2b
	cmdMemoryWrite   = 0x2c
	cmdMemoryAccess  = 0x36
	cmdPixelFormat   = 0x3a
)

const (
	// Landscape with the row/column exchange and BGR colour filter bits set
	Landscape = 0x28
	// Portrait with only the BGR colour filter bit set
	Portrait = 0x08

	pixelFormat16 = 0x55

	// Typical spidev buffer size
	defaultMaxTxSize = 4096
)

var sleep = time.Sleep

// Conn is the part of spi.Conn the driver needs.
type Conn interface {
	Tx(w, r []byte) error
}

// Pin is the part of gpio.PinOut the driver needs.
type Pin interface {
	Out(l gpio.Level) error
}

// Opts configure the panel.
type Opts struct {
	W, H int
	// MemoryAccess is the MADCTL value setting the orientation
	MemoryAccess byte
	// RST is an optional hardware reset pin
	RST   Pin
	Speed physic.Frequency
}

// DefaultOpts suit the common 320x240 landscape modules.
var DefaultOpts = Opts{
	W:            320,
	H:            240,
	MemoryAccess: Landscape,
	Speed:        32 * physic.MegaHertz,
}

// Dev is an open panel. It implements display.Sink.
type Dev struct {
	c     Conn
	dc    Pin
	rect  image.Rectangle
	buf   []byte
	maxTx int

	active    bool
	remaining int
}

var _ display.Sink = new(Dev)

// NewSPI connects to the panel on p and initialises it.
func NewSPI(p spi.Port, dc Pin, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	speed := opts.Speed
	if speed == 0 {
		speed = DefaultOpts.Speed
	}
	c, err := p.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("ili9341: %w", err)
	}
	return New(c, dc, opts)
}

// New initialises the panel connected through c with dc as the data/command
// pin.
func New(c Conn, dc Pin, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	if opts.W <= 0 || opts.H <= 0 {
		return nil, errors.New("ili9341: invalid panel size")
	}

	maxTx := defaultMaxTxSize
	if l, ok := c.(conn.Limits); ok && l.MaxTxSize() > 0 {
		maxTx = l.MaxTxSize()
	}
	// Keep whole pixels in each transfer
	maxTx &^= 1

	d := &Dev{
		c:     c,
		dc:    dc,
		rect:  image.Rect(0, 0, opts.W, opts.H),
		buf:   make([]byte, maxTx),
		maxTx: maxTx,
	}

	if err := d.reset(opts.RST); err != nil {
		return nil, err
	}

	if err := d.init(opts.MemoryAccess); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Dev) reset(rst Pin) error {
	if rst == nil {
		return nil
	}
	for _, step := range []struct {
		l gpio.Level
		t time.Duration
	}{
		{gpio.High, 5 * time.Millisecond},
		{gpio.Low, 20 * time.Millisecond},
		{gpio.High, 150 * time.Millisecond},
	} {
		if err := rst.Out(step.l); err != nil {
			return fmt.Errorf("ili9341: reset: %w", err)
		}
		sleep(step.t)
	}
	return nil
}

func (d *Dev) init(madctl byte) error {
	if err := d.command(cmdSoftwareReset); err != nil {
		return err
	}
	sleep(150 * time.Millisecond)

	if err := d.command(cmdSleepOut); err != nil {
		return err
	}
	sleep(120 * time.Millisecond)

	if err := d.command(cmdPixelFormat, pixelFormat16); err != nil {
		return err
	}

	if err := d.command(cmdMemoryAccess, madctl); err != nil {
		return err
	}

	if err := d.command(cmdDisplayOn); err != nil {
		return err
	}
	sleep(20 * time.Millisecond)

	return nil
}

func (d *Dev) command(cmd byte, data ...byte) error {
	if err := d.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("ili9341: %w", err)
	}
	if err := d.c.Tx([]byte{cmd}, nil); err != nil {
		return fmt.Errorf("ili9341: command %#02x: %w", cmd, err)
	}
	if len(data) == 0 {
		return nil
	}
	return d.data(data)
}

func (d *Dev) data(b []byte) error {
	if err := d.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("ili9341: %w", err)
	}
	if err := d.c.Tx(b, nil); err != nil {
		return fmt.Errorf("ili9341: %w", err)
	}
	return nil
}

// String implements fmt.Stringer.
func (d *Dev) String() string {
	return fmt.Sprintf("ili9341{%dx%d}", d.rect.Dx(), d.rect.Dy())
}

// Bounds implements display.Sink.
func (d *Dev) Bounds() image.Rectangle {
	return d.rect
}

// Begin implements display.Sink.
func (d *Dev) Begin() error {
	if d.active {
		return display.ErrBusy
	}
	d.active = true
	d.remaining = 0
	return nil
}

// End implements display.Sink.
func (d *Dev) End() error {
	if !d.active {
		return display.ErrNoTransaction
	}
	d.active = false
	return nil
}

// SetWindow implements display.Sink. It leaves the panel expecting pixel
// data.
func (d *Dev) SetWindow(r image.Rectangle) error {
	if !d.active {
		return display.ErrNoTransaction
	}
	if r.Empty() || !r.In(d.rect) {
		return display.ErrWindow
	}

	x0, x1 := r.Min.X, r.Max.X-1
	if err := d.command(cmdColumnAddress, byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}

	y0, y1 := r.Min.Y, r.Max.Y-1
	if err := d.command(cmdPageAddress, byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}

	if err := d.command(cmdMemoryWrite); err != nil {
		return err
	}

	d.remaining = r.Dx() * r.Dy()

	return nil
}

// WritePixels implements display.Sink.
func (d *Dev) WritePixels(p []uint16) error {
	if !d.active {
		return display.ErrNoTransaction
	}
	if len(p) > d.remaining {
		return display.ErrOverflow
	}

	for len(p) > 0 {
		n := len(p)
		if n > d.maxTx/2 {
			n = d.maxTx / 2
		}
		b := d.buf[:2*n]
		for i, px := range p[:n] {
			b[2*i] = byte(px >> 8)
			b[2*i+1] = byte(px)
		}
		if err := d.data(b); err != nil {
			return err
		}
		p = p[n:]
		d.remaining -= n
	}

	return nil
}

// Halt turns the panel off and puts it to sleep.
func (d *Dev) Halt() error {
	if err := d.command(cmdDisplayOff); err != nil {
		return err
	}
	return d.command(cmdSleepIn)
}
