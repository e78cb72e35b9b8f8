/*
Package gifloop plays a looping slideshow of animated GIF images from a
directory, typically the root of an SD card, on a small RGB565 panel.
*/
package gifloop

import (
	"errors"
	"io"
	"io/fs"
	"log"
	"time"

	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/bodgit/gifloop/rgb565"
)

const (
	// DefaultDwell is how long each image is shown for
	DefaultDwell = 5 * time.Second
	// DefaultCapacity is the maximum number of images in a playlist
	DefaultCapacity = 20
	// DefaultExtension is the file extension of playable images
	DefaultExtension = ".gif"
	// DefaultIdleInterval is how long Run sleeps when there is nothing to play
	DefaultIdleInterval = 100 * time.Millisecond
)

var (
	// ErrStorageUnavailable is returned when the image directory cannot be
	// listed.
	ErrStorageUnavailable = errors.New("gifloop: storage unavailable")

	// ErrNotFound is returned when an image cannot be opened because it no
	// longer exists.
	ErrNotFound = errors.New("gifloop: file not found")
)

// Config configures a Player. Zero values are replaced with defaults by New.
type Config struct {
	// Dir is the directory within the filesystem holding the images
	Dir        string
	Dwell      time.Duration
	Capacity   int
	Extension  string
	SkipHidden bool
	// Diagnostics draws the catalog and any storage errors on the panel
	Diagnostics  bool
	IdleInterval time.Duration
	// TickInterval is the pause between ticks in Run, zero runs flat out
	TickInterval time.Duration
	Clock        Clock
	Recorder     Recorder
	Logger       *log.Logger
}

func (c *Config) setDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Dwell <= 0 {
		c.Dwell = DefaultDwell
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Extension == "" {
		c.Extension = DefaultExtension
	}
	if c.IdleInterval <= 0 {
		c.IdleInterval = DefaultIdleInterval
	}
	if c.Clock == nil {
		c.Clock = NewSystemClock()
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard, "", 0)
	}
}

// New returns a Player that plays the images found in cfg.Dir of fsys
// through dec onto sink. The playlist is built by the first call to Tick.
func New(fsys fs.FS, sink display.Sink, dec decoder.Decoder, cfg Config) *Player {
	cfg.setDefaults()

	source := NewSource(fsys, cfg.Dir)

	p := &Player{
		cfg:     cfg,
		fsys:    fsys,
		source:  source,
		decoder: dec,
		sink:    sink,
		logger:  cfg.Logger,
		clock:   cfg.Clock,
		dwell:   uint32(cfg.Dwell / time.Millisecond),
		callbacks: &callbacks{
			Source:    source,
			sink:      sink,
			converter: rgb565.NewConverter(sink.Bounds().Dx()),
		},
	}
	p.RequestRescan()

	return p
}
