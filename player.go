package gifloop

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"sync/atomic"
	"time"

	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/bodgit/gifloop/rgb565"
	"github.com/google/uuid"
)

// State is the state of a Player.
type State int

const (
	// Idle means no image is open
	Idle State = iota
	// Playing means an image is open and being decoded
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session describes the image currently being played.
type Session struct {
	ID      uuid.UUID
	Name    string
	Started time.Time
	// Frames counts the frames completed so far
	Frames int

	start uint32
}

// Player is the playback state machine. Apart from RequestRescan, its
// methods must all be called from the same goroutine.
type Player struct {
	cfg       Config
	fsys      fs.FS
	source    *Source
	decoder   decoder.Decoder
	sink      display.Sink
	callbacks *callbacks
	logger    *log.Logger
	clock     Clock
	dwell     uint32

	catalog Catalog
	cursor  int
	session *Session
	rescan  atomic.Bool
}

// State returns Playing if an image is open, otherwise Idle.
func (p *Player) State() State {
	if p.session != nil {
		return Playing
	}
	return Idle
}

// Catalog returns the result of the last scan.
func (p *Player) Catalog() Catalog {
	return p.catalog
}

// Playlist returns the current playlist.
func (p *Player) Playlist() Playlist {
	return p.catalog.Playlist
}

// Cursor returns the index of the image that is playing, or that will be
// opened next.
func (p *Player) Cursor() int {
	return p.cursor
}

// Session returns the image currently playing, or nil.
func (p *Player) Session() *Session {
	if p.session == nil {
		return nil
	}
	s := *p.session
	return &s
}

// Source returns the storage the decoder reads through.
func (p *Player) Source() *Source {
	return p.source
}

// RequestRescan asks for the playlist to be rebuilt as soon as the Player is
// next idle. It is safe to call from any goroutine.
func (p *Player) RequestRescan() {
	p.rescan.Store(true)
}

// Rescan rebuilds the playlist immediately. The cursor is kept if it is
// still within the new playlist. Any image playing is stopped first.
func (p *Player) Rescan() error {
	p.rescan.Store(false)
	p.Stop()

	catalog, err := Scan(p.fsys, p.cfg.Dir, ScanOptions{
		Extension:  p.cfg.Extension,
		Capacity:   p.cfg.Capacity,
		SkipHidden: p.cfg.SkipHidden,
	})
	p.catalog = catalog

	if n := len(catalog.Playlist); n > 0 {
		p.cursor %= n
	} else {
		p.cursor = 0
	}

	switch {
	case err != nil:
		p.logger.Printf("Unable to scan \"%s\": %s\n", p.cfg.Dir, err)
	case catalog.Truncated():
		p.logger.Printf("Found %d images in \"%s\", only playing the first %d\n", catalog.Found, p.cfg.Dir, len(catalog.Playlist))
	default:
		p.logger.Printf("Found %d images in \"%s\"\n", catalog.Found, p.cfg.Dir)
	}

	if p.cfg.Diagnostics {
		p.diagnose(err)
	}

	return err
}

func (p *Player) diagnose(err error) {
	lines := []string{}
	switch {
	case err != nil:
		lines = append(lines, "Storage unavailable")
	case len(p.catalog.Playlist) == 0:
		lines = append(lines, "Storage OK", "No images found")
	default:
		lines = append(lines, "Storage OK", fmt.Sprintf("Images: %d", p.catalog.Found))
		lines = append(lines, p.catalog.Playlist...)
		if p.catalog.Truncated() {
			lines = append(lines, fmt.Sprintf("(%d not shown)", p.catalog.Found-len(p.catalog.Playlist)))
		}
	}
	if err := display.Notice(p.sink, rgb565.Pack(0xff, 0xff, 0xff), 0, lines...); err != nil {
		p.logger.Printf("Unable to draw notice: %s\n", err)
	}
}

// Tick performs one bounded unit of work and returns the resulting state.
//
// When idle, a pending rescan is performed or otherwise the image under the
// cursor is opened. When playing, the decoder is asked for one unit of work
// and once a frame has been completed after the dwell time has elapsed, the
// image is closed and the cursor advanced.
func (p *Player) Tick() State {
	if p.session == nil {
		if p.rescan.Load() {
			p.Rescan()
			return Idle
		}
		if len(p.catalog.Playlist) == 0 {
			return Idle
		}
		p.open()
		return p.State()
	}

	done, err := p.decoder.PlayFrame()
	if err != nil {
		p.logger.Printf("Error playing \"%s\": %s\n", p.session.Name, err)
		p.finish(StreamError, err)
		return Idle
	}

	if done {
		p.session.Frames++
		if elapsed(p.session.start, p.clock.Millis()) >= p.dwell {
			p.finish(Completed, nil)
			return Idle
		}
	}

	return Playing
}

func (p *Player) open() {
	name := p.catalog.Playlist[p.cursor]
	started := time.Now()

	if err := p.decoder.Open(name, p.callbacks); err != nil {
		p.logger.Printf("Skipping \"%s\": %s\n", name, err)
		p.record(Play{
			Name:    name,
			Started: started,
			Outcome: OpenFailed,
			Err:     err,
		})
		p.advance()
		return
	}

	p.session = &Session{
		ID:      uuid.New(),
		Name:    name,
		Started: started,
		start:   p.clock.Millis(),
	}

	if p.callbacks.place(p.decoder.Bounds()) {
		if err := display.Fill(p.sink, 0); err != nil {
			p.logger.Printf("Unable to clear display: %s\n", err)
		}
	}

	p.logger.Printf("Playing \"%s\"\n", name)
}

func (p *Player) finish(outcome Outcome, err error) {
	s := p.session
	p.session = nil
	p.decoder.Close()

	p.record(Play{
		Session:  s.ID,
		Name:     s.Name,
		Started:  s.Started,
		Duration: time.Since(s.Started),
		Frames:   s.Frames,
		Outcome:  outcome,
		Err:      err,
	})
	p.advance()
}

func (p *Player) advance() {
	if n := len(p.catalog.Playlist); n > 0 {
		p.cursor = (p.cursor + 1) % n
	}
}

func (p *Player) record(play Play) {
	if p.cfg.Recorder == nil {
		return
	}
	if err := p.cfg.Recorder.Record(play); err != nil {
		p.logger.Printf("Unable to record play of \"%s\": %s\n", play.Name, err)
	}
}

// Stop closes any image that is playing. The cursor is left where it was.
func (p *Player) Stop() {
	if p.session == nil {
		return
	}
	cursor := p.cursor
	p.finish(Stopped, nil)
	p.cursor = cursor
}

// Run calls Tick until ctx is cancelled, then stops playback. It sleeps for
// TickInterval between ticks and for IdleInterval whilst there is nothing to
// play.
func (p *Player) Run(ctx context.Context) error {
	defer p.Stop()

	for {
		state := p.Tick()

		wait := p.cfg.TickInterval
		if state == Idle && len(p.catalog.Playlist) == 0 {
			wait = p.cfg.IdleInterval
		}

		if wait <= 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
}
