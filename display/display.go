/*
Package display defines the pixel sink the player draws on.

A Sink is a panel addressed by a rectangular window that is filled row by row,
top to bottom and left to right, with packed RGB565 pixels. Every burst of
writes is bracketed by Begin and End.
*/
package display

import (
	"errors"
	"image"

	"github.com/bodgit/gifloop/rgb565"
)

var (
	// ErrNoTransaction is returned when a sink is written to outside of a
	// Begin/End pair.
	ErrNoTransaction = errors.New("display: write outside of a transaction")

	// ErrBusy is returned by Begin when a transaction is already open.
	ErrBusy = errors.New("display: transaction already in progress")

	// ErrWindow is returned by SetWindow for an empty window or one that
	// does not fit on the panel.
	ErrWindow = errors.New("display: invalid window")

	// ErrOverflow is returned when more pixels are written than the window
	// holds.
	ErrOverflow = errors.New("display: window overflow")
)

// Sink is a panel accepting RGB565 pixels. Pixels are passed in host order,
// the sink is responsible for putting them on the wire in whatever byte order
// the panel expects.
type Sink interface {
	Bounds() image.Rectangle
	Begin() error
	SetWindow(r image.Rectangle) error
	WritePixels(p []uint16) error
	End() error
}

func transaction(s Sink, f func() error) (err error) {
	if err = s.Begin(); err != nil {
		return err
	}
	defer func() {
		if e := s.End(); err == nil {
			err = e
		}
	}()
	return f()
}

// WriteRow writes one row of pixels starting at (x, y) in its own
// transaction.
func WriteRow(s Sink, x, y int, p []uint16) error {
	return transaction(s, func() error {
		if err := s.SetWindow(image.Rect(x, y, x+len(p), y+1)); err != nil {
			return err
		}
		return s.WritePixels(p)
	})
}

// Fill sets the whole panel to c.
func Fill(s Sink, c rgb565.Color) error {
	b := s.Bounds()
	row := make([]uint16, b.Dx())
	for i := range row {
		row[i] = uint16(c)
	}
	return transaction(s, func() error {
		if err := s.SetWindow(b); err != nil {
			return err
		}
		for y := b.Min.Y; y < b.Max.Y; y++ {
			if err := s.WritePixels(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// Blit copies m onto the panel at the same coordinates.
func Blit(s Sink, m *rgb565.Image) error {
	r := m.Bounds().Intersect(s.Bounds())
	if r.Empty() {
		return nil
	}
	return transaction(s, func() error {
		if err := s.SetWindow(r); err != nil {
			return err
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			i := m.PixOffset(r.Min.X, y)
			if err := s.WritePixels(m.Pix[i : i+r.Dx()]); err != nil {
				return err
			}
		}
		return nil
	})
}
