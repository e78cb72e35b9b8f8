package display

import (
	"image"

	"github.com/bodgit/gifloop/rgb565"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const noticeMargin = 2

// Notice clears the panel to bg and prints lines of text on it in fg, one
// per row of text. Lines that do not fit are dropped.
func Notice(s Sink, fg, bg rgb565.Color, lines ...string) error {
	b := s.Bounds()

	m := rgb565.NewImage(b)
	m.Fill(bg)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  m,
		Src:  image.NewUniform(fg),
		Face: face,
	}

	for i, line := range lines {
		top := b.Min.Y + noticeMargin + i*face.Height
		if top+face.Height > b.Max.Y {
			break
		}
		d.Dot = fixed.P(b.Min.X+noticeMargin, top+face.Ascent)
		d.DrawString(line)
	}

	return Blit(s, m)
}
