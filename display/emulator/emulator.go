// Package emulator shows a display.Framebuffer in a desktop window so the
// player can be run without any hardware attached.
package emulator

import (
	"context"
	"errors"
	"image"

	"github.com/bodgit/gifloop/display"
	"github.com/hajimehoshi/ebiten/v2"
)

// Window renders a Framebuffer using Ebitengine and drives the player from
// the game loop.
type Window struct {
	fb    *display.Framebuffer
	scale int
	ctx   context.Context
	tick  func()

	rgba        *image.RGBA
	ebitenImage *ebiten.Image
}

// New returns a Window showing fb, with every panel pixel drawn as a scale
// by scale block.
func New(fb *display.Framebuffer, scale int) *Window {
	if scale < 1 {
		scale = 1
	}
	return &Window{
		fb:    fb,
		scale: scale,
		rgba:  image.NewRGBA(fb.Bounds()),
	}
}

// Run opens the window and calls tick once per update until ctx is cancelled
// or the window is closed. tps sets the updates per second, zero keeps the
// Ebitengine default. It must be called from the main goroutine.
func (w *Window) Run(ctx context.Context, tps int, tick func()) error {
	w.ctx, w.tick = ctx, tick

	b := w.fb.Bounds()
	ebiten.SetWindowSize(b.Dx()*w.scale, b.Dy()*w.scale)
	ebiten.SetWindowTitle("gifloop")
	if tps > 0 {
		ebiten.SetTPS(tps)
	}

	if err := ebiten.RunGame(w); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	w.tick()
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	b := w.fb.Bounds()
	if w.ebitenImage == nil {
		w.ebitenImage = ebiten.NewImage(b.Dx(), b.Dy())
	}

	w.fb.Image().ToRGBA(w.rgba)
	w.ebitenImage.WritePixels(w.rgba.Pix)

	screen.DrawImage(w.ebitenImage, nil)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	b := w.fb.Bounds()
	return b.Dx(), b.Dy()
}
