package gifloop

import (
	"context"
	"fmt"
	"image/color"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestShouldRescan(t *testing.T) {
	assert.True(t, shouldRescan(fsnotify.Create))
	assert.True(t, shouldRescan(fsnotify.Remove))
	assert.True(t, shouldRescan(fsnotify.Rename))
	assert.True(t, shouldRescan(fsnotify.Create|fsnotify.Chmod))
	assert.False(t, shouldRescan(fsnotify.Write))
	assert.False(t, shouldRescan(fsnotify.Chmod))
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()

	p := New(os.DirFS(dir), display.NewFramebuffer(8, 8), decoder.NewGIF(0), Config{Clock: new(fakeClock)})
	assert.Equal(t, Idle, p.Tick())
	assert.False(t, p.rescan.Load())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- p.Watch(ctx, dir)
	}()

	// Files that aren't images are ignored
	assert.Nil(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644))

	b := testGIF(t, color.White, 1, 4, 4)
	i := 0
	assert.Eventually(t, func() bool {
		i++
		ioutil.WriteFile(filepath.Join(dir, fmt.Sprintf("%d.GIF", i)), b, 0644)
		return p.rescan.Load()
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	assert.Nil(t, <-done)

	assert.Equal(t, Idle, p.Tick())
	assert.NotEmpty(t, p.Playlist())
}
