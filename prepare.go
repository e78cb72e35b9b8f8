package gifloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/gifloop/decoder"
	"github.com/ericpauley/go-quantize/quantize"
	xdraw "golang.org/x/image/draw"
)

// PrepareOptions configure Prepare.
type PrepareOptions struct {
	// Width and Height are the panel dimensions images are scaled to fit
	Width, Height int
	Workers       int
	Logger        *log.Logger
}

var convertible = map[string]bool{
	".gif":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
}

func findImages(ctx context.Context, base, skip string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Don't convert our own output
			if info.Mode().IsDir() && file == skip {
				return filepath.SkipDir
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() {
				return nil
			}

			if !convertible[strings.ToLower(filepath.Ext(file))] {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func fit(r image.Rectangle, width, height int) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	switch {
	case w <= width && h <= height:
		return image.Rect(0, 0, w, h)
	case w*height > h*width:
		return image.Rect(0, 0, width, max(1, h*width/w))
	default:
		return image.Rect(0, 0, max(1, w*height/h), height)
	}
}

func prepareImage(file, dst string, opts PrepareOptions) error {
	ext := filepath.Ext(file)
	target := filepath.Join(dst, strings.TrimSuffix(filepath.Base(file), ext)+DefaultExtension)

	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.EqualFold(ext, DefaultExtension) {
		config, err := gif.DecodeConfig(f)
		if err != nil {
			return err
		}

		if config.Width > opts.Width || config.Height > opts.Height {
			opts.Logger.Printf("Skipping \"%s\", %dx%d is larger than the panel\n", file, config.Width, config.Height)
			return nil
		}

		if info, err := f.Stat(); err != nil {
			return err
		} else if info.Size() > decoder.MaxFileSize {
			opts.Logger.Printf("Skipping \"%s\", file is too large\n", file)
			return nil
		}

		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}

		b, err := ioutil.ReadAll(f)
		if err != nil {
			return err
		}

		opts.Logger.Printf("Copying \"%s\"\n", file)

		return ioutil.WriteFile(target, b, 0644)
	}

	m, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("unable to decode \"%s\": %w", file, err)
	}

	scaled := image.NewRGBA(fit(m.Bounds(), opts.Width, opts.Height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), m, m.Bounds(), xdraw.Src, nil)

	q := quantize.MedianCutQuantizer{}
	p := q.Quantize(make(color.Palette, 0, 256), scaled)

	pm := image.NewPaletted(scaled.Bounds(), p)
	draw.FloydSteinberg.Draw(pm, pm.Bounds(), scaled, image.Point{})

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	opts.Logger.Printf("Converting \"%s\" to %dx%d\n", file, pm.Rect.Dx(), pm.Rect.Dy())

	if err := gif.EncodeAll(out, &gif.GIF{
		Image: []*image.Paletted{pm},
		Delay: []int{0},
	}); err != nil {
		return err
	}

	return out.Close()
}

func prepareWorker(ctx context.Context, in <-chan string, dst string, opts PrepareOptions) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if err := prepareImage(file, dst, opts); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Prepare walks src and writes a playable GIF into dst for every image found.
// Stills are scaled to fit the panel and reduced to a 256 colour palette,
// GIFs that already fit are copied as they are and any others are skipped.
func Prepare(src, dst string, opts PrepareOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return errors.New("gifloop: invalid panel size")
	}
	if opts.Workers <= 0 {
		opts.Workers = 10
	}
	if opts.Logger == nil {
		opts.Logger = log.New(ioutil.Discard, "", 0)
	}

	dir, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	out, err := filepath.Abs(dst)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(out, 0755); err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := findImages(ctx, dir, out)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < opts.Workers; i++ {
		errc, err := prepareWorker(ctx, files, out, opts)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
