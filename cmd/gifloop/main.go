package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/bodgit/gifloop"
	"github.com/bodgit/gifloop/decoder"
	"github.com/bodgit/gifloop/display"
	"github.com/bodgit/gifloop/display/emulator"
	"github.com/bodgit/gifloop/display/ili9341"
	"github.com/bodgit/gifloop/rgb565"
	"github.com/urfave/cli/v2"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func scanOptions(c *cli.Context) gifloop.ScanOptions {
	return gifloop.ScanOptions{
		Extension:  gifloop.DefaultExtension,
		Capacity:   c.Int("max"),
		SkipHidden: !c.Bool("show-hidden"),
	}
}

var playlistFlags = []cli.Flag{
	&cli.IntFlag{
		Name:    "max",
		EnvVars: []string{"GIFLOOP_MAX"},
		Value:   gifloop.DefaultCapacity,
		Usage:   "maximum number of images to play",
	},
	&cli.BoolFlag{
		Name:  "show-hidden",
		Usage: "include hidden files",
	},
}

func writeSnapshot(file string, fb *display.Framebuffer) error {
	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := rgb565.Encode(f, fb.Image()); err != nil {
		return err
	}

	return f.Close()
}

func openPanel(c *cli.Context) (display.Sink, func(), error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}

	port, err := spireg.Open(c.String("spi-port"))
	if err != nil {
		return nil, nil, err
	}

	dc := gpioreg.ByName(c.String("dc"))
	if dc == nil {
		port.Close()
		return nil, nil, fmt.Errorf("no such GPIO pin \"%s\"", c.String("dc"))
	}

	opts := ili9341.DefaultOpts
	opts.W, opts.H = c.Int("width"), c.Int("height")
	if c.Bool("portrait") {
		opts.MemoryAccess = ili9341.Portrait
	}
	if name := c.String("rst"); name != "" {
		rst := gpioreg.ByName(name)
		if rst == nil {
			port.Close()
			return nil, nil, fmt.Errorf("no such GPIO pin \"%s\"", name)
		}
		opts.RST = rst
	}

	dev, err := ili9341.NewSPI(port, dc, &opts)
	if err != nil {
		port.Close()
		return nil, nil, err
	}

	return dev, func() {
		dev.Halt()
		port.Close()
	}, nil
}

func play(c *cli.Context) error {
	if c.NArg() < 1 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}
	dir := c.Args().First()

	logger := newLogger(c)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sink display.Sink
		fb   *display.Framebuffer
	)
	switch c.String("sink") {
	case "headless", "window":
		fb = display.NewFramebuffer(c.Int("width"), c.Int("height"))
		sink = fb
	case "spi":
		dev, closer, err := openPanel(c)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer closer()
		sink = dev
	default:
		return cli.Exit(fmt.Sprintf("unknown sink \"%s\"", c.String("sink")), 1)
	}

	cfg := gifloop.Config{
		Dwell:        c.Duration("dwell"),
		Capacity:     c.Int("max"),
		SkipHidden:   !c.Bool("show-hidden"),
		Diagnostics:  c.Bool("diagnostics"),
		TickInterval: c.Duration("tick"),
		Logger:       logger,
	}

	if file := c.String("history"); file != "" {
		db, err := gifloop.NewHistoryDB(file)
		if err != nil {
			return cli.Exit(err, 1)
		}
		defer db.Close()
		cfg.Recorder = db
	}

	p := gifloop.New(os.DirFS(dir), sink, decoder.NewGIF(c.Int("rows")), cfg)

	if c.Bool("watch") {
		go func() {
			if err := p.Watch(ctx, dir); err != nil {
				logger.Printf("Unable to watch \"%s\": %s\n", dir, err)
			}
		}()
	}

	if c.String("sink") == "window" {
		if err := emulator.New(fb, c.Int("scale")).Run(ctx, 0, func() { p.Tick() }); err != nil {
			return cli.Exit(err, 1)
		}
		p.Stop()
	} else if err := p.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.Exit(err, 1)
	}

	if file := c.String("snapshot"); file != "" && fb != nil {
		if err := writeSnapshot(file, fb); err != nil {
			return cli.Exit(err, 1)
		}
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "gifloop"
	app.Usage = "Animated GIF slideshow player"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "history",
			EnvVars: []string{"GIFLOOP_HISTORY"},
			Usage:   "path to play history database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "play",
			Usage:       "Play a slideshow of the images in a directory",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "sink",
					EnvVars: []string{"GIFLOOP_SINK"},
					Value:   "headless",
					Usage:   "where to draw: headless, window or spi",
				},
				&cli.DurationFlag{
					Name:    "dwell",
					EnvVars: []string{"GIFLOOP_DWELL"},
					Value:   gifloop.DefaultDwell,
					Usage:   "how long to show each image",
				},
				&cli.IntFlag{
					Name:    "rows",
					EnvVars: []string{"GIFLOOP_ROWS"},
					Usage:   "rows decoded per tick, 0 for a whole frame",
				},
				&cli.DurationFlag{
					Name:    "tick",
					EnvVars: []string{"GIFLOOP_TICK"},
					Value:   20 * time.Millisecond,
					Usage:   "pause between ticks",
				},
				&cli.IntFlag{
					Name:  "width",
					Value: ili9341.DefaultOpts.W,
					Usage: "panel width",
				},
				&cli.IntFlag{
					Name:  "height",
					Value: ili9341.DefaultOpts.H,
					Usage: "panel height",
				},
				&cli.IntFlag{
					Name:  "scale",
					Value: 2,
					Usage: "window pixels per panel pixel",
				},
				&cli.BoolFlag{
					Name:  "diagnostics",
					Usage: "show the playlist on the panel after scanning",
				},
				&cli.BoolFlag{
					Name:  "watch",
					Usage: "rescan when images are added or removed",
				},
				&cli.StringFlag{
					Name:  "snapshot",
					Usage: "write the final framebuffer to this file",
				},
				&cli.StringFlag{
					Name:    "spi-port",
					EnvVars: []string{"GIFLOOP_SPI_PORT"},
					Usage:   "SPI port, empty for the first available",
				},
				&cli.StringFlag{
					Name:    "dc",
					EnvVars: []string{"GIFLOOP_DC"},
					Value:   "GPIO25",
					Usage:   "data/command GPIO pin",
				},
				&cli.StringFlag{
					Name:    "rst",
					EnvVars: []string{"GIFLOOP_RST"},
					Usage:   "optional reset GPIO pin",
				},
				&cli.BoolFlag{
					Name:  "portrait",
					Usage: "use the panel in portrait orientation",
				},
			}, playlistFlags...),
			Action: play,
		},
		{
			Name:        "scan",
			Usage:       "List the images that would be played",
			Description: "",
			ArgsUsage:   "DIRECTORY",
			Flags:       playlistFlags,
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				catalog, err := gifloop.Scan(os.DirFS(c.Args().First()), ".", scanOptions(c))
				if err != nil {
					return cli.Exit(err, 1)
				}

				for i, name := range catalog.Playlist {
					fmt.Printf("%d\t%s\n", i, name)
				}
				if catalog.Truncated() {
					fmt.Printf("%d more not played\n", catalog.Found-len(catalog.Playlist))
				}

				return nil
			},
		},
		{
			Name:        "prepare",
			Usage:       "Convert images into GIFs that fit the panel",
			Description: "",
			ArgsUsage:   "SOURCE DESTINATION",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "width",
					Value: ili9341.DefaultOpts.W,
					Usage: "panel width",
				},
				&cli.IntFlag{
					Name:  "height",
					Value: ili9341.DefaultOpts.H,
					Usage: "panel height",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 10,
					Usage: "number of images to convert at once",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := gifloop.Prepare(c.Args().Get(0), c.Args().Get(1), gifloop.PrepareOptions{
					Width:   c.Int("width"),
					Height:  c.Int("height"),
					Workers: c.Int("workers"),
					Logger:  newLogger(c),
				}); err != nil {
					return cli.Exit(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "history",
			Usage:       "Show how often each image has been played",
			Description: "",
			Action: func(c *cli.Context) error {
				file := c.String("history")
				if file == "" {
					return cli.Exit("no history database given", 1)
				}

				db, err := gifloop.NewHistoryDB(file)
				if err != nil {
					return cli.Exit(err, 1)
				}
				defer db.Close()

				summaries, err := db.Summary()
				if err != nil {
					return cli.Exit(err, 1)
				}

				w := tabwriter.NewWriter(os.Stdout, 0, 8, 1, ' ', 0)
				fmt.Fprintln(w, "NAME\tPLAYS\tFAILURES\tFRAMES\tLAST PLAYED")
				for _, s := range summaries {
					fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n", s.Name, s.Plays, s.Failures, s.Frames, s.LastPlayed.Format(time.RFC3339))
				}

				return w.Flush()
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
