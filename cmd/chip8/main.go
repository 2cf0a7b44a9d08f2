package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8"
	"github.com/valerio/go-chip8/chip8/backend"
	"github.com/valerio/go-chip8/chip8/backend/headless"
	"github.com/valerio/go-chip8/chip8/backend/sdl2"
	"github.com/valerio/go-chip8/chip8/backend/terminal"
	"github.com/valerio/go-chip8/chip8/cpu"
	"github.com/valerio/go-chip8/chip8/display"
	"github.com/valerio/go-chip8/chip8/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8"
	app.Description = "A CHIP-8 interpreter"
	app.Usage = "chip8 [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend to use: terminal or sdl2",
			Value: "terminal",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing for interactive backends: adaptive, ticker or none",
			Value: "adaptive",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Show the CPU state panel and debug logs",
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Window pixel scale for the sdl2 backend",
			Value: display.DefaultPixelScale,
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random instruction (0 = time based)",
		},
		cli.BoolFlag{
			Name:  "stall-key-wait",
			Usage: "Keep re-executing the wait-for-key instruction until a key is held",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	if c.Bool("headless") {
		// Set up debug logging for headless mode
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		slog.SetDefault(slog.New(handler))
	}

	opts := []chip8.Option{
		chip8.WithQuirks(cpu.Quirks{StallOnKeyWait: c.Bool("stall-key-wait")}),
	}
	if seed := c.Uint64("seed"); seed != 0 {
		opts = append(opts, chip8.WithSeed(seed))
	}

	emu, err := chip8.NewWithFile(romPath, opts...)
	if err != nil {
		return err
	}

	b, limiter, err := selectBackend(c, romPath)
	if err != nil {
		return err
	}

	romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
	config := backend.Config{
		Title:         fmt.Sprintf("CHIP-8 - %s", romName),
		Scale:         c.Int("scale"),
		ShowDebug:     c.Bool("debug"),
		DebugProvider: emu,
	}
	if err := b.Init(config); err != nil {
		return err
	}
	defer func() {
		if err := b.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
	}()

	if err := emu.Run(b, limiter); err != nil {
		return fmt.Errorf("emulation stopped at frame %d: %w", emu.GetFrameCount(), err)
	}
	return nil
}

func selectBackend(c *cli.Context, romPath string) (backend.Backend, timing.Limiter, error) {
	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return nil, nil, errors.New("headless mode requires --frames option with a positive value")
		}

		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), romPath)
		if err != nil {
			return nil, nil, err
		}
		return headless.New(frames, snapshotConfig), timing.NewNoOpLimiter(), nil
	}

	limiter, ok := timing.NewLimiter(c.String("limiter"))
	if !ok {
		return nil, nil, fmt.Errorf("unknown limiter %q (want adaptive, ticker or none)", c.String("limiter"))
	}

	switch name := c.String("backend"); name {
	case "terminal":
		return terminal.New(), limiter, nil
	case "sdl2":
		return sdl2.New(), limiter, nil
	default:
		return nil, nil, fmt.Errorf("unknown backend %q (want terminal or sdl2)", name)
	}
}
