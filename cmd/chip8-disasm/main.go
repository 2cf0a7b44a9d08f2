package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/urfave/cli"
	"github.com/valerio/go-chip8/chip8/addr"
	"github.com/valerio/go-chip8/chip8/disasm"
)

func main() {
	app := cli.NewApp()
	app.Name = "chip8-disasm"
	app.Description = "Disassembles a CHIP-8 ROM"
	app.Usage = "chip8-disasm [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "base",
			Usage: "Load address of the first byte (hex accepted, e.g. 0x200)",
			Value: fmt.Sprintf("0x%X", addr.ProgramStart),
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error disassembling ROM", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}

	base, err := strconv.ParseUint(c.String("base"), 0, 16)
	if err != nil {
		return fmt.Errorf("invalid base address %q: %w", c.String("base"), err)
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	if len(data)%2 != 0 {
		slog.Warn("ROM has an odd length, last byte skipped", "size", len(data))
	}

	for _, line := range disasm.Disassemble(data, uint16(base)) {
		fmt.Fprintln(c.App.Writer, disasm.FormatLine(line))
	}
	return nil
}
