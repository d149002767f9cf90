package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"chip8/internal/disasm"
	"chip8/internal/hal"
	"chip8/internal/vm"
)

func main() {
	cmd := &cobra.Command{
		Use:           filepath.Base(os.Args[0]),
		Short:         "CHIP-8 interpreter",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	verbose := cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose logging")
	cmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		loggerOpts := &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}
		if *verbose {
			loggerOpts.Level = slog.LevelDebug
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))
	}

	cmd.AddCommand(runCommand(), disasmCommand())

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run PATH_TO_ROM_FILE",
		Short: "Run a ROM",
		Args:  cobra.ExactArgs(1),
	}

	speed := cmd.Flags().Int("speed", 10, "machine ticks per 60Hz frame")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		rom, err := readROM(args[0])
		if err != nil {
			return err
		}

		h, err := hal.New()
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		machine := vm.New(vm.MathRandom())

		for {
			if err := machine.LoadROM(rom); err != nil {
				return err
			}

			err = h.Run(machine, *speed)

			if errors.Is(err, hal.ErrQuit) {
				return nil
			}

			if errors.Is(err, hal.ErrReboot) {
				slog.Info("reboot")
				machine.Reset()
				continue
			}

			return err
		}
	}

	return cmd
}

func disasmCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "disasm PATH_TO_ROM_FILE",
		Short: "Print a ROM as an assembly listing",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		rom, err := readROM(args[0])
		if err != nil {
			return err
		}

		w := bufio.NewWriter(os.Stdout)
		if err := disasm.Print(w, rom); err != nil {
			return err
		}

		return w.Flush()
	}

	return cmd
}

func readROM(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}

	return bs, nil
}
