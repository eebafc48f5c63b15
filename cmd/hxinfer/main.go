package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hxinfer/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "hxinfer",
	Short: "Type inference and checking for Haxe-like sources",
	Long:  `hxinfer infers expression types, checks assignments and calls and reports diagnostics for Haxe-like source files`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := applyColorFlag(cmd); err != nil {
			return err
		}
		return startProfiling(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopProfiling()
	},
	SilenceUsage: true,
}

// exitCode is set by commands that finish normally but must fail the
// process, e.g. check with errors.
var exitCode int

// main registers subcommands and persistent flags and runs the root command.
// Any returned error exits with status 1.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inferCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer capacity for ring trace mode")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit trace heartbeats at this interval (0 disables)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to this file")

	if err := rootCmd.Execute(); err != nil {
		_ = stopProfiling()
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the --color flag for one output stream.
func useColor(cmd *cobra.Command, f *os.File) bool {
	mode, _ := cmd.Root().PersistentFlags().GetString("color")
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f)
	}
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	color.NoColor = !useColor(cmd, os.Stdout)
	return nil
}
