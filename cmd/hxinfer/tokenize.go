package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hxinfer/internal/diag"
	"hxinfer/internal/diagfmt"
	"hxinfer/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.hx...",
	Short: "Tokenize Haxe source files",
	Long:  `Tokenize breaks Haxe source files down into tokens and prints them`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if format != "pretty" && format != "json" {
		return fmt.Errorf("unknown format: %s", format)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs, results, err := driver.TokenizeFiles(cmd.Context(), args, maxDiagnostics, 0)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	bag := diag.NewBag(0)
	for _, r := range results {
		bag.Merge(r.Bag)
	}
	if bag.Len() > 0 {
		bag.Sort()
		opts := diagfmt.PrettyOpts{Color: useColor(cmd, os.Stderr), Context: 2}
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, opts); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		if r.File == nil {
			continue
		}
		if len(results) > 1 && format == "pretty" {
			fmt.Fprintf(out, "== %s\n", r.Path)
		}
		switch format {
		case "json":
			err = diagfmt.FormatTokensJSON(out, r.Tokens)
		default:
			err = diagfmt.FormatTokensPretty(out, r.Tokens, fs)
		}
		if err != nil {
			return err
		}
	}
	if bag.HasErrors() {
		return fmt.Errorf("tokenization reported %d errors", bag.CountAtLeast(diag.SevError))
	}
	return nil
}
