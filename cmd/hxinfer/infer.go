package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hxinfer/internal/diagfmt"
	"hxinfer/internal/driver"
	"hxinfer/internal/eval"
	"hxinfer/internal/source"
)

var inferCmd = &cobra.Command{
	Use:   "infer [flags] file.hx",
	Short: "Print inferred types of fields, methods and locals",
	Long: `Infer types every member of the file and every local variable declared in
member bodies. With --at line:col only the innermost expression at that
position is typed.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfer,
}

func init() {
	inferCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	inferCmd.Flags().String("at", "", "type the expression at line:col (1-based)")
}

type inferEntry struct {
	Owner string `json:"owner" yaml:"owner"`
	Name  string `json:"name" yaml:"name"`
	Kind  string `json:"kind" yaml:"kind"`
	Type  string `json:"type" yaml:"type"`
	Line  uint32 `json:"line" yaml:"line"`
	Col   uint32 `json:"col" yaml:"col"`
}

type inferAt struct {
	Line uint32 `json:"line" yaml:"line"`
	Col  uint32 `json:"col" yaml:"col"`
	Type string `json:"type" yaml:"type"`
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`
}

func runInfer(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	at, err := cmd.Flags().GetString("at")
	if err != nil {
		return fmt.Errorf("failed to get at flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	res, err := driver.Infer(cmd.Context(), args[0], nil, driver.BuildOptions{
		MaxDiagnostics: maxDiagnostics,
		Eval:           eval.Options{Cache: eval.NewCache()},
	})
	if err != nil {
		return err
	}
	if bag := res.Unit.Bag; bag.Len() > 0 {
		if err := diagfmt.Pretty(cmd.ErrOrStderr(), bag, res.Program.FS, diagfmt.PrettyOpts{
			Color:   useColor(cmd, os.Stderr),
			Context: 1,
		}); err != nil {
			return err
		}
		if !res.Unit.Loaded() {
			return fmt.Errorf("failed to load %s", args[0])
		}
	}

	if at != "" {
		pos, err := parseLineCol(at)
		if err != nil {
			return err
		}
		h, sp, err := res.At(cmd.Context(), pos)
		if err != nil {
			return err
		}
		out := inferAt{Line: pos.Line, Col: pos.Col, Type: h.Type().String()}
		if !sp.Empty() {
			out.Expr = res.Program.FS.Text(sp)
		}
		return writeInferAt(cmd.OutOrStdout(), out, format)
	}

	entries := make([]inferEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		start, _ := res.Program.FS.Resolve(e.Span)
		entries = append(entries, inferEntry{
			Owner: e.Owner,
			Name:  e.Name,
			Kind:  e.Kind.String(),
			Type:  e.Type.String(),
			Line:  start.Line,
			Col:   start.Col,
		})
	}
	return writeInferEntries(cmd.OutOrStdout(), entries, format)
}

// parseLineCol reads "line:col" with both parts 1-based.
func parseLineCol(s string) (source.LineCol, error) {
	lineStr, colStr, ok := strings.Cut(s, ":")
	if !ok {
		return source.LineCol{}, fmt.Errorf("invalid position %q (expected line:col)", s)
	}
	line, err := strconv.ParseUint(strings.TrimSpace(lineStr), 10, 32)
	if err != nil || line == 0 {
		return source.LineCol{}, fmt.Errorf("invalid line in %q", s)
	}
	col, err := strconv.ParseUint(strings.TrimSpace(colStr), 10, 32)
	if err != nil || col == 0 {
		return source.LineCol{}, fmt.Errorf("invalid column in %q", s)
	}
	return source.LineCol{Line: uint32(line), Col: uint32(col)}, nil
}

func writeInferEntries(w io.Writer, entries []inferEntry, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		return encodeYAML(w, entries)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range entries {
		fmt.Fprintf(tw, "%d:%d\t%s\t%s.%s\t%s\n", e.Line, e.Col, e.Kind, e.Owner, e.Name, e.Type)
	}
	return tw.Flush()
}

func writeInferAt(w io.Writer, out inferAt, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case "yaml":
		return encodeYAML(w, out)
	}
	if out.Expr == "" {
		_, err := fmt.Fprintln(w, out.Type)
		return err
	}
	_, err := fmt.Fprintf(w, "%s : %s\n", out.Expr, out.Type)
	return err
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}
