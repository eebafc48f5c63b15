package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"hxinfer/internal/diag"
	"hxinfer/internal/diagfmt"
	"hxinfer/internal/driver"
	"hxinfer/internal/eval"
	"hxinfer/internal/version"
)

const (
	replPrompt   = "hx> "
	replCont     = "... "
	replFileName = "<repl>"
	replResult   = "_it"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Evaluate expressions interactively and print their types",
	Long: `Repl reads Haxe expressions and statements line by line and prints the
inferred type of each. Variables stay visible to later lines; class, enum,
interface, typedef and abstract declarations are kept as well.
Commands: :reset forgets everything, :source prints the current program,
:quit exits.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

// replSession is the state kept between lines: declarations and the
// statements of a synthesized main body.
type replSession struct {
	decls []string
	stmts []string
}

// replOutcome is what one line evaluated to. Name is empty for bare
// expressions and declarations.
type replOutcome struct {
	Name    string
	Type    string
	Decl    bool
	Program *driver.Program
	Bag     *diag.Bag
}

func (s *replSession) reset() {
	s.decls, s.stmts = nil, nil
}

func isDeclLine(line string) bool {
	for _, kw := range []string{"class ", "interface ", "enum ", "typedef ", "abstract ", "extern ", "@:"} {
		if strings.HasPrefix(line, kw) {
			return true
		}
	}
	return false
}

func isVarLine(line string) bool {
	return strings.HasPrefix(line, "var ") || strings.HasPrefix(line, "final ")
}

// source builds the program for one more line. It returns the offset the
// new statement starts at.
func (s *replSession) source(decls []string, stmt string) (string, int) {
	var b strings.Builder
	for _, d := range decls {
		b.WriteString(d)
		b.WriteString("\n")
	}
	b.WriteString("class Repl {\n\tstatic function main() {\n")
	for _, st := range s.stmts {
		b.WriteString("\t\t")
		b.WriteString(st)
		b.WriteString("\n")
	}
	b.WriteString("\t\t")
	start := b.Len()
	b.WriteString(stmt)
	b.WriteString("\n\t}\n}\n")
	return b.String(), start
}

// eval types one line. Lines with errors leave the session unchanged.
func (s *replSession) eval(ctx context.Context, line string) (replOutcome, error) {
	line = strings.TrimSpace(line)
	decls := s.decls
	stmt := ""
	switch {
	case isDeclLine(line):
		decls = append(append([]string(nil), s.decls...), line)
	case isVarLine(line):
		stmt = strings.TrimSuffix(line, ";") + ";"
	default:
		stmt = "var " + replResult + " = " + strings.TrimSuffix(line, ";") + ";"
	}
	src, start := s.source(decls, stmt)

	res, err := driver.Infer(ctx, replFileName, []byte(src), driver.BuildOptions{
		Eval: eval.Options{QuietGuards: true},
	})
	if err != nil {
		return replOutcome{}, err
	}
	u := res.Unit
	if err := res.Program.Eval.CheckFile(ctx, u.File, diag.NewDedupReporter(diag.BagReporter{Bag: u.Bag})); err != nil {
		return replOutcome{}, err
	}
	u.Bag.Sort()
	out := replOutcome{Program: res.Program, Bag: u.Bag, Decl: stmt == ""}
	if u.Bag.HasErrors() {
		return out, nil
	}
	if out.Decl {
		s.decls = decls
		return out, nil
	}

	out.Type = "Unknown"
	for _, e := range res.Entries {
		if e.Kind != eval.EntryVar || e.Owner != "Repl" || int(e.Span.Start) < start {
			continue
		}
		out.Type = e.Type.String()
		if e.Name != replResult {
			out.Name = e.Name
		}
		break
	}
	if out.Name != "" {
		s.stmts = append(s.stmts, stmt)
	}
	return out, nil
}

func runRepl(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, version.Banner())
	fmt.Fprintln(out, "type :quit to exit")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := replHistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	var session replSession
	typeColor := color.New(color.FgCyan)
	for {
		line, err := readReplInput(ln)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(line, "\n", " "))

		if strings.HasPrefix(line, ":") {
			switch line {
			case ":quit", ":q":
				return nil
			case ":reset":
				session.reset()
			case ":source":
				src, _ := session.source(session.decls, "")
				fmt.Fprint(out, src)
			default:
				fmt.Fprintln(out, "unknown command; try :reset, :source or :quit")
			}
			continue
		}

		res, err := session.eval(cmd.Context(), line)
		if err != nil {
			return err
		}
		if res.Bag.Len() > 0 {
			_ = diagfmt.Pretty(cmd.ErrOrStderr(), res.Bag, res.Program.FS, diagfmt.PrettyOpts{
				Color:    useColor(cmd, os.Stderr),
				PathMode: diagfmt.PathModeBasename,
			})
		}
		switch {
		case res.Bag.HasErrors(), res.Decl:
		case res.Name != "":
			fmt.Fprintf(out, "%s : %s\n", res.Name, typeColor.Sprint(res.Type))
		default:
			fmt.Fprintln(out, typeColor.Sprint(res.Type))
		}
	}
}

// readReplInput keeps prompting while braces or parentheses are open.
func readReplInput(ln *liner.State) (string, error) {
	var b strings.Builder
	prompt := replPrompt
	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if b.Len() > 0 && errors.Is(err, io.EOF) {
				return b.String(), nil
			}
			return "", err
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		if bracketDepth(b.String()) <= 0 {
			return b.String(), nil
		}
		prompt = replCont
	}
}

// bracketDepth counts unclosed (, [ and { outside string literals.
func bracketDepth(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	return depth
}

func replHistoryPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "hxinfer", "repl_history")
}
